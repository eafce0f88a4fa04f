package shared

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

const (
	// CSRFSessionKey stores the active token inside the session payload.
	CSRFSessionKey = "csrf_token"
	// CSRFFormField is the hidden input name every panel form posts back.
	CSRFFormField = "csrf_token"
)

// CSRFManager mints and checks per-session CSRF tokens. Every mutating
// route in the panel (reveal, hide, export-data, request-deletion, login)
// requires a valid token, so the manager is part of the base middleware
// stack rather than an opt-in.
type CSRFManager struct {
	secret []byte
}

func NewCSRFManager(secret string) *CSRFManager {
	return &CSRFManager{secret: []byte(secret)}
}

// EnsureToken returns the session's token, minting one on first use. The
// token lives as long as the session does; rotating it per request would
// break the multiple-tabs case (each detail page holds its own forms).
func (m *CSRFManager) EnsureToken(ctx context.Context, sess *Session) (string, error) {
	if sess == nil {
		return "", errors.New("session missing")
	}
	if token := sess.Get(CSRFSessionKey); token != "" {
		return token, nil
	}
	token, err := m.mint(sess.ID)
	if err != nil {
		return "", err
	}
	sess.Set(CSRFSessionKey, token)
	return token, nil
}

// VerifyToken checks a submitted token against the session in constant
// time. A missing session, an empty stored token and an empty submission
// all map to ErrCSRFTokenMissing; only a real mismatch reports tampering.
func (m *CSRFManager) VerifyToken(ctx context.Context, sess *Session, token string) error {
	if sess == nil {
		return ErrCSRFTokenMissing
	}
	expected := sess.Get(CSRFSessionKey)
	if expected == "" || token == "" {
		return ErrCSRFTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrCSRFTokenMismatch
	}
	return nil
}

// mint derives a token from the session id, the shared secret and a random
// nonce, so tokens are unguessable even for a known session id.
func (m *CSRFManager) mint(sessionID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sessionID))
	mac.Write([]byte{'|'})
	mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
