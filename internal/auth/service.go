package auth

import (
	"context"
	"time"

	"github.com/tucano-platform/tucano-admin/internal/platform/api"
)

// Authenticator exchanges credentials for a platform token. Credentials are
// never checked locally, the panel is a passthrough to the core API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
}

// Service wraps authentication business rules.
type Service struct {
	platform Authenticator
	repo     Repository
}

// NewService constructs a new Service.
func NewService(platform Authenticator, repo Repository) *Service {
	return &Service{platform: platform, repo: repo}
}

// Authenticate exchanges email/password for a token and permission set.
func (s *Service) Authenticate(ctx context.Context, email, password string) (api.LoginResult, error) {
	return s.platform.Login(ctx, email, password)
}

// RegisterSession persists the session metadata in postgres. Only ids and
// request metadata are stored, never the token.
func (s *Service) RegisterSession(ctx context.Context, id, userID string, expiresAt time.Time, ip, ua string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.DeleteSession(ctx, id)
}
