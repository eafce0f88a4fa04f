// Package lgpd implements the sensitive-data reveal protocol: the HTTP
// client toward the platform privacy API, field masking and formatting, and
// the reveal state machine with its auto-hide timer.
package lgpd

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors the rest of the panel branches on.
var (
	ErrSessionExpired   = errors.New("sessão expirada")
	ErrPermissionDenied = errors.New("permissão negada")
	ErrNotFound         = errors.New("registro não encontrado")
	ErrValidation       = errors.New("dados inválidos")
	ErrRetryable        = errors.New("falha temporária")
)

// APIError carries the mapped platform API failure. Sentinel matching works
// through errors.Is; Messages holds validation detail when present.
type APIError struct {
	Status   int
	Code     string
	Messages []string
	sentinel error
}

func (e *APIError) Error() string {
	if len(e.Messages) > 0 {
		return fmt.Sprintf("lgpd: api status %d: %s", e.Status, strings.Join(e.Messages, "; "))
	}
	return fmt.Sprintf("lgpd: api status %d", e.Status)
}

func (e *APIError) Unwrap() error { return e.sentinel }

// errorBody is the platform error envelope. Code is the stable contract;
// Message/Messages are display text.
type errorBody struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Messages []string `json:"messages"`
}

// mapError converts a platform response into an APIError. The status code is
// authoritative; the legacy message-fragment sniffing is kept only as a
// fallback for older platform builds that return 200-shaped errors or
// mislabeled statuses.
func mapError(status int, body errorBody) error {
	messages := body.Messages
	if len(messages) == 0 && body.Message != "" {
		messages = []string{body.Message}
	}
	apiErr := &APIError{Status: status, Code: body.Code, Messages: messages}
	switch {
	case status == http.StatusUnauthorized:
		apiErr.sentinel = ErrSessionExpired
	case status == http.StatusForbidden:
		apiErr.sentinel = ErrPermissionDenied
	case status == http.StatusNotFound:
		apiErr.sentinel = ErrNotFound
	case status == http.StatusUnprocessableEntity:
		apiErr.sentinel = ErrValidation
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		apiErr.sentinel = ErrRetryable
	default:
		apiErr.sentinel = legacySentinel(body)
	}
	return apiErr
}

// legacySentinel pattern-matches known message fragments. Best effort only.
func legacySentinel(body errorBody) error {
	joined := strings.ToLower(body.Message + " " + strings.Join(body.Messages, " "))
	switch {
	case strings.Contains(joined, "session expired"), strings.Contains(joined, "sessão expirada"):
		return ErrSessionExpired
	case strings.Contains(joined, "permission denied"), strings.Contains(joined, "não autorizado"), strings.Contains(joined, "acesso negado"):
		return ErrPermissionDenied
	case strings.Contains(joined, "not found"), strings.Contains(joined, "não encontrado"):
		return ErrNotFound
	}
	return nil
}

// IsRetryable reports whether the failure is transient and a retry affordance
// should be offered.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

// UserMessage converts any reveal/fetch failure into the user-facing text.
// Validation messages are shown verbatim; unknown failures collapse into a
// generic message and are only logged.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && errors.Is(err, ErrValidation) && len(apiErr.Messages) > 0 {
		return strings.Join(apiErr.Messages, " ")
	}
	switch {
	case errors.Is(err, ErrSessionExpired):
		return "Sua sessão expirou. Faça login novamente."
	case errors.Is(err, ErrPermissionDenied):
		return "Você não tem permissão para visualizar este dado."
	case errors.Is(err, ErrNotFound):
		return "Registro não encontrado."
	case errors.Is(err, ErrValidation):
		return "Dados inválidos."
	case errors.Is(err, ErrRetryable):
		return "Falha temporária ao consultar o servidor. Tente novamente."
	}
	return "Não foi possível completar a operação. Tente novamente mais tarde."
}
