package establishments

import "context"

// Service handles establishment listing logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all visible establishments.
func (s *Service) List(ctx context.Context) ([]Establishment, error) {
	return s.repo.List(ctx)
}
