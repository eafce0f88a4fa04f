package companies

import "context"

// Service handles company listing logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// List returns all visible companies.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	return s.repo.List(ctx)
}

// Get returns one company.
func (s *Service) Get(ctx context.Context, id string) (Company, error) {
	return s.repo.Get(ctx, id)
}
