package establishments

import (
	"context"

	"github.com/tucano-platform/tucano-admin/internal/platform/api"
)

// RepositoryPort defines data access for establishments.
type RepositoryPort interface {
	List(ctx context.Context) ([]Establishment, error)
}

// APIRepository fetches establishments from the platform core API.
type APIRepository struct {
	client *api.Client
}

// NewAPIRepository builds an APIRepository.
func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

// List returns every establishment visible to the acting user.
func (r *APIRepository) List(ctx context.Context) ([]Establishment, error) {
	fetched, err := r.client.Establishments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Establishment, 0, len(fetched))
	for _, e := range fetched {
		out = append(out, Establishment{
			ID:        e.ID,
			CompanyID: e.CompanyID,
			Name:      e.Name,
			City:      e.City,
			Status:    e.Status,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}
