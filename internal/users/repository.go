package users

import (
	"context"

	"github.com/tucano-platform/tucano-admin/internal/platform/api"
)

// RepositoryPort defines data access for users.
type RepositoryPort interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id string) (User, error)
}

// APIRepository fetches users from the platform core API.
type APIRepository struct {
	client *api.Client
}

// NewAPIRepository builds an APIRepository.
func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

// List returns every user visible to the acting user.
func (r *APIRepository) List(ctx context.Context) ([]User, error) {
	fetched, err := r.client.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(fetched))
	for _, u := range fetched {
		out = append(out, fromAPI(u))
	}
	return out, nil
}

// Get returns one user by id.
func (r *APIRepository) Get(ctx context.Context, id string) (User, error) {
	fetched, err := r.client.User(ctx, id)
	if err != nil {
		return User{}, err
	}
	return fromAPI(fetched), nil
}

func fromAPI(u api.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CPF:       u.CPF,
		Phone:     u.Phone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
