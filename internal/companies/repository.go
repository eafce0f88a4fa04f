package companies

import (
	"context"

	"github.com/tucano-platform/tucano-admin/internal/platform/api"
)

// RepositoryPort defines data access for companies.
type RepositoryPort interface {
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id string) (Company, error)
}

// APIRepository fetches companies from the platform core API.
type APIRepository struct {
	client *api.Client
}

// NewAPIRepository builds an APIRepository.
func NewAPIRepository(client *api.Client) *APIRepository {
	return &APIRepository{client: client}
}

// List returns every company visible to the acting user.
func (r *APIRepository) List(ctx context.Context) ([]Company, error) {
	fetched, err := r.client.Companies(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Company, 0, len(fetched))
	for _, c := range fetched {
		out = append(out, fromAPI(c))
	}
	return out, nil
}

// Get returns one company by id.
func (r *APIRepository) Get(ctx context.Context, id string) (Company, error) {
	fetched, err := r.client.Company(ctx, id)
	if err != nil {
		return Company{}, err
	}
	return fromAPI(fetched), nil
}

func fromAPI(c api.Company) Company {
	out := Company{
		ID:                    c.ID,
		Name:                  c.Name,
		TradeName:             c.TradeName,
		CNPJ:                  c.CNPJ,
		StateRegistration:     c.StateRegistration,
		MunicipalRegistration: c.MunicipalRegistration,
		Phone:                 c.Phone,
		City:                  c.City,
		State:                 c.State,
		Status:                c.Status,
		CreatedAt:             c.CreatedAt,
	}
	for _, a := range c.Addresses {
		out.Addresses = append(out.Addresses, Address{
			ID:           a.ID,
			Street:       a.Street,
			Number:       a.Number,
			Complement:   a.Complement,
			Neighborhood: a.Neighborhood,
			City:         a.City,
			State:        a.State,
			ZipCode:      a.ZipCode,
			Country:      a.Country,
		})
	}
	return out
}
