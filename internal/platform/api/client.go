// Package api is the HTTP client for the platform core API: entity listings
// consumed by the table pages and the login passthrough. Sensitive fields
// always arrive pre-masked; unmasking goes through the lgpd client only.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tucano-platform/tucano-admin/internal/lgpd"
	"github.com/tucano-platform/tucano-admin/internal/shared"
)

// ClientConfig configures the platform core API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the platform core API.
type Client struct {
	http *resty.Client
}

// NewClient builds a Client with sane defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)
	return &Client{http: httpc}
}

// Company is one tenant company as listed by the platform. CNPJ, phone and
// address components come pre-masked.
type Company struct {
	ID                    string    `json:"id"`
	Name                  string    `json:"name"`
	TradeName             string    `json:"trade_name"`
	CNPJ                  string    `json:"cnpj"`
	StateRegistration     string    `json:"state_registration"`
	MunicipalRegistration string    `json:"municipal_registration"`
	Phone                 string    `json:"phone"`
	City                  string    `json:"city"`
	State                 string    `json:"state"`
	Status                string    `json:"status"`
	Addresses             []Address `json:"addresses"`
	CreatedAt             time.Time `json:"created_at"`
}

// Address is one pre-masked company address.
type Address struct {
	ID           string `json:"id"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
}

// User is one platform user. CPF and phone come pre-masked.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CPF       string    `json:"cpf"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Establishment is one company establishment.
type Establishment struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the platform response to a successful login.
type LoginResult struct {
	Token       string   `json:"token"`
	UserID      string   `json:"user_id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

// Login authenticates against the platform and returns the bearer token the
// panel forwards on every API call. Credential checking lives entirely on
// the platform side.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var out LoginResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(loginRequest{Email: email, Password: password}).
		SetResult(&out).
		Post("/api/v1/auth/login")
	if err != nil {
		return LoginResult{}, fmt.Errorf("api: login: %w", err)
	}
	if resp.StatusCode() == http.StatusUnauthorized {
		return LoginResult{}, shared.ErrInvalidCredentials
	}
	if !resp.IsSuccess() {
		return LoginResult{}, fmt.Errorf("api: login status %d", resp.StatusCode())
	}
	return out, nil
}

type listEnvelope[T any] struct {
	Items []T `json:"items"`
}

// Companies lists every company visible to the acting user.
func (c *Client) Companies(ctx context.Context) ([]Company, error) {
	return list[Company](ctx, c, "/api/v1/companies")
}

// Users lists every user visible to the acting user.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	return list[User](ctx, c, "/api/v1/users")
}

// Establishments lists every establishment visible to the acting user.
func (c *Client) Establishments(ctx context.Context) ([]Establishment, error) {
	return list[Establishment](ctx, c, "/api/v1/establishments")
}

// Company fetches one company by id.
func (c *Client) Company(ctx context.Context, id string) (Company, error) {
	var out Company
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(lgpd.TokenFromContext(ctx)).
		SetResult(&out).
		Get("/api/v1/companies/" + id)
	if err != nil {
		return Company{}, fmt.Errorf("api: get company: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return Company{}, shared.ErrNotFound
	}
	if !resp.IsSuccess() {
		return Company{}, fmt.Errorf("api: get company status %d", resp.StatusCode())
	}
	return out, nil
}

// User fetches one user by id.
func (c *Client) User(ctx context.Context, id string) (User, error) {
	var out User
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(lgpd.TokenFromContext(ctx)).
		SetResult(&out).
		Get("/api/v1/users/" + id)
	if err != nil {
		return User{}, fmt.Errorf("api: get user: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return User{}, shared.ErrNotFound
	}
	if !resp.IsSuccess() {
		return User{}, fmt.Errorf("api: get user status %d", resp.StatusCode())
	}
	return out, nil
}

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(lgpd.TokenFromContext(ctx)).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("api: list %s: %w", path, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("api: list %s status %d", path, resp.StatusCode())
	}
	var envelope listEnvelope[T]
	if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
		return nil, fmt.Errorf("api: list %s decode: %w", path, err)
	}
	return envelope.Items, nil
}
