package lgpd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
)

// EntityType scopes every reveal and audit call to one record kind.
type EntityType string

const (
	EntityCompanies      EntityType = "companies"
	EntityClients        EntityType = "clients"
	EntityUsers          EntityType = "users"
	EntityEstablishments EntityType = "establishments"
)

// Valid reports whether the entity type is one the platform accepts.
func (t EntityType) Valid() bool {
	switch t {
	case EntityCompanies, EntityClients, EntityUsers, EntityEstablishments:
		return true
	}
	return false
}

type tokenContextKey struct{}

// ContextWithToken attaches the acting user's bearer token for outgoing
// platform calls.
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenContextKey{}, token)
}

// TokenFromContext returns the attached bearer token, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// ClientConfig configures the platform privacy API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Client talks to the platform LGPD endpoints. Every reveal performed through
// it is authorized and audit-logged server side.
type Client struct {
	http     *resty.Client
	validate *validator.Validate
}

// NewClient builds a Client with sane defaults.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)
	return &Client{http: http, validate: validator.New()}
}

type revealFieldRequest struct {
	FieldName string `json:"field_name" validate:"required"`
}

type revealFieldResponse struct {
	Value string `json:"value"`
}

type revealFieldsRequest struct {
	FieldNames []string `json:"field_names" validate:"required,min=1,dive,required"`
}

type revealFieldsResponse struct {
	Values map[string]string `json:"values"`
}

// AuditLogItem is one immutable audit record for a sensitive-data access
// event, created exclusively by the platform.
type AuditLogItem struct {
	ID         string    `json:"id"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	UserID     string    `json:"user_id"`
	UserEmail  string    `json:"user_email"`
	Action     string    `json:"action"`
	Timestamp  string    `json:"timestamp"`
	IPAddress  string    `json:"ip_address"`
	Fields     []string  `json:"fields"`
	ReceivedAt time.Time `json:"-"`
}

// AuditPage is one backend-paginated slice of audit records.
type AuditPage struct {
	Items []AuditLogItem `json:"items"`
	Total int            `json:"total"`
	Pages int            `json:"pages"`
}

type deletionResponse struct {
	Message string `json:"message"`
}

// RevealField fetches one unmasked field value. The platform writes the
// audit entry before responding.
func (c *Client) RevealField(ctx context.Context, entityType EntityType, entityID, field string) (string, error) {
	if !entityType.Valid() {
		return "", fmt.Errorf("lgpd: invalid entity type %q", entityType)
	}
	req := revealFieldRequest{FieldName: field}
	if err := c.validate.Struct(req); err != nil {
		return "", fmt.Errorf("lgpd: reveal field request: %w", err)
	}
	var out revealFieldResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(TokenFromContext(ctx)).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/api/v1/lgpd/%s/%s/reveal-field", entityType, entityID))
	if err != nil {
		return "", fmt.Errorf("lgpd: reveal field: %w", err)
	}
	if err := c.checkResponse(resp); err != nil {
		return "", err
	}
	return out.Value, nil
}

// RevealFields is the bulk variant used by the consolidated address card:
// one call, one audit entry for the whole group. Response keys follow the
// address_{addressID}_{attribute} convention.
func (c *Client) RevealFields(ctx context.Context, entityType EntityType, entityID string, fields []string) (map[string]string, error) {
	if !entityType.Valid() {
		return nil, fmt.Errorf("lgpd: invalid entity type %q", entityType)
	}
	req := revealFieldsRequest{FieldNames: fields}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("lgpd: reveal fields request: %w", err)
	}
	var out revealFieldsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(TokenFromContext(ctx)).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&out).
		Post(fmt.Sprintf("/api/v1/lgpd/%s/%s/reveal-fields", entityType, entityID))
	if err != nil {
		return nil, fmt.Errorf("lgpd: reveal fields: %w", err)
	}
	if err := c.checkResponse(resp); err != nil {
		return nil, err
	}
	return out.Values, nil
}

// AuditLogs fetches one page of audit records for an entity. Pagination is
// backend driven: callers re-fetch on page or size changes.
func (c *Client) AuditLogs(ctx context.Context, entityType EntityType, entityID string, page, size int) (AuditPage, error) {
	if !entityType.Valid() {
		return AuditPage{}, fmt.Errorf("lgpd: invalid entity type %q", entityType)
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	var out AuditPage
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(TokenFromContext(ctx)).
		SetQueryParam("page", fmt.Sprintf("%d", page)).
		SetQueryParam("size", fmt.Sprintf("%d", size)).
		SetResult(&out).
		Get(fmt.Sprintf("/api/v1/lgpd/%s/%s/audit-logs", entityType, entityID))
	if err != nil {
		return AuditPage{}, fmt.Errorf("lgpd: audit logs: %w", err)
	}
	if err := c.checkResponse(resp); err != nil {
		return AuditPage{}, err
	}
	return out, nil
}

// ExportData triggers the LGPD data export and returns the downloadable JSON
// payload.
func (c *Client) ExportData(ctx context.Context, entityType EntityType, entityID string) ([]byte, error) {
	if !entityType.Valid() {
		return nil, fmt.Errorf("lgpd: invalid entity type %q", entityType)
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(TokenFromContext(ctx)).
		Post(fmt.Sprintf("/api/v1/lgpd/%s/%s/export-data", entityType, entityID))
	if err != nil {
		return nil, fmt.Errorf("lgpd: export data: %w", err)
	}
	if err := c.checkResponse(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// RequestDeletion files an LGPD deletion request and returns the platform
// confirmation message.
func (c *Client) RequestDeletion(ctx context.Context, entityType EntityType, entityID string) (string, error) {
	if !entityType.Valid() {
		return "", fmt.Errorf("lgpd: invalid entity type %q", entityType)
	}
	var out deletionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(TokenFromContext(ctx)).
		SetResult(&out).
		Post(fmt.Sprintf("/api/v1/lgpd/%s/%s/request-deletion", entityType, entityID))
	if err != nil {
		return "", fmt.Errorf("lgpd: request deletion: %w", err)
	}
	if err := c.checkResponse(resp); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) checkResponse(resp *resty.Response) error {
	if resp.IsSuccess() {
		return nil
	}
	var body errorBody
	_ = json.Unmarshal(resp.Body(), &body)
	return mapError(resp.StatusCode(), body)
}
