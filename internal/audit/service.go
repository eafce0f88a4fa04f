package audit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tucano-platform/tucano-admin/internal/lgpd"
)

const (
	defaultPageSize = 10
	maxPageSize     = 50
)

// timestampPlaceholder replaces unparsable dates instead of failing the row.
const timestampPlaceholder = "—"

// Fetcher abstracts the platform audit listing call.
type Fetcher interface {
	AuditLogs(ctx context.Context, entityType lgpd.EntityType, entityID string, page, size int) (lgpd.AuditPage, error)
}

// Service pages through audit records. Concurrent requests for the same page
// are coalesced into one platform call.
type Service struct {
	fetcher Fetcher
	group   singleflight.Group
}

// NewService builds an audit view service.
func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher}
}

// Page fetches and prepares one audit page. An empty result is a typed empty
// view, never an error.
func (s *Service) Page(ctx context.Context, entityType lgpd.EntityType, entityID string, page, size int) (View, error) {
	if s.fetcher == nil {
		return View{}, fmt.Errorf("audit: fetcher not configured")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	key := fmt.Sprintf("%s|%s|%d|%d", entityType, entityID, page, size)
	resultChan := s.group.DoChan(key, func() (any, error) {
		return s.fetcher.AuditLogs(ctx, entityType, entityID, page, size)
	})

	var fetched lgpd.AuditPage
	select {
	case <-ctx.Done():
		return View{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return View{}, res.Err
		}
		fetched = res.Val.(lgpd.AuditPage)
	}

	view := View{
		Paging: buildPaging(page, size, fetched),
		Empty:  len(fetched.Items) == 0,
	}
	for _, item := range fetched.Items {
		view.Rows = append(view.Rows, Row{
			ID:        item.ID,
			UserEmail: item.UserEmail,
			Action:    BadgeFor(item.Action),
			Timestamp: formatTimestamp(item.Timestamp),
			IPAddress: item.IPAddress,
			Fields:    item.Fields,
		})
	}
	return view, nil
}

func buildPaging(page, size int, fetched lgpd.AuditPage) Paging {
	totalPages := fetched.Pages
	if totalPages <= 0 {
		totalPages = (fetched.Total + size - 1) / size
	}
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return Paging{
		Page:       page,
		PageSize:   size,
		Total:      fetched.Total,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
}

// formatTimestamp renders platform timestamps for display, degrading to a
// placeholder on anything unparsable.
func formatTimestamp(raw string) string {
	if raw == "" {
		return timestampPlaceholder
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006 15:04")
		}
	}
	return timestampPlaceholder
}
