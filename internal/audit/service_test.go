package audit

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tucano-platform/tucano-admin/internal/lgpd"
)

type stubFetcher struct {
	mu    sync.Mutex
	page  lgpd.AuditPage
	err   error
	calls int32
	block chan struct{}
}

func (s *stubFetcher) AuditLogs(ctx context.Context, entityType lgpd.EntityType, entityID string, page, size int) (lgpd.AuditPage, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page, s.err
}

func TestPageBuildsRows(t *testing.T) {
	fetcher := &stubFetcher{page: lgpd.AuditPage{
		Items: []lgpd.AuditLogItem{
			{ID: "al-1", UserEmail: "ana@example.com", Action: "REVEAL", Timestamp: "2026-03-10T14:30:00Z", IPAddress: "10.0.0.1", Fields: []string{"cnpj"}},
			{ID: "al-2", UserEmail: "bruno@example.com", Action: "UNKNOWN_OP", Timestamp: "not-a-date"},
		},
		Total: 2,
		Pages: 1,
	}}
	svc := NewService(fetcher)

	view, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 1, 10)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if view.Empty || len(view.Rows) != 2 {
		t.Fatalf("unexpected view %+v", view)
	}

	first := view.Rows[0]
	if first.Action.Label != "Revelação" || first.Action.Color != "purple" {
		t.Fatalf("unexpected badge %+v", first.Action)
	}
	if first.Timestamp != "10/03/2026 14:30" {
		t.Fatalf("unexpected timestamp %q", first.Timestamp)
	}

	second := view.Rows[1]
	if second.Action.Label != "UNKNOWN_OP" || second.Action.Color != "gray" {
		t.Fatalf("unknown action should get the neutral badge, got %+v", second.Action)
	}
	if second.Timestamp != "—" {
		t.Fatalf("unparsable timestamp should degrade, got %q", second.Timestamp)
	}
}

func TestPageEmptyIsNotAnError(t *testing.T) {
	svc := NewService(&stubFetcher{page: lgpd.AuditPage{}})
	view, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 1, 10)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if !view.Empty || len(view.Rows) != 0 {
		t.Fatalf("expected typed empty view, got %+v", view)
	}
	if view.Paging.TotalPages != 1 {
		t.Fatalf("empty trail still has one page, got %d", view.Paging.TotalPages)
	}
}

func TestPagePropagatesFetchError(t *testing.T) {
	wantErr := errors.New("platform down")
	svc := NewService(&stubFetcher{err: wantErr})
	if _, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 1, 10); !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}

func TestPageClampsInputs(t *testing.T) {
	fetcher := &stubFetcher{page: lgpd.AuditPage{Total: 5, Pages: 1}}
	svc := NewService(fetcher)

	view, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", -3, 500)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if view.Paging.Page != 1 {
		t.Fatalf("negative page should clamp to 1, got %d", view.Paging.Page)
	}
	if view.Paging.PageSize != maxPageSize {
		t.Fatalf("oversized page size should clamp to %d, got %d", maxPageSize, view.Paging.PageSize)
	}
}

func TestPageClampsPastLastPage(t *testing.T) {
	fetcher := &stubFetcher{page: lgpd.AuditPage{Total: 15, Pages: 2}}
	svc := NewService(fetcher)

	view, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 9, 10)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if view.Paging.Page != 2 || view.Paging.HasNext {
		t.Fatalf("page should clamp to the last page, got %+v", view.Paging)
	}
	if !view.Paging.HasPrev {
		t.Fatal("clamped last page should have a previous page")
	}
}

func TestPageDerivesTotalPagesWhenMissing(t *testing.T) {
	fetcher := &stubFetcher{page: lgpd.AuditPage{Total: 21}}
	svc := NewService(fetcher)

	view, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 1, 10)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if view.Paging.TotalPages != 3 {
		t.Fatalf("total pages should derive from total/size, got %d", view.Paging.TotalPages)
	}
}

func TestPageCoalescesConcurrentFetches(t *testing.T) {
	fetcher := &stubFetcher{page: lgpd.AuditPage{Total: 1, Pages: 1}, block: make(chan struct{})}
	svc := NewService(fetcher)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _ = svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 1, 10)
		}()
	}
	close(start)
	// Give every goroutine a chance to join the in-flight call, then let it
	// complete.
	for atomic.LoadInt32(&fetcher.calls) == 0 {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)
	close(fetcher.block)
	wg.Wait()

	if got := atomic.LoadInt32(&fetcher.calls); got >= 5 {
		t.Fatalf("concurrent identical pages should coalesce, got %d calls", got)
	}
}

func TestPageRequiresFetcher(t *testing.T) {
	svc := NewService(nil)
	if _, err := svc.Page(context.Background(), lgpd.EntityCompanies, "c-1", 1, 10); err == nil {
		t.Fatal("missing fetcher must be an error")
	}
}
