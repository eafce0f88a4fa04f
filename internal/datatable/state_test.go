package datatable

import (
	"fmt"
	"testing"
	"time"
)

type product struct {
	ID      string
	Name    string
	City    string
	Status  string
	Price   float64
	Created time.Time
}

func productConfig() Config[product] {
	return Config[product]{
		Entity: "products",
		ID:     func(p product) string { return p.ID },
		Columns: []Column[product]{
			{Key: "name", Label: "Nome", Sortable: true, Sort: func(p product) string { return p.Name }},
			{Key: "city", Label: "Cidade", Sortable: true, Sort: func(p product) string { return p.City }},
			{Key: "status", Label: "Status", Render: func(p product) string { return p.Status }},
		},
		Filters: []Filter[product]{
			{Key: "status", Label: "Status", Type: FilterSelect,
				Options: []Option{{Value: "all", Label: "Todos"}, {Value: "active", Label: "Ativo"}},
				Value:   func(p product) string { return p.Status }},
			{Key: "city", Label: "Cidade", Type: FilterMultiSelect,
				Value: func(p product) string { return p.City }},
			{Key: "price", Label: "Preço", Type: FilterRange,
				Number: func(p product) float64 { return p.Price }},
			{Key: "created", Label: "Criado", Type: FilterDateRange,
				Date: func(p product) time.Time { return p.Created }},
		},
		SearchFields: []func(product) string{
			func(p product) string { return p.Name },
			func(p product) string { return p.City },
		},
		DefaultPageSize: 10,
	}
}

func sampleProducts(n int) []product {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	out := make([]product, 0, n)
	for i := 0; i < n; i++ {
		status := "active"
		if i%3 == 0 {
			status = "inactive"
		}
		city := "São Paulo"
		if i%2 == 0 {
			city = "Curitiba"
		}
		out = append(out, product{
			ID:      fmt.Sprintf("p-%02d", i),
			Name:    fmt.Sprintf("Produto %02d", i),
			City:    city,
			Status:  status,
			Price:   float64(10 * (i + 1)),
			Created: base.AddDate(0, 0, i),
		})
	}
	return out
}

func TestSearchResetsToFirstPage(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(25))
	s.SetPage(3)
	if s.Page() != 3 {
		t.Fatalf("expected page 3, got %d", s.Page())
	}

	s.Search("produto")
	if s.Page() != 1 {
		t.Fatalf("search should reset to page 1, got %d", s.Page())
	}
	if s.Total() != 25 {
		t.Fatalf("case-insensitive search should match all, got %d", s.Total())
	}

	s.Search("curitiba")
	if s.Total() != 13 {
		t.Fatalf("expected 13 matches on second search field, got %d", s.Total())
	}
}

func TestScalarFilterAndNeutralValue(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(24))

	s.SetFilter("status", Scalar("inactive"))
	if s.Total() != 8 {
		t.Fatalf("expected 8 inactive, got %d", s.Total())
	}
	if !s.HasActiveFilters() {
		t.Fatal("filter should be active")
	}

	// The "all" sentinel removes the constraint.
	s.SetFilter("status", Scalar("all"))
	if s.Total() != 24 {
		t.Fatalf("neutral value should clear the filter, got %d", s.Total())
	}
	if s.HasActiveFilters() {
		t.Fatal("no filter should remain active")
	}
}

func TestSetFilterIsIdempotent(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(24))

	s.SetFilter("status", Scalar("inactive"))
	once := s.FilteredData()

	s.SetFilter("status", Scalar("inactive"))
	twice := s.FilteredData()

	if len(twice) != len(once) {
		t.Fatalf("reapplying the same filter changed the result: %d then %d rows", len(once), len(twice))
	}
	for i := range once {
		if twice[i].ID != once[i].ID {
			t.Fatalf("row %d changed after reapplying the filter: %q vs %q", i, once[i].ID, twice[i].ID)
		}
	}
}

func TestRangeFiltersAreInclusive(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(10))

	min, max := 20.0, 40.0
	s.SetFilter("price", NumberRange(&min, &max))
	if s.Total() != 3 {
		t.Fatalf("expected 3 rows in [20,40], got %d", s.Total())
	}
	for _, p := range s.FilteredData() {
		if p.Price < min || p.Price > max {
			t.Fatalf("row %s price %.0f outside inclusive range", p.ID, p.Price)
		}
	}

	s.ClearFilters()
	start := time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 5, 23, 59, 59, 0, time.UTC)
	s.SetFilter("created", DateRange(&start, &end))
	if s.Total() != 3 {
		t.Fatalf("expected 3 rows in date range, got %d", s.Total())
	}

	// Open-ended range constrains only one side.
	s.SetFilter("created", DateRange(&start, nil))
	if s.Total() != 8 {
		t.Fatalf("expected 8 rows from open-ended range, got %d", s.Total())
	}
}

func TestCombinedFiltersAreANDed(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(24))
	s.SetFilter("status", Scalar("active"))
	s.SetFilter("city", List("São Paulo"))
	for _, p := range s.FilteredData() {
		if p.Status != "active" || p.City != "São Paulo" {
			t.Fatalf("row %s escapes combined filters", p.ID)
		}
	}
	s.Search("nothing-matches-this")
	if s.Total() != 0 {
		t.Fatalf("expected empty result, got %d", s.Total())
	}
}

func TestPaginationClamping(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(25))

	if s.TotalPages() != 3 {
		t.Fatalf("expected 3 pages, got %d", s.TotalPages())
	}
	s.SetPage(99)
	if s.Page() != 3 {
		t.Fatalf("page should clamp to last, got %d", s.Page())
	}
	s.SetPage(-4)
	if s.Page() != 1 {
		t.Fatalf("page should clamp to first, got %d", s.Page())
	}

	// Shrinking the result below the current offset clamps the page.
	s.SetPage(3)
	s.SetFilter("status", Scalar("inactive"))
	if s.Page() != 1 {
		t.Fatalf("filter change should land on a valid page, got %d", s.Page())
	}

	s.ClearFilters()
	s.SetPageSize(25)
	if s.Page() != 1 || s.TotalPages() != 1 {
		t.Fatalf("page size change should reset paging, got page=%d pages=%d", s.Page(), s.TotalPages())
	}
}

func TestTotalPagesNeverBelowOne(t *testing.T) {
	s := NewState(productConfig(), nil)
	if s.TotalPages() != 1 {
		t.Fatalf("empty dataset should still report 1 page, got %d", s.TotalPages())
	}
	if s.Page() != 1 {
		t.Fatalf("expected page 1, got %d", s.Page())
	}
}

func TestSelectAllCoversCurrentPageOnly(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(25))
	s.SelectAll(true)
	if got := len(s.SelectedIDs()); got != 10 {
		t.Fatalf("select-all should cover the visible page, got %d", got)
	}
	s.SetPage(3)
	s.SelectAll(true)
	if got := len(s.SelectedIDs()); got != 15 {
		t.Fatalf("expected 15 selected after second page, got %d", got)
	}
	s.SelectAll(false)
	if got := len(s.SelectedIDs()); got != 10 {
		t.Fatalf("deselect-all should touch the visible page only, got %d", got)
	}
}

func TestSortUsesPortugueseCollation(t *testing.T) {
	rows := []product{
		{ID: "1", Name: "Árvore"},
		{ID: "2", Name: "zebra"},
		{ID: "3", Name: "Abacaxi"},
		{ID: "4", Name: "água"},
	}
	s := NewState(productConfig(), rows)
	s.SortBy("name", true)

	got := make([]string, 0, len(rows))
	for _, p := range s.FilteredData() {
		got = append(got, p.Name)
	}
	want := []string{"Abacaxi", "água", "Árvore", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("collation order mismatch: got %v want %v", got, want)
		}
	}
}

func TestSortIgnoresUnsortableColumn(t *testing.T) {
	s := NewState(productConfig(), sampleProducts(5))
	before := s.FilteredData()[0].ID
	s.SortBy("status", true)
	if s.FilteredData()[0].ID != before {
		t.Fatal("sorting an unsortable column should be a no-op")
	}
}

func TestExternalStateDelegatesPaging(t *testing.T) {
	items := sampleProducts(10)
	s := NewExternalState(productConfig(), items, 57, 2, 10)
	if s.Total() != 57 {
		t.Fatalf("expected backend total, got %d", s.Total())
	}
	if s.TotalPages() != 6 {
		t.Fatalf("expected 6 pages, got %d", s.TotalPages())
	}
	if len(s.PageItems()) != 10 {
		t.Fatalf("external page should be returned as-is, got %d items", len(s.PageItems()))
	}
}
