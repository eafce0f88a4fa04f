package companies

import (
	"net/url"
	"testing"
	"time"

	"github.com/tucano-platform/tucano-admin/internal/datatable"
)

func sampleCompanies() []Company {
	base := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	return []Company{
		{ID: "c-1", Name: "Acme Comércio", TradeName: "Acme", City: "São Paulo", Status: "active", CreatedAt: base},
		{ID: "c-2", Name: "Borges Logística", TradeName: "Borges Log", City: "Curitiba", Status: "active", CreatedAt: base.AddDate(0, 0, 3)},
		{ID: "c-3", Name: "Carvalho Alimentos", TradeName: "Carvalho", City: "São Paulo", Status: "inactive", CreatedAt: base.AddDate(0, 0, 6)},
		{ID: "c-4", Name: "Dias Transportes", TradeName: "Dias", City: "Recife", Status: "active", CreatedAt: base.AddDate(0, 0, 9)},
	}
}

func TestBuildStateSearch(t *testing.T) {
	state := buildState(sampleCompanies(), url.Values{"q": {"carvalho"}})
	if state.Total() != 1 {
		t.Fatalf("expected one match, got %d", state.Total())
	}
	if state.FilteredData()[0].ID != "c-3" {
		t.Fatalf("unexpected match %+v", state.FilteredData()[0])
	}
}

func TestBuildStateStatusAndCity(t *testing.T) {
	state := buildState(sampleCompanies(), url.Values{
		"status": {"active"},
		"city":   {"São Paulo", "Recife"},
	})
	if state.Total() != 2 {
		t.Fatalf("expected 2 rows, got %d", state.Total())
	}
	for _, c := range state.FilteredData() {
		if c.Status != "active" {
			t.Fatalf("inactive row escaped the filter: %+v", c)
		}
	}
}

func TestBuildStateNeutralStatusIsIgnored(t *testing.T) {
	state := buildState(sampleCompanies(), url.Values{"status": {"all"}})
	if state.Total() != 4 || state.HasActiveFilters() {
		t.Fatalf("the all sentinel must not constrain, got %d rows", state.Total())
	}
}

func TestBuildStateDateRangeIncludesWholeEndDay(t *testing.T) {
	// c-2 was created on 2026-02-04 at 09:00; an end bound of the same day
	// must still include it.
	state := buildState(sampleCompanies(), url.Values{
		"created_from": {"2026-02-01"},
		"created_to":   {"2026-02-04"},
	})
	if state.Total() != 2 {
		t.Fatalf("expected 2 rows inside the range, got %d", state.Total())
	}
}

func TestBuildStateIgnoresMalformedDates(t *testing.T) {
	state := buildState(sampleCompanies(), url.Values{"created_from": {"04/02/2026"}})
	if state.Total() != 4 {
		t.Fatalf("malformed date should not filter, got %d rows", state.Total())
	}
}

func TestBuildStateSortDirection(t *testing.T) {
	state := buildState(sampleCompanies(), url.Values{"sort": {"name"}, "dir": {"desc"}})
	if got := state.FilteredData()[0].ID; got != "c-4" {
		t.Fatalf("descending name sort should start with Dias, got %s", got)
	}

	state = buildState(sampleCompanies(), url.Values{"sort": {"name"}})
	if got := state.FilteredData()[0].ID; got != "c-1" {
		t.Fatalf("default direction is ascending, got %s", got)
	}
}

func TestBuildStatePaginationParams(t *testing.T) {
	state := buildState(sampleCompanies(), url.Values{"size": {"2"}, "page": {"2"}})
	if state.Page() != 2 || state.PageSize() != 2 {
		t.Fatalf("unexpected paging page=%d size=%d", state.Page(), state.PageSize())
	}
	if got := state.PageItems(); len(got) != 2 || got[0].ID != "c-3" {
		t.Fatalf("unexpected page items %+v", got)
	}

	state = buildState(sampleCompanies(), url.Values{"page": {"40"}})
	if state.Page() != 1 {
		t.Fatalf("out-of-range page should clamp, got %d", state.Page())
	}
}

func TestBuildStateConstraintsApplyBeforePagination(t *testing.T) {
	// Page 2 exists for the full set but not for the filtered one; the page
	// must clamp against the filtered result.
	state := buildState(sampleCompanies(), url.Values{
		"status": {"inactive"},
		"size":   {"2"},
		"page":   {"2"},
	})
	if state.Page() != 1 {
		t.Fatalf("page should clamp against the filtered set, got %d", state.Page())
	}
	if state.Total() != 1 {
		t.Fatalf("expected a single inactive company, got %d", state.Total())
	}
}

func TestTableConfigCityOptionsAreDistinctSorted(t *testing.T) {
	cfg := TableConfig(sampleCompanies())
	var city datatable.Filter[Company]
	for _, f := range cfg.Filters {
		if f.Key == "city" {
			city = f
		}
	}
	if len(city.Options) != 3 {
		t.Fatalf("expected 3 distinct cities, got %d", len(city.Options))
	}
	for i := 1; i < len(city.Options); i++ {
		if city.Options[i-1].Value > city.Options[i].Value {
			t.Fatalf("city options should be sorted: %+v", city.Options)
		}
	}
}
