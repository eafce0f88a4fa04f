package perf

import (
	"fmt"
	"testing"
	"time"

	"github.com/tucano-platform/tucano-admin/internal/companies"
	"github.com/tucano-platform/tucano-admin/internal/datatable"
)

func benchmarkRows(n int) []companies.Company {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]companies.Company, 0, n)
	for i := 0; i < n; i++ {
		status := "active"
		if i%4 == 0 {
			status = "inactive"
		}
		rows = append(rows, companies.Company{
			ID:        fmt.Sprintf("c-%05d", i),
			Name:      fmt.Sprintf("Empresa %05d Ltda", i),
			TradeName: fmt.Sprintf("Empresa %05d", i),
			City:      []string{"São Paulo", "Curitiba", "Recife", "Manaus"}[i%4],
			Status:    status,
			CreatedAt: base.AddDate(0, 0, i%365),
		})
	}
	return rows
}

func BenchmarkBuildViewFilteredSorted(b *testing.B) {
	rows := benchmarkRows(2000)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state := datatable.NewState(companies.TableConfig(rows), rows)
		state.SetFilter("status", datatable.Scalar("active"))
		state.SortBy("name", true)
		view := datatable.BuildView(state, false)
		if len(view.Rows) == 0 {
			b.Fatal("expected rows")
		}
	}
}

func BenchmarkExportCSVLargeTable(b *testing.B) {
	rows := benchmarkRows(5000)
	state := datatable.NewState(companies.TableConfig(rows), rows)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err := datatable.Export(state, datatable.ExportCSV, nil)
		if err != nil {
			b.Fatal(err)
		}
		if len(res.Content) == 0 {
			b.Fatal("empty export")
		}
	}
}
