package companies

import (
	"fmt"
	"sort"
	"time"

	"github.com/tucano-platform/tucano-admin/internal/datatable"
)

// TableConfig builds the datatable configuration for the company listing.
// It is pure data plus closures and is rebuilt on every request.
func TableConfig(rows []Company) datatable.Config[Company] {
	return datatable.Config[Company]{
		Entity: "companies",
		ID:     func(c Company) string { return c.ID },
		Columns: []datatable.Column[Company]{
			{Key: "name", Label: "Razão social", Sortable: true, Sort: func(c Company) string { return c.Name }},
			{Key: "trade_name", Label: "Nome fantasia", Sortable: true, Sort: func(c Company) string { return c.TradeName }},
			{Key: "cnpj", Label: "CNPJ", Render: func(c Company) string { return c.CNPJ }},
			{Key: "city", Label: "Cidade", Sortable: true, Sort: func(c Company) string { return c.City }},
			{Key: "status", Label: "Status", Render: renderStatus},
			{Key: "created_at", Label: "Cadastro", Sortable: true,
				Sort:   func(c Company) string { return c.CreatedAt.Format("2006-01-02T15:04:05") },
				Render: func(c Company) string { return c.CreatedAt.Format("02/01/2006") }},
		},
		Filters: []datatable.Filter[Company]{
			{Key: "status", Label: "Status", Type: datatable.FilterSelect,
				Options: []datatable.Option{
					{Value: "all", Label: "Todos"},
					{Value: "active", Label: "Ativa"},
					{Value: "inactive", Label: "Inativa"},
				},
				Value: func(c Company) string { return c.Status }},
			{Key: "city", Label: "Cidade", Type: datatable.FilterMultiSelect,
				Options: cityOptions(rows),
				Value:   func(c Company) string { return c.City }},
			{Key: "created_at", Label: "Cadastro", Type: datatable.FilterDateRange,
				Date: func(c Company) time.Time { return c.CreatedAt }},
		},
		Metrics: []datatable.Metric[Company]{
			{ID: "total", Label: "Empresas", Value: func(items []Company) string { return fmt.Sprintf("%d", len(items)) }},
			{ID: "active", Label: "Ativas", Value: func(items []Company) string {
				count := 0
				for _, c := range items {
					if c.Active() {
						count++
					}
				}
				return fmt.Sprintf("%d", count)
			}},
			{ID: "cities", Label: "Cidades", Detailed: true, Value: func(items []Company) string {
				seen := map[string]struct{}{}
				for _, c := range items {
					seen[c.City] = struct{}{}
				}
				return fmt.Sprintf("%d", len(seen))
			}},
		},
		Actions: []datatable.Action[Company]{
			{ID: "view", Label: "Detalhes", Icon: "eye", Href: func(c Company) string { return "/companies/" + c.ID }},
			{ID: "audit", Label: "Auditoria", Icon: "list", Href: func(c Company) string { return "/companies/" + c.ID + "#audit" }},
		},
		Export: datatable.ExportConfig{
			Filename: "empresas",
			Formats:  []datatable.ExportFormat{datatable.ExportCSV, datatable.ExportJSON, datatable.ExportPrint},
		},
		SearchFields: []func(Company) string{
			func(c Company) string { return c.Name },
			func(c Company) string { return c.TradeName },
			func(c Company) string { return c.City },
		},
		DefaultPageSize: 10,
	}
}

func renderStatus(c Company) string {
	if c.Active() {
		return "Ativa"
	}
	return "Inativa"
}

func cityOptions(rows []Company) []datatable.Option {
	seen := map[string]struct{}{}
	for _, c := range rows {
		if c.City != "" {
			seen[c.City] = struct{}{}
		}
	}
	cities := make([]string, 0, len(seen))
	for city := range seen {
		cities = append(cities, city)
	}
	sort.Strings(cities)
	options := make([]datatable.Option, 0, len(cities))
	for _, city := range cities {
		options = append(options, datatable.Option{Value: city, Label: city})
	}
	return options
}
