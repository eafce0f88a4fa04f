package establishments

import (
	"fmt"
	"sort"

	"github.com/tucano-platform/tucano-admin/internal/datatable"
)

// TableConfig builds the datatable configuration for the establishment listing.
func TableConfig(rows []Establishment) datatable.Config[Establishment] {
	return datatable.Config[Establishment]{
		Entity: "establishments",
		ID:     func(e Establishment) string { return e.ID },
		Columns: []datatable.Column[Establishment]{
			{Key: "name", Label: "Nome", Sortable: true, Sort: func(e Establishment) string { return e.Name }},
			{Key: "city", Label: "Cidade", Sortable: true, Sort: func(e Establishment) string { return e.City }},
			{Key: "status", Label: "Status", Render: renderStatus},
			{Key: "created_at", Label: "Cadastro", Sortable: true,
				Sort:   func(e Establishment) string { return e.CreatedAt.Format("2006-01-02T15:04:05") },
				Render: func(e Establishment) string { return e.CreatedAt.Format("02/01/2006") }},
		},
		Filters: []datatable.Filter[Establishment]{
			{Key: "status", Label: "Status", Type: datatable.FilterSelect,
				Options: []datatable.Option{
					{Value: "all", Label: "Todos"},
					{Value: "active", Label: "Ativo"},
					{Value: "inactive", Label: "Inativo"},
				},
				Value: func(e Establishment) string { return e.Status }},
			{Key: "city", Label: "Cidade", Type: datatable.FilterMultiSelect,
				Options: cityOptions(rows),
				Value:   func(e Establishment) string { return e.City }},
		},
		Metrics: []datatable.Metric[Establishment]{
			{ID: "total", Label: "Estabelecimentos", Value: func(items []Establishment) string { return fmt.Sprintf("%d", len(items)) }},
			{ID: "active", Label: "Ativos", Value: func(items []Establishment) string {
				count := 0
				for _, e := range items {
					if e.Active() {
						count++
					}
				}
				return fmt.Sprintf("%d", count)
			}},
		},
		Export: datatable.ExportConfig{
			Filename: "estabelecimentos",
			Formats:  []datatable.ExportFormat{datatable.ExportCSV, datatable.ExportJSON, datatable.ExportPrint},
		},
		SearchFields: []func(Establishment) string{
			func(e Establishment) string { return e.Name },
			func(e Establishment) string { return e.City },
		},
		DefaultPageSize: 10,
	}
}

func renderStatus(e Establishment) string {
	if e.Active() {
		return "Ativo"
	}
	return "Inativo"
}

func cityOptions(rows []Establishment) []datatable.Option {
	seen := map[string]struct{}{}
	for _, e := range rows {
		if e.City != "" {
			seen[e.City] = struct{}{}
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
