package users

import (
	"fmt"
	"time"

	"github.com/tucano-platform/tucano-admin/internal/datatable"
)

// TableConfig builds the datatable configuration for the user listing.
func TableConfig() datatable.Config[User] {
	return datatable.Config[User]{
		Entity: "users",
		ID:     func(u User) string { return u.ID },
		Columns: []datatable.Column[User]{
			{Key: "name", Label: "Nome", Sortable: true, Sort: func(u User) string { return u.Name }},
			{Key: "email", Label: "E-mail", Sortable: true, Sort: func(u User) string { return u.Email }},
			{Key: "cpf", Label: "CPF", Render: func(u User) string { return u.CPF }},
			{Key: "role", Label: "Perfil", Sortable: true, Sort: func(u User) string { return u.Role }},
			{Key: "status", Label: "Status", Render: renderStatus},
			{Key: "created_at", Label: "Cadastro", Sortable: true,
				Sort:   func(u User) string { return u.CreatedAt.Format("2006-01-02T15:04:05") },
				Render: func(u User) string { return u.CreatedAt.Format("02/01/2006") }},
		},
		Filters: []datatable.Filter[User]{
			{Key: "status", Label: "Status", Type: datatable.FilterSelect,
				Options: []datatable.Option{
					{Value: "all", Label: "Todos"},
					{Value: "active", Label: "Ativo"},
					{Value: "inactive", Label: "Inativo"},
				},
				Value: func(u User) string { return u.Status() }},
			{Key: "role", Label: "Perfil", Type: datatable.FilterMultiSelect,
				Options: []datatable.Option{
					{Value: "admin", Label: "Administrador"},
					{Value: "manager", Label: "Gestor"},
					{Value: "operator", Label: "Operador"},
				},
				Value: func(u User) string { return u.Role }},
			{Key: "created_at", Label: "Cadastro", Type: datatable.FilterDateRange,
				Date: func(u User) time.Time { return u.CreatedAt }},
		},
		Metrics: []datatable.Metric[User]{
			{ID: "total", Label: "Usuários", Value: func(items []User) string { return fmt.Sprintf("%d", len(items)) }},
			{ID: "active", Label: "Ativos", Value: func(items []User) string {
				count := 0
				for _, u := range items {
					if u.Active {
						count++
					}
				}
				return fmt.Sprintf("%d", count)
			}},
		},
		Actions: []datatable.Action[User]{
			{ID: "view", Label: "Detalhes", Icon: "eye", Href: func(u User) string { return "/users/" + u.ID }},
			{ID: "audit", Label: "Auditoria", Icon: "list", Href: func(u User) string { return "/users/" + u.ID + "#audit" }},
		},
		Export: datatable.ExportConfig{
			Filename: "usuarios",
			Formats:  []datatable.ExportFormat{datatable.ExportCSV, datatable.ExportJSON, datatable.ExportPrint},
		},
		SearchFields: []func(User) string{
			func(u User) string { return u.Name },
			func(u User) string { return u.Email },
		},
		DefaultPageSize: 10,
	}
}

func renderStatus(u User) string {
	if u.Active {
		return "Ativo"
	}
	return "Inativo"
}
