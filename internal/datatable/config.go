// Package datatable implements a config-driven listing engine: declarative
// table configuration, search/filter/pagination state, view-model building
// and export, shared by every entity list page.
package datatable

import "time"

// FilterType identifies the UI control backing a filter descriptor.
type FilterType string

const (
	FilterSelect      FilterType = "select"
	FilterMultiSelect FilterType = "multiselect"
	FilterSearch      FilterType = "search"
	FilterDate        FilterType = "date"
	FilterDateRange   FilterType = "daterange"
	FilterNumber      FilterType = "number"
	FilterRange       FilterType = "range"
)

// ExportFormat identifies a supported export serialization.
type ExportFormat string

const (
	ExportCSV   ExportFormat = "csv"
	ExportJSON  ExportFormat = "json"
	ExportPrint ExportFormat = "print"
)

// Option is one selectable value of a select/multiselect filter.
type Option struct {
	Value string
	Label string
}

// Column describes one table column. Render produces the display value for a
// row; when nil the renderer falls back to Sort, then to the empty string.
type Column[T any] struct {
	Key      string
	Label    string
	Width    string
	Sortable bool
	Render   func(item T) string
	// Sort extracts the raw comparison value. Required for sortable columns.
	Sort func(item T) string
}

// Filter declares one filterable attribute. Exactly one accessor is consulted
// depending on Type: Value for select/multiselect/search, Number for
// number/range, Date for date/daterange.
type Filter[T any] struct {
	Key     string
	Label   string
	Type    FilterType
	Options []Option
	Value   func(item T) string
	Number  func(item T) float64
	Date    func(item T) time.Time
}

// Metric describes one KPI card computed over the filtered dataset.
type Metric[T any] struct {
	ID       string
	Label    string
	Detailed bool
	Value    func(items []T) string
}

// Action describes one row-level action. Visible gates the action per row;
// a nil predicate means always visible.
type Action[T any] struct {
	ID      string
	Label   string
	Icon    string
	Visible func(item T) bool
	Href    func(item T) string
}

// ExportConfig bounds the export surface of one table.
type ExportConfig struct {
	Filename string
	Formats  []ExportFormat
}

// Config is the static, serializable description of one table. It carries
// pure data plus closures and holds no mutable state, so a page handler can
// rebuild it on every request.
type Config[T any] struct {
	Entity          string
	ID              func(item T) string
	Columns         []Column[T]
	Filters         []Filter[T]
	Metrics         []Metric[T]
	Actions         []Action[T]
	Export          ExportConfig
	SearchFields    []func(item T) string
	DefaultPageSize int
	PageSizes       []int
}

// DefaultPageSizes is offered when a config does not override the choices.
var DefaultPageSizes = []int{10, 20, 50}

func (c Config[T]) pageSize() int {
	if c.DefaultPageSize > 0 {
		return c.DefaultPageSize
	}
	return 10
}

func (c Config[T]) column(key string) (Column[T], bool) {
	for _, col := range c.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

func (c Config[T]) filter(key string) (Filter[T], bool) {
	for _, f := range c.Filters {
		if f.Key == key {
			return f, true
		}
	}
	return Filter[T]{}, false
}

func (c Config[T]) exportEnabled(format ExportFormat) bool {
	for _, f := range c.Export.Formats {
		if f == format {
			return true
		}
	}
	return false
}
