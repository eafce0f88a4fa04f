package datatable

// The view model is the only contract between the engine and the templates:
// both the desktop table and the mobile card list render from the same
// TableView, so the two breakpoints can never diverge on business logic.

// ColumnView is one rendered column header.
type ColumnView struct {
	Key      string
	Label    string
	Width    string
	Sortable bool
}

// CellView is one rendered cell.
type CellView struct {
	Key   string
	Label string
	Value string
}

// ActionView is one row action resolved for a concrete row.
type ActionView struct {
	ID    string
	Label string
	Icon  string
	Href  string
}

// RowView is one rendered row with its resolved actions and selection state.
type RowView struct {
	ID       string
	Cells    []CellView
	Actions  []ActionView
	Selected bool
}

// MetricView is one KPI card.
type MetricView struct {
	ID       string
	Label    string
	Value    string
	Detailed bool
}

// FilterOptionView is one choice in a filter control.
type FilterOptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FilterView is one filter control with its current value.
type FilterView struct {
	Key     string
	Label   string
	Type    FilterType
	Options []FilterOptionView
	Active  bool
}

// PaginationView carries everything the pagination partial needs.
type PaginationView struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	From       int
	To         int
	PageSizes  []int
}

// EmptyView describes the zero-row panel. ClearFilters is offered only when
// a search or filter constraint produced the empty result.
type EmptyView struct {
	Show         bool
	ClearFilters bool
}

// ExportView lists the enabled export formats.
type ExportView struct {
	Filename string
	Formats  []ExportFormat
}

// TableView is the complete render model of one table page.
type TableView struct {
	Entity          string
	Columns         []ColumnView
	Rows            []RowView
	Metrics         []MetricView
	Filters         []FilterView
	SearchTerm      string
	Pagination      PaginationView
	Empty           EmptyView
	Export          ExportView
	Loading         bool
	SkeletonColumns int
	SelectedCount   int
	AllPageSelected bool
	Flags           UIFlags
}

// BuildView projects config plus state into the render model. Loading short
// circuits rows into a skeleton with the configured column count.
func BuildView[T any](s *State[T], loading bool) TableView {
	cfg := s.cfg
	view := TableView{
		Entity:          cfg.Entity,
		SearchTerm:      s.SearchTerm(),
		Loading:         loading,
		SkeletonColumns: len(cfg.Columns),
		SelectedCount:   len(s.selected),
		Flags:           s.Flags,
		Export:          ExportView{Filename: cfg.Export.Filename, Formats: cfg.Export.Formats},
	}

	for _, col := range cfg.Columns {
		view.Columns = append(view.Columns, ColumnView{Key: col.Key, Label: col.Label, Width: col.Width, Sortable: col.Sortable})
	}

	for _, f := range cfg.Filters {
		view.Filters = append(view.Filters, buildFilterView(f, s.active[f.Key]))
	}

	if loading {
		return view
	}

	items := s.PageItems()
	filtered := s.FilteredData()
	for _, m := range cfg.Metrics {
		if m.Value == nil {
			continue
		}
		if m.Detailed && !s.Flags.DetailedMetrics {
			continue
		}
		view.Metrics = append(view.Metrics, MetricView{ID: m.ID, Label: m.Label, Value: m.Value(filtered), Detailed: m.Detailed})
	}

	allSelected := len(items) > 0
	for _, item := range items {
		row := RowView{}
		if cfg.ID != nil {
			row.ID = cfg.ID(item)
			row.Selected = s.Selected(row.ID)
		}
		if !row.Selected {
			allSelected = false
		}
		for _, col := range cfg.Columns {
			row.Cells = append(row.Cells, CellView{Key: col.Key, Label: col.Label, Value: renderCell(col, item)})
		}
		for _, action := range cfg.Actions {
			if action.Visible != nil && !action.Visible(item) {
				continue
			}
			av := ActionView{ID: action.ID, Label: action.Label, Icon: action.Icon}
			if action.Href != nil {
				av.Href = action.Href(item)
			}
			row.Actions = append(row.Actions, av)
		}
		view.Rows = append(view.Rows, row)
	}
	view.AllPageSelected = allSelected

	view.Pagination = buildPagination(s)
	view.Empty = EmptyView{Show: s.Total() == 0, ClearFilters: s.Total() == 0 && s.HasActiveFilters()}
	return view
}

func renderCell[T any](col Column[T], item T) string {
	if col.Render != nil {
		return col.Render(item)
	}
	if col.Sort != nil {
		return col.Sort(item)
	}
	return ""
}

func buildFilterView[T any](f Filter[T], active FilterValue) FilterView {
	fv := FilterView{Key: f.Key, Label: f.Label, Type: f.Type, Active: !active.neutral()}
	for _, opt := range f.Options {
		selected := false
		switch active.Kind {
		case ValueScalar:
			selected = opt.Value == active.Scalar
		case ValueList:
			for _, v := range active.List {
				if v == opt.Value {
					selected = true
					break
				}
			}
		}
		fv.Options = append(fv.Options, FilterOptionView{Value: opt.Value, Label: opt.Label, Selected: selected})
	}
	return fv
}

func buildPagination[T any](s *State[T]) PaginationView {
	total := s.Total()
	pv := PaginationView{
		Page:       s.Page(),
		PageSize:   s.PageSize(),
		Total:      total,
		TotalPages: s.TotalPages(),
		PageSizes:  s.cfg.PageSizes,
	}
	if len(pv.PageSizes) == 0 {
		pv.PageSizes = DefaultPageSizes
	}
	pv.HasPrev = pv.Page > 1
	pv.HasNext = pv.Page < pv.TotalPages
	if total > 0 {
		pv.From = (pv.Page-1)*pv.PageSize + 1
		pv.To = pv.From + len(s.PageItems()) - 1
	}
	return pv
}
