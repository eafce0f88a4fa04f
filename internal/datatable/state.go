package datatable

// UIFlags groups the transient presentation toggles owned by one table
// instance. They never influence filtering.
type UIFlags struct {
	ModalOpen       bool
	DropdownOpen    bool
	DetailedMetrics bool
}

// State owns the interactive state of one table: the raw dataset, the derived
// filtered view, search/filter/sort values, pagination and selection. The
// filtered view is always a pure function of the data, the search term and
// the active filters.
type State[T any] struct {
	cfg      Config[T]
	data     []T
	filtered []T

	searchTerm string
	active     map[string]FilterValue
	sortKey    string
	sortAsc    bool

	page     int
	pageSize int

	selected map[string]struct{}

	// external pagination: the backend owns total/pages and the data slice
	// already is the current page.
	external      bool
	externalTotal int

	Flags UIFlags
}

// NewState builds a table state over an in-memory dataset.
func NewState[T any](cfg Config[T], data []T) *State[T] {
	s := &State[T]{
		cfg:      cfg,
		data:     data,
		active:   map[string]FilterValue{},
		selected: map[string]struct{}{},
		page:     1,
		pageSize: cfg.pageSize(),
	}
	s.apply()
	return s
}

// NewExternalState builds a table state for backend-driven pagination: items
// is the already-fetched page and total the backend row count. Search and
// filters are not evaluated locally; page changes must re-fetch.
func NewExternalState[T any](cfg Config[T], items []T, total, page, pageSize int) *State[T] {
	if pageSize <= 0 {
		pageSize = cfg.pageSize()
	}
	if page <= 0 {
		page = 1
	}
	s := &State[T]{
		cfg:           cfg,
		data:          items,
		filtered:      items,
		active:        map[string]FilterValue{},
		selected:      map[string]struct{}{},
		page:          page,
		pageSize:      pageSize,
		external:      true,
		externalTotal: total,
	}
	return s
}

// Search sets the search term and resets to the first page. Matching is a
// case-insensitive substring test OR-combined across the configured search
// fields.
func (s *State[T]) Search(term string) {
	s.searchTerm = term
	s.page = 1
	s.apply()
}

// SetFilter merges one filter value. A neutral value (empty, "all", nil
// bounds) removes the constraint. The current page resets to 1.
func (s *State[T]) SetFilter(key string, value FilterValue) {
	if value.neutral() {
		delete(s.active, key)
	} else {
		s.active[key] = value
	}
	s.page = 1
	s.apply()
}

// ClearFilters drops the search term and every active filter.
func (s *State[T]) ClearFilters() {
	s.searchTerm = ""
	s.active = map[string]FilterValue{}
	s.page = 1
	s.apply()
}

// SortBy orders the filtered view by a sortable column. Sorting an already
// sorted column with the same direction is a no-op on the result.
func (s *State[T]) SortBy(key string, ascending bool) {
	col, ok := s.cfg.column(key)
	if !ok || !col.Sortable {
		return
	}
	s.sortKey = key
	s.sortAsc = ascending
	s.apply()
}

// SelectItem includes or excludes one row id from the selection.
func (s *State[T]) SelectItem(id string, selected bool) {
	if selected {
		s.selected[id] = struct{}{}
		return
	}
	delete(s.selected, id)
}

// SelectAll toggles selection for the rows visible on the current page only,
// never for the whole filtered set.
func (s *State[T]) SelectAll(selected bool) {
	if s.cfg.ID == nil {
		return
	}
	for _, item := range s.PageItems() {
		s.SelectItem(s.cfg.ID(item), selected)
	}
}

// SetPage moves to the given page, clamped to the valid range.
func (s *State[T]) SetPage(page int) {
	s.page = page
	s.clampPage()
}

// SetPageSize changes the page size and resets to the first page.
func (s *State[T]) SetPageSize(size int) {
	if size <= 0 {
		size = s.cfg.pageSize()
	}
	s.pageSize = size
	s.page = 1
	s.clampPage()
}

// FilteredData returns the current filtered view.
func (s *State[T]) FilteredData() []T { return s.filtered }

// SearchTerm returns the active search term.
func (s *State[T]) SearchTerm() string { return s.searchTerm }

// ActiveFilters reports the non-neutral filter values by key.
func (s *State[T]) ActiveFilters() map[string]FilterValue {
	out := make(map[string]FilterValue, len(s.active))
	for k, v := range s.active {
		out[k] = v
	}
	return out
}

// HasActiveFilters reports whether any search or filter constraint applies.
func (s *State[T]) HasActiveFilters() bool {
	return s.searchTerm != "" || len(s.active) > 0
}

// Page returns the 1-indexed current page.
func (s *State[T]) Page() int { return s.page }

// PageSize returns the current page size.
func (s *State[T]) PageSize() int { return s.pageSize }

// Total returns the filtered row count (backend total in external mode).
func (s *State[T]) Total() int {
	if s.external {
		return s.externalTotal
	}
	return len(s.filtered)
}

// TotalPages returns the page count, never below 1.
func (s *State[T]) TotalPages() int {
	pages := (s.Total() + s.pageSize - 1) / s.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

// PageItems returns the rows of the current page.
func (s *State[T]) PageItems() []T {
	if s.external {
		return s.filtered
	}
	start := (s.page - 1) * s.pageSize
	if start >= len(s.filtered) {
		return nil
	}
	end := start + s.pageSize
	if end > len(s.filtered) {
		end = len(s.filtered)
	}
	return s.filtered[start:end]
}

// Selected reports whether a row id is part of the selection.
func (s *State[T]) Selected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// SelectedIDs returns the selected row ids.
func (s *State[T]) SelectedIDs() []string {
	out := make([]string, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	return out
}

// SelectedItems returns the selected rows from the filtered set.
func (s *State[T]) SelectedItems() []T {
	if s.cfg.ID == nil || len(s.selected) == 0 {
		return nil
	}
	out := make([]T, 0, len(s.selected))
	for _, item := range s.filtered {
		if s.Selected(s.cfg.ID(item)) {
			out = append(out, item)
		}
	}
	return out
}

// apply recomputes the filtered view and re-clamps the page. External mode
// never derives locally.
func (s *State[T]) apply() {
	if s.external {
		return
	}
	filtered := make([]T, 0, len(s.data))
	for _, item := range s.data {
		if !s.matchesSearch(item) {
			continue
		}
		if !s.matchesFilters(item) {
			continue
		}
		filtered = append(filtered, item)
	}
	s.filtered = filtered
	s.sortFiltered()
	s.clampPage()
}

func (s *State[T]) matchesSearch(item T) bool {
	if s.searchTerm == "" || len(s.cfg.SearchFields) == 0 {
		return true
	}
	for _, field := range s.cfg.SearchFields {
		if field == nil {
			continue
		}
		if containsFold(field(item), s.searchTerm) {
			return true
		}
	}
	return false
}

func (s *State[T]) matchesFilters(item T) bool {
	for key, value := range s.active {
		f, ok := s.cfg.filter(key)
		if !ok {
			continue
		}
		if !f.matches(item, value) {
			return false
		}
	}
	return true
}

func (s *State[T]) clampPage() {
	if s.page < 1 {
		s.page = 1
	}
	if max := s.TotalPages(); s.page > max {
		s.page = max
	}
}
