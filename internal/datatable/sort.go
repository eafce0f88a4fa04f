package datatable

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// collator orders strings with Brazilian Portuguese collation so accented
// names sort next to their unaccented neighbours.
var collator = collate.New(language.BrazilianPortuguese, collate.IgnoreCase)

func (s *State[T]) sortFiltered() {
	if s.sortKey == "" {
		return
	}
	col, ok := s.cfg.column(s.sortKey)
	if !ok {
		return
	}
	key := col.Sort
	if key == nil {
		key = col.Render
	}
	if key == nil {
		return
	}
	sort.SliceStable(s.filtered, func(i, j int) bool {
		cmp := collator.CompareString(key(s.filtered[i]), key(s.filtered[j]))
		if s.sortAsc {
			return cmp < 0
		}
		return cmp > 0
	})
}
