package datatable

import (
	"strings"
	"time"
)

// ValueKind discriminates the shape of a FilterValue.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueScalar
	ValueList
	ValueNumberRange
	ValueDateRange
)

// FilterValue is the tagged union of filter value shapes. Select/search
// filters carry a scalar, multiselect a list, number/range a {min,max} pair
// and date/daterange a {start,end} pair. Absent range bounds impose no
// constraint on that side.
type FilterValue struct {
	Kind   ValueKind
	Scalar string
	List   []string
	Min    *float64
	Max    *float64
	Start  *time.Time
	End    *time.Time
}

// Scalar builds a scalar filter value.
func Scalar(v string) FilterValue {
	return FilterValue{Kind: ValueScalar, Scalar: v}
}

// List builds a multiselect filter value.
func List(values ...string) FilterValue {
	return FilterValue{Kind: ValueList, List: values}
}

// NumberRange builds an inclusive numeric range value. Nil bounds are open.
func NumberRange(min, max *float64) FilterValue {
	return FilterValue{Kind: ValueNumberRange, Min: min, Max: max}
}

// DateRange builds an inclusive date range value. Nil bounds are open.
func DateRange(start, end *time.Time) FilterValue {
	return FilterValue{Kind: ValueDateRange, Start: start, End: end}
}

// neutral reports whether the value filters nothing: the "all" sentinel, an
// empty scalar, an empty list or a fully open range.
func (v FilterValue) neutral() bool {
	switch v.Kind {
	case ValueNone:
		return true
	case ValueScalar:
		return v.Scalar == "" || strings.EqualFold(v.Scalar, "all")
	case ValueList:
		return len(v.List) == 0
	case ValueNumberRange:
		return v.Min == nil && v.Max == nil
	case ValueDateRange:
		return v.Start == nil && v.End == nil
	}
	return true
}

// matches evaluates one filter descriptor against one row.
func (f Filter[T]) matches(item T, value FilterValue) bool {
	if value.neutral() {
		return true
	}
	switch f.Type {
	case FilterSelect:
		if f.Value == nil {
			return true
		}
		return strings.EqualFold(f.Value(item), value.Scalar)
	case FilterMultiSelect:
		if f.Value == nil {
			return true
		}
		got := f.Value(item)
		for _, want := range value.List {
			if strings.EqualFold(got, want) {
				return true
			}
		}
		return false
	case FilterSearch:
		if f.Value == nil {
			return true
		}
		return containsFold(f.Value(item), value.Scalar)
	case FilterNumber:
		if f.Number == nil {
			return true
		}
		got := f.Number(item)
		if value.Min != nil {
			return got == *value.Min
		}
		return true
	case FilterRange:
		if f.Number == nil {
			return true
		}
		got := f.Number(item)
		if value.Min != nil && got < *value.Min {
			return false
		}
		if value.Max != nil && got > *value.Max {
			return false
		}
		return true
	case FilterDate:
		if f.Date == nil || value.Start == nil {
			return true
		}
		y1, m1, d1 := f.Date(item).Date()
		y2, m2, d2 := value.Start.Date()
		return y1 == y2 && m1 == m2 && d1 == d2
	case FilterDateRange:
		if f.Date == nil {
			return true
		}
		got := f.Date(item)
		if value.Start != nil && got.Before(*value.Start) {
			return false
		}
		if value.End != nil && got.After(*value.End) {
			return false
		}
		return true
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
