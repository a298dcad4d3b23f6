package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type (
	// FilterKind groups field types by the operators they accept.
	FilterKind string

	// FilterOperator is the suffix of a "field.operator=value" query parameter.
	FilterOperator string
)

const (
	KindRange   FilterKind = "range"
	KindString  FilterKind = "string"
	KindBoolean FilterKind = "boolean"

	OpEquals             FilterOperator = "equals"
	OpNotEquals          FilterOperator = "notEquals"
	OpIn                 FilterOperator = "in"
	OpNotIn              FilterOperator = "notIn"
	OpSpecified          FilterOperator = "specified"
	OpGreaterThan        FilterOperator = "greaterThan"
	OpGreaterThanOrEqual FilterOperator = "greaterThanOrEqual"
	OpLessThan           FilterOperator = "lessThan"
	OpLessThanOrEqual    FilterOperator = "lessThanOrEqual"
	OpContains           FilterOperator = "contains"
	OpDoesNotContain     FilterOperator = "doesNotContain"
)

var (
	commonOperators = []FilterOperator{OpEquals, OpNotEquals, OpIn, OpNotIn, OpSpecified}
	rangeOperators  = []FilterOperator{OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual}
	stringOperators = []FilterOperator{OpContains, OpDoesNotContain}
)

// Operators lists the operators valid for the kind, in rendering order.
func (k FilterKind) Operators() []FilterOperator {
	ops := append([]FilterOperator{}, commonOperators...)

	switch k {
	case KindRange:
		ops = append(ops, rangeOperators...)
	case KindString:
		ops = append(ops, stringOperators...)
	}

	return ops
}

func (k FilterKind) Supports(op FilterOperator) bool {
	for _, candidate := range k.Operators() {
		if candidate == op {
			return true
		}
	}

	return false
}

type (
	// Filter holds the operators shared by every kind. A nil slice means the
	// operator is absent, a non-nil empty slice is the empty set.
	Filter[T comparable] struct {
		Equals    *T
		NotEquals *T
		In        []T
		NotIn     []T
		Specified *bool
	}

	RangeFilter[T comparable] struct {
		Filter[T]
		GreaterThan        *T
		GreaterThanOrEqual *T
		LessThan           *T
		LessThanOrEqual    *T
	}

	StringFilter struct {
		Filter[string]
		Contains       *string
		DoesNotContain *string
	}

	BooleanFilter struct {
		Filter[bool]
	}
)

func (f *Filter[T]) SetEquals(v T)       { f.Equals = &v }
func (f *Filter[T]) SetNotEquals(v T)    { f.NotEquals = &v }
func (f *Filter[T]) SetIn(vs ...T)       { f.In = append(make([]T, 0, len(vs)), vs...) }
func (f *Filter[T]) SetNotIn(vs ...T)    { f.NotIn = append(make([]T, 0, len(vs)), vs...) }
func (f *Filter[T]) SetSpecified(b bool) { f.Specified = &b }

func (f *Filter[T]) IsEmpty() bool {
	return f == nil ||
		(f.Equals == nil && f.NotEquals == nil && f.In == nil && f.NotIn == nil && f.Specified == nil)
}

func (f *Filter[T]) Copy() *Filter[T] {
	if f == nil {
		return nil
	}

	c := f.copyValue()

	return &c
}

func (f *Filter[T]) Equal(other *Filter[T]) bool {
	if f == nil || other == nil {
		return f == other
	}

	return ptrEqual(f.Equals, other.Equals) &&
		ptrEqual(f.NotEquals, other.NotEquals) &&
		sliceEqual(f.In, other.In) &&
		sliceEqual(f.NotIn, other.NotIn) &&
		ptrEqual(f.Specified, other.Specified)
}

func (f *Filter[T]) String() string {
	if f == nil {
		return nilRendering
	}

	return render("Filter", f.parts())
}

func (f Filter[T]) copyValue() Filter[T] {
	return Filter[T]{
		Equals:    copyPtr(f.Equals),
		NotEquals: copyPtr(f.NotEquals),
		In:        copySlice(f.In),
		NotIn:     copySlice(f.NotIn),
		Specified: copyPtr(f.Specified),
	}
}

func (f *Filter[T]) parts() []string {
	if f == nil {
		return nil
	}

	var parts []string
	parts = appendPtr(parts, OpEquals, f.Equals)
	parts = appendPtr(parts, OpNotEquals, f.NotEquals)
	parts = appendSlice(parts, OpIn, f.In)
	parts = appendSlice(parts, OpNotIn, f.NotIn)
	parts = appendPtr(parts, OpSpecified, f.Specified)

	return parts
}

func (f *RangeFilter[T]) SetGreaterThan(v T)        { f.GreaterThan = &v }
func (f *RangeFilter[T]) SetGreaterThanOrEqual(v T) { f.GreaterThanOrEqual = &v }
func (f *RangeFilter[T]) SetLessThan(v T)           { f.LessThan = &v }
func (f *RangeFilter[T]) SetLessThanOrEqual(v T)    { f.LessThanOrEqual = &v }

func (f *RangeFilter[T]) IsEmpty() bool {
	return f == nil ||
		(f.Filter.IsEmpty() && f.GreaterThan == nil && f.GreaterThanOrEqual == nil &&
			f.LessThan == nil && f.LessThanOrEqual == nil)
}

func (f *RangeFilter[T]) Copy() *RangeFilter[T] {
	if f == nil {
		return nil
	}

	return &RangeFilter[T]{
		Filter:             f.Filter.copyValue(),
		GreaterThan:        copyPtr(f.GreaterThan),
		GreaterThanOrEqual: copyPtr(f.GreaterThanOrEqual),
		LessThan:           copyPtr(f.LessThan),
		LessThanOrEqual:    copyPtr(f.LessThanOrEqual),
	}
}

func (f *RangeFilter[T]) Equal(other *RangeFilter[T]) bool {
	if f == nil || other == nil {
		return f == other
	}

	return f.Filter.Equal(&other.Filter) &&
		ptrEqual(f.GreaterThan, other.GreaterThan) &&
		ptrEqual(f.GreaterThanOrEqual, other.GreaterThanOrEqual) &&
		ptrEqual(f.LessThan, other.LessThan) &&
		ptrEqual(f.LessThanOrEqual, other.LessThanOrEqual)
}

func (f *RangeFilter[T]) String() string {
	if f == nil {
		return nilRendering
	}

	parts := f.Filter.parts()
	parts = appendPtr(parts, OpGreaterThan, f.GreaterThan)
	parts = appendPtr(parts, OpGreaterThanOrEqual, f.GreaterThanOrEqual)
	parts = appendPtr(parts, OpLessThan, f.LessThan)
	parts = appendPtr(parts, OpLessThanOrEqual, f.LessThanOrEqual)

	return render("RangeFilter", parts)
}

func (f *StringFilter) SetContains(s string)       { f.Contains = &s }
func (f *StringFilter) SetDoesNotContain(s string) { f.DoesNotContain = &s }

func (f *StringFilter) IsEmpty() bool {
	return f == nil || (f.Filter.IsEmpty() && f.Contains == nil && f.DoesNotContain == nil)
}

func (f *StringFilter) Copy() *StringFilter {
	if f == nil {
		return nil
	}

	return &StringFilter{
		Filter:         f.Filter.copyValue(),
		Contains:       copyPtr(f.Contains),
		DoesNotContain: copyPtr(f.DoesNotContain),
	}
}

func (f *StringFilter) Equal(other *StringFilter) bool {
	if f == nil || other == nil {
		return f == other
	}

	return f.Filter.Equal(&other.Filter) &&
		ptrEqual(f.Contains, other.Contains) &&
		ptrEqual(f.DoesNotContain, other.DoesNotContain)
}

func (f *StringFilter) String() string {
	if f == nil {
		return nilRendering
	}

	parts := f.Filter.parts()
	parts = appendPtr(parts, OpContains, f.Contains)
	parts = appendPtr(parts, OpDoesNotContain, f.DoesNotContain)

	return render("StringFilter", parts)
}

func (f *BooleanFilter) IsEmpty() bool {
	return f == nil || f.Filter.IsEmpty()
}

func (f *BooleanFilter) Copy() *BooleanFilter {
	if f == nil {
		return nil
	}

	return &BooleanFilter{Filter: f.Filter.copyValue()}
}

func (f *BooleanFilter) Equal(other *BooleanFilter) bool {
	if f == nil || other == nil {
		return f == other
	}

	return f.Filter.Equal(&other.Filter)
}

func (f *BooleanFilter) String() string {
	if f == nil {
		return nilRendering
	}

	return render("BooleanFilter", f.Filter.parts())
}

// nilRendering tells an absent filter apart from an empty one.
const nilRendering = "<nil>"

func render(name string, parts []string) string {
	return name + "{" + strings.Join(parts, ", ") + "}"
}

func appendPtr[T any](parts []string, op FilterOperator, v *T) []string {
	if v == nil {
		return parts
	}

	return append(parts, string(op)+"="+formatValue(*v))
}

func appendSlice[T any](parts []string, op FilterOperator, vs []T) []string {
	if vs == nil {
		return parts
	}

	items := make([]string, len(vs))
	for i, v := range vs {
		items[i] = formatValue(v)
	}

	return append(parts, string(op)+"=["+strings.Join(items, ", ")+"]")
}

func formatValue(v any) string {
	switch value := v.(type) {
	case time.Time:
		return value.Format(time.RFC3339Nano)
	case string:
		return strconv.Quote(value)
	default:
		return fmt.Sprint(value)
	}
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}

	v := *p

	return &v
}

func copySlice[T any](s []T) []T {
	if s == nil {
		return nil
	}

	return append(make([]T, 0, len(s)), s...)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

func sliceEqual[T comparable](a, b []T) bool {
	if (a == nil) != (b == nil) || len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
