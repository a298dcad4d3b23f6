package model

import (
	"fmt"
	"math"
	"strings"
)

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"

	DefaultPageSize uint = 20
	MaxPageSize     uint = 2000
)

type (
	SortField struct {
		Field     string
		Direction SortDirection
	}

	// PageRequest is a zero-based page of a given size with an ordering.
	PageRequest struct {
		Number uint
		Size   uint
		Sort   []SortField
	}

	// Page is one slice of a result set plus the size of the whole set.
	Page[T any] struct {
		Content       []T
		Number        uint
		Size          uint
		TotalElements int64
	}

	// Query is what a repository executes: a predicate, an ordering and a
	// window. A zero size means no window.
	Query struct {
		spec    Specification
		sorting []SortField
		page    uint
		size    uint
	}

	QueryBuilder struct {
		spec    Specification
		sorting []SortField
		page    uint
		size    uint
	}
)

func (p PageRequest) Offset() uint { return p.Number * p.Size }

// Validate rejects pages whose offset does not fit a signed 64-bit integer,
// which is what the SQL OFFSET clause and page totals are computed in.
func (p PageRequest) Validate() error {
	if p.Size > 0 && p.Number > math.MaxInt64/p.Size {
		return &BindingError{
			Parameter: "page",
			Value:     fmt.Sprint(p.Number),
			Reason:    fmt.Sprintf("offset overflows for size %d", p.Size),
		}
	}

	return nil
}

func (p Page[T]) TotalPages() int64 {
	if p.Size == 0 {
		return 1
	}

	return (p.TotalElements + int64(p.Size) - 1) / int64(p.Size)
}

func (p Page[T]) HasNext() bool { return int64(p.Number+1) < p.TotalPages() }

func (p Page[T]) HasPrevious() bool { return p.Number > 0 }

func (q Query) Spec() Specification  { return q.spec }
func (q Query) Sorting() []SortField { return q.sorting }
func (q Query) Page() uint           { return q.page }
func (q Query) Size() uint           { return q.size }
func (q Query) Offset() uint         { return q.page * q.size }
func (q Query) HasSpec() bool        { return q.spec != nil }
func (q Query) HasSorting() bool     { return len(q.sorting) > 0 }
func (q Query) HasPagination() bool  { return q.size > 0 }

func NewQuery() *QueryBuilder {
	return &QueryBuilder{}
}

func (b *QueryBuilder) Where(spec Specification) *QueryBuilder {
	if spec == nil {
		return b
	}

	if b.spec == nil {
		b.spec = spec
	} else {
		b.spec = b.spec.Must(spec)
	}

	return b
}

func (b *QueryBuilder) OrderBy(sorting ...SortField) *QueryBuilder {
	b.sorting = append(b.sorting, sorting...)

	return b
}

func (b *QueryBuilder) Paginate(page, size uint) *QueryBuilder {
	b.page = page
	b.size = size

	return b
}

// Build appends an ascending id tiebreaker unless id is already ordered,
// so offset pages never overlap.
func (b *QueryBuilder) Build() Query {
	sorting := append([]SortField{}, b.sorting...)

	hasID := false
	for _, s := range sorting {
		if s.Field == "id" {
			hasID = true

			break
		}
	}

	if !hasID {
		sorting = append(sorting, SortField{Field: "id", Direction: SortAsc})
	}

	return Query{
		spec:    b.spec,
		sorting: sorting,
		page:    b.page,
		size:    b.size,
	}
}

// ParseSort reads Spring style sort parameters such as "nome,desc" or
// "dtNascimento". Each value may list several properties followed by an
// optional direction that applies to all of them.
func ParseSort(values []string) ([]SortField, error) {
	var sorting []SortField

	for _, value := range values {
		tokens := strings.Split(value, ",")

		direction := SortAsc

		if last := strings.ToUpper(strings.TrimSpace(tokens[len(tokens)-1])); last == string(SortAsc) || last == string(SortDesc) {
			direction = SortDirection(last)
			tokens = tokens[:len(tokens)-1]
		}

		for _, token := range tokens {
			name := strings.TrimSpace(token)
			if name == "" {
				continue
			}

			if _, ok := LookupPersonField(name); !ok {
				return nil, &BindingError{Parameter: "sort", Value: value, Reason: fmt.Sprintf("unknown property %q", name)}
			}

			sorting = append(sorting, SortField{Field: name, Direction: direction})
		}
	}

	return sorting, nil
}
