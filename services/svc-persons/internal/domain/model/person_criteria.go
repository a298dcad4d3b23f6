package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// PersonCriteria is the set of optional filters a caller may apply when
// listing or counting persons. The zero value is fully unconstrained.
type PersonCriteria struct {
	id               *RangeFilter[int64]
	nome             *StringFilter
	dtNascimento     *RangeFilter[time.Time]
	cpf              *StringFilter
	email            *StringFilter
	createdBy        *StringFilter
	createdDate      *RangeFilter[time.Time]
	lastModifiedBy   *StringFilter
	lastModifiedDate *RangeFilter[time.Time]
	distinct         *bool
}

func NewPersonCriteria() *PersonCriteria {
	return &PersonCriteria{}
}

func (c *PersonCriteria) ID() *RangeFilter[int64]                   { return c.id }
func (c *PersonCriteria) Nome() *StringFilter                       { return c.nome }
func (c *PersonCriteria) DtNascimento() *RangeFilter[time.Time]     { return c.dtNascimento }
func (c *PersonCriteria) Cpf() *StringFilter                        { return c.cpf }
func (c *PersonCriteria) Email() *StringFilter                      { return c.email }
func (c *PersonCriteria) CreatedBy() *StringFilter                  { return c.createdBy }
func (c *PersonCriteria) CreatedDate() *RangeFilter[time.Time]      { return c.createdDate }
func (c *PersonCriteria) LastModifiedBy() *StringFilter             { return c.lastModifiedBy }
func (c *PersonCriteria) LastModifiedDate() *RangeFilter[time.Time] { return c.lastModifiedDate }

// Distinct returns nil when the flag was never set; false is a value.
func (c *PersonCriteria) Distinct() *bool { return c.distinct }

func (c *PersonCriteria) SetID(f *RangeFilter[int64])                   { c.id = f }
func (c *PersonCriteria) SetNome(f *StringFilter)                       { c.nome = f }
func (c *PersonCriteria) SetDtNascimento(f *RangeFilter[time.Time])     { c.dtNascimento = f }
func (c *PersonCriteria) SetCpf(f *StringFilter)                        { c.cpf = f }
func (c *PersonCriteria) SetEmail(f *StringFilter)                      { c.email = f }
func (c *PersonCriteria) SetCreatedBy(f *StringFilter)                  { c.createdBy = f }
func (c *PersonCriteria) SetCreatedDate(f *RangeFilter[time.Time])      { c.createdDate = f }
func (c *PersonCriteria) SetLastModifiedBy(f *StringFilter)             { c.lastModifiedBy = f }
func (c *PersonCriteria) SetLastModifiedDate(f *RangeFilter[time.Time]) { c.lastModifiedDate = f }
func (c *PersonCriteria) SetDistinct(d bool)                            { c.distinct = &d }

// The Ensure accessors allocate the filter on first use so callers can set
// operators in place.

func (c *PersonCriteria) EnsureID() *RangeFilter[int64] {
	return ensure(&c.id)
}

func (c *PersonCriteria) EnsureNome() *StringFilter {
	return ensure(&c.nome)
}

func (c *PersonCriteria) EnsureDtNascimento() *RangeFilter[time.Time] {
	return ensure(&c.dtNascimento)
}

func (c *PersonCriteria) EnsureCpf() *StringFilter {
	return ensure(&c.cpf)
}

func (c *PersonCriteria) EnsureEmail() *StringFilter {
	return ensure(&c.email)
}

func (c *PersonCriteria) EnsureCreatedBy() *StringFilter {
	return ensure(&c.createdBy)
}

func (c *PersonCriteria) EnsureCreatedDate() *RangeFilter[time.Time] {
	return ensure(&c.createdDate)
}

func (c *PersonCriteria) EnsureLastModifiedBy() *StringFilter {
	return ensure(&c.lastModifiedBy)
}

func (c *PersonCriteria) EnsureLastModifiedDate() *RangeFilter[time.Time] {
	return ensure(&c.lastModifiedDate)
}

// Copy returns a deep clone sharing no filter with c.
func (c *PersonCriteria) Copy() *PersonCriteria {
	if c == nil {
		return nil
	}

	return &PersonCriteria{
		id:               c.id.Copy(),
		nome:             c.nome.Copy(),
		dtNascimento:     c.dtNascimento.Copy(),
		cpf:              c.cpf.Copy(),
		email:            c.email.Copy(),
		createdBy:        c.createdBy.Copy(),
		createdDate:      c.createdDate.Copy(),
		lastModifiedBy:   c.lastModifiedBy.Copy(),
		lastModifiedDate: c.lastModifiedDate.Copy(),
		distinct:         copyPtr(c.distinct),
	}
}

func (c *PersonCriteria) Equal(other *PersonCriteria) bool {
	if c == nil || other == nil {
		return c == other
	}

	return c.id.Equal(other.id) &&
		c.nome.Equal(other.nome) &&
		c.dtNascimento.Equal(other.dtNascimento) &&
		c.cpf.Equal(other.cpf) &&
		c.email.Equal(other.email) &&
		c.createdBy.Equal(other.createdBy) &&
		c.createdDate.Equal(other.createdDate) &&
		c.lastModifiedBy.Equal(other.lastModifiedBy) &&
		c.lastModifiedDate.Equal(other.lastModifiedDate) &&
		ptrEqual(c.distinct, other.distinct)
}

// String renders the set fields in declaration order, e.g.
// "PersonCriteria{nome=StringFilter{contains=\"An\"}, distinct=true}".
// String values are quoted so distinct criteria never render alike.
func (c *PersonCriteria) String() string {
	if c == nil {
		return nilRendering
	}

	var parts []string

	for _, field := range personFields {
		if s, ok := field.render(c); ok {
			parts = append(parts, field.Name+"="+s)
		}
	}

	if c.distinct != nil {
		parts = append(parts, "distinct="+strconv.FormatBool(*c.distinct))
	}

	return "PersonCriteria{" + strings.Join(parts, ", ") + "}"
}

// Hash is a structural hash consistent with Equal.
func (c *PersonCriteria) Hash() uint64 {
	return xxhash.Sum64String(c.String())
}

func ensure[F any](slot **F) *F {
	if *slot == nil {
		*slot = new(F)
	}

	return *slot
}
