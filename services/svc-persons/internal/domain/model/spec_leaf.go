package model

type baseSpec struct {
	self Specification
}

func (b *baseSpec) setSelf(s Specification) { b.self = s }

func (b *baseSpec) Must(other Specification) Specification {
	return &mustSpec{specs: []Specification{b.self, other}}
}
func (b *baseSpec) Should(other Specification) Specification {
	return &shouldSpec{specs: []Specification{b.self, other}}
}
func (b *baseSpec) MustNot() Specification    { return &mustNotSpec{spec: b.self} }
func (b *baseSpec) IsComposite() bool         { return false }
func (b *baseSpec) Children() []Specification { return nil }

type leafSpec struct {
	baseSpec
	op    SpecOperator
	field string
	value any
}

func newLeaf(op SpecOperator, field string, value any) Specification {
	s := &leafSpec{op: op, field: field, value: value}
	s.setSelf(s)

	return s
}

func (s *leafSpec) Operator() SpecOperator { return s.op }
func (s *leafSpec) Field() string          { return s.field }
func (s *leafSpec) Value() any             { return s.value }

func Eq(field string, value any) Specification    { return newLeaf(SpecOpEq, field, value) }
func NotEq(field string, value any) Specification { return newLeaf(SpecOpNotEq, field, value) }
func Gt(field string, value any) Specification    { return newLeaf(SpecOpGt, field, value) }
func Gte(field string, value any) Specification   { return newLeaf(SpecOpGte, field, value) }
func Lt(field string, value any) Specification    { return newLeaf(SpecOpLt, field, value) }
func Lte(field string, value any) Specification   { return newLeaf(SpecOpLte, field, value) }
func IsNull(field string) Specification           { return newLeaf(SpecOpIsNull, field, nil) }
func NotNull(field string) Specification          { return newLeaf(SpecOpNotNull, field, nil) }

// In with no values matches nothing.
func In(field string, values ...any) Specification {
	return newLeaf(SpecOpIn, field, append([]any{}, values...))
}

// NotIn with no values matches every row whose field is not NULL.
func NotIn(field string, values ...any) Specification {
	return newLeaf(SpecOpNotIn, field, append([]any{}, values...))
}

// Contains is a case-sensitive substring match; the value is literal text.
func Contains(field, substring string) Specification {
	return newLeaf(SpecOpContains, field, substring)
}

func NotContains(field, substring string) Specification {
	return newLeaf(SpecOpNotContains, field, substring)
}

// Distinct is a structural modifier asking for duplicate rows to be
// suppressed. It never filters rows by itself.
func Distinct(enabled bool) Specification {
	return newLeaf(SpecOpDistinct, "", enabled)
}

type matchAllSpec struct{}

// MatchAll is the neutral predicate: AND-ing anything into it yields that thing.
func MatchAll() Specification { return matchAllSpec{} }

func (matchAllSpec) Must(other Specification) Specification {
	if other == nil {
		return matchAllSpec{}
	}

	return other
}
func (s matchAllSpec) Should(Specification) Specification { return s }
func (s matchAllSpec) MustNot() Specification             { return &mustNotSpec{spec: s} }
func (matchAllSpec) IsComposite() bool                    { return false }
func (matchAllSpec) Children() []Specification            { return nil }
func (matchAllSpec) Operator() SpecOperator               { return SpecOpMatchAll }
func (matchAllSpec) Field() string                        { return "" }
func (matchAllSpec) Value() any                           { return nil }
