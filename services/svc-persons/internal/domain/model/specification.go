package model

type SpecOperator string

const (
	SpecOpEq          SpecOperator = "eq"
	SpecOpNotEq       SpecOperator = "neq"
	SpecOpIn          SpecOperator = "in"
	SpecOpNotIn       SpecOperator = "not_in"
	SpecOpIsNull      SpecOperator = "is_null"
	SpecOpNotNull     SpecOperator = "not_null"
	SpecOpGt          SpecOperator = "gt"
	SpecOpGte         SpecOperator = "gte"
	SpecOpLt          SpecOperator = "lt"
	SpecOpLte         SpecOperator = "lte"
	SpecOpContains    SpecOperator = "contains"
	SpecOpNotContains SpecOperator = "not_contains"
	SpecOpDistinct    SpecOperator = "distinct"
	SpecOpMatchAll    SpecOperator = "match_all"
	SpecOpMust        SpecOperator = "must"
	SpecOpShould      SpecOperator = "should"
	SpecOpMustNot     SpecOperator = "must_not"
)

// Specification is a predicate tree built per request and handed to a
// repository, which decides how to evaluate it.
type Specification interface {
	Must(other Specification) Specification
	Should(other Specification) Specification
	MustNot() Specification
	IsComposite() bool
	Children() []Specification
	Operator() SpecOperator
	Field() string
	Value() any
}

// IsDistinct reports whether the conjunctive top level of spec carries a
// Distinct(true) modifier. A later Distinct(false) does not undo it.
func IsDistinct(spec Specification) bool {
	if spec == nil {
		return false
	}

	if spec.Operator() == SpecOpDistinct {
		enabled, _ := spec.Value().(bool)

		return enabled
	}

	if spec.Operator() != SpecOpMust {
		return false
	}

	for _, child := range spec.Children() {
		if IsDistinct(child) {
			return true
		}
	}

	return false
}
