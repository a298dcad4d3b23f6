package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// PersonField binds one searchable person attribute to its filter kind.
// The table is closed: the driver iterates it instead of inspecting types.
type PersonField struct {
	Name string
	Kind FilterKind

	spec   func(c *PersonCriteria) Specification
	bind   func(c *PersonCriteria, op FilterOperator, raw []string) error
	render func(c *PersonCriteria) (string, bool)
}

var personFields = []PersonField{
	rangeField("id", (*PersonCriteria).ID, (*PersonCriteria).EnsureID, parseID),
	stringField("nome", (*PersonCriteria).Nome, (*PersonCriteria).EnsureNome),
	rangeField("dtNascimento", (*PersonCriteria).DtNascimento, (*PersonCriteria).EnsureDtNascimento, parseDate),
	stringField("cpf", (*PersonCriteria).Cpf, (*PersonCriteria).EnsureCpf),
	stringField("email", (*PersonCriteria).Email, (*PersonCriteria).EnsureEmail),
	stringField("createdBy", (*PersonCriteria).CreatedBy, (*PersonCriteria).EnsureCreatedBy),
	rangeField("createdDate", (*PersonCriteria).CreatedDate, (*PersonCriteria).EnsureCreatedDate, parseInstant),
	stringField("lastModifiedBy", (*PersonCriteria).LastModifiedBy, (*PersonCriteria).EnsureLastModifiedBy),
	rangeField("lastModifiedDate", (*PersonCriteria).LastModifiedDate, (*PersonCriteria).EnsureLastModifiedDate, parseInstant),
}

// PersonFields returns the searchable fields in declaration order.
func PersonFields() []PersonField {
	return append([]PersonField{}, personFields...)
}

func LookupPersonField(name string) (PersonField, bool) {
	for _, field := range personFields {
		if field.Name == name {
			return field, true
		}
	}

	return PersonField{}, false
}

// Specification returns the predicate for this field, nil when unconstrained.
func (f PersonField) Specification(c *PersonCriteria) Specification {
	if c == nil {
		return nil
	}

	return f.spec(c)
}

// Bind parses raw request values into the operator slot of this field.
func (f PersonField) Bind(c *PersonCriteria, op FilterOperator, raw []string) error {
	if !f.Kind.Supports(op) {
		return &BindingError{
			Parameter: f.Name + "." + string(op),
			Reason:    fmt.Sprintf("operator %q is not supported for %s field %q", op, f.Kind, f.Name),
		}
	}

	return f.bind(c, op, raw)
}

func rangeField[T comparable](
	name string,
	get func(*PersonCriteria) *RangeFilter[T],
	ensure func(*PersonCriteria) *RangeFilter[T],
	parse func(string) (T, error),
) PersonField {
	return PersonField{
		Name: name,
		Kind: KindRange,
		spec: func(c *PersonCriteria) Specification {
			return BuildRangeSpecification(get(c), name)
		},
		bind: func(c *PersonCriteria, op FilterOperator, raw []string) error {
			f := ensure(c)

			if handled, err := bindFilter(&f.Filter, name, op, raw, parse); handled {
				return err
			}

			v, err := parseScalar(name, op, raw, parse)
			if err != nil {
				return err
			}

			switch op {
			case OpGreaterThan:
				f.SetGreaterThan(v)
			case OpGreaterThanOrEqual:
				f.SetGreaterThanOrEqual(v)
			case OpLessThan:
				f.SetLessThan(v)
			case OpLessThanOrEqual:
				f.SetLessThanOrEqual(v)
			}

			return nil
		},
		render: func(c *PersonCriteria) (string, bool) {
			f := get(c)

			return f.String(), f != nil
		},
	}
}

func stringField(
	name string,
	get func(*PersonCriteria) *StringFilter,
	ensure func(*PersonCriteria) *StringFilter,
) PersonField {
	return PersonField{
		Name: name,
		Kind: KindString,
		spec: func(c *PersonCriteria) Specification {
			return BuildStringSpecification(get(c), name)
		},
		bind: func(c *PersonCriteria, op FilterOperator, raw []string) error {
			f := ensure(c)

			if handled, err := bindFilter(&f.Filter, name, op, raw, parseString); handled {
				return err
			}

			v, err := parseScalar(name, op, raw, parseString)
			if err != nil {
				return err
			}

			switch op {
			case OpContains:
				f.SetContains(v)
			case OpDoesNotContain:
				f.SetDoesNotContain(v)
			}

			return nil
		},
		render: func(c *PersonCriteria) (string, bool) {
			f := get(c)

			return f.String(), f != nil
		},
	}
}

func bindFilter[T comparable](
	f *Filter[T],
	name string,
	op FilterOperator,
	raw []string,
	parse func(string) (T, error),
) (bool, error) {
	switch op {
	case OpEquals, OpNotEquals:
		v, err := parseScalar(name, op, raw, parse)
		if err != nil {
			return true, err
		}

		if op == OpEquals {
			f.SetEquals(v)
		} else {
			f.SetNotEquals(v)
		}

		return true, nil
	case OpIn, OpNotIn:
		values, err := parseList(name, op, raw, parse)
		if err != nil {
			return true, err
		}

		if op == OpIn {
			f.SetIn(values...)
		} else {
			f.SetNotIn(values...)
		}

		return true, nil
	case OpSpecified:
		v, err := parseScalar(name, op, raw, parseSpecified)
		if err != nil {
			return true, err
		}

		f.SetSpecified(v)

		return true, nil
	}

	return false, nil
}

func parseScalar[T any](name string, op FilterOperator, raw []string, parse func(string) (T, error)) (T, error) {
	var zero T

	if len(raw) != 1 {
		return zero, &BindingError{
			Parameter: name + "." + string(op),
			Value:     strings.Join(raw, ","),
			Reason:    "expected exactly one value",
		}
	}

	v, err := parse(raw[0])
	if err != nil {
		return zero, &BindingError{Parameter: name + "." + string(op), Value: raw[0], Reason: err.Error()}
	}

	return v, nil
}

// parseList joins repeated parameters and splits them on commas. Blank items
// are dropped, so "in=" binds the empty set.
func parseList[T any](name string, op FilterOperator, raw []string, parse func(string) (T, error)) ([]T, error) {
	values := make([]T, 0, len(raw))

	for _, chunk := range raw {
		for _, item := range strings.Split(chunk, ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}

			v, err := parse(item)
			if err != nil {
				return nil, &BindingError{Parameter: name + "." + string(op), Value: item, Reason: err.Error()}
			}

			values = append(values, v)
		}
	}

	return values, nil
}

func parseID(raw string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("must be a whole number")
	}

	return v, nil
}

func parseDate(raw string) (time.Time, error) {
	v, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("must be a date formatted as %s", DateLayout)
	}

	return v.UTC(), nil
}

func parseInstant(raw string) (time.Time, error) {
	v, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("must be an RFC 3339 instant")
	}

	return v.UTC(), nil
}

func parseString(raw string) (string, error) {
	return raw, nil
}

func parseSpecified(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("must be true or false")
	}
}
