package model

// BuildSpecification turns the shared operators of f into one predicate on
// field. Every operator present is AND-ed in the fixed operator order; an
// absent or empty filter yields nil.
func BuildSpecification[T comparable](f *Filter[T], field string) Specification {
	return combine(filterSpecs(f, field))
}

func BuildRangeSpecification[T comparable](f *RangeFilter[T], field string) Specification {
	if f.IsEmpty() {
		return nil
	}

	specs := filterSpecs(&f.Filter, field)

	if f.GreaterThan != nil {
		specs = append(specs, Gt(field, *f.GreaterThan))
	}

	if f.GreaterThanOrEqual != nil {
		specs = append(specs, Gte(field, *f.GreaterThanOrEqual))
	}

	if f.LessThan != nil {
		specs = append(specs, Lt(field, *f.LessThan))
	}

	if f.LessThanOrEqual != nil {
		specs = append(specs, Lte(field, *f.LessThanOrEqual))
	}

	return combine(specs)
}

func BuildStringSpecification(f *StringFilter, field string) Specification {
	if f.IsEmpty() {
		return nil
	}

	specs := filterSpecs(&f.Filter, field)

	if f.Contains != nil {
		specs = append(specs, Contains(field, *f.Contains))
	}

	if f.DoesNotContain != nil {
		specs = append(specs, NotContains(field, *f.DoesNotContain))
	}

	return combine(specs)
}

func BuildBooleanSpecification(f *BooleanFilter, field string) Specification {
	if f.IsEmpty() {
		return nil
	}

	return BuildSpecification(&f.Filter, field)
}

func filterSpecs[T comparable](f *Filter[T], field string) []Specification {
	if f.IsEmpty() {
		return nil
	}

	var specs []Specification

	if f.Equals != nil {
		specs = append(specs, Eq(field, *f.Equals))
	}

	if f.NotEquals != nil {
		specs = append(specs, NotEq(field, *f.NotEquals))
	}

	if f.In != nil {
		specs = append(specs, In(field, toAny(f.In)...))
	}

	if f.NotIn != nil {
		specs = append(specs, NotIn(field, toAny(f.NotIn)...))
	}

	if f.Specified != nil {
		if *f.Specified {
			specs = append(specs, NotNull(field))
		} else {
			specs = append(specs, IsNull(field))
		}
	}

	return specs
}

func combine(specs []Specification) Specification {
	switch len(specs) {
	case 0:
		return nil
	case 1:
		return specs[0]
	default:
		return Must(specs...)
	}
}

func toAny[T any](values []T) []any {
	result := make([]any, len(values))
	for i, v := range values {
		result[i] = v
	}

	return result
}
