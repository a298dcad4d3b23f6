package repos

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

var (
	psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	columnMapping = map[string]string{
		"id":               "id",
		"nome":             "nome",
		"dtNascimento":     "dt_nascimento",
		"cpf":              "cpf",
		"email":            "email",
		"createdBy":        "created_by",
		"createdDate":      "created_date",
		"lastModifiedBy":   "last_modified_by",
		"lastModifiedDate": "last_modified_date",
	}

	likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

	matchNothing = sq.Expr("(1=0)")
)

// SpecificationTranslator renders a model.Specification as squirrel SQL.
// Match-all and distinct nodes produce no condition; distinct is applied to
// the SELECT instead.
type SpecificationTranslator struct {
	logger *logger.Logger
}

func NewSpecificationTranslator(log *logger.Logger) *SpecificationTranslator {
	return &SpecificationTranslator{logger: log}
}

func (t *SpecificationTranslator) ApplyToSelect(builder sq.SelectBuilder, query model.Query) sq.SelectBuilder {
	builder = t.ApplyConditionsOnly(builder, query.Spec())
	builder = t.applySorting(builder, query)

	return t.applyPagination(builder, query)
}

func (t *SpecificationTranslator) ApplyConditionsOnly(builder sq.SelectBuilder, spec model.Specification) sq.SelectBuilder {
	if model.IsDistinct(spec) {
		builder = builder.Distinct()
	}

	if cond := t.Translate(spec); cond != nil {
		builder = builder.Where(cond)
	}

	return builder
}

// Translate returns nil when spec places no restriction on rows.
func (t *SpecificationTranslator) Translate(spec model.Specification) sq.Sqlizer {
	if spec == nil {
		return nil
	}

	if field := spec.Field(); field != "" {
		if _, ok := columnMapping[field]; !ok {
			return t.unknownField(field)
		}
	}

	switch spec.Operator() {
	case model.SpecOpEq:
		return sq.Eq{t.col(spec.Field()): spec.Value()}

	case model.SpecOpNotEq:
		return sq.NotEq{t.col(spec.Field()): spec.Value()}

	case model.SpecOpIn:
		return sq.Eq{t.col(spec.Field()): spec.Value()}

	case model.SpecOpNotIn:
		col := t.col(spec.Field())

		if values, ok := spec.Value().([]any); ok && len(values) == 0 {
			return sq.NotEq{col: nil}
		}

		return sq.NotEq{col: spec.Value()}

	case model.SpecOpIsNull:
		return sq.Eq{t.col(spec.Field()): nil}

	case model.SpecOpNotNull:
		return sq.NotEq{t.col(spec.Field()): nil}

	case model.SpecOpGt:
		return sq.Gt{t.col(spec.Field()): spec.Value()}

	case model.SpecOpGte:
		return sq.GtOrEq{t.col(spec.Field()): spec.Value()}

	case model.SpecOpLt:
		return sq.Lt{t.col(spec.Field()): spec.Value()}

	case model.SpecOpLte:
		return sq.LtOrEq{t.col(spec.Field()): spec.Value()}

	case model.SpecOpContains:
		return sq.Like{t.col(spec.Field()): containsPattern(spec.Value())}

	case model.SpecOpNotContains:
		return sq.NotLike{t.col(spec.Field()): containsPattern(spec.Value())}

	case model.SpecOpMust:
		conditions := make(sq.And, 0, len(spec.Children()))
		for _, child := range spec.Children() {
			if cond := t.Translate(child); cond != nil {
				conditions = append(conditions, cond)
			}
		}

		switch len(conditions) {
		case 0:
			return nil
		case 1:
			return conditions[0]
		}

		return conditions

	case model.SpecOpShould:
		conditions := make(sq.Or, 0, len(spec.Children()))
		for _, child := range spec.Children() {
			cond := t.Translate(child)
			if cond == nil {
				return nil
			}

			conditions = append(conditions, cond)
		}

		return conditions

	case model.SpecOpMustNot:
		children := spec.Children()
		if len(children) == 0 {
			return nil
		}

		inner := t.Translate(children[0])
		if inner == nil {
			return matchNothing
		}

		return sq.Expr("NOT (?)", inner)
	}

	return nil
}

// col is only called for fields Translate has already checked.
func (t *SpecificationTranslator) col(field string) string {
	return columnMapping[field]
}

// unknownField makes ToSql fail rather than filter or sort on a guessed
// column.
func (t *SpecificationTranslator) unknownField(field string) sq.Sqlizer {
	if t.logger != nil {
		t.logger.Warn().Str("field", field).Msg("unknown person field requested")
	}

	return unknownFieldClause(field)
}

func (t *SpecificationTranslator) applySorting(builder sq.SelectBuilder, q model.Query) sq.SelectBuilder {
	if !q.HasSorting() {
		return builder.OrderBy("id ASC")
	}

	for _, s := range q.Sorting() {
		col, ok := columnMapping[s.Field]
		if !ok {
			builder = builder.OrderByClause(t.unknownField(s.Field))

			continue
		}

		builder = builder.OrderBy(fmt.Sprintf("%s %s", col, s.Direction))
	}

	return builder
}

func (t *SpecificationTranslator) applyPagination(builder sq.SelectBuilder, q model.Query) sq.SelectBuilder {
	if !q.HasPagination() {
		return builder
	}

	return builder.Limit(uint64(q.Size())).Offset(uint64(q.Offset()))
}

type unknownFieldClause string

func (f unknownFieldClause) ToSql() (string, []any, error) {
	return "", nil, fmt.Errorf("%w: %q", model.ErrUnknownField, string(f))
}

// checkFields reports the first field of spec or sorting that maps to no
// column.
func checkFields(spec model.Specification, sorting []model.SortField) error {
	for _, s := range sorting {
		if _, ok := columnMapping[s.Field]; !ok {
			return fmt.Errorf("%w: %q", model.ErrUnknownField, s.Field)
		}
	}

	if spec == nil {
		return nil
	}

	if field := spec.Field(); field != "" {
		if _, ok := columnMapping[field]; !ok {
			return fmt.Errorf("%w: %q", model.ErrUnknownField, field)
		}
	}

	for _, child := range spec.Children() {
		if err := checkFields(child, nil); err != nil {
			return err
		}
	}

	return nil
}

func containsPattern(value any) string {
	return "%" + likeEscaper.Replace(fmt.Sprint(value)) + "%"
}
