package repos

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

// truth is a SQL boolean: predicates over NULL are neither true nor false.
type truth int8

const (
	truthFalse truth = iota
	truthTrue
	truthUnknown
)

func (t truth) and(other truth) truth {
	switch {
	case t == truthFalse || other == truthFalse:
		return truthFalse
	case t == truthUnknown || other == truthUnknown:
		return truthUnknown
	}

	return truthTrue
}

func (t truth) or(other truth) truth {
	switch {
	case t == truthTrue || other == truthTrue:
		return truthTrue
	case t == truthUnknown || other == truthUnknown:
		return truthUnknown
	}

	return truthFalse
}

func (t truth) not() truth {
	switch t {
	case truthTrue:
		return truthFalse
	case truthFalse:
		return truthTrue
	}

	return truthUnknown
}

func truthOf(b bool) truth {
	if b {
		return truthTrue
	}

	return truthFalse
}

// MemoryRepository keeps persons in process and evaluates specifications
// with the same semantics the SQL translator produces. Rows added through
// Seed are stored verbatim, duplicates included.
type MemoryRepository struct {
	mu     sync.RWMutex
	rows   []model.Person
	nextID int64
}

func NewMemoryRepository(seed ...*model.Person) *MemoryRepository {
	repo := &MemoryRepository{}
	repo.Seed(seed...)

	return repo
}

func (r *MemoryRepository) Seed(persons ...*model.Person) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, person := range persons {
		r.rows = append(r.rows, clonePerson(*person))
		r.nextID = max(r.nextID, person.ID)
	}
}

func (r *MemoryRepository) Create(ctx context.Context, person *model.Person) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cpfTaken(person.Cpf, 0) {
		return 0, model.ErrDuplicatePerson
	}

	r.nextID++

	row := clonePerson(*person)
	row.ID = r.nextID
	r.rows = append(r.rows, row)

	return row.ID, nil
}

func (r *MemoryRepository) FetchByID(ctx context.Context, id int64) (*model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := lo.Find(r.rows, func(p model.Person) bool { return p.ID == id })
	if !ok {
		return nil, model.ErrPersonNotFound
	}

	person := clonePerson(row)

	return &person, nil
}

func (r *MemoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.ContainsBy(r.rows, func(p model.Person) bool { return p.ID == id }), nil
}

func (r *MemoryRepository) FindAll(ctx context.Context, query model.Query) ([]*model.Person, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := checkFields(query.Spec(), query.Sorting()); err != nil {
		return nil, err
	}

	r.mu.RLock()
	rows := r.matching(query.Spec())
	r.mu.RUnlock()

	slices.SortStableFunc(rows, func(a, b model.Person) int {
		for _, s := range query.Sorting() {
			if c := compareColumn(&a, &b, s); c != 0 {
				return c
			}
		}

		return 0
	})

	if query.HasPagination() {
		offset := min(int(query.Offset()), len(rows))
		end := min(offset+int(query.Size()), len(rows))
		rows = rows[offset:end]
	}

	return lo.Map(rows, func(p model.Person, _ int) *model.Person {
		person := clonePerson(p)

		return &person
	}), nil
}

func (r *MemoryRepository) Count(ctx context.Context, spec model.Specification) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if err := checkFields(spec, nil); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.matching(spec))), nil
}

// Update keeps the stored creation audit columns, like the SQL statement.
func (r *MemoryRepository) Update(ctx context.Context, person *model.Person) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !lo.ContainsBy(r.rows, func(p model.Person) bool { return p.ID == person.ID }) {
		return model.ErrPersonNotFound
	}

	if r.cpfTaken(person.Cpf, person.ID) {
		return model.ErrDuplicatePerson
	}

	for index := range r.rows {
		if r.rows[index].ID != person.ID {
			continue
		}

		row := clonePerson(*person)
		row.CreatedBy = r.rows[index].CreatedBy
		row.CreatedDate = r.rows[index].CreatedDate
		r.rows[index] = row
	}

	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	remaining := lo.Reject(r.rows, func(p model.Person, _ int) bool { return p.ID == id })
	if len(remaining) == len(r.rows) {
		return model.ErrPersonNotFound
	}

	r.rows = remaining

	return nil
}

func (r *MemoryRepository) Name() string {
	return "memory"
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (r *MemoryRepository) cpfTaken(cpf string, exceptID int64) bool {
	return lo.ContainsBy(r.rows, func(p model.Person) bool { return p.Cpf == cpf && p.ID != exceptID })
}

// matching must be called with the lock held.
func (r *MemoryRepository) matching(spec model.Specification) []model.Person {
	rows := lo.Filter(r.rows, func(p model.Person, _ int) bool {
		return evaluate(spec, &p) == truthTrue
	})

	if model.IsDistinct(spec) {
		rows = lo.UniqBy(rows, rowKey)
	}

	return rows
}

// evaluate mirrors SpecificationTranslator.Translate: nodes that translate
// to no condition are true.
func evaluate(spec model.Specification, p *model.Person) truth {
	if spec == nil {
		return truthTrue
	}

	switch spec.Operator() {
	case model.SpecOpMatchAll, model.SpecOpDistinct:
		return truthTrue

	case model.SpecOpMust:
		result := truthTrue
		for _, child := range spec.Children() {
			result = result.and(evaluate(child, p))
		}

		return result

	case model.SpecOpShould:
		result := truthFalse
		for _, child := range spec.Children() {
			result = result.or(evaluate(child, p))
		}

		return result

	case model.SpecOpMustNot:
		children := spec.Children()
		if len(children) == 0 {
			return truthTrue
		}

		return evaluate(children[0], p).not()
	}

	value, present := columnValue(p, spec.Field())

	switch spec.Operator() {
	case model.SpecOpIsNull:
		return truthOf(!present)
	case model.SpecOpNotNull:
		return truthOf(present)
	case model.SpecOpIn:
		values, _ := spec.Value().([]any)
		if len(values) == 0 {
			return truthFalse
		}
	case model.SpecOpNotIn:
		if values, _ := spec.Value().([]any); len(values) == 0 {
			return truthOf(present)
		}
	}

	if !present {
		return truthUnknown
	}

	switch spec.Operator() {
	case model.SpecOpEq:
		return truthOf(compareValues(value, spec.Value()) == 0)
	case model.SpecOpNotEq:
		return truthOf(compareValues(value, spec.Value()) != 0)
	case model.SpecOpIn:
		return truthOf(containsValue(value, spec.Value()))
	case model.SpecOpNotIn:
		return truthOf(!containsValue(value, spec.Value()))
	case model.SpecOpGt:
		return truthOf(compareValues(value, spec.Value()) > 0)
	case model.SpecOpGte:
		return truthOf(compareValues(value, spec.Value()) >= 0)
	case model.SpecOpLt:
		return truthOf(compareValues(value, spec.Value()) < 0)
	case model.SpecOpLte:
		return truthOf(compareValues(value, spec.Value()) <= 0)
	case model.SpecOpContains:
		return truthOf(strings.Contains(fmt.Sprint(value), fmt.Sprint(spec.Value())))
	case model.SpecOpNotContains:
		return truthOf(!strings.Contains(fmt.Sprint(value), fmt.Sprint(spec.Value())))
	}

	return truthFalse
}

// columnValue returns the value stored for field and whether it is non-NULL.
// Callers reject unknown fields first.
func columnValue(p *model.Person, field string) (any, bool) {
	switch field {
	case "nome":
		return p.Nome, true
	case "dtNascimento":
		return p.DtNascimento, true
	case "cpf":
		return p.Cpf, true
	case "email":
		return p.Email, true
	case "createdBy":
		return p.CreatedBy, true
	case "createdDate":
		return derefColumn(p.CreatedDate)
	case "lastModifiedBy":
		return derefColumn(p.LastModifiedBy)
	case "lastModifiedDate":
		return derefColumn(p.LastModifiedDate)
	}

	return p.ID, true
}

func derefColumn[T any](v *T) (any, bool) {
	if v == nil {
		return nil, false
	}

	return *v, true
}

func containsValue(value, set any) bool {
	values, _ := set.([]any)

	return lo.ContainsBy(values, func(candidate any) bool { return compareValues(value, candidate) == 0 })
}

func compareValues(a, b any) int {
	switch left := a.(type) {
	case int64:
		return cmp.Compare(left, toInt64(b))
	case string:
		right, _ := b.(string)

		return strings.Compare(left, right)
	case time.Time:
		right, _ := b.(time.Time)

		return left.Compare(right)
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	}

	return 0
}

// compareColumn orders like Postgres: NULLs sort last ascending and first
// descending.
func compareColumn(a, b *model.Person, s model.SortField) int {
	left, leftPresent := columnValue(a, s.Field)
	right, rightPresent := columnValue(b, s.Field)

	var c int

	switch {
	case !leftPresent && !rightPresent:
		c = 0
	case !leftPresent:
		c = 1
	case !rightPresent:
		c = -1
	default:
		c = compareValues(left, right)
	}

	if s.Direction == model.SortDesc {
		return -c
	}

	return c
}

func rowKey(p model.Person) string {
	var key bytes.Buffer

	fmt.Fprintf(&key, "%d|%x|", p.ID, p.Foto)

	for _, column := range []string{"nome", "dtNascimento", "cpf", "email", "createdBy", "createdDate", "lastModifiedBy", "lastModifiedDate"} {
		value, present := columnValue(&p, column)
		fmt.Fprintf(&key, "%t:%v|", present, value)
	}

	if p.FotoContentType != nil {
		key.WriteString(*p.FotoContentType)
	}

	return key.String()
}

func clonePerson(p model.Person) model.Person {
	clone := p
	clone.Foto = bytes.Clone(p.Foto)
	clone.FotoContentType = clonePtr(p.FotoContentType)
	clone.CreatedDate = clonePtr(p.CreatedDate)
	clone.LastModifiedBy = clonePtr(p.LastModifiedBy)
	clone.LastModifiedDate = clonePtr(p.LastModifiedDate)

	return clone
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}

	c := *v

	return &c
}
