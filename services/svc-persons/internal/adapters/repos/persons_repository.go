package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

const (
	personsTable = "pessoa"

	uniqueViolationCode = "23505"
)

var personColumns = []string{
	"id", "foto", "foto_content_type", "nome", "dt_nascimento", "cpf", "email",
	"created_by", "created_date", "last_modified_by", "last_modified_date",
}

type (
	// PoolOps is the subset of pgxpool.Pool the repository needs.
	PoolOps interface {
		QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
		Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
		Ping(ctx context.Context) error
	}

	PersonsRepository struct {
		pool       PoolOps
		scanner    Scanner
		logger     logger.Logger
		translator *SpecificationTranslator
	}

	personRow struct {
		ID               int64      `db:"id"`
		Foto             []byte     `db:"foto"`
		FotoContentType  *string    `db:"foto_content_type"`
		Nome             string     `db:"nome"`
		DtNascimento     time.Time  `db:"dt_nascimento"`
		Cpf              string     `db:"cpf"`
		Email            string     `db:"email"`
		CreatedBy        string     `db:"created_by"`
		CreatedDate      *time.Time `db:"created_date"`
		LastModifiedBy   *string    `db:"last_modified_by"`
		LastModifiedDate *time.Time `db:"last_modified_date"`
	}
)

func NewPersonsRepository(
	pool PoolOps,
	scanner Scanner,
	translator *SpecificationTranslator,
	log logger.Logger,
) *PersonsRepository {
	return &PersonsRepository{
		pool:       pool,
		scanner:    scanner,
		translator: translator,
		logger:     log,
	}
}

func (r *PersonsRepository) Create(ctx context.Context, person *model.Person) (int64, error) {
	query, args, err := psql.Insert(personsTable).
		Columns(personColumns[1:]...).
		Values(
			person.Foto,
			person.FotoContentType,
			person.Nome,
			person.DtNascimento,
			person.Cpf,
			person.Email,
			person.CreatedBy,
			person.CreatedDate,
			person.LastModifiedBy,
			person.LastModifiedDate,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build insert query: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if isUniqueViolation(err) {
			return 0, model.ErrDuplicatePerson
		}

		return 0, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	return id, nil
}

func (r *PersonsRepository) FetchByID(ctx context.Context, id int64) (*model.Person, error) {
	query, args, err := psql.Select(personColumns...).
		From(personsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var row personRow
	if err := r.scanner.ScanOne(&row, rows); err != nil {
		if r.scanner.IsNotFound(err) {
			return nil, model.ErrPersonNotFound
		}

		return nil, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	return row.toPerson(), nil
}

func (r *PersonsRepository) Exists(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Select("1").
		Prefix("SELECT EXISTS (").
		From(personsTable).
		Where(sq.Eq{"id": id}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build exists query: %w", err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	return exists, nil
}

// FindAll runs the query's specification with its ordering and window.
func (r *PersonsRepository) FindAll(ctx context.Context, query model.Query) ([]*model.Person, error) {
	builder := r.translator.ApplyToSelect(psql.Select(personColumns...).From(personsTable), query)

	return r.queryPersons(ctx, builder)
}

// Count counts the rows FindAll would return without a window. With the
// distinct modifier the distinct projection is counted, not the raw rows.
func (r *PersonsRepository) Count(ctx context.Context, spec model.Specification) (int64, error) {
	var builder sq.SelectBuilder

	if model.IsDistinct(spec) {
		inner := r.translator.ApplyConditionsOnly(psql.Select(personColumns...).From(personsTable), spec)
		builder = psql.Select("COUNT(*)").FromSelect(inner, "t")
	} else {
		builder = r.translator.ApplyConditionsOnly(psql.Select("COUNT(*)").From(personsTable), spec)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	return count, nil
}

// Update writes every mutable column. Creation audit columns are never
// touched.
func (r *PersonsRepository) Update(ctx context.Context, person *model.Person) error {
	query, args, err := psql.Update(personsTable).
		Set("foto", person.Foto).
		Set("foto_content_type", person.FotoContentType).
		Set("nome", person.Nome).
		Set("dt_nascimento", person.DtNascimento).
		Set("cpf", person.Cpf).
		Set("email", person.Email).
		Set("last_modified_by", person.LastModifiedBy).
		Set("last_modified_date", person.LastModifiedDate).
		Where(sq.Eq{"id": person.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrDuplicatePerson
		}

		return fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPersonNotFound
	}

	return nil
}

func (r *PersonsRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(personsTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrPersonNotFound
	}

	return nil
}

func (r *PersonsRepository) Name() string {
	return "postgres"
}

func (r *PersonsRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", model.ErrDatabaseConnection, err)
	}

	return nil
}

func (r *PersonsRepository) queryPersons(ctx context.Context, builder sq.SelectBuilder) ([]*model.Person, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	log := r.logger.WithContext(ctx)
	log.Debug().Str("sql", query).Int("args", len(args)).Msg("querying persons")

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	var personRows []personRow
	if err := r.scanner.ScanAll(&personRows, rows); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrDatabaseQuery, err)
	}

	persons := make([]*model.Person, 0, len(personRows))
	for index := range personRows {
		persons = append(persons, personRows[index].toPerson())
	}

	return persons, nil
}

func (row personRow) toPerson() *model.Person {
	person := &model.Person{
		ID:               row.ID,
		Foto:             row.Foto,
		FotoContentType:  row.FotoContentType,
		Nome:             row.Nome,
		DtNascimento:     row.DtNascimento.UTC(),
		Cpf:              row.Cpf,
		Email:            row.Email,
		CreatedBy:        row.CreatedBy,
		LastModifiedBy:   row.LastModifiedBy,
		CreatedDate:      utcPtr(row.CreatedDate),
		LastModifiedDate: utcPtr(row.LastModifiedDate),
	}

	return person
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := t.UTC()

	return &v
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
