//go:build integration

package itest

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/repos"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	infraPostgres "github.com/architeacher/persons/services/svc-persons/internal/infrastructure/postgres"
	"github.com/architeacher/persons/services/svc-persons/internal/ports"
	"github.com/architeacher/persons/services/svc-persons/internal/services"
	"github.com/architeacher/persons/services/svc-persons/migrations"
)

const (
	postgresImage    = "postgres:18-alpine"
	postgresDatabase = "persons_test"
	postgresUsername = "test"
	postgresPassword = "test"
)

type PersonsRepositoryIntegrationTestSuite struct {
	suite.Suite
	suiteCtx    context.Context
	suiteCancel context.CancelFunc
	container   *postgres.PostgresContainer
	dsn         string
	pool        *pgxpool.Pool
	repo        *repos.PersonsRepository
}

func TestPersonsRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PersonsRepositoryIntegrationTestSuite))
}

func (s *PersonsRepositoryIntegrationTestSuite) SetupSuite() {
	s.suiteCtx, s.suiteCancel = context.WithTimeout(context.Background(), 5*time.Minute)

	container, err := postgres.Run(s.suiteCtx,
		postgresImage,
		postgres.WithDatabase(postgresDatabase),
		postgres.WithUsername(postgresUsername),
		postgres.WithPassword(postgresPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	s.dsn, err = container.ConnectionString(s.suiteCtx, "sslmode=disable")
	s.Require().NoError(err)

	log := logger.NewTestLogger()
	s.Require().NoError(infraPostgres.Migrate(migrations.FS, s.dsn, infraPostgres.DirectionUp, log))

	pool, err := pgxpool.New(s.suiteCtx, s.dsn)
	s.Require().NoError(err)
	s.pool = pool

	s.repo = repos.NewPersonsRepository(s.pool, repos.NewPgxScanner(), repos.NewSpecificationTranslator(&log), log)
}

func (s *PersonsRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.suiteCtx)
	}
	if s.suiteCancel != nil {
		s.suiteCancel()
	}
}

func (s *PersonsRepositoryIntegrationTestSuite) SetupTest() {
	_, err := s.pool.Exec(s.T().Context(), "TRUNCATE TABLE pessoa RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *PersonsRepositoryIntegrationTestSuite) TestMigrateIsRepeatable() {
	log := logger.NewTestLogger()

	s.Require().NoError(infraPostgres.Migrate(migrations.FS, s.dsn, infraPostgres.DirectionUp, log))
}

func (s *PersonsRepositoryIntegrationTestSuite) TestCreateAndFetch() {
	ctx := s.T().Context()
	contentType := "image/png"

	in := newPerson("Ana Lima", "1990-01-01", "11144477735", "ana@example.com")
	in.Foto = []byte{0x89, 0x50, 0x4e, 0x47}
	in.FotoContentType = &contentType

	id, err := s.repo.Create(ctx, in)
	s.Require().NoError(err)
	s.Require().Positive(id)

	exists, err := s.repo.Exists(ctx, id)
	s.Require().NoError(err)
	s.Require().True(exists)

	got, err := s.repo.FetchByID(ctx, id)
	s.Require().NoError(err)
	s.Require().Equal(id, got.ID)
	s.Require().Equal("Ana Lima", got.Nome)
	s.Require().Equal(in.Foto, got.Foto)
	s.Require().Equal(contentType, *got.FotoContentType)
	s.Require().True(in.DtNascimento.Equal(got.DtNascimento))
	s.Require().Equal("system", got.CreatedBy)
	s.Require().NotNil(got.CreatedDate)
	s.Require().Nil(got.LastModifiedBy)
}

func (s *PersonsRepositoryIntegrationTestSuite) TestCreateRejectsDuplicateCpf() {
	ctx := s.T().Context()

	_, err := s.repo.Create(ctx, newPerson("Ana Lima", "1990-01-01", "11144477735", "ana@example.com"))
	s.Require().NoError(err)

	_, err = s.repo.Create(ctx, newPerson("Ana Clone", "1990-01-01", "11144477735", "clone@example.com"))
	s.Require().ErrorIs(err, model.ErrDuplicatePerson)
}

func (s *PersonsRepositoryIntegrationTestSuite) TestUpdateAndDelete() {
	ctx := s.T().Context()

	id, err := s.repo.Create(ctx, newPerson("Bea Costa", "1985-06-15", "52998224725", "bea@example.com"))
	s.Require().NoError(err)

	person, err := s.repo.FetchByID(ctx, id)
	s.Require().NoError(err)

	person.Nome = "Bea Costa Silva"
	person.Touch("bob", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	s.Require().NoError(s.repo.Update(ctx, person))

	updated, err := s.repo.FetchByID(ctx, id)
	s.Require().NoError(err)
	s.Require().Equal("Bea Costa Silva", updated.Nome)
	s.Require().Equal("bob", *updated.LastModifiedBy)

	s.Require().NoError(s.repo.Delete(ctx, id))

	_, err = s.repo.FetchByID(ctx, id)
	s.Require().ErrorIs(err, model.ErrPersonNotFound)

	missing := newPerson("Nobody", "2000-01-01", "39053344705", "nobody@example.com")
	missing.ID = id
	s.Require().ErrorIs(s.repo.Update(ctx, missing), model.ErrPersonNotFound)
}

// TestMatchesMemoryStore runs the same criteria against Postgres and the
// in-process store and expects identical rows and counts.
func (s *PersonsRepositoryIntegrationTestSuite) TestMatchesMemoryStore() {
	ctx := s.T().Context()
	memory := repos.NewMemoryRepository()

	seed := []*model.Person{
		newPerson("Ana Lima", "1990-01-01", "11144477735", "ana@example.com"),
		newPerson("Bea Costa", "1985-06-15", "52998224725", "bea@example.com"),
		newPerson("Caio Dias", "1979-12-31", "39053344705", "caio@example.org"),
		newPerson("Davi Costa", "2001-02-03", "93541134780", "davi@example.net"),
	}
	for _, p := range seed {
		_, err := s.repo.Create(ctx, clonePerson(p))
		s.Require().NoError(err)

		_, err = memory.Create(ctx, clonePerson(p))
		s.Require().NoError(err)
	}

	cases := []struct {
		name     string
		criteria func() *model.PersonCriteria
	}{
		{
			name:     "no criteria",
			criteria: model.NewPersonCriteria,
		},
		{
			name: "contains",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureNome().SetContains("Costa")

				return c
			},
		},
		{
			name: "does not contain",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureEmail().SetDoesNotContain(".com")

				return c
			},
		},
		{
			name: "date range",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureDtNascimento().SetGreaterThanOrEqual(date("1980-01-01"))
				c.EnsureDtNascimento().SetLessThan(date("2000-01-01"))

				return c
			},
		},
		{
			name: "in and not equals",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureCpf().SetIn("11144477735", "52998224725", "39053344705")
				c.EnsureNome().SetNotEquals("Bea Costa")

				return c
			},
		},
		{
			name: "empty in",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureCpf().SetIn()

				return c
			},
		},
		{
			name: "unset optional column",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureLastModifiedBy().SetSpecified(false)
				c.SetDistinct(true)

				return c
			},
		},
		{
			name: "id range",
			criteria: func() *model.PersonCriteria {
				c := model.NewPersonCriteria()
				c.EnsureID().SetGreaterThan(1)
				c.EnsureID().SetLessThanOrEqual(3)

				return c
			},
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			spec := services.CreateSpecification(tc.criteria())

			s.Equal(names(s.findAll(memory, spec)), names(s.findAll(s.repo, spec)))

			pgCount, err := s.repo.Count(ctx, spec)
			s.Require().NoError(err)

			memCount, err := memory.Count(ctx, spec)
			s.Require().NoError(err)

			s.Equal(memCount, pgCount)
		})
	}
}

func (s *PersonsRepositoryIntegrationTestSuite) findAll(repo ports.Finder, spec model.Specification) []*model.Person {
	query := model.NewQuery().
		Where(spec).
		OrderBy(model.SortField{Field: "id", Direction: model.SortAsc}).
		Build()

	persons, err := repo.FindAll(s.T().Context(), query)
	s.Require().NoError(err)

	return persons
}

func newPerson(nome, born, cpf, email string) *model.Person {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	return &model.Person{
		Nome:         nome,
		DtNascimento: date(born),
		Cpf:          cpf,
		Email:        email,
		CreatedBy:    "system",
		CreatedDate:  &created,
	}
}

func clonePerson(p *model.Person) *model.Person {
	c := *p

	return &c
}

func date(value string) time.Time {
	t, err := time.Parse(model.DateLayout, value)
	if err != nil {
		panic(err)
	}

	return t
}

func names(persons []*model.Person) []string {
	out := make([]string, 0, len(persons))
	for _, p := range persons {
		out = append(out, p.Nome)
	}

	return out
}
