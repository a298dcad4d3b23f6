package services_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/architeacher/persons/pkg/idempotency"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/audit"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/mappers"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/repos"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/services"
)

var (
	createdAt  = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	modifiedAt = time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC)
)

type fakeInvalidator struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeInvalidator) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++

	return f.err
}

func (f *fakeInvalidator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls
}

type stepClock struct {
	mu    sync.Mutex
	times []time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}

	return now
}

type serviceFixture struct {
	repo        *repos.MemoryRepository
	invalidator *fakeInvalidator
	service     *services.PersonService
}

func newServiceFixture(persons ...*model.Person) serviceFixture {
	repo := repos.NewMemoryRepository(persons...)
	invalidator := &fakeInvalidator{}
	clock := &stepClock{times: []time.Time{createdAt, modifiedAt}}

	return serviceFixture{
		repo:        repo,
		invalidator: invalidator,
		service: services.NewPersonService(
			repo,
			mappers.NewPersonMapper(),
			audit.NewContextAuditor().WithClock(clock.Now),
			invalidator,
			logger.NewTestLogger(),
		),
	}
}

func validDTO() model.PersonDTO {
	return model.PersonDTO{
		Nome:         "Carla Souza",
		DtNascimento: "1992-04-30",
		Cpf:          "52998224725",
		Email:        "carla@example.com",
	}
}

func TestPersonService_Save(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture()
	ctx := logger.WithUserLogin(t.Context(), "alice")

	dto := validDTO()
	dto.ID = lo.ToPtr(int64(99))
	dto.CreatedBy = "mallory"

	saved, err := fixture.service.Save(ctx, dto)
	require.NoError(t, err)
	require.NotNil(t, saved.ID)
	require.NotEqual(t, int64(99), *saved.ID)
	require.Equal(t, "alice", saved.CreatedBy)
	require.Equal(t, createdAt, *saved.CreatedDate)
	require.Equal(t, "alice", *saved.LastModifiedBy)
	require.Equal(t, 1, fixture.invalidator.Calls())

	stored, err := fixture.repo.FetchByID(t.Context(), *saved.ID)
	require.NoError(t, err)
	require.Equal(t, "Carla Souza", stored.Nome)
	require.Equal(t, time.Date(1992, 4, 30, 0, 0, 0, 0, time.UTC), stored.DtNascimento)
}

func TestPersonService_SaveWithoutLoginUsesSystem(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture()

	saved, err := fixture.service.Save(t.Context(), validDTO())
	require.NoError(t, err)
	require.Equal(t, audit.SystemLogin, saved.CreatedBy)
}

func TestPersonService_SaveLogsIdempotencyKey(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	service := services.NewPersonService(
		repos.NewMemoryRepository(),
		mappers.NewPersonMapper(),
		audit.NewContextAuditor(),
		nil,
		logger.NewBufferedTestLogger(&buf),
	)

	ctx := idempotency.WithKey(t.Context(), "create-carla-0001")

	_, err := service.Save(ctx, validDTO())
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"idempotency_key":"create-carla-0001"`)
}

func TestPersonService_SaveDuplicateCpf(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture()

	_, err := fixture.service.Save(t.Context(), validDTO())
	require.NoError(t, err)

	_, err = fixture.service.Save(t.Context(), validDTO())
	require.ErrorIs(t, err, model.ErrDuplicatePerson)
	require.Equal(t, 1, fixture.invalidator.Calls())
}

func TestPersonService_Update(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture()

	saved, err := fixture.service.Save(logger.WithUserLogin(t.Context(), "alice"), validDTO())
	require.NoError(t, err)

	dto := saved
	dto.Nome = "Carla Lima"
	dto.CreatedBy = "mallory"
	dto.CreatedDate = lo.ToPtr(modifiedAt)

	updated, err := fixture.service.Update(logger.WithUserLogin(t.Context(), "bob"), dto)
	require.NoError(t, err)
	require.Equal(t, "Carla Lima", updated.Nome)
	require.Equal(t, "alice", updated.CreatedBy)
	require.Equal(t, createdAt, *updated.CreatedDate)
	require.Equal(t, "bob", *updated.LastModifiedBy)
	require.Equal(t, modifiedAt, *updated.LastModifiedDate)
	require.Equal(t, 2, fixture.invalidator.Calls())
}

func TestPersonService_UpdateErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		dto      func() model.PersonDTO
		expected error
	}{
		{
			name:     "missing id",
			dto:      validDTO,
			expected: model.ErrInvalidPersonID,
		},
		{
			name: "unknown id",
			dto: func() model.PersonDTO {
				dto := validDTO()
				dto.ID = lo.ToPtr(int64(404))

				return dto
			},
			expected: model.ErrPersonNotFound,
		},
		{
			name: "bad birth date",
			dto: func() model.PersonDTO {
				dto := validDTO()
				dto.ID = lo.ToPtr(int64(1))
				dto.DtNascimento = "30/04/1992"

				return dto
			},
			expected: model.ErrInvalidCriteria,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fixture := newServiceFixture(fixturePersons()...)

			_, err := fixture.service.Update(t.Context(), tc.dto())
			require.ErrorIs(t, err, tc.expected)
			require.Zero(t, fixture.invalidator.Calls())
		})
	}
}

func TestPersonService_PartialUpdate(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture(fixturePersons()...)

	updated, err := fixture.service.PartialUpdate(t.Context(), 2, model.PersonPatch{
		Email: lo.ToPtr("bea.nova@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, "Bea", updated.Nome)
	require.Equal(t, "bea.nova@example.com", updated.Email)
	require.Equal(t, "1985-06-15", updated.DtNascimento)
	require.Equal(t, audit.SystemLogin, *updated.LastModifiedBy)
	require.Equal(t, 1, fixture.invalidator.Calls())

	_, err = fixture.service.PartialUpdate(t.Context(), 404, model.PersonPatch{Nome: lo.ToPtr("Nobody")})
	require.ErrorIs(t, err, model.ErrPersonNotFound)
}

func TestPersonService_FindOneAndExists(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture(fixturePersons()...)

	dto, err := fixture.service.FindOne(t.Context(), 1)
	require.NoError(t, err)
	require.Equal(t, "Ana", dto.Nome)

	_, err = fixture.service.FindOne(t.Context(), 404)
	require.ErrorIs(t, err, model.ErrPersonNotFound)

	exists, err := fixture.service.Exists(t.Context(), 1)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = fixture.service.Exists(t.Context(), 404)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestPersonService_Delete(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture(fixturePersons()...)

	require.NoError(t, fixture.service.Delete(t.Context(), 1))
	require.NoError(t, fixture.service.Delete(t.Context(), 1), "deleting twice is not an error")
	require.Equal(t, 2, fixture.invalidator.Calls())

	_, err := fixture.repo.FetchByID(t.Context(), 1)
	require.ErrorIs(t, err, model.ErrPersonNotFound)
}

func TestPersonService_InvalidationFailureDoesNotFailWrites(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture()
	fixture.invalidator.err = errors.New("keydb unavailable")

	_, err := fixture.service.Save(t.Context(), validDTO())
	require.NoError(t, err)
	require.Equal(t, 1, fixture.invalidator.Calls())
}

func TestPersonService_InvalidationFailureIsLoggedWithRequestContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	invalidator := &fakeInvalidator{err: errors.New("keydb unavailable")}
	service := services.NewPersonService(
		repos.NewMemoryRepository(),
		mappers.NewPersonMapper(),
		audit.NewContextAuditor(),
		invalidator,
		logger.NewBufferedTestLogger(&buf),
	)

	ctx := logger.WithRequestID(t.Context(), "req-invalidate-1")

	_, err := service.Save(ctx, validDTO())
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, `"message":"failed to invalidate cached counts"`)
	require.Contains(t, out, `"error":"keydb unavailable"`)
	require.Contains(t, out, `"request_id":"req-invalidate-1"`)
}

func TestPersonService_WithoutInvalidator(t *testing.T) {
	t.Parallel()

	service := services.NewPersonService(
		repos.NewMemoryRepository(),
		mappers.NewPersonMapper(),
		audit.NewContextAuditor(),
		nil,
		logger.NewTestLogger(),
	)

	_, err := service.Save(t.Context(), validDTO())
	require.NoError(t, err)
}

func TestPersonService_WritesAreVisibleToCriteria(t *testing.T) {
	t.Parallel()

	fixture := newServiceFixture(fixturePersons()...)
	query := services.NewPersonQueryService(fixture.repo, mappers.NewPersonMapper(), logger.NewTestLogger())

	criteria := model.NewPersonCriteria()
	criteria.EnsureCreatedBy().SetEquals("alice")

	count, err := query.CountByCriteria(t.Context(), criteria)
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = fixture.service.Save(logger.WithUserLogin(t.Context(), "alice"), validDTO())
	require.NoError(t, err)

	count, err = query.CountByCriteria(t.Context(), criteria)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}
