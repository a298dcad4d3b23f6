package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	otelNoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/pkg/metrics/noop"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/audit"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/inbound/http/handlers"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/inbound/http/middleware"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/mappers"
	"github.com/architeacher/persons/services/svc-persons/internal/adapters/repos"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/services"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases"
)

const appName = "personsApp"

type mapCountCache struct {
	mu     sync.Mutex
	counts map[uint64]int64
}

func (c *mapCountCache) Get(_ context.Context, criteria *model.PersonCriteria) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	count, ok := c.counts[criteria.Hash()]

	return count, ok, nil
}

func (c *mapCountCache) Set(_ context.Context, criteria *model.PersonCriteria, count int64, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.counts[criteria.Hash()] = count

	return nil
}

func (c *mapCountCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.counts)

	return nil
}

type unavailableFinder struct{}

func (unavailableFinder) FindAll(context.Context, model.Query) ([]*model.Person, error) {
	return nil, model.ErrDatabaseConnection
}

func (unavailableFinder) Count(context.Context, model.Specification) (int64, error) {
	return 0, model.ErrDatabaseConnection
}

func TestPersonHandler_LogsUnexpectedErrors(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.NewBufferedTestLogger(&buf)
	mapper := mappers.NewPersonMapper()

	app := usecases.NewApplication(usecases.Backends{
		PersonService:      services.NewPersonService(repos.NewMemoryRepository(), mapper, audit.NewContextAuditor(), nil, log),
		PersonQueryService: services.NewPersonQueryService(unavailableFinder{}, mapper, log),
	}, log, noop.NewMetricsClient(), otelNoop.NewTracerProvider())

	router := chi.NewRouter()
	handlers.NewPersonHandler(app, handlers.PersonHandlerConfig{ClientAppName: appName}, log).Routes(router)

	req := httptest.NewRequest(http.MethodGet, "/api/pessoas", nil)
	req = req.WithContext(logger.WithRequestID(req.Context(), "req-list-500"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, buf.String(), `"message":"request failed"`)
	require.Contains(t, buf.String(), `"request_id":"req-list-500"`)
	require.Contains(t, buf.String(), `"path":"/api/pessoas"`)
}

type PersonHandlerTestSuite struct {
	suite.Suite
	repo   *repos.MemoryRepository
	router chi.Router
}

func TestPersonHandlerTestSuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(PersonHandlerTestSuite))
}

func (s *PersonHandlerTestSuite) SetupTest() {
	s.repo = repos.NewMemoryRepository(
		person(1, "Ana Lima", "1990-01-01", "11144477735", "ana@example.com"),
		person(2, "Bea Costa", "1985-06-15", "52998224725", "bea@example.com"),
		person(3, "Caio Dias", "1979-12-31", "39053344705", "caio@example.org"),
	)

	log := logger.NewTestLogger()
	mapper := mappers.NewPersonMapper()
	cache := &mapCountCache{counts: map[uint64]int64{}}

	app := usecases.NewApplication(usecases.Backends{
		PersonService:      services.NewPersonService(s.repo, mapper, audit.NewContextAuditor(), cache, log),
		PersonQueryService: services.NewPersonQueryService(s.repo, mapper, log),
		CountCache:         cache,
		CountCacheConfig:   decorator.CacheConfig{Enabled: true, TTL: time.Minute, WriteTimeout: time.Second},
	}, log, noop.NewMetricsClient(), otelNoop.NewTracerProvider())

	s.router = chi.NewRouter()
	s.router.Use(middleware.UserLogin())
	handlers.NewPersonHandler(app, handlers.PersonHandlerConfig{
		ClientAppName:   appName,
		DefaultPageSize: 2,
		MaxPageSize:     50,
	}, log).Routes(s.router)
}

func person(id int64, nome, born, cpf, email string) *model.Person {
	dt, _ := time.Parse(model.DateLayout, born)

	return &model.Person{
		ID:           id,
		Nome:         nome,
		DtNascimento: dt,
		Cpf:          cpf,
		Email:        email,
		CreatedBy:    "system",
	}
}

func (s *PersonHandlerTestSuite) do(method, target, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	return rec
}

func (s *PersonHandlerTestSuite) decodePersons(rec *httptest.ResponseRecorder) []model.PersonDTO {
	var persons []model.PersonDTO
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &persons))

	return persons
}

func (s *PersonHandlerTestSuite) decodeError(rec *httptest.ResponseRecorder) handlers.ErrorResponse {
	var resp handlers.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func (s *PersonHandlerTestSuite) TestListPersons_FirstPageWithLinks() {
	rec := s.do(http.MethodGet, "/api/pessoas?sort=nome,asc", "")

	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("3", rec.Header().Get("X-Total-Count"))

	persons := s.decodePersons(rec)
	s.Require().Len(persons, 2)
	s.Require().Equal("Ana Lima", persons[0].Nome)
	s.Require().Equal("1990-01-01", persons[0].DtNascimento)

	link := rec.Header().Get("Link")
	s.Require().Contains(link, `rel="next"`)
	s.Require().Contains(link, `rel="last"`)
	s.Require().Contains(link, `rel="first"`)
	s.Require().NotContains(link, `rel="prev"`)
	s.Require().Contains(link, "page=1")
}

func (s *PersonHandlerTestSuite) TestListPersons_WithoutPagingParams() {
	cases := []struct {
		name          string
		target        string
		expectedCount int
	}{
		{name: "bare list", target: "/api/pessoas", expectedCount: 2},
		{name: "criteria only", target: "/api/pessoas?nome.equals=Ana%20Lima", expectedCount: 1},
		{name: "page only", target: "/api/pessoas?page=1", expectedCount: 1},
		{name: "sort only", target: "/api/pessoas?sort=id,desc", expectedCount: 2},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodGet, tc.target, "")

			s.Require().Equal(http.StatusOK, rec.Code)
			s.Require().Len(s.decodePersons(rec), tc.expectedCount)
		})
	}

	rec := s.do(http.MethodGet, "/api/pessoas/count", "")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal("3", strings.TrimSpace(rec.Body.String()))
}

func (s *PersonHandlerTestSuite) TestListPersons_Filters() {
	cases := []struct {
		name     string
		query    string
		expected []string
	}{
		{name: "contains", query: "nome.contains=Co", expected: []string{"Bea Costa"}},
		{name: "in list", query: "id.in=1,3&sort=id,asc", expected: []string{"Ana Lima", "Caio Dias"}},
		{name: "date range", query: "dtNascimento.greaterThanOrEqual=1985-01-01&sort=id,desc", expected: []string{"Bea Costa", "Ana Lima"}},
		{name: "email does not contain", query: "email.doesNotContain=example.com", expected: []string{"Caio Dias"}},
		{name: "unmatched", query: "cpf.equals=00000000000", expected: []string{}},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodGet, "/api/pessoas?"+tc.query, "")
			s.Require().Equal(http.StatusOK, rec.Code)

			names := make([]string, 0)
			for _, p := range s.decodePersons(rec) {
				names = append(names, p.Nome)
			}

			s.Require().Equal(tc.expected, names)
		})
	}
}

func (s *PersonHandlerTestSuite) TestListPersons_RejectsBadCriteria() {
	cases := []struct {
		name  string
		query string
	}{
		{name: "unknown field", query: "apelido.equals=x"},
		{name: "unsupported operator", query: "nome.greaterThan=a"},
		{name: "malformed id", query: "id.equals=abc"},
		{name: "malformed date", query: "dtNascimento.equals=31-12-1999"},
		{name: "unknown sort property", query: "sort=salario,asc"},
		{name: "non numeric page", query: "page=first"},
		{name: "page offset overflows", query: "page=9223372036854775807&size=50"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodGet, "/api/pessoas?"+tc.query, "")

			s.Require().Equal(http.StatusBadRequest, rec.Code)
			s.Require().NotEmpty(s.decodeError(rec).Details)
		})
	}
}

func (s *PersonHandlerTestSuite) TestCountPersons_AmbiguousValuesDoNotShareCache() {
	split := s.do(http.MethodGet, "/api/pessoas/count?nome.equals=Ana%20Lima&nome.contains=Lima", "")
	s.Require().Equal(http.StatusOK, split.Code)
	s.Require().Equal("1", strings.TrimSpace(split.Body.String()))
	s.Require().Equal("MISS", split.Header().Get("X-Cache"))

	joined := s.do(http.MethodGet, "/api/pessoas/count?nome.equals=Ana%20Lima,%20contains%3DLima", "")
	s.Require().Equal(http.StatusOK, joined.Code)
	s.Require().Equal("0", strings.TrimSpace(joined.Body.String()))
	s.Require().Equal("MISS", joined.Header().Get("X-Cache"))
}

func (s *PersonHandlerTestSuite) TestCountPersons_UsesCache() {
	first := s.do(http.MethodGet, "/api/pessoas/count?email.contains=example.com", "")
	s.Require().Equal(http.StatusOK, first.Code)
	s.Require().Equal("2", strings.TrimSpace(first.Body.String()))
	s.Require().Equal("MISS", first.Header().Get("X-Cache"))

	second := s.do(http.MethodGet, "/api/pessoas/count?email.contains=example.com", "")
	s.Require().Equal("HIT", second.Header().Get("X-Cache"))

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/pessoas/1", "").Code)

	third := s.do(http.MethodGet, "/api/pessoas/count?email.contains=example.com", "")
	s.Require().Equal("MISS", third.Header().Get("X-Cache"))
	s.Require().Equal("1", strings.TrimSpace(third.Body.String()))
}

func (s *PersonHandlerTestSuite) TestGetPerson() {
	rec := s.do(http.MethodGet, "/api/pessoas/2", "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var dto model.PersonDTO
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &dto))
	s.Require().Equal("Bea Costa", dto.Nome)

	s.Require().Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/pessoas/99", "").Code)
	s.Require().Equal(http.StatusBadRequest, s.do(http.MethodGet, "/api/pessoas/abc", "").Code)
}

func (s *PersonHandlerTestSuite) TestCreatePerson() {
	body := `{"nome":"Davi Rocha","dtNascimento":"2001-02-03","cpf":"935.411.347-80","email":"davi@example.net"}`

	rec := s.do(http.MethodPost, "/api/pessoas", body, "X-User-Login", "alice")
	s.Require().Equal(http.StatusCreated, rec.Code)
	s.Require().Equal("/api/pessoas/4", rec.Header().Get("Location"))
	s.Require().Equal(appName+".servicePagamentoPessoa.created", rec.Header().Get("X-"+appName+"-alert"))
	s.Require().Equal("4", rec.Header().Get("X-"+appName+"-params"))

	var dto model.PersonDTO
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &dto))
	s.Require().Equal(int64(4), *dto.ID)
	s.Require().NotNil(dto.CreatedDate)
}

func (s *PersonHandlerTestSuite) TestCreatePerson_Rejections() {
	cases := []struct {
		name     string
		body     string
		status   int
		errorKey string
	}{
		{
			name:     "id already set",
			body:     `{"id":7,"nome":"Davi Rocha","dtNascimento":"2001-02-03","cpf":"93541134780","email":"davi@example.net"}`,
			status:   http.StatusBadRequest,
			errorKey: "idexists",
		},
		{
			name:   "invalid email",
			body:   `{"nome":"Davi Rocha","dtNascimento":"2001-02-03","cpf":"93541134780","email":"davi@"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "short name",
			body:   `{"nome":"Di","dtNascimento":"2001-02-03","cpf":"93541134780","email":"davi@example.net"}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "malformed json",
			body:   `{"nome":`,
			status: http.StatusBadRequest,
		},
		{
			name:   "duplicate cpf",
			body:   `{"nome":"Ana Clone","dtNascimento":"1990-01-01","cpf":"11144477735","email":"clone@example.com"}`,
			status: http.StatusConflict,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPost, "/api/pessoas", tc.body)
			s.Require().Equal(tc.status, rec.Code)

			if tc.errorKey != "" {
				s.Require().Equal("error."+tc.errorKey, rec.Header().Get("X-"+appName+"-error"))
				s.Require().Equal(tc.errorKey, s.decodeError(rec).ErrorKey)
			}
		})
	}
}

func (s *PersonHandlerTestSuite) TestUpdatePerson() {
	body := `{"id":3,"nome":"Caio Dias Neto","dtNascimento":"1979-12-31","cpf":"39053344705","email":"caio@example.org"}`

	rec := s.do(http.MethodPut, "/api/pessoas/3", body, "X-User-Login", "bob")
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Require().Equal(appName+".servicePagamentoPessoa.updated", rec.Header().Get("X-"+appName+"-alert"))

	var dto model.PersonDTO
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &dto))
	s.Require().Equal("Caio Dias Neto", dto.Nome)
	s.Require().Equal("system", dto.CreatedBy)
	s.Require().Equal("bob", *dto.LastModifiedBy)
}

func (s *PersonHandlerTestSuite) TestUpdatePerson_IDChecks() {
	cases := []struct {
		name     string
		path     string
		body     string
		errorKey string
	}{
		{
			name:     "missing body id",
			path:     "/api/pessoas/3",
			body:     `{"nome":"Caio Dias","dtNascimento":"1979-12-31","cpf":"39053344705","email":"caio@example.org"}`,
			errorKey: "idnull",
		},
		{
			name:     "mismatched id",
			path:     "/api/pessoas/3",
			body:     `{"id":2,"nome":"Caio Dias","dtNascimento":"1979-12-31","cpf":"39053344705","email":"caio@example.org"}`,
			errorKey: "idinvalid",
		},
		{
			name:     "unknown id",
			path:     "/api/pessoas/42",
			body:     `{"id":42,"nome":"Caio Dias","dtNascimento":"1979-12-31","cpf":"39053344705","email":"caio@example.org"}`,
			errorKey: "idnotfound",
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPut, tc.path, tc.body)

			s.Require().Equal(http.StatusBadRequest, rec.Code)
			s.Require().Equal("error."+tc.errorKey, rec.Header().Get("X-"+appName+"-error"))
			s.Require().Equal("servicePagamentoPessoa", rec.Header().Get("X-"+appName+"-params"))
		})
	}
}

func (s *PersonHandlerTestSuite) TestPartialUpdatePerson() {
	rec := s.do(http.MethodPatch, "/api/pessoas/1", `{"id":1,"email":"ana.lima@example.com"}`,
		"Content-Type", "application/merge-patch+json")
	s.Require().Equal(http.StatusOK, rec.Code)

	var dto model.PersonDTO
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &dto))
	s.Require().Equal("ana.lima@example.com", dto.Email)
	s.Require().Equal("Ana Lima", dto.Nome)
}

func (s *PersonHandlerTestSuite) TestPartialUpdatePerson_Rejections() {
	cases := []struct {
		name        string
		path        string
		body        string
		contentType string
		status      int
	}{
		{name: "unsupported media type", path: "/api/pessoas/1", body: `{"id":1}`, contentType: "text/plain", status: http.StatusUnsupportedMediaType},
		{name: "invalid cpf", path: "/api/pessoas/1", body: `{"id":1,"cpf":"12"}`, contentType: "application/json", status: http.StatusBadRequest},
		{name: "unknown id", path: "/api/pessoas/77", body: `{"id":77}`, contentType: "application/json", status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			rec := s.do(http.MethodPatch, tc.path, tc.body, "Content-Type", tc.contentType)
			s.Require().Equal(tc.status, rec.Code)
		})
	}
}

func (s *PersonHandlerTestSuite) TestDeletePerson() {
	rec := s.do(http.MethodDelete, "/api/pessoas/2", "")
	s.Require().Equal(http.StatusNoContent, rec.Code)
	s.Require().Equal(appName+".servicePagamentoPessoa.deleted", rec.Header().Get("X-"+appName+"-alert"))
	s.Require().Equal("2", rec.Header().Get("X-"+appName+"-params"))

	s.Require().Equal(http.StatusNotFound, s.do(http.MethodGet, "/api/pessoas/2", "").Code)
	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/api/pessoas/2", "").Code)
}
