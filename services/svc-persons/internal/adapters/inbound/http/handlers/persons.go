package handlers

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/architeacher/persons/pkg/decorator"
	"github.com/architeacher/persons/pkg/logger"
	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases/commands"
	"github.com/architeacher/persons/services/svc-persons/internal/usecases/queries"
)

const (
	ResourcePath = "/api/pessoas"

	cacheStatusHeader = "X-Cache"
	mergePatchJSON    = "application/merge-patch+json"
)

type (
	PersonHandlerConfig struct {
		ClientAppName   string
		DefaultPageSize uint
		MaxPageSize     uint
	}

	// PersonHandler serves the person resource: criteria listing and
	// counting plus CRUD.
	PersonHandler struct {
		app       *usecases.Application
		binder    requestBinder
		validator bodyValidator
		alerts    alerts
		logger    logger.Logger
	}
)

func NewPersonHandler(app *usecases.Application, cfg PersonHandlerConfig, log logger.Logger) *PersonHandler {
	return &PersonHandler{
		app:       app,
		binder:    newRequestBinder(cfg.DefaultPageSize, cfg.MaxPageSize),
		validator: newBodyValidator(),
		alerts:    alerts{appName: cfg.ClientAppName},
		logger:    log,
	}
}

// Routes mounts the resource under ResourcePath.
func (h *PersonHandler) Routes(router chi.Router) {
	router.Route(ResourcePath, func(r chi.Router) {
		r.Get("/", h.ListPersons)
		r.Post("/", h.CreatePerson)
		r.Get("/count", h.CountPersons)
		r.Get("/{id}", h.GetPerson)
		r.Put("/{id}", h.UpdatePerson)
		r.Patch("/{id}", h.PartialUpdatePerson)
		r.Delete("/{id}", h.DeletePerson)
	})
}

func (h *PersonHandler) ListPersons(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	criteria, err := h.binder.bindCriteria(values)
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	page, err := h.binder.bindPage(values)
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	result, err := h.app.Queries.ListPersons.Execute(r.Context(), queries.ListPersonsQuery{
		Criteria: criteria,
		Page:     page,
	})
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	setPaginationHeaders(w, r, result)
	writeJSONResponse(w, http.StatusOK, result.Content)
}

func (h *PersonHandler) CountPersons(w http.ResponseWriter, r *http.Request) {
	criteria, err := h.binder.bindCriteria(r.URL.Query())
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	ctx, recorder := decorator.WithCacheStatusRecorder(r.Context())

	count, err := h.app.Queries.CountPersons.Execute(ctx, queries.CountPersonsQuery{Criteria: criteria})
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	w.Header().Set(cacheStatusHeader, string(recorder.Status()))
	writeJSONResponse(w, http.StatusOK, count)
}

func (h *PersonHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	dto, err := h.app.Queries.GetPerson.Execute(r.Context(), queries.GetPersonQuery{ID: id})
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	writeJSONResponse(w, http.StatusOK, dto)
}

func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var dto model.PersonDTO
	if !h.decode(w, r, &dto) {
		return
	}

	if dto.ID != nil {
		h.alerts.badRequest(w, "A new pessoa cannot already have an ID", "idexists")

		return
	}

	if err := h.validator.check(dto); err != nil {
		h.handleError(w, r, err)

		return
	}

	created, err := h.app.Commands.CreatePerson.Handle(r.Context(), commands.CreatePersonCommand{Person: dto})
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	w.Header().Set("Location", ResourcePath+"/"+formatID(*created.ID))
	h.alerts.created(w, *created.ID)
	writeJSONResponse(w, http.StatusCreated, created)
}

func (h *PersonHandler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto model.PersonDTO
	if !h.decode(w, r, &dto) {
		return
	}

	if err := h.validator.check(dto); err != nil {
		h.handleError(w, r, err)

		return
	}

	if !h.checkTarget(w, r, id, dto.ID) {
		return
	}

	updated, err := h.app.Commands.UpdatePerson.Handle(r.Context(), commands.UpdatePersonCommand{Person: dto})
	if err != nil {
		if errors.Is(err, model.ErrPersonNotFound) {
			h.alerts.badRequest(w, "Entity not found", "idnotfound")

			return
		}

		h.handleError(w, r, err)

		return
	}

	h.alerts.updated(w, id)
	writeJSONResponse(w, http.StatusOK, updated)
}

// PartialUpdatePerson merges the non-null fields of a merge patch. A person
// that disappears between the existence check and the write answers 404.
func (h *PersonHandler) PartialUpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if mediaType, _, err := mime.ParseMediaType(r.Header.Get(contentTypeHeader)); err != nil ||
		(mediaType != applicationJSON && mediaType != mergePatchJSON) {
		writeErrorResponse(w, http.StatusUnsupportedMediaType, codeUnsupportedMdt,
			"content type must be application/json or application/merge-patch+json")

		return
	}

	var patch model.PersonPatch
	if !h.decode(w, r, &patch) {
		return
	}

	if err := h.validator.check(patch); err != nil {
		h.handleError(w, r, err)

		return
	}

	if !h.checkTarget(w, r, id, patch.ID) {
		return
	}

	updated, err := h.app.Commands.PartialUpdatePerson.Handle(r.Context(), commands.PartialUpdatePersonCommand{
		ID:    id,
		Patch: patch,
	})
	if err != nil {
		h.handleError(w, r, err)

		return
	}

	h.alerts.updated(w, id)
	writeJSONResponse(w, http.StatusOK, updated)
}

func (h *PersonHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if _, err := h.app.Commands.DeletePerson.Handle(r.Context(), commands.DeletePersonCommand{ID: id}); err != nil {
		h.handleError(w, r, err)

		return
	}

	h.alerts.deleted(w, id)
	w.WriteHeader(http.StatusNoContent)
}

// checkTarget applies the idnull, idinvalid and idnotfound rules shared by
// PUT and PATCH.
func (h *PersonHandler) checkTarget(w http.ResponseWriter, r *http.Request, pathID int64, bodyID *int64) bool {
	if bodyID == nil {
		h.alerts.badRequest(w, "Invalid id", "idnull")

		return false
	}

	if *bodyID != pathID {
		h.alerts.badRequest(w, "Invalid ID", "idinvalid")

		return false
	}

	exists, err := h.app.Queries.PersonExists.Execute(r.Context(), queries.PersonExistsQuery{ID: pathID})
	if err != nil {
		h.handleError(w, r, err)

		return false
	}

	if !exists {
		h.alerts.badRequest(w, "Entity not found", "idnotfound")

		return false
	}

	return true
}

func (h *PersonHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, codeInvalidID, "id must be an integer")

		return 0, false
	}

	return id, true
}

func (h *PersonHandler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, codeInvalidJSON, "invalid request body")

		return false
	}

	return true
}

func (h *PersonHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs *model.ValidationErrors
	var bindingErr *model.BindingError

	switch {
	case errors.As(err, &validationErrs):
		writeValidationErrors(w, validationErrs)
	case errors.As(err, &bindingErr):
		errs := model.NewValidationErrors()
		errs.Add(bindingErr.Parameter, bindingErr.Error(), codeBadRequest)
		writeValidationErrors(w, errs)
	case errors.Is(err, model.ErrPersonNotFound):
		writeErrorResponse(w, http.StatusNotFound, codeNotFound, "person not found")
	case errors.Is(err, model.ErrDuplicatePerson):
		writeErrorResponse(w, http.StatusConflict, codeConflict, "a person with this cpf already exists")
	default:
		log := h.logger.WithContext(r.Context())
		log.Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")

		writeErrorResponse(w, http.StatusInternalServerError, codeInternalError, "internal server error")
	}
}
