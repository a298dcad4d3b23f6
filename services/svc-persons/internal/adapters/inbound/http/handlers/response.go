package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/architeacher/persons/services/svc-persons/internal/domain/model"
)

const (
	contentTypeHeader = "Content-Type"
	applicationJSON   = "application/json"

	codeBadRequest     = "BAD_REQUEST"
	codeNotFound       = "NOT_FOUND"
	codeConflict       = "CONFLICT"
	codeInternalError  = "INTERNAL_ERROR"
	codeInvalidID      = "INVALID_ID"
	codeInvalidJSON    = "INVALID_JSON"
	codeUnsupportedMdt = "UNSUPPORTED_MEDIA_TYPE"

	// entityName identifies the person resource in alert headers.
	entityName = "servicePagamentoPessoa"
)

type (
	fieldError struct {
		Field   string `json:"field"`
		Message string `json:"message"`
		Code    string `json:"code,omitempty"`
	}

	ErrorResponse struct {
		Code       string       `json:"code"`
		Message    string       `json:"message"`
		Timestamp  time.Time    `json:"timestamp"`
		EntityName string       `json:"entityName,omitempty"`
		ErrorKey   string       `json:"errorKey,omitempty"`
		Details    []fieldError `json:"details,omitempty"`
	}

	// alerts renders the X-<app>-alert, X-<app>-params and X-<app>-error
	// headers a client application uses to show notifications.
	alerts struct {
		appName string
	}
)

func writeJSONResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set(contentTypeHeader, applicationJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, ErrorResponse{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}

func writeValidationErrors(w http.ResponseWriter, errs *model.ValidationErrors) {
	details := make([]fieldError, 0, len(errs.Errors))
	for _, e := range errs.Errors {
		details = append(details, fieldError{Field: e.Field, Message: e.Message, Code: e.Code})
	}

	writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
		Code:      codeBadRequest,
		Message:   "request validation failed",
		Timestamp: time.Now().UTC(),
		Details:   details,
	})
}

func (a alerts) created(w http.ResponseWriter, id int64) {
	a.entity(w, "created", id)
}

func (a alerts) updated(w http.ResponseWriter, id int64) {
	a.entity(w, "updated", id)
}

func (a alerts) deleted(w http.ResponseWriter, id int64) {
	a.entity(w, "deleted", id)
}

func (a alerts) entity(w http.ResponseWriter, action string, id int64) {
	w.Header().Set("X-"+a.appName+"-alert", a.appName+"."+entityName+"."+action)
	w.Header().Set("X-"+a.appName+"-params", url.QueryEscape(formatID(id)))
}

// badRequest answers 400 with a failure alert such as "error.idnull".
func (a alerts) badRequest(w http.ResponseWriter, message, errorKey string) {
	w.Header().Set("X-"+a.appName+"-error", "error."+errorKey)
	w.Header().Set("X-"+a.appName+"-params", entityName)

	writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
		Code:       codeBadRequest,
		Message:    message,
		Timestamp:  time.Now().UTC(),
		EntityName: entityName,
		ErrorKey:   errorKey,
	})
}
