package api

import (
	"errors"
	"net/http"

	"lumina/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var unauthorized *domain.UnauthorizedError
	var noTables *domain.NoTablesSelectedError
	var unsafe *domain.UnsafeStatementError
	var notSelected *domain.NotSelectedError
	var notPermitted *domain.NotPermittedError
	var selfIntent *domain.SelfIntentError
	var generation *domain.GenerationError
	var execution *domain.ExecutionError

	switch {
	case errors.As(err, &unauthorized):
		return http.StatusForbidden
	case errors.As(err, &notPermitted):
		return http.StatusForbidden
	case errors.As(err, &selfIntent):
		return http.StatusForbidden
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &noTables):
		return http.StatusBadRequest
	case errors.As(err, &notSelected):
		return http.StatusBadRequest
	case errors.As(err, &unsafe):
		return http.StatusBadRequest
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &generation):
		return http.StatusBadGateway
	case errors.As(err, &execution):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
