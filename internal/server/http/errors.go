package http

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/logging"
	"github.com/go-chi/render"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// classify maps a service error to an HTTP status and a stable error slug.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, common.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	status, slug := classify(err)

	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		log.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = "internal error"
	case http.StatusUnauthorized:
		msg = common.ErrUnauthenticated.Error()
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: status, Error: slug, Message: msg})
}
