package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/callsys/callboard/internal/repository/board"
	"github.com/callsys/callboard/internal/service/auth"
	boardsvc "github.com/callsys/callboard/internal/service/board"
	"github.com/callsys/callboard/pkg/rest"
	"github.com/callsys/callboard/pkg/validator"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, boardsvc.ErrValidation), errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, board.ErrFeaturedNotFound), errors.Is(err, board.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, board.ErrConflict), errors.Is(err, board.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (c controller) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		c.logger.ErrorContext(r.Context(), "request failed", "error", err)
		rest.WriteJSON(w, status, rest.Envelope{"error": "internal server error"})
		return
	}

	c.logger.InfoContext(r.Context(), "request rejected", "status", status, "error", err)
	rest.WriteJSON(w, status, rest.Envelope{"error": err.Error()})
}

// decode reads and validates the request body into dst. It writes the error
// response and returns false when the body is unusable. A field of the wrong
// type, such as a fractional number, is a validation error.
func (c controller) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := rest.ReadJSON(r, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			c.logger.InfoContext(r.Context(), "validation failed", "error", err)
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": []validator.ValidationError{{
				Field:   typeErr.Field,
				Code:    "TYPE",
				Message: fmt.Sprintf("%s must be of type %s", typeErr.Field, typeErr.Type),
			}}})
			return false
		}

		c.logger.InfoContext(r.Context(), "failed to read json", "error", err)
		rest.WriteJSON(w, http.StatusUnprocessableEntity, rest.Envelope{"error": err.Error()})
		return false
	}

	if validationErrors, ok := c.validate.Validate(dst); !ok {
		c.logger.InfoContext(r.Context(), "validation failed", "errors", validationErrors)
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return false
	}

	return true
}
