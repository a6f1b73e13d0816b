package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/niksmo/stylehub/internal/core/domain"
)

var errInvalidJSON = errors.New("invalid JSON data")

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "httphandler.writeJSON"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.With("op", op).Error("failed to write response body", "err", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: vErr.Message,
			Field: vErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, errInvalidJSON):
		writeMessage(w, http.StatusBadRequest, errInvalidJSON.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, domain.ErrNotFound.Error())
	case errors.Is(err, domain.ErrEmptyCart):
		writeMessage(w, http.StatusConflict, domain.ErrEmptyCart.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, domain.ErrInvalidTransition.Error())
	case errors.Is(err, domain.ErrOrderInProgress):
		writeMessage(w, http.StatusConflict, domain.ErrOrderInProgress.Error())
	case errors.Is(err, domain.ErrOutOfStock):
		writeMessage(w, http.StatusConflict, domain.ErrOutOfStock.Error())
	case errors.Is(err, domain.ErrProcessing):
		writeMessage(w, http.StatusPaymentRequired, domain.ErrProcessing.Error())
	case errors.Is(err, domain.ErrLookup):
		writeMessage(w, http.StatusServiceUnavailable, domain.ErrLookup.Error())
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errInvalidJSON, err)
	}
	return nil
}

// pathID reads a positive integer path value.
func pathID(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}
