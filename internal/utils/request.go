package utils

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/folio/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// AccountIDParam reads the {accountID} route parameter.
func AccountIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "accountID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("account_id", "invalid account id %q", raw)
	}
	return id, nil
}

// DateQuery parses a YYYY-MM-DD query parameter, falling back to def when absent.
func DateQuery(r *http.Request, name string, def time.Time) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	return domain.ParseDate(name, raw)
}

// IntQuery parses a positive integer query parameter, falling back to def when absent.
func IntQuery(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, domain.NewValidationError(name, "expected a non-negative integer, got %q", raw)
	}
	return v, nil
}

// WriteServiceError maps validation failures to 400 and everything else to 500.
func WriteServiceError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error, msg string) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		WriteError(w, r, http.StatusBadRequest, ve.Message, ve.Field)
		return
	}

	log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	WriteError(w, r, http.StatusInternalServerError, msg, "")
}
