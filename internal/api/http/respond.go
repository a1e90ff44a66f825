package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/mind-engage/mindengage-exams/internal/exam"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps exam errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var quota *exam.QuotaError
	switch {
	case errors.As(err, &quota):
		respondJSON(w, http.StatusConflict, map[string]any{
			"error": quota.Error(), "used": quota.Used, "max": quota.Max,
		})
	case errors.Is(err, exam.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, exam.ErrUnavailable):
		respondJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, exam.ErrInvalidState):
		respondJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, exam.ErrPersistence):
		log.Error().Err(err).Msg("persist attempt")
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	default:
		log.Error().Err(err).Msg("request failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
