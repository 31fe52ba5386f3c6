package web

import (
	"errors"
	"io"
	"net/http"

	"signal-relay/internal/domain"

	"go.uber.org/zap"
)

const maxAlertBody = 1 << 20 // 1 MiB

// handleWebhook relays one alert. Validation defects come back as 400;
// everything downstream is a generic 500, with full detail only in the
// logs. Secrets never appear in either place.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxAlertBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unreadable request body"})
		return
	}

	if err := s.service.Process(r.Context(), body); err != nil {
		s.respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "order executed"})
}

func (s *Server) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrMalformedAlert) {
		s.logger.Warn("Rejected alert", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Downstream failures share one generic message; the caller gets no
	// exchange internals.
	s.logger.Error("Relay failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "order could not be executed"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
