package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civickit/civickit/internal/fields"
	"github.com/civickit/civickit/internal/types"
)

// handlePutEventConfig stores the form definition for one event type.
// The body is the full EventConfig; its eventType must match the URL.
func (s *Service) handlePutEventConfig(w http.ResponseWriter, r *http.Request) {
	eventType := types.EventType(chi.URLParam(r, "eventType"))

	var cfg fields.EventConfig
	if !s.decode(w, r, &cfg) {
		return
	}
	if cfg.EventType == "" {
		cfg.EventType = eventType
	}
	if cfg.EventType != eventType {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "eventType in body does not match URL",
		})
		return
	}

	// Static invariants gate storage so every later read can trust the
	// shape and validator dispatch can treat unknown types as defects.
	if err := cfg.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.store.PutEventConfig(cfg); err != nil {
		s.logger.Error("failed to store event config", "event_type", eventType, "error", err)
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	s.logger.Info("event config stored", "event_type", eventType, "fields", len(cfg.Fields))
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Service) handleGetEventConfig(w http.ResponseWriter, r *http.Request) {
	eventType := types.EventType(chi.URLParam(r, "eventType"))

	cfg, err := s.store.GetEventConfig(eventType)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cfg)
}

func (s *Service) handleListEventTypes(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListEventTypes()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"eventTypes": names})
}
