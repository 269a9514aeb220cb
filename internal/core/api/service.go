// Package api implements the HTTP handlers of the civickit registry
// service: event form configuration, declaration validation, and saved
// search queries.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/civickit/civickit/internal/core/config"
	"github.com/civickit/civickit/internal/core/db"
	"github.com/civickit/civickit/internal/fields"
	"github.com/civickit/civickit/internal/search"
	"github.com/civickit/civickit/internal/types"
)

// Store is the persistence surface the handlers need. Implemented by
// *db.Store; tests substitute an in-memory fake.
type Store interface {
	PutEventConfig(cfg fields.EventConfig) error
	GetEventConfig(eventType types.EventType) (fields.EventConfig, error)
	ListEventTypes() ([]types.EventType, error)

	CreateSavedQuery(name string, eventType types.EventType, q search.Query) (db.SavedQuery, error)
	UpdateSavedQuery(id types.QueryID, name string, eventType types.EventType, q search.Query) (db.SavedQuery, error)
	GetSavedQuery(id types.QueryID) (db.SavedQuery, error)
	ListSavedQueries() ([]db.SavedQuery, error)
	DeleteSavedQuery(id types.QueryID) error
}

// Service is a thin orchestration layer: handlers decode, delegate to
// the fields/search packages, and encode. No domain logic lives here.
type Service struct {
	store    Store
	registry *fields.Registry
	cfg      *config.ServerConfig
	logger   *slog.Logger
}

// NewService wires the handlers to their dependencies.
func NewService(store Store, cfg *config.ServerConfig, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		registry: fields.NewRegistry(cfg.DefaultCountry),
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Register mounts all endpoints on the router. The caller wraps the
// router in authentication middleware.
func (s *Service) Register(r chi.Router) {
	r.Get("/v1/events", s.handleListEventTypes)
	r.Put("/v1/events/{eventType}/config", s.handlePutEventConfig)
	r.Get("/v1/events/{eventType}/config", s.handleGetEventConfig)
	r.Post("/v1/events/{eventType}/validate", s.handleValidate)

	r.Post("/v1/queries", s.handleCreateQuery)
	r.Get("/v1/queries", s.handleListQueries)
	r.Get("/v1/queries/{queryID}", s.handleGetQuery)
	r.Put("/v1/queries/{queryID}", s.handleUpdateQuery)
	r.Delete("/v1/queries/{queryID}", s.handleDeleteQuery)
	r.Post("/v1/queries/{queryID}/resolve", s.handleResolveQuery)
}

// today is the evaluation date handed to validators when the request
// does not pin one.
func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func (s *Service) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// writeError maps domain sentinels onto HTTP statuses and keeps the
// response envelope uniform.
func (s *Service) writeError(w http.ResponseWriter, status int, err error) {
	switch {
	case errors.Is(err, types.ErrEventNotFound), errors.Is(err, types.ErrQueryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, types.ErrUnsupportedUserField):
		status = http.StatusUnprocessableEntity
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
