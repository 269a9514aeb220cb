package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/civickit/civickit/internal/core/auth"
	"github.com/civickit/civickit/internal/search"
	"github.com/civickit/civickit/internal/types"
)

// SavedQueryRequest creates or replaces a saved query. Query is kept
// raw until SafeParse accepts it; nothing structurally invalid reaches
// storage.
type SavedQueryRequest struct {
	Name      string          `json:"name"`
	EventType types.EventType `json:"eventType"`
	Query     json.RawMessage `json:"query"`
}

func (s *Service) parseQueryBody(w http.ResponseWriter, r *http.Request) (SavedQueryRequest, search.Query, bool) {
	var req SavedQueryRequest
	if !s.decode(w, r, &req) {
		return SavedQueryRequest{}, search.Query{}, false
	}
	if req.Name == "" || req.EventType == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "name and eventType are required",
		})
		return SavedQueryRequest{}, search.Query{}, false
	}

	res := search.SafeParseQuery(req.Query)
	if !res.Success {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "invalid query",
			"issues": res.Issues,
		})
		return SavedQueryRequest{}, search.Query{}, false
	}
	return req, *res.Value, true
}

func (s *Service) handleCreateQuery(w http.ResponseWriter, r *http.Request) {
	req, query, ok := s.parseQueryBody(w, r)
	if !ok {
		return
	}

	saved, err := s.store.CreateSavedQuery(req.Name, req.EventType, query)
	if err != nil {
		s.logger.Error("failed to create saved query", "error", err)
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	s.logger.Info("saved query created", "query_id", saved.ID, "event_type", saved.EventType)
	s.writeJSON(w, http.StatusCreated, saved)
}

func (s *Service) handleUpdateQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.queryID(w, r)
	if !ok {
		return
	}
	req, query, ok := s.parseQueryBody(w, r)
	if !ok {
		return
	}

	saved, err := s.store.UpdateSavedQuery(id, req.Name, req.EventType, query)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Service) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.queryID(w, r)
	if !ok {
		return
	}
	saved, err := s.store.GetSavedQuery(id)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, saved)
}

func (s *Service) handleListQueries(w http.ResponseWriter, r *http.Request) {
	saved, err := s.store.ListSavedQueries()
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"queries": saved})
}

func (s *Service) handleDeleteQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.queryID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteSavedQuery(id); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleResolveQuery binds a saved query's user-field placeholders to
// the calling principal and returns the executable form. The stored
// query is never modified; each caller gets their own resolution.
func (s *Service) handleResolveQuery(w http.ResponseWriter, r *http.Request) {
	id, ok := s.queryID(w, r)
	if !ok {
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		s.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return
	}

	saved, err := s.store.GetSavedQuery(id)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resolved, err := search.DeserializeQuery(saved.Query, search.UserContext{
		ID:              principal.UserID,
		PrimaryOfficeID: principal.PrimaryOfficeID,
	})
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	s.logger.Info("saved query resolved", "query_id", id, "user_id", principal.UserID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"id":        saved.ID,
		"eventType": saved.EventType,
		"query":     resolved,
	})
}

func (s *Service) queryID(w http.ResponseWriter, r *http.Request) (types.QueryID, bool) {
	id, err := types.ParseQueryID(chi.URLParam(r, "queryID"))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid query id"})
		return "", false
	}
	return id, true
}
