package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civickit/civickit/internal/core/api"
	"github.com/civickit/civickit/internal/core/auth"
	"github.com/civickit/civickit/internal/core/config"
	"github.com/civickit/civickit/internal/core/db"
	"github.com/civickit/civickit/internal/fields"
	"github.com/civickit/civickit/internal/search"
	"github.com/civickit/civickit/internal/types"
)

type emptyStore struct{}

func (emptyStore) PutEventConfig(fields.EventConfig) error { return nil }
func (emptyStore) GetEventConfig(t types.EventType) (fields.EventConfig, error) {
	return fields.EventConfig{}, types.ErrEventNotFound
}
func (emptyStore) ListEventTypes() ([]types.EventType, error) { return nil, nil }
func (emptyStore) CreateSavedQuery(string, types.EventType, search.Query) (db.SavedQuery, error) {
	return db.SavedQuery{}, nil
}
func (emptyStore) UpdateSavedQuery(types.QueryID, string, types.EventType, search.Query) (db.SavedQuery, error) {
	return db.SavedQuery{}, types.ErrQueryNotFound
}
func (emptyStore) GetSavedQuery(types.QueryID) (db.SavedQuery, error) {
	return db.SavedQuery{}, types.ErrQueryNotFound
}
func (emptyStore) ListSavedQueries() ([]db.SavedQuery, error) { return nil, nil }
func (emptyStore) DeleteSavedQuery(types.QueryID) error       { return types.ErrQueryNotFound }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.DefaultServerConfig()

	service, err := api.NewService(emptyStore{}, cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	authenticator := auth.NewAuthenticator(map[string][]byte{}, nil, logger)

	srv, err := New(cfg, service, authenticator, logger)
	if err != nil {
		t.Fatal(err)
	}
	return srv
}

func TestHealthEndpointSkipsAuth(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestAPIRoutesRequireKey(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated /v1/events status = %d, want 401", rec.Code)
	}
}
