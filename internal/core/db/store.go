package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/civickit/civickit/internal/fields"
	"github.com/civickit/civickit/internal/search"
	"github.com/civickit/civickit/internal/types"
)

/*
 * Persistence for event form configurations and saved search queries.
 *
 * Both are configuration data, written rarely and read on every
 * request, so they are stored as their JSON serialization in one
 * column. Structural validation happens before insert; a row that
 * fails to decode on read is data corruption and surfaces as an error,
 * never as a silently skipped record.
 */

// Store gives the API layer typed access to configuration tables.
type Store struct {
	queries *Queries
}

// NewStore wraps a loaded query set.
func NewStore(queries *Queries) *Store {
	return &Store{queries: queries}
}

// SavedQuery is one stored advanced-search query. Query keeps its
// serialized form; placeholders resolve per request, not at rest.
type SavedQuery struct {
	ID        types.QueryID   `json:"id" db:"query_id"`
	Name      string          `json:"name" db:"name"`
	EventType types.EventType `json:"eventType" db:"event_type"`
	Query     search.Query    `json:"query" db:"-"`
	CreatedAt string          `json:"createdAt" db:"created_at"`
	UpdatedAt string          `json:"updatedAt" db:"updated_at"`
}

type savedQueryRow struct {
	ID        string `db:"query_id"`
	Name      string `db:"name"`
	EventType string `db:"event_type"`
	Query     string `db:"query"`
	CreatedAt string `db:"created_at"`
	UpdatedAt string `db:"updated_at"`
}

func (r savedQueryRow) decode() (SavedQuery, error) {
	var q search.Query
	if err := json.Unmarshal([]byte(r.Query), &q); err != nil {
		return SavedQuery{}, fmt.Errorf("stored query %s is corrupt: %w", r.ID, err)
	}
	return SavedQuery{
		ID:        types.QueryID(r.ID),
		Name:      r.Name,
		EventType: types.EventType(r.EventType),
		Query:     q,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// PutEventConfig inserts or replaces the form definition for one event
// type. The caller validates the config first.
func (s *Store) PutEventConfig(cfg fields.EventConfig) error {
	payload, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode event config: %w", err)
	}
	now := nowUTC()
	_, err = s.queries.Exec("upsert-event-config", string(cfg.EventType), string(payload), now, now)
	if err != nil {
		return fmt.Errorf("failed to store event config %s: %w", cfg.EventType, err)
	}
	return nil
}

// GetEventConfig loads the form definition for one event type.
func (s *Store) GetEventConfig(eventType types.EventType) (fields.EventConfig, error) {
	var payload string
	err := s.queries.Get("get-event-config", &payload, string(eventType))
	if errors.Is(err, sql.ErrNoRows) {
		return fields.EventConfig{}, fmt.Errorf("event %s: %w", eventType, types.ErrEventNotFound)
	}
	if err != nil {
		return fields.EventConfig{}, fmt.Errorf("failed to load event config %s: %w", eventType, err)
	}

	var cfg fields.EventConfig
	if err := json.Unmarshal([]byte(payload), &cfg); err != nil {
		return fields.EventConfig{}, fmt.Errorf("stored event config %s is corrupt: %w", eventType, err)
	}
	return cfg, nil
}

// ListEventTypes returns configured event types in name order.
func (s *Store) ListEventTypes() ([]types.EventType, error) {
	var names []string
	if err := s.queries.Select("list-event-types", &names); err != nil {
		return nil, fmt.Errorf("failed to list event types: %w", err)
	}
	out := make([]types.EventType, len(names))
	for i, n := range names {
		out[i] = types.EventType(n)
	}
	return out, nil
}

// CreateSavedQuery stores a new saved query under a fresh id.
func (s *Store) CreateSavedQuery(name string, eventType types.EventType, q search.Query) (SavedQuery, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("failed to encode query: %w", err)
	}

	// created_at mirrors the timestamp embedded in the UUIDv7 id, so
	// the column and the id can never disagree about creation time.
	id := types.NewQueryID()
	created := types.QueryIDTime(id).UTC().Format(time.RFC3339)
	_, err = s.queries.Exec("insert-saved-query",
		string(id), name, string(eventType), string(payload), created, created)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("failed to store query: %w", err)
	}

	return SavedQuery{
		ID:        id,
		Name:      name,
		EventType: eventType,
		Query:     q,
		CreatedAt: created,
		UpdatedAt: created,
	}, nil
}

// UpdateSavedQuery replaces an existing saved query in place.
func (s *Store) UpdateSavedQuery(id types.QueryID, name string, eventType types.EventType, q search.Query) (SavedQuery, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return SavedQuery{}, fmt.Errorf("failed to encode query: %w", err)
	}

	now := nowUTC()
	res, err := s.queries.Exec("update-saved-query",
		name, string(eventType), string(payload), now, string(id))
	if err != nil {
		return SavedQuery{}, fmt.Errorf("failed to update query %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return SavedQuery{}, fmt.Errorf("query %s: %w", id, types.ErrQueryNotFound)
	}

	return s.GetSavedQuery(id)
}

// GetSavedQuery loads one saved query by id.
func (s *Store) GetSavedQuery(id types.QueryID) (SavedQuery, error) {
	var row savedQueryRow
	err := s.queries.Get("get-saved-query", &row, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return SavedQuery{}, fmt.Errorf("query %s: %w", id, types.ErrQueryNotFound)
	}
	if err != nil {
		return SavedQuery{}, fmt.Errorf("failed to load query %s: %w", id, err)
	}
	return row.decode()
}

// ListSavedQueries returns all saved queries, newest first.
func (s *Store) ListSavedQueries() ([]SavedQuery, error) {
	var rows []savedQueryRow
	if err := s.queries.Select("list-saved-queries", &rows); err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	out := make([]SavedQuery, 0, len(rows))
	for _, r := range rows {
		q, err := r.decode()
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

// DeleteSavedQuery removes one saved query by id.
func (s *Store) DeleteSavedQuery(id types.QueryID) error {
	res, err := s.queries.Exec("delete-saved-query", string(id))
	if err != nil {
		return fmt.Errorf("failed to delete query %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("query %s: %w", id, types.ErrQueryNotFound)
	}
	return nil
}
