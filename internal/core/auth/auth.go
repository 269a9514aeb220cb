// Package auth provides HMAC-based API key authentication for the
// civickit HTTP API.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const principalKey = contextKey("principal")

// Principal is the authenticated caller: the user behind the API key
// plus the office that scopes their searches. These two properties are
// exactly what user-field placeholder resolution needs.
type Principal struct {
	UserID          string
	PrimaryOfficeID string
}

// Queries is the slice of the database layer authentication needs.
// Implemented by *db.Queries.
type Queries interface {
	Get(name string, dest interface{}, args ...interface{}) error
	Exec(name string, args ...interface{}) (sql.Result, error)
}

// Authenticator validates API keys against HMAC-SHA256 hashes. Secrets
// live in memory for O(1) lookup by the secret_id embedded in the key.
type Authenticator struct {
	secrets map[string][]byte
	queries Queries
	logger  *slog.Logger
}

// NewAuthenticator creates an authenticator from the configured HMAC
// secrets and the loaded query set.
func NewAuthenticator(secrets map[string][]byte, queries Queries, logger *slog.Logger) *Authenticator {
	return &Authenticator{secrets: secrets, queries: queries, logger: logger}
}

// Authenticate validates an API key and returns the caller's principal.
func (a *Authenticator) Authenticate(apiKey string) (Principal, error) {
	secretID, _, err := ParseAPIKey(apiKey)
	if err != nil {
		return Principal{}, err
	}

	secret, ok := a.secrets[secretID]
	if !ok {
		return Principal{}, ErrUnknownKey
	}

	computed := ComputeHMAC(secret, apiKey)

	var row struct {
		APIKeyID        string         `db:"api_key_id"`
		UserID          string         `db:"user_id"`
		PrimaryOfficeID string         `db:"primary_office_id"`
		RevokedAt       sql.NullString `db:"revoked_at"`
		LastUsedAt      sql.NullString `db:"last_used_at"`
	}

	err = a.queries.Get("get-api-key-by-hash", &row, computed)
	if errors.Is(err, sql.ErrNoRows) {
		return Principal{}, ErrInvalidKey
	}
	if err != nil {
		return Principal{}, fmt.Errorf("database error: %w", err)
	}

	if row.RevokedAt.Valid {
		return Principal{}, ErrKeyRevoked
	}

	// last_used_at updates are throttled to one write per minute per
	// key; otherwise every request is a write.
	if shouldUpdateLastUsed(row.LastUsedAt) {
		if _, err := a.queries.Exec("update-api-key-last-used",
			time.Now().UTC().Format(time.RFC3339), row.APIKeyID); err != nil {
			a.logger.Warn("failed to update api key last_used_at",
				"api_key_id", row.APIKeyID, "error", err)
		}
	}

	return Principal{UserID: row.UserID, PrimaryOfficeID: row.PrimaryOfficeID}, nil
}

func shouldUpdateLastUsed(lastUsed sql.NullString) bool {
	if !lastUsed.Valid {
		return true
	}
	t, err := time.Parse(time.RFC3339, lastUsed.String)
	if err != nil {
		return true
	}
	return time.Since(t) > time.Minute
}

// Middleware authenticates every request from its X-Api-Key header and
// injects the principal into the request context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := r.Header.Get("X-Api-Key")
		if apiKey == "" {
			writeAuthError(w, http.StatusUnauthorized, ErrMissingKey)
			return
		}

		principal, err := a.Authenticate(apiKey)
		if err != nil {
			switch {
			case errors.Is(err, ErrKeyRevoked):
				writeAuthError(w, http.StatusForbidden, err)
			case strings.Contains(err.Error(), "database error"):
				a.logger.Error("authentication unavailable", "error", err)
				writeAuthError(w, http.StatusServiceUnavailable, errors.New("authentication unavailable"))
			default:
				writeAuthError(w, http.StatusUnauthorized, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromContext extracts the authenticated principal. The false
// return only happens for handlers mounted outside the middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// WithPrincipal returns a context carrying the given principal.
// Requests go through Middleware; this exists for tests and tooling.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
