package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

/*
 * API key issuance and revocation.
 *
 * Keys are created operator-side (civickit apikey create); the service
 * itself never mints them. The plaintext key exists only in the return
 * value of IssueKey - storage sees the HMAC-SHA256 hash and nothing
 * else.
 */

// IssueKey mints an API key under the given HMAC secret, stores its
// hash with the owning user and office, and returns the plaintext plus
// the key's database id. The plaintext is shown once; it cannot be
// recovered from storage.
func IssueKey(queries Queries, secretID string, secret []byte, userID, primaryOfficeID string) (plaintext, keyID string, err error) {
	random := make([]byte, 32)
	if _, err := rand.Read(random); err != nil {
		return "", "", fmt.Errorf("failed to generate key material: %w", err)
	}

	plaintext = FormatAPIKey(secretID, hex.EncodeToString(random))
	if _, _, err := ParseAPIKey(plaintext); err != nil {
		return "", "", fmt.Errorf("secret_id %q does not produce a valid key: %w", secretID, err)
	}

	keyID = uuid.Must(uuid.NewV7()).String()
	hash := ComputeHMAC(secret, plaintext)
	now := time.Now().UTC().Format(time.RFC3339)

	if _, err := queries.Exec("insert-api-key", keyID, hash, userID, primaryOfficeID, now); err != nil {
		return "", "", fmt.Errorf("failed to store api key: %w", err)
	}
	return plaintext, keyID, nil
}

// RevokeKey marks a key revoked. Revoking an already revoked key is an
// error; the first revocation keeps its timestamp.
func RevokeKey(queries Queries, keyID string) error {
	res, err := queries.Exec("revoke-api-key", time.Now().UTC().Format(time.RFC3339), keyID)
	if err != nil {
		return fmt.Errorf("failed to revoke api key %s: %w", keyID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("api key %s not found or already revoked", keyID)
	}
	return nil
}
