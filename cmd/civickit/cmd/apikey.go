package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/civickit/civickit/internal/core/auth"
	"github.com/civickit/civickit/internal/core/config"
	"github.com/civickit/civickit/internal/core/db"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new API key for a user",
	Long:  `Issues an API key signed with a configured HMAC secret. The plaintext key is printed once and never stored; only its hash is persisted.`,
	RunE:  runAPIKeyCreate,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke <api-key-id>",
	Short: "Revoke an API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

var (
	apikeyUserID   string
	apikeyOfficeID string
	apikeySecretID string
)

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd)
	apikeyCmd.AddCommand(apikeyRevokeCmd)

	apikeyCreateCmd.Flags().StringVar(&apikeyUserID, "user", "", "user id the key authenticates as")
	apikeyCreateCmd.Flags().StringVar(&apikeyOfficeID, "office", "", "primary office id of the user")
	apikeyCreateCmd.Flags().StringVar(&apikeySecretID, "secret-id", "", "HMAC secret id to sign with (defaults to the only configured secret)")
	apikeyCreateCmd.MarkFlagRequired("user")
	apikeyCreateCmd.MarkFlagRequired("office")
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set CK_HMAC_SECRET environment variable)")
	}

	secretID := apikeySecretID
	if secretID == "" {
		if len(secrets) != 1 {
			return fmt.Errorf("multiple HMAC secrets configured - pick one with --secret-id")
		}
		for id := range secrets {
			secretID = id
		}
	}
	secret, ok := secrets[secretID]
	if !ok {
		return fmt.Errorf("no HMAC secret with id %s configured", secretID)
	}

	queries, closeDB, err := openQueries()
	if err != nil {
		return err
	}
	defer closeDB()

	plaintext, keyID, err := auth.IssueKey(queries, secretID, secret, apikeyUserID, apikeyOfficeID)
	if err != nil {
		return err
	}

	fmt.Printf("api_key_id: %s\n", keyID)
	fmt.Printf("api_key:    %s\n", plaintext)
	fmt.Println("\nStore the key now; it cannot be recovered later.")
	return nil
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	queries, closeDB, err := openQueries()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := auth.RevokeKey(queries, args[0]); err != nil {
		return err
	}
	fmt.Println("api key revoked")
	return nil
}

func openQueries() (*db.Queries, func(), error) {
	if dbURL == "" {
		return nil, nil, fmt.Errorf("--db-url required")
	}
	conn, err := db.Open(dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	queries, err := db.LoadQueries(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return queries, func() { conn.Close() }, nil
}
