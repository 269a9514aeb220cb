package config

import (
	"os"
	"testing"
	"time"
)

// decodes to a 36-byte secret, comfortably over the 32-byte floor
const b64Secret = "dGVzdHNlY3JldDEyMzQ1Njc4OTBhYmNkZWZnaGlqa2xtbm9w"

func TestHMACSecrets(t *testing.T) {
	os.Unsetenv("CK_HMAC_SECRET")
	os.Unsetenv("CK_HMAC_SECRET_1")
	os.Unsetenv("CK_HMAC_SECRET_2")

	t.Run("single secret", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET", "0123456789abcdef0123456789abcdef:"+b64Secret)
		defer os.Unsetenv("CK_HMAC_SECRET")

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 1 {
			t.Errorf("expected 1 secret, got %d", len(secrets))
		}
		if _, ok := secrets["0123456789abcdef0123456789abcdef"]; !ok {
			t.Errorf("secret_id not found in map")
		}
	})

	t.Run("numbered secrets for rotation", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET_1", "0123456789abcdef0123456789abcdef:"+b64Secret)
		os.Setenv("CK_HMAC_SECRET_2", "fedcba9876543210fedcba9876543210:"+b64Secret)
		defer os.Unsetenv("CK_HMAC_SECRET_1")
		defer os.Unsetenv("CK_HMAC_SECRET_2")

		secrets, err := HMACSecrets()
		if err != nil {
			t.Fatalf("HMACSecrets failed: %v", err)
		}
		if len(secrets) != 2 {
			t.Errorf("expected 2 secrets, got %d", len(secrets))
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET", "invalid_format")
		defer os.Unsetenv("CK_HMAC_SECRET")

		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for invalid format")
		}
	})

	t.Run("short secret_id", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET", "short:"+b64Secret)
		defer os.Unsetenv("CK_HMAC_SECRET")

		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for short secret_id")
		}
	})

	t.Run("non-hex secret_id", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET", "0123456789abcdefGHIJKLMNOPQRSTUV:"+b64Secret)
		defer os.Unsetenv("CK_HMAC_SECRET")

		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for non-hex secret_id")
		}
	})

	t.Run("duplicate secret_id rejected", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET", "0123456789abcdef0123456789abcdef:"+b64Secret)
		os.Setenv("CK_HMAC_SECRET_1", "0123456789abcdef0123456789abcdef:"+b64Secret)
		defer os.Unsetenv("CK_HMAC_SECRET")
		defer os.Unsetenv("CK_HMAC_SECRET_1")

		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for duplicate secret_id")
		}
	})

	t.Run("secret under 32 bytes", func(t *testing.T) {
		os.Setenv("CK_HMAC_SECRET", "0123456789abcdef0123456789abcdef:c2hvcnQ=")
		defer os.Unsetenv("CK_HMAC_SECRET")

		if _, err := HMACSecrets(); err == nil {
			t.Error("expected error for undersized secret")
		}
	})
}

func TestLoadConfig(t *testing.T) {
	os.Unsetenv("CK_SERVER_HOST")
	os.Unsetenv("CK_SERVER_PORT")
	os.Unsetenv("CK_SERVER_DEFAULT_COUNTRY")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Host != "0.0.0.0" {
			t.Errorf("expected host 0.0.0.0, got %s", cfg.Host)
		}
		if cfg.Port != 8080 {
			t.Errorf("expected port 8080, got %d", cfg.Port)
		}
		if cfg.RequestTimeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", cfg.RequestTimeout)
		}
		if cfg.DefaultCountry != "FAR" {
			t.Errorf("expected default country FAR, got %s", cfg.DefaultCountry)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		os.Setenv("CK_SERVER_PORT", "9090")
		os.Setenv("CK_SERVER_DEFAULT_COUNTRY", "NAM")
		defer os.Unsetenv("CK_SERVER_PORT")
		defer os.Unsetenv("CK_SERVER_DEFAULT_COUNTRY")

		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if cfg.Port != 9090 {
			t.Errorf("expected port 9090, got %d", cfg.Port)
		}
		if cfg.DefaultCountry != "NAM" {
			t.Errorf("expected default country NAM, got %s", cfg.DefaultCountry)
		}
	})

	t.Run("invalid port from environment", func(t *testing.T) {
		os.Setenv("CK_SERVER_PORT", "70000")
		defer os.Unsetenv("CK_SERVER_PORT")

		if _, err := LoadConfig(""); err == nil {
			t.Error("expected error for out-of-range port")
		}
	})

	t.Run("non alpha-3 default country", func(t *testing.T) {
		os.Setenv("CK_SERVER_DEFAULT_COUNTRY", "FARAWAY")
		defer os.Unsetenv("CK_SERVER_DEFAULT_COUNTRY")

		if _, err := LoadConfig(""); err == nil {
			t.Error("expected error for non alpha-3 country code")
		}
	})
}
