package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./statify.db" {
			t.Errorf("expected database path ./statify.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Credentials.Spotify.ClientID != PlaceholderClientID {
			t.Errorf("expected placeholder client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Auth.VerifierLength != 128 {
			t.Errorf("expected verifier length 128, got %d", config.Auth.VerifierLength)
		}
		if config.Auth.PendingTTL != 10*time.Minute {
			t.Errorf("expected pending ttl 10m, got %v", config.Auth.PendingTTL)
		}
		if config.Auth.Store != "memory" {
			t.Errorf("expected memory store, got %s", config.Auth.Store)
		}
		if len(config.Credentials.Spotify.Scopes) == 0 {
			t.Error("expected default scopes")
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("Configured", func(t *testing.T) {
		tt := []struct {
			name     string
			clientID string
			want     bool
		}{
			{name: "empty", clientID: "", want: false},
			{name: "placeholder", clientID: PlaceholderClientID, want: false},
			{name: "real", clientID: "abc123", want: true},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				s := SpotifyConfig{ClientID: tc.clientID}
				if got := s.Configured(); got != tc.want {
					t.Errorf("Configured() = %v, want %v", got, tc.want)
				}
			})
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080

[auth]
verifier_length = 64
store = "sqlite"
pending_ttl = "5m"

[credentials.spotify]
client_id = "test_client_id"
redirect_uri = "http://localhost:8080/callback"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Auth.VerifierLength != 64 {
			t.Errorf("expected verifier length 64, got %d", config.Auth.VerifierLength)
		}
		if config.Auth.PendingTTL != 5*time.Minute {
			t.Errorf("expected pending ttl 5m, got %v", config.Auth.PendingTTL)
		}
		if config.API.BaseURL != "https://api.spotify.com/v1" {
			t.Errorf("expected default api base url to survive partial config, got %s", config.API.BaseURL)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tt := []struct {
			name string
			body string
		}{
			{name: "short verifier", body: "[auth]\nverifier_length = 12\n"},
			{name: "long verifier", body: "[auth]\nverifier_length = 200\n"},
			{name: "unknown store", body: "[auth]\nstore = \"redis\"\n"},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tc.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("SaveConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.toml")
		config := DefaultConfig()
		config.Credentials.Spotify.ClientID = "saved_id"
		config.Server.Port = 4321

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to reload config: %v", err)
		}
		if loaded.Credentials.Spotify.ClientID != "saved_id" {
			t.Errorf("expected saved_id, got %s", loaded.Credentials.Spotify.ClientID)
		}
		if loaded.Server.Port != 4321 {
			t.Errorf("expected port 4321, got %d", loaded.Server.Port)
		}

		if err := SaveConfig(configPath, nil); err == nil {
			t.Error("expected error for nil config")
		}
	})
}
