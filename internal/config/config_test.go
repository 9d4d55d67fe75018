package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Store.Driver, DriverSQLite)
	}
	if cfg.Store.Path != "message.db" {
		t.Errorf("path = %q, want message.db", cfg.Store.Path)
	}
	if cfg.OpenAI.ClassifierModel != "gpt-3.5-turbo" {
		t.Errorf("classifier model = %q", cfg.OpenAI.ClassifierModel)
	}
	if cfg.OpenAI.ExtractorModel != "gpt-4" {
		t.Errorf("extractor model = %q", cfg.OpenAI.ExtractorModel)
	}
	if cfg.Watcher.DebounceSeconds != 3 {
		t.Errorf("debounce = %d, want 3", cfg.Watcher.DebounceSeconds)
	}
	if cfg.Watcher.PollSeconds != 2 {
		t.Errorf("poll = %d, want 2", cfg.Watcher.PollSeconds)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
store:
  driver: mysql
  host: db.internal
  database: chattodo
openai:
  api_key: sk-test
  extractor_model: gpt-4-turbo
  emulator: true
watcher:
  debounce_seconds: 5
  digest_schedule: "0 9 * * *"
server:
  port: 9090
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Store.Driver != DriverMySQL {
		t.Errorf("driver = %q", cfg.Store.Driver)
	}
	if cfg.Store.Host != "db.internal" {
		t.Errorf("host = %q", cfg.Store.Host)
	}
	if cfg.Store.Port != 3306 {
		t.Errorf("port default = %d, want 3306", cfg.Store.Port)
	}
	if cfg.OpenAI.ExtractorModel != "gpt-4-turbo" {
		t.Errorf("extractor model = %q", cfg.OpenAI.ExtractorModel)
	}
	if !cfg.OpenAI.Emulator {
		t.Error("emulator should be enabled")
	}
	// Unset fields still pick up defaults.
	if cfg.OpenAI.ClassifierModel != "gpt-3.5-turbo" {
		t.Errorf("classifier model = %q", cfg.OpenAI.ClassifierModel)
	}
	if cfg.Watcher.DebounceSeconds != 5 {
		t.Errorf("debounce = %d, want 5", cfg.Watcher.DebounceSeconds)
	}
	if cfg.Watcher.DigestSchedule != "0 9 * * *" {
		t.Errorf("digest schedule = %q", cfg.Watcher.DigestSchedule)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown driver",
			yaml:    "store:\n  driver: postgres\n",
			wantErr: "store.driver",
		},
		{
			name:    "mysql without database",
			yaml:    "store:\n  driver: mysql\n",
			wantErr: "store.database",
		},
		{
			name:    "negative debounce",
			yaml:    "watcher:\n  debounce_seconds: -1\n",
			wantErr: "debounce_seconds",
		},
		{
			name:    "negative poll",
			yaml:    "watcher:\n  poll_seconds: -2\n",
			wantErr: "poll_seconds",
		},
		{
			name:    "malformed yaml",
			yaml:    "store: [not a map",
			wantErr: "parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_EnvOverridesAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "message.yaml")
	if err := os.WriteFile(path, []byte("openai:\n  api_key: from-file\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OpenAI.APIKey != "from-env" {
		t.Errorf("api key = %q, want from-env", cfg.OpenAI.APIKey)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
