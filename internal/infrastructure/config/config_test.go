package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
simulator:
  definitions:
    - "./definitions/lab.yaml"
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 9090
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Simulator.Definitions) != 1 || cfg.Simulator.Definitions[0] != "./definitions/lab.yaml" {
		t.Errorf("Simulator.Definitions = %v", cfg.Simulator.Definitions)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "simulator: [not: valid")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "simulator: {}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Simulator.Bundled != "default.yaml" {
		t.Errorf("Simulator.Bundled = %q, want %q", cfg.Simulator.Bundled, "default.yaml")
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port = %d, want default 8080", cfg.API.Port)
	}
	if cfg.MQTT.TopicPrefix != "instrsim" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "instrsim")
	}
	if !cfg.History.Enabled || cfg.History.MaxEntries != 1000 {
		t.Errorf("History = %+v, want enabled with 1000 max entries", cfg.History)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json defaults", cfg.Logging)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("INSTRSIM_DATABASE_PATH", "/override/sim.db")
	t.Setenv("INSTRSIM_MQTT_HOST", "env-broker")
	t.Setenv("INSTRSIM_LOG_LEVEL", "debug")

	path := writeConfig(t, `
database:
  path: "/file/sim.db"
mqtt:
  broker:
    host: "file-broker"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.Path != "/override/sim.db" {
		t.Errorf("Database.Path = %q, want env override", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "env-broker" {
		t.Errorf("MQTT.Broker.Host = %q, want env override", cfg.MQTT.Broker.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want env override", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name: "history without database path",
			mutate: func(cfg *Config) {
				cfg.Database.Path = ""
			},
			wantErr: "database.path",
		},
		{
			name: "negative history cap",
			mutate: func(cfg *Config) {
				cfg.History.MaxEntries = -1
			},
			wantErr: "history.max_entries",
		},
		{
			name: "bad qos",
			mutate: func(cfg *Config) {
				cfg.MQTT.QoS = 3
			},
			wantErr: "mqtt.qos",
		},
		{
			name: "bridge without topic prefix",
			mutate: func(cfg *Config) {
				cfg.MQTT.Enabled = true
				cfg.MQTT.TopicPrefix = ""
			},
			wantErr: "mqtt.topic_prefix",
		},
		{
			name: "bad api port",
			mutate: func(cfg *Config) {
				cfg.API.Port = 0
			},
			wantErr: "api.port",
		},
		{
			name: "influxdb enabled without url",
			mutate: func(cfg *Config) {
				cfg.InfluxDB.Enabled = true
				cfg.InfluxDB.Bucket = "traffic"
			},
			wantErr: "influxdb.url",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestTimeoutAccessors(t *testing.T) {
	cfg := Default()
	if cfg.GetReadTimeout().Seconds() != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30s", cfg.GetReadTimeout())
	}
	if cfg.GetWriteTimeout().Seconds() != 30 {
		t.Errorf("GetWriteTimeout() = %v, want 30s", cfg.GetWriteTimeout())
	}
	if cfg.GetIdleTimeout().Seconds() != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60s", cfg.GetIdleTimeout())
	}
}
