package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = nil

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing database addrs")
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Driver = "memcached"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
	expected := `database.driver must be "valkey" or "redis", got "memcached"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_Strategies(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"unknown resolver", func(c *Config) { c.Pipeline.Resolver = "vote" }, "pipeline.resolver"},
		{"unknown rating", func(c *Config) { c.Pipeline.Rating = "pagerank" }, "pipeline.rating"},
		{"unknown stage", func(c *Config) { c.Pipeline.Stages = []string{"rating", "tokenize"} }, "pipeline.stages[1]"},
		{"classification ok", func(c *Config) { c.Pipeline.Resolver = "classification" }, ""},
		{"idf ok", func(c *Config) { c.Pipeline.Rating = "idf" }, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if strings.Join(cfg.Pipeline.Stages, ",") != "subject_index,disambiguation,rating" {
		t.Errorf("unexpected default stages: %v", cfg.Pipeline.Stages)
	}
	if cfg.Pipeline.Resolver != "degree" || cfg.Pipeline.Rating != "position" {
		t.Errorf("unexpected default strategies: %q %q", cfg.Pipeline.Resolver, cfg.Pipeline.Rating)
	}
	if cfg.Pipeline.HITS.MaxIterations != 50 || cfg.Pipeline.HITS.Tolerance != 1e-9 {
		t.Errorf("unexpected HITS defaults: %+v", cfg.Pipeline.HITS)
	}
	if cfg.Batch.MaxBatchSize != 100 || cfg.Batch.Workers != 4 {
		t.Errorf("unexpected batch defaults: %+v", cfg.Batch)
	}
	if cfg.Storage.KeyPrefix != "entlink:" {
		t.Errorf("expected KeyPrefix='entlink:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15, Driver: "redis"},
		Pipeline: PipelineConfig{Resolver: "authority", HITS: HITSConfig{MaxIterations: 10}},
		Storage:  StorageConfig{KeyPrefix: "custom:"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Database.Driver != "redis" {
		t.Errorf("expected Driver=redis, got %q", cfg.Database.Driver)
	}
	if cfg.Pipeline.Resolver != "authority" || cfg.Pipeline.HITS.MaxIterations != 10 {
		t.Errorf("pipeline overridden: %+v", cfg.Pipeline)
	}
	if cfg.Storage.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Storage.KeyPrefix)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("ENTLINK_TEST_PORT", "9090")
	data := []byte(`
http:
  port: ${ENTLINK_TEST_PORT}
database:
  addrs: ["${ENTLINK_TEST_ADDR:-localhost:6379}"]
pipeline:
  resolver: flow
  rating: term_frequency
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Database.Addrs[0] != "localhost:6379" {
		t.Errorf("expected default addr, got %q", cfg.Database.Addrs[0])
	}
	if cfg.Pipeline.Resolver != "flow" || cfg.Pipeline.Rating != "term_frequency" {
		t.Errorf("unexpected pipeline: %+v", cfg.Pipeline)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error")
	}
}
