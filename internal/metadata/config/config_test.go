package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithTableNameFromEnv(t *testing.T) {
	t.Setenv("ENV", "missing-env")
	t.Setenv("TABLE_NAME", "prod-infra-Table")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "prod-infra-Table", cfg.Table.Name)
	assert.Equal(t, DriverDynamoDB, cfg.Table.Driver)
	assert.Equal(t, DriverS3, cfg.ObjectStore.Driver)
	assert.Equal(t, ModeCelebrities, cfg.Recognition.Mode)
}

func TestLoad_RequiresTableName(t *testing.T) {
	t.Setenv("ENV", "missing-env")
	t.Setenv("TABLE_NAME", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "TABLE_NAME")
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	content := []byte("table:\n  name: file-table\n  driver: redis\nrecognition:\n  mode: labels\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("TABLE_NAME", "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file-table", cfg.Table.Name)
	assert.Equal(t, DriverRedis, cfg.Table.Driver)
	assert.Equal(t, ModeLabels, cfg.Recognition.Mode)

	t.Setenv("TABLE_NAME", "env-table")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-table", cfg.Table.Name)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown table driver", mutate: func(c *Config) { c.Table.Driver = "postgres" }, wantErr: true},
		{name: "unknown object driver", mutate: func(c *Config) { c.ObjectStore.Driver = "gcs" }, wantErr: true},
		{name: "unknown recognition mode", mutate: func(c *Config) { c.Recognition.Mode = "faces" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Table.Name = "t"
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
