package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Persistent)
	assert.Equal(t, 3*time.Second, cfg.SyncInterval)
	assert.Equal(t, 10*time.Second, cfg.DiscoveryTimeout)
	assert.Equal(t, 5*time.Minute, cfg.DiscoveryMaxAge)
	assert.Equal(t, 28.4595, cfg.Default.Lat)
	assert.Equal(t, 77.0266, cfg.Default.Lng)
	assert.Equal(t, 8192, cfg.AddressCapacity)
	assert.False(t, cfg.Demo)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DIRECTORY_PERSISTENT", "MinIO")
	t.Setenv("DIRECTORY_MINIO_ENDPOINT", "localhost:9000")
	t.Setenv("DIRECTORY_SYNC_INTERVAL", "500ms")
	t.Setenv("DIRECTORY_DEMO", "true")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, BackendMinIO, cfg.Persistent)
	assert.Equal(t, "localhost:9000", cfg.MinIOEndpoint)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncInterval)
	assert.True(t, cfg.Demo)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "directory.yaml")
	yaml := "persistent: memory\nkafka:\n  broker: localhost:9092\naddress:\n  capacity: 2048\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, BackendMemory, cfg.Persistent)
	assert.Equal(t, "localhost:9092", cfg.KafkaBroker)
	assert.Equal(t, "directory-storage", cfg.KafkaTopic)
	assert.Equal(t, 2048, cfg.AddressCapacity)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"DIRECTORY_PERSISTENT": "redis"}},
		{"minio without endpoint", map[string]string{"DIRECTORY_PERSISTENT": "minio"}},
		{"zero interval", map[string]string{"DIRECTORY_SYNC_INTERVAL": "0s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(viper.New(), "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
