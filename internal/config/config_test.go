package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{Port, Store, DBURL, LogLevel, ImageDir, SeedData, GinMode, APIPrefix} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "8080", cfg.Server.Port)
	require.Equal(t, "release", cfg.Server.Mode)
	require.Equal(t, "/api/v1", cfg.Server.APIPrefix)
	require.Equal(t, StoreMemory, cfg.Database.Store)
	require.True(t, cfg.Database.SeedData)
	require.Equal(t, "info", cfg.Logging.Level)
	require.Equal(t, "storage/images", cfg.Images.Dir)
	require.Equal(t, ":8080", cfg.Addr())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv(Port, "9090")
	t.Setenv(Store, "POSTGRES")
	t.Setenv(DBURL, "postgres://u:p@db:5432/auctions")
	t.Setenv(LogLevel, "debug")
	t.Setenv(ImageDir, "/tmp/images")
	t.Setenv(SeedData, "false")
	t.Setenv(GinMode, "debug")
	t.Setenv(APIPrefix, "/api/v2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, "9090", cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.Equal(t, "/api/v2", cfg.Server.APIPrefix)
	require.Equal(t, StorePostgres, cfg.Database.Store)
	require.Equal(t, "postgres://u:p@db:5432/auctions", cfg.Database.URL)
	require.False(t, cfg.Database.SeedData)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "/tmp/images", cfg.Images.Dir)
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: "8080"},
			Database: DatabaseConfig{Store: StoreMemory},
			Images:   ImagesConfig{Dir: "images"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid_memory", mutate: func(c *Config) {}},
		{name: "valid_postgres", mutate: func(c *Config) { c.Database.Store = StorePostgres; c.Database.URL = "postgres://x" }},
		{name: "missing_port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "unknown_store", mutate: func(c *Config) { c.Database.Store = "redis" }, wantErr: true},
		{name: "postgres_without_url", mutate: func(c *Config) { c.Database.Store = StorePostgres }, wantErr: true},
		{name: "missing_image_dir", mutate: func(c *Config) { c.Images.Dir = "" }, wantErr: true},
	}

	for _, tc := range tests {

		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfig_Addr(t *testing.T) {
	t.Parallel()

	require.Equal(t, ":3000", (&Config{Server: ServerConfig{Port: "3000"}}).Addr())
	require.Equal(t, ":3000", (&Config{Server: ServerConfig{Port: ":3000"}}).Addr())
}
