package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DataDirectory:    DefaultDataDirectory(),
			FileName:         DefaultFileName,
			MaxOpenConns:     5,
			BusyTimeoutMs:    5000,
			MigrationTimeout: 30 * time.Second,
			CommandTimeout:   5 * time.Second,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8730,
			CORS: CORSConfig{
				AllowedOrigins: []string{"tauri://localhost", "http://localhost:1420"},
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func() *Config
		wantErrorContains []string
	}{
		{
			name: "valid config file with custom values",
			configContent: `database:
  data_directory: custom/data
  file_name: custom.db
  max_open_conns: 2
  busy_timeout_ms: 1000
  migration_timeout: 10s
  command_timeout: 2s
server:
  port: 9000
logging:
  level: debug
  file: logs/studyflow.log
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database = DatabaseConfig{
					DataDirectory:    "custom/data",
					FileName:         "custom.db",
					MaxOpenConns:     2,
					BusyTimeoutMs:    1000,
					MigrationTimeout: 10 * time.Second,
					CommandTimeout:   2 * time.Second,
				}
				cfg.Server.Port = 9000
				cfg.Logging.Level = "debug"
				cfg.Logging.File = "logs/studyflow.log"
				return cfg
			},
		},
		{
			name:          "no config file uses defaults",
			configContent: "",
			want:          defaultConfig,
		},
		{
			name: "partial config with missing fields uses defaults",
			configContent: `database:
  max_open_conns: 3
`,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.MaxOpenConns = 3
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `database:
  data_directory: explicit/data
`,
			useExplicitPath: true,
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.DataDirectory = "explicit/data"
				return cfg
			},
		},
		{
			name: "environment overrides data directory",
			configContent: `database:
  data_directory: from/file
`,
			env: map[string]string{"STUDYFLOW_DATA_DIR": "from/env"},
			want: func() *Config {
				cfg := defaultConfig()
				cfg.Database.DataDirectory = "from/env"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `database:
  data_directory: custom
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "pool size below one",
			configContent: `database:
  max_open_conns: 0
`,
			wantErr:           true,
			wantErrorContains: []string{"invalid configuration", "max_open_conns must be 1 or greater"},
		},
		{
			name: "file name with directories",
			configContent: `database:
  file_name: nested/studyflow.db
`,
			wantErr:           true,
			wantErrorContains: []string{"database.file_name must be a file name without directories"},
		},
		{
			name: "unknown log level",
			configContent: `logging:
  level: verbose
`,
			wantErr:           true,
			wantErrorContains: []string{"level must be one of [debug info warn error]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("STUDYFLOW_DATA_DIR", "")
			os.Unsetenv("STUDYFLOW_DATA_DIR")
			t.Setenv("STUDYFLOW_LOG_LEVEL", "")
			os.Unsetenv("STUDYFLOW_LOG_LEVEL")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			tempDir := t.TempDir()

			var configPath string
			if tt.useExplicitPath {
				configPath = filepath.Join(tempDir, "studyflow.yml")
				require.NoError(t, os.WriteFile(configPath, []byte(tt.configContent), 0644))
			} else {
				if tt.configContent != "" {
					require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(tt.configContent), 0644))
				}
				chdir(t, tempDir)
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(), got)
		})
	}
}

func TestDatabaseConfig_Path(t *testing.T) {
	cfg := DatabaseConfig{DataDirectory: filepath.Join("data", "dir"), FileName: "studyflow.db"}
	assert.Equal(t, filepath.Join("data", "dir", "studyflow.db"), cfg.Path())
}

func TestServerConfig_Addr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8730}
	assert.Equal(t, "127.0.0.1:8730", cfg.Addr())
}

func TestDefaultYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(DefaultYAML(filepath.Join(tempDir, "data"))), 0644))

	t.Setenv("STUDYFLOW_DATA_DIR", "")
	os.Unsetenv("STUDYFLOW_DATA_DIR")

	loader, err := NewConfigLoader(configPath)
	require.NoError(t, err)
	got, err := loader.Load()
	require.NoError(t, err)

	want := defaultConfig()
	want.Database.DataDirectory = filepath.Join(tempDir, "data")
	assert.Equal(t, want, got)
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(originalDir))
	})
	require.NoError(t, os.Chdir(dir))
}
