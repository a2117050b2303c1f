package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	AppName         = "studyflow"
	DefaultFileName = "studyflow.db"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type DatabaseConfig struct {
	DataDirectory    string        `mapstructure:"data_directory" validate:"required"`
	FileName         string        `mapstructure:"file_name" validate:"required,filename"`
	MaxOpenConns     int           `mapstructure:"max_open_conns" validate:"min=1"`
	BusyTimeoutMs    int           `mapstructure:"busy_timeout_ms" validate:"min=0"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout" validate:"gt=0"`
	CommandTimeout   time.Duration `mapstructure:"command_timeout" validate:"gt=0"`
}

// Path returns the full path of the database file.
func (c DatabaseConfig) Path() string {
	return filepath.Join(c.DataDirectory, c.FileName)
}

type ServerConfig struct {
	Host string     `mapstructure:"host" validate:"required"`
	Port int        `mapstructure:"port" validate:"min=1,max=65535"`
	CORS CORSConfig `mapstructure:"cors"`
}

// Addr returns the listen address of the command server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"min=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"min=0"`
}

// DefaultDataDirectory resolves the per-user application data directory.
// It falls back to the working directory when the OS does not report one.
func DefaultDataDirectory() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return AppName
	}
	return filepath.Join(dir, AppName)
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/studyflow")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.data_directory", DefaultDataDirectory())
	v.SetDefault("database.file_name", DefaultFileName)
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.busy_timeout_ms", 5000)
	v.SetDefault("database.migration_timeout", 30*time.Second)
	v.SetDefault("database.command_timeout", 5*time.Second)
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8730)
	v.SetDefault("server.cors.allowed_origins", []string{"tauri://localhost", "http://localhost:1420"})
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)

	// The hosting shell resolves the data directory and passes it through the environment
	if err := v.BindEnv("database.data_directory", "STUDYFLOW_DATA_DIR"); err != nil {
		return nil, fmt.Errorf("failed to bind STUDYFLOW_DATA_DIR environment variable: %w", err)
	}
	if err := v.BindEnv("logging.level", "STUDYFLOW_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind STUDYFLOW_LOG_LEVEL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

// DefaultYAML renders a config file with every default spelled out.
func DefaultYAML(dataDirectory string) string {
	return fmt.Sprintf(`database:
  data_directory: %q
  file_name: %s
  max_open_conns: 5
  busy_timeout_ms: 5000
  migration_timeout: 30s
  command_timeout: 5s
server:
  host: 127.0.0.1
  port: 8730
  cors:
    allowed_origins:
      - tauri://localhost
      - http://localhost:1420
logging:
  level: info
  file: ""
  max_size_mb: 10
  max_backups: 5
`, dataDirectory, DefaultFileName)
}
