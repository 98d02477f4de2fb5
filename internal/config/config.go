package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
	SessionBackendBadger = "badger"
)

type Config struct {
	ServerPort  int
	ServiceName string

	APIBaseURL string
	APITimeout time.Duration

	SessionBackend   string
	SessionKeyPrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	BadgerDir string

	JournalEnabled   bool
	DBDriver         string
	DBDataSourceName string
	MigrationsDir    string

	WorkspaceIdleTTL time.Duration
	SweepInterval    time.Duration

	TraceStdout bool
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: Could not load .env file, using environment only")
	}

	v := viper.New()
	v.SetEnvPrefix("POS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", 8032)
	v.SetDefault("service_name", "pos-terminal")
	v.SetDefault("api_base_url", "http://localhost:8081/api")
	v.SetDefault("api_timeout", 10*time.Second)
	v.SetDefault("session_backend", SessionBackendMemory)
	v.SetDefault("session_key_prefix", "pos")
	v.SetDefault("redis_host", "localhost")
	v.SetDefault("redis_port", "6379")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("badger_dir", "data/sessions")
	v.SetDefault("journal_enabled", false)
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_database", "pos")
	v.SetDefault("db_username", "root")
	v.SetDefault("db_password", "1234")
	v.SetDefault("migrations_dir", "migrations")
	v.SetDefault("workspace_idle_ttl", 12*time.Hour)
	v.SetDefault("sweep_interval", 10*time.Minute)
	v.SetDefault("trace_stdout", false)

	// PORT is honoured unprefixed for platform deployments.
	if err := v.BindEnv("port", "POS_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("failed to bind port env: %w", err)
	}

	if file := os.Getenv("POS_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	config := &Config{
		ServerPort:       v.GetInt("port"),
		ServiceName:      v.GetString("service_name"),
		APIBaseURL:       strings.TrimRight(v.GetString("api_base_url"), "/"),
		APITimeout:       v.GetDuration("api_timeout"),
		SessionBackend:   strings.ToLower(v.GetString("session_backend")),
		SessionKeyPrefix: v.GetString("session_key_prefix"),
		RedisAddr:        fmt.Sprintf("%s:%s", v.GetString("redis_host"), v.GetString("redis_port")),
		RedisPassword:    v.GetString("redis_password"),
		RedisDB:          v.GetInt("redis_db"),
		BadgerDir:        v.GetString("badger_dir"),
		JournalEnabled:   v.GetBool("journal_enabled"),
		DBDriver:         "postgres",
		MigrationsDir:    v.GetString("migrations_dir"),
		WorkspaceIdleTTL: v.GetDuration("workspace_idle_ttl"),
		SweepInterval:    v.GetDuration("sweep_interval"),
		TraceStdout:      v.GetBool("trace_stdout"),
	}

	config.DBDataSourceName = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		v.GetString("db_username"), v.GetString("db_password"),
		v.GetString("db_host"), v.GetString("db_port"), v.GetString("db_database"))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port %d", c.ServerPort))
	}
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is required"))
	}
	if c.APITimeout <= 0 {
		errs = append(errs, errors.New("api timeout must be positive"))
	}
	switch c.SessionBackend {
	case SessionBackendMemory, SessionBackendRedis, SessionBackendBadger:
	default:
		errs = append(errs, fmt.Errorf("unknown session backend %q", c.SessionBackend))
	}
	if c.SessionBackend == SessionBackendBadger && c.BadgerDir == "" {
		errs = append(errs, errors.New("badger dir is required for the badger session backend"))
	}
	if c.SessionKeyPrefix == "" {
		errs = append(errs, errors.New("session key prefix is required"))
	}
	if c.WorkspaceIdleTTL <= 0 {
		errs = append(errs, errors.New("workspace idle ttl must be positive"))
	}
	if c.SweepInterval <= 0 {
		errs = append(errs, errors.New("sweep interval must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
