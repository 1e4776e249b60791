package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	InvtOut  InvtOutConfig  `yaml:"invtout"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	DBName     string `yaml:"name"`
	SSLMode    string `yaml:"ssl_mode"`
	InitSchema bool   `yaml:"init_schema"`
}

// KafkaConfig is optional: with an empty host no export events are published.
type KafkaConfig struct {
	Host                     string `yaml:"host"`
	Port                     int    `yaml:"port"`
	SummaryExportedTopicName string `yaml:"summary_exported_topic_name"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type InvtOutConfig struct {
	HTTPAddr  string `yaml:"http_addr"`
	ExportDir string `yaml:"export_dir"`
	LogLevel  string `yaml:"log_level"`  // debug | info | warn | error
	LogFormat string `yaml:"log_format"` // json | text

	// Render store faults as 503 instead of the legacy "not found" answer.
	FaultsAsUnavailable bool `yaml:"faults_as_unavailable"`

	ExportRateLimitPerMinute int `yaml:"export_rate_limit_per_minute"`

	JanitorHTTPAddr         string `yaml:"janitor_http_addr"`
	JanitorRetentionSeconds int    `yaml:"janitor_retention_seconds"`
	JanitorIntervalSeconds  int    `yaml:"janitor_interval_seconds"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnv lets deployments override connection settings without editing the file.
func (c *Config) applyEnv() error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid integer %q", key, v)
		}
		*dst = n
		return nil
	}

	setString("PG_HOST", &c.Database.Host)
	setString("PG_USERNAME", &c.Database.Username)
	setString("PG_PASSWORD", &c.Database.Password)
	setString("PG_DBNAME", &c.Database.DBName)
	setString("REDIS_HOST", &c.Redis.Host)
	if err := setInt("PG_PORT", &c.Database.Port); err != nil {
		return err
	}
	if err := setInt("REDIS_PORT", &c.Redis.Port); err != nil {
		return err
	}
	return nil
}

// PostgresConnString builds a pgx connection string; ssl_mode defaults to "disable".
func (c *Config) PostgresConnString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.Username, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.DBName, sslMode)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// KafkaBrokers returns nil when no broker is configured.
func (c *Config) KafkaBrokers() []string {
	if c.Kafka.Host == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s:%d", c.Kafka.Host, c.Kafka.Port)}
}

// SetupLogger installs the process-wide slog logger.
func SetupLogger(c InvtOutConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}

	var handler slog.Handler
	if strings.EqualFold(c.LogFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
