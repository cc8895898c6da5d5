package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	ErrMissingSecret      = errors.New("AUTH_SECRET environment variable is required")
	ErrUnsupportedAlg     = errors.New("AUTH_ALGORITHM must be one of HS256, HS384, HS512")
	ErrInvalidLifetime    = errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	ErrUnsupportedScheme  = errors.New("CRYPT_SCHEME must be pbkdf2_sha256 or bcrypt")
	ErrUnsupportedDriver  = errors.New("DB_DRIVER must be postgres or sqlite")
	ErrInvalidRetryBudget = errors.New("DB_CONNECT_RETRIES must not be negative")
)

type Config struct {
	Auth     AuthConfig     `mapstructure:"auth"`
	Crypt    CryptConfig    `mapstructure:"crypt"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Log      LogConfig      `mapstructure:"log"`
}

type AuthConfig struct {
	Secret        string `mapstructure:"secret"`
	Algorithm     string `mapstructure:"algorithm"`
	ExpireMinutes int    `mapstructure:"expire_minutes"`
	Issuer        string `mapstructure:"issuer"`
}

// TokenLifetime is the validity window of an issued access token.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.ExpireMinutes) * time.Minute
}

type CryptConfig struct {
	Scheme       string `mapstructure:"scheme"`
	PBKDF2Rounds int    `mapstructure:"pbkdf2_rounds"`
	BcryptCost   int    `mapstructure:"bcrypt_cost"`
}

type DatabaseConfig struct {
	Driver         string `mapstructure:"driver"`
	Host           string `mapstructure:"host"`
	Port           string `mapstructure:"port"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	DBName         string `mapstructure:"dbname"`
	SSLMode        string `mapstructure:"sslmode"`
	Path           string `mapstructure:"path"`
	ConnectRetries int    `mapstructure:"connect_retries"`
}

type ServerConfig struct {
	HTTPPort    string `mapstructure:"http_port"`
	GRPCPort    string `mapstructure:"grpc_port"`
	MetricsPort string `mapstructure:"metrics_port"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type KafkaConfig struct {
	Brokers          string `mapstructure:"brokers"`
	Topic            string `mapstructure:"topic"`
	PublishTimeoutMS int    `mapstructure:"publish_timeout_ms"`
}

// PublishTimeout bounds how long a request waits on a single event publish.
func (c KafkaConfig) PublishTimeout() time.Duration {
	return time.Duration(c.PublishTimeoutMS) * time.Millisecond
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from envFile (if present) and the process
// environment. An empty envFile skips the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()

	// 设置默认值
	v.SetDefault("auth.algorithm", "HS256")
	v.SetDefault("auth.expire_minutes", 60)
	v.SetDefault("auth.issuer", "arktutor")
	v.SetDefault("crypt.scheme", "pbkdf2_sha256")
	v.SetDefault("crypt.pbkdf2_rounds", 29000)
	v.SetDefault("crypt.bcrypt_cost", 10)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "arktutor")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "arktutor.db")
	v.SetDefault("database.connect_retries", 5)
	v.SetDefault("server.http_port", "8080")
	v.SetDefault("server.grpc_port", "50051")
	v.SetDefault("server.metrics_port", "2112")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("kafka.topic", "arktutor.events")
	v.SetDefault("kafka.publish_timeout_ms", 2000)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// 绑定环境变量
	bindings := map[string]string{
		"auth.secret":              "AUTH_SECRET",
		"auth.algorithm":           "AUTH_ALGORITHM",
		"auth.expire_minutes":      "ACCESS_TOKEN_EXPIRE_MINUTES",
		"auth.issuer":              "AUTH_ISSUER",
		"crypt.scheme":             "CRYPT_SCHEME",
		"crypt.pbkdf2_rounds":      "PBKDF2_ROUNDS",
		"crypt.bcrypt_cost":        "BCRYPT_COST",
		"database.driver":          "DB_DRIVER",
		"database.host":            "DB_HOST",
		"database.port":            "DB_PORT",
		"database.user":            "DB_USER",
		"database.password":        "DB_PASSWORD",
		"database.dbname":          "DB_NAME",
		"database.sslmode":         "DB_SSLMODE",
		"database.path":            "DB_PATH",
		"database.connect_retries": "DB_CONNECT_RETRIES",
		"server.http_port":         "HTTP_PORT",
		"server.grpc_port":         "GRPC_PORT",
		"server.metrics_port":      "METRICS_PORT",
		"openai.api_key":           "OPENAI_API_KEY",
		"openai.model":             "OPENAI_MODEL",
		"openai.base_url":          "OPENAI_BASE_URL",
		"kafka.brokers":            "KAFKA_BROKERS",
		"kafka.topic":              "KAFKA_TOPIC",
		"kafka.publish_timeout_ms": "KAFKA_PUBLISH_TIMEOUT_MS",
		"log.level":                "LOG_LEVEL",
		"log.format":               "LOG_FORMAT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that must hold before anything starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return ErrMissingSecret
	}
	switch c.Auth.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return ErrUnsupportedAlg
	}
	if c.Auth.ExpireMinutes <= 0 {
		return ErrInvalidLifetime
	}
	switch c.Crypt.Scheme {
	case "pbkdf2_sha256", "bcrypt":
	default:
		return ErrUnsupportedScheme
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return ErrUnsupportedDriver
	}
	if c.Database.ConnectRetries < 0 {
		return ErrInvalidRetryBudget
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		// sqlite leaves foreign keys off unless asked per connection
		sep := "?"
		if strings.Contains(c.Path, "?") {
			sep = "&"
		}
		return c.Path + sep + "_foreign_keys=on"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// BrokerList splits the comma separated KAFKA_BROKERS value.
func (c KafkaConfig) BrokerList() []string {
	var out []string
	for _, p := range strings.Split(c.Brokers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
