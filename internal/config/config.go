package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Alumni    AlumniConfig    `mapstructure:"alumni"`
}

type ServerConfig struct {
	Port         string   `mapstructure:"port"`
	ReadTimeout  int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout  int      `mapstructure:"idle_timeout_seconds"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            string `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time_seconds"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	AccessTokenTTL  int    `mapstructure:"access_token_ttl_seconds"`
	RefreshTokenTTL int    `mapstructure:"refresh_token_ttl_seconds"`
	SecureCookies   bool   `mapstructure:"secure_cookies"`
	BcryptCost      int    `mapstructure:"bcrypt_cost"`
}

// StorageConfig selects the driver used for uploaded images and files.
// Driver is either "local" or "s3".
type StorageConfig struct {
	Driver         string `mapstructure:"driver"`
	MediaRoot      string `mapstructure:"media_root"`
	MediaURL       string `mapstructure:"media_url"`
	MaxUploadMB    int64  `mapstructure:"max_upload_mb"`
	S3Endpoint     string `mapstructure:"s3_endpoint"`
	S3Region       string `mapstructure:"s3_region"`
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3AccessKey    string `mapstructure:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`
	S3PublicURL    string `mapstructure:"s3_public_url"`
	S3UsePathStyle bool   `mapstructure:"s3_use_path_style"`
}

// EventsConfig selects the activity event driver: "nats", "kafka" or "none".
type EventsConfig struct {
	Driver       string   `mapstructure:"driver"`
	NATSURL      string   `mapstructure:"nats_url"`
	Subject      string   `mapstructure:"subject"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type AlumniConfig struct {
	EmailPattern string `mapstructure:"email_pattern"`
}

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // Kubernetes mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // IDE from cmd/

	setDefaults(v, env)

	// Config file is optional - ENV variables and defaults cover everything
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "database.host", "DB_HOST")
	bindEnv(v, "database.port", "DB_PORT")
	bindEnv(v, "database.user", "DB_USER")
	bindEnv(v, "database.password", "DB_PASSWORD")
	bindEnv(v, "database.name", "DB_NAME")
	bindEnv(v, "auth.jwt_secret", "JWT_SECRET")
	bindEnv(v, "server.port", "PORT")
	bindEnv(v, "storage.s3_access_key", "S3_ACCESS_KEY")
	bindEnv(v, "storage.s3_secret_key", "S3_SECRET_KEY")
	bindEnv(v, "events.nats_url", "NATS_URL")
	bindEnv(v, "telemetry.otlp_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, env string) {
	v.SetDefault("env", env)

	v.SetDefault("server.port", "8000")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "course_portal")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("auth.access_token_ttl_seconds", 300)
	v.SetDefault("auth.refresh_token_ttl_seconds", 86400)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.media_root", "./media")
	v.SetDefault("storage.media_url", "/media/")
	v.SetDefault("storage.max_upload_mb", 20)
	v.SetDefault("storage.s3_region", "us-east-1")
	v.SetDefault("storage.s3_use_path_style", true)

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.subject", "portal.activity")
	v.SetDefault("events.kafka_topic", "portal-activity")

	v.SetDefault("telemetry.otlp_endpoint", "otel-collector.infra.svc.cluster.local:4317")

	v.SetDefault("alumni.email_pattern", `^l\d{6}@lhr\.nu\.edu\.pk$`)
}

func bindEnv(v *viper.Viper, key, env string) {
	_ = v.BindEnv(key, env)
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (JWT_SECRET) is required")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.Storage.S3Bucket == "" {
			return fmt.Errorf("storage.s3_bucket is required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	switch c.Events.Driver {
	case "none", "nats", "kafka":
	default:
		return fmt.Errorf("unknown events driver %q", c.Events.Driver)
	}
	return nil
}
