package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application level configuration. Values come from defaults,
// then an optional YAML file named by CONFIG_PATH, then environment variables.
type Config struct {
	ServerPort  string   `yaml:"server_port"`
	DBDriver    string   `yaml:"db_driver"`
	DatabaseDSN string   `yaml:"database_dsn"`
	RedisAddr   string   `yaml:"redis_addr"`
	RedisDB     int      `yaml:"redis_db"`
	RedisPass   string   `yaml:"redis_password"`
	JWTSecret   string   `yaml:"jwt_secret"`
	SwaggerHost string   `yaml:"swagger_host"`
	CORSOrigins []string `yaml:"cors_origins"`
	UploadDir   string   `yaml:"upload_dir"`
	ResetDB     bool     `yaml:"reset_db"`

	TokenTTL   time.Duration `yaml:"token_ttl"`
	BcryptCost int           `yaml:"bcrypt_cost"`

	Kafka   KafkaConfig   `yaml:"kafka"`
	Worker  WorkerConfig  `yaml:"worker"`
	Admin   AdminConfig   `yaml:"admin"`
	Payment PaymentConfig `yaml:"payment"`
}

// KafkaConfig configures lifecycle event publishing. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"`
}

// WorkerConfig configures cmd/worker.
type WorkerConfig struct {
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// PaymentConfig configures checkout preferences.
type PaymentConfig struct {
	Currency    string `yaml:"currency"`
	CheckoutURL string `yaml:"checkout_url"`
	SuccessURL  string `yaml:"success_url"`
	FailureURL  string `yaml:"failure_url"`
	PendingURL  string `yaml:"pending_url"`
}

// AdminConfig is the bootstrap admin account created by cmd/seed.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Load builds Config with sensible defaults.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ServerPort:  "8080",
		DBDriver:    "mysql",
		DatabaseDSN: "user:password@tcp(localhost:3306)/flights?charset=utf8mb4&parseTime=True&loc=Local",
		RedisAddr:   "localhost:6379",
		UploadDir:   "uploads",
		CORSOrigins: []string{"*"},
		TokenTTL:    time.Hour,
		BcryptCost:  10,
		Kafka: KafkaConfig{
			Topic:   "flightbooking.events",
			GroupID: "flightbooking-worker",
		},
		Worker: WorkerConfig{SweepInterval: 5 * time.Minute},
		Admin:  AdminConfig{Name: "admin", Email: "admin@example.com"},
		Payment: PaymentConfig{
			Currency:    "ARS",
			CheckoutURL: "http://localhost:8080/checkout",
			SuccessURL:  "http://localhost:5173/myFlights",
			FailureURL:  "http://localhost:5173/failure",
			PendingURL:  "http://localhost:5173/pending",
		},
	}
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.DBDriver = getEnv("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseDSN = getEnv("MYSQL_DSN", cfg.DatabaseDSN)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getEnvInt("REDIS_DB", cfg.RedisDB)
	cfg.RedisPass = getEnv("REDIS_PASSWORD", cfg.RedisPass)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SwaggerHost = getEnv("SWAGGER_HOST", cfg.SwaggerHost)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.UploadDir = getEnv("UPLOAD_DIR", cfg.UploadDir)
	cfg.ResetDB = getEnvBool("RESET_DB", cfg.ResetDB)
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", cfg.BcryptCost)

	cfg.Kafka.Brokers = getEnvList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.Topic = getEnv("KAFKA_TOPIC", cfg.Kafka.Topic)
	cfg.Kafka.GroupID = getEnv("KAFKA_GROUP_ID", cfg.Kafka.GroupID)
	cfg.Worker.SweepInterval = getEnvDuration("SWEEP_INTERVAL", cfg.Worker.SweepInterval)

	cfg.Admin.Name = getEnv("ADMIN_NAME", cfg.Admin.Name)
	cfg.Admin.Email = getEnv("ADMIN_EMAIL", cfg.Admin.Email)
	cfg.Admin.Password = getEnv("ADMIN_PASSWORD", cfg.Admin.Password)

	cfg.Payment.Currency = getEnv("PAYMENT_CURRENCY", cfg.Payment.Currency)
	cfg.Payment.CheckoutURL = getEnv("PAYMENT_CHECKOUT_URL", cfg.Payment.CheckoutURL)
	cfg.Payment.SuccessURL = getEnv("PAYMENT_SUCCESS_URL", cfg.Payment.SuccessURL)
	cfg.Payment.FailureURL = getEnv("PAYMENT_FAILURE_URL", cfg.Payment.FailureURL)
	cfg.Payment.PendingURL = getEnv("PAYMENT_PENDING_URL", cfg.Payment.PendingURL)
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.Worker.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
