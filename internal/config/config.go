package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"payment-relay/internal/domain"
	"payment-relay/internal/domain/model"
)

type RuntimeConfig struct {
	Dev bool
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port               int           `yaml:"port"`
	HandlerTimeout     time.Duration `yaml:"handler_timeout"`
	SuccessRedirectURL string        `yaml:"success_redirect_url"`
}

type AdminConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

// DatabaseConfig is optional: without it persistence is degraded but
// order creation and verification keep working.
type DatabaseConfig struct {
	URL        string        `yaml:"url"`
	ServiceKey string        `yaml:"service_key"` // password used when the URL carries none
	MaxConns   int32         `yaml:"max_conns"`
	Timeout    time.Duration `yaml:"timeout"`
}

func (d DatabaseConfig) Enabled() bool { return d.URL != "" }

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type RateLimitConfig struct {
	CreateOrderLimit  int           `yaml:"create_order_limit"`
	CreateOrderWindow time.Duration `yaml:"create_order_window"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Workers int      `yaml:"workers"`
}

type PaymentConfig struct {
	Razorpay struct {
		KeyID     string        `yaml:"key_id"`
		KeySecret string        `yaml:"key_secret"`
		BaseURL   string        `yaml:"base_url"`
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"razorpay"`
}

type ReconcileConfig struct {
	// Transactional wraps the three reconciliation writes in one DB transaction.
	Transactional bool `yaml:"transactional"`
}

type MonitorConfig struct {
	Interval   time.Duration `yaml:"interval"`
	StaleAfter time.Duration `yaml:"stale_after"`
}

type Config struct {
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Payment   PaymentConfig   `yaml:"payment"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Monitor   MonitorConfig   `yaml:"monitor"`
	Plans     []model.Plan    `yaml:"plans"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is fine), loads a
// .env file when present, applies environment overrides and defaults, and
// validates what is required.
func LoadConfig(path string, dev bool) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	applyEnv(&cfg, os.Getenv)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	str := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str(&cfg.Payment.Razorpay.KeyID, "RAZORPAY_KEY_ID")
	str(&cfg.Payment.Razorpay.KeySecret, "RAZORPAY_KEY_SECRET")
	str(&cfg.Database.URL, "DATABASE_URL")
	str(&cfg.Database.ServiceKey, "DATABASE_SERVICE_KEY")
	str(&cfg.Redis.URL, "REDIS_URL")
	str(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")
	str(&cfg.HTTP.SuccessRedirectURL, "SUCCESS_REDIRECT_URL")
	str(&cfg.Log.Level, "LOG_LEVEL")
	if v := getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = p
		}
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = splitList(v)
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 3000
	}
	cfg.HTTP.HandlerTimeout = orDefault(cfg.HTTP.HandlerTimeout, 10*time.Second)
	if cfg.HTTP.SuccessRedirectURL == "" {
		cfg.HTTP.SuccessRedirectURL = "/success.html"
	}
	cfg.Admin.TokenTTL = orDefault(cfg.Admin.TokenTTL, time.Hour)
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Database.Timeout = orDefault(cfg.Database.Timeout, 10*time.Second)
	if cfg.Payment.Razorpay.BaseURL == "" {
		cfg.Payment.Razorpay.BaseURL = "https://api.razorpay.com"
	}
	cfg.Payment.Razorpay.Timeout = orDefault(cfg.Payment.Razorpay.Timeout, 10*time.Second)
	cfg.RateLimit.CreateOrderWindow = orDefault(cfg.RateLimit.CreateOrderWindow, time.Minute)
	if cfg.RateLimit.CreateOrderLimit <= 0 {
		cfg.RateLimit.CreateOrderLimit = 10
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = "payment_events"
	}
	if cfg.Kafka.Workers <= 0 {
		cfg.Kafka.Workers = 2
	}
	cfg.Monitor.Interval = orDefault(cfg.Monitor.Interval, 5*time.Minute)
	cfg.Monitor.StaleAfter = orDefault(cfg.Monitor.StaleAfter, 30*time.Minute)
	if len(cfg.Plans) == 0 {
		cfg.Plans = DefaultPlans()
	}
}

// Validate checks the required settings. Gateway credentials are required
// outside dev mode; dev mode runs against the noop gateway.
func (c *Config) Validate() error {
	if !c.Runtime.Dev {
		if c.Payment.Razorpay.KeyID == "" || c.Payment.Razorpay.KeySecret == "" {
			return fmt.Errorf("%w: payment.razorpay.key_id and key_secret are required", domain.ErrConfiguration)
		}
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http.port %d", domain.ErrInvalidArgument, c.HTTP.Port)
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		return errors.New("kafka.topic is required when kafka.brokers is set")
	}
	return nil
}

// DevKeySecret signs and verifies callbacks when dev mode runs on the noop gateway.
const DevKeySecret = "rzp_dev_secret"

// UsesNoopGateway reports whether dev mode falls back to the noop gateway
// because the Razorpay credentials are incomplete.
func (c *Config) UsesNoopGateway() bool {
	rz := c.Payment.Razorpay
	return c.Runtime.Dev && (rz.KeyID == "" || rz.KeySecret == "")
}

// SignatureSecret is the HMAC secret callbacks are verified with.
func (c *Config) SignatureSecret() string {
	if c.UsesNoopGateway() {
		return DevKeySecret
	}
	return c.Payment.Razorpay.KeySecret
}

// DefaultPlans is the built-in catalog. Amounts are in paise.
func DefaultPlans() []model.Plan {
	return []model.Plan{
		{ID: "basic", Name: "Basic", Amount: 50, Currency: "INR", Description: "Basic monthly plan"},
		{ID: "pro", Name: "Pro", Amount: 100, Currency: "INR", Description: "Pro monthly plan"},
		{ID: "premium", Name: "Premium", Amount: 200, Currency: "INR", Description: "Premium monthly plan"},
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
