package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Storage.
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	DatabaseName    string `mapstructure:"DATABASE_NAME"`
	StoreDriver     string `mapstructure:"STORE_DRIVER"`
	UseTransactions bool   `mapstructure:"USE_TRANSACTIONS"`

	// Redis configuration.
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int           `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int           `mapstructure:"REDIS_QUEUE_DB"`
	AreaCacheTTL  time.Duration `mapstructure:"AREA_CACHE_TTL"`

	// Payment gateway.
	StripeKey           string `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	PaymentCurrency     string `mapstructure:"PAYMENT_CURRENCY"`
	PaymentSuccessURL   string `mapstructure:"PAYMENT_SUCCESS_URL"`
	PaymentCancelURL    string `mapstructure:"PAYMENT_CANCEL_URL"`

	// Release scheduler.
	HoldGracePeriod     time.Duration `mapstructure:"HOLD_GRACE_PERIOD"`
	HoldSweepInterval   time.Duration `mapstructure:"HOLD_SWEEP_INTERVAL"`
	ExpirySweepInterval time.Duration `mapstructure:"EXPIRY_SWEEP_INTERVAL"`
	SweepMode           string        `mapstructure:"SWEEP_MODE"`

	// Saga compensation.
	CompensationAttempts int           `mapstructure:"COMPENSATION_ATTEMPTS"`
	CompensationBackoff  time.Duration `mapstructure:"COMPENSATION_BACKOFF"`

	// Lifecycle events.
	AMQPURL      string `mapstructure:"AMQP_URL"`
	AMQPExchange string `mapstructure:"AMQP_EXCHANGE"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)

	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "parkezy")
	viper.SetDefault("STORE_DRIVER", "mongo")
	viper.SetDefault("USE_TRANSACTIONS", false)

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("AREA_CACHE_TTL", "10m")

	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("PAYMENT_CURRENCY", "inr")
	viper.SetDefault("PAYMENT_SUCCESS_URL", "http://localhost:5173/payment-success?order_id={order_id}")
	viper.SetDefault("PAYMENT_CANCEL_URL", "http://localhost:5173/payment-failed?order_id={order_id}")

	viper.SetDefault("HOLD_GRACE_PERIOD", "10m")
	viper.SetDefault("HOLD_SWEEP_INTERVAL", "1m")
	viper.SetDefault("EXPIRY_SWEEP_INTERVAL", "10m")
	viper.SetDefault("SWEEP_MODE", "local")

	viper.SetDefault("COMPENSATION_ATTEMPTS", 5)
	viper.SetDefault("COMPENSATION_BACKOFF", "200ms")

	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "parkezy.events")
}

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// Validate rejects settings the process must not start with.
func Validate() error {
	if IsProduction() && AppConfig.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	return nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// UsesMemoryStore reports whether the process keeps slots and bookings in memory.
func UsesMemoryStore() bool {
	return AppConfig.StoreDriver == "memory"
}
