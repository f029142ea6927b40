package config

import (
	"fmt"
	"time"

	"github.com/servicehub/service-booking/internal/platform/config"
	"github.com/spf13/viper"
)

// SMTPConfig holds the outbound mail relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// WhatsAppConfig holds the WhatsApp Cloud API settings.
type WhatsAppConfig struct {
	APIURL        string
	PhoneNumberID string
	Token         string
}

// NotificationConfig holds dispatcher and drain settings.
type NotificationConfig struct {
	DeliverInline       bool
	DrainBatchSize      int
	DrainInterval       time.Duration
	RetryInterval       time.Duration
	DrainConcurrency    int
	DrainRatePerSecond  float64
	MaxDeliveryAttempts int
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    config.DatabaseConfig
	JWTConfig   config.JWTConfig
	KafkaConfig config.KafkaConfig
	RedisConfig config.RedisConfig

	StripeSecretKey         string
	FirebaseCredentialsFile string
	SMTP                    SMTPConfig
	WhatsApp                WhatsAppConfig
	Notifications           NotificationConfig

	BusinessLocation      *time.Location
	DefaultCurrency       string
	RequireUpfrontPayment bool
	PlatformFeePercent    float64
	AsyncSideEffects      bool
}

// Load reads configuration from environment variables.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("BOOKING")
	if err != nil {
		return nil, err
	}
	setDefaults(v)

	loc, err := time.LoadLocation(v.GetString("BUSINESS_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE: %w", err)
	}

	fee := v.GetFloat64("PLATFORM_FEE_PERCENT")
	if fee < 0 || fee > 100 {
		return nil, fmt.Errorf("PLATFORM_FEE_PERCENT must be within 0-100, got %v", fee)
	}

	return &ServiceConfig{
		Port:        config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:      config.GetAppEnv(v),
		DBConfig:    config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:   config.LoadJWTConfig(v),
		KafkaConfig: config.LoadKafkaConfig(v),
		RedisConfig: config.LoadRedisConfig(v),

		StripeSecretKey:         v.GetString("STRIPE_SECRET_KEY"),
		FirebaseCredentialsFile: v.GetString("FIREBASE_CREDENTIALS_FILE"),
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:        v.GetString("WHATSAPP_API_URL"),
			PhoneNumberID: v.GetString("WHATSAPP_PHONE_NUMBER_ID"),
			Token:         v.GetString("WHATSAPP_TOKEN"),
		},
		Notifications: NotificationConfig{
			DeliverInline:       v.GetBool("NOTIFY_INLINE"),
			DrainBatchSize:      v.GetInt("DRAIN_BATCH_SIZE"),
			DrainInterval:       config.GetDuration(v, "DRAIN_INTERVAL", time.Minute),
			RetryInterval:       config.GetDuration(v, "RETRY_INTERVAL", 10*time.Minute),
			DrainConcurrency:    v.GetInt("DRAIN_CONCURRENCY"),
			DrainRatePerSecond:  v.GetFloat64("DRAIN_RATE_PER_SECOND"),
			MaxDeliveryAttempts: v.GetInt("MAX_DELIVERY_ATTEMPTS"),
		},

		BusinessLocation:      loc,
		DefaultCurrency:       v.GetString("DEFAULT_CURRENCY"),
		RequireUpfrontPayment: v.GetBool("REQUIRE_UPFRONT_PAYMENT"),
		PlatformFeePercent:    fee,
		AsyncSideEffects:      v.GetBool("ASYNC_SIDE_EFFECTS"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_NAME", "service_booking")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("WHATSAPP_API_URL", "https://graph.facebook.com/v19.0")
	v.SetDefault("NOTIFY_INLINE", true)
	v.SetDefault("DRAIN_BATCH_SIZE", 50)
	v.SetDefault("DRAIN_CONCURRENCY", 4)
	v.SetDefault("DRAIN_RATE_PER_SECOND", 10)
	v.SetDefault("MAX_DELIVERY_ATTEMPTS", 5)
	v.SetDefault("BUSINESS_TIMEZONE", "UTC")
	v.SetDefault("DEFAULT_CURRENCY", "USD")
	v.SetDefault("REQUIRE_UPFRONT_PAYMENT", true)
	v.SetDefault("PLATFORM_FEE_PERCENT", 15)
	v.SetDefault("ASYNC_SIDE_EFFECTS", false)
}
