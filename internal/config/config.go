package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort        string
	AppEnv         string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	AllowedOrigins []string // CORS allowed origins

	JWTPublicKeyPath  string
	JWTPrivateKeyPath string // optional; only needed to mint tokens
	JWTExpiry         time.Duration

	Veriff Veriff
	OTP    OTP
	SMS    SMS

	DeadLetterBucket string // empty disables S3 dead-lettering of webhook payloads
	RedisURL         string // non-empty switches the OTP attempt log to Redis
	RabbitMQURL      string // empty disables decision event publishing
	EventsExchange   string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Profiles             string
	VerificationSessions string
	OTPAttempts          string
}

// Veriff holds the identity-verification provider settings.
type Veriff struct {
	BaseURL                string
	APIKey                 string
	SharedSecret           string
	CallbackURL            string
	Timeout                time.Duration
	VerifyWebhookSignature bool
}

// OTP holds the rate-limit policy for OTP sends.
type OTP struct {
	Window           time.Duration
	MaxAttempts      int
	AttemptRetention time.Duration
	BrandName        string
}

// SMS holds credentials for every SMS provider, in failover order.
type SMS struct {
	ProviderTimeout    time.Duration
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioMessagingSID string
	MSG91BaseURL       string
	MSG91AuthKey       string
	MSG91TemplateID    string
	SNSEnabled         bool
	SNSRegion          string
	SNSSenderID        string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:        getEnv("APP_PORT", "3000"),
		AppEnv:         getEnv("APP_ENV", "development"),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Profiles:             getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
			VerificationSessions: getEnv("DYNAMO_TABLE_VERIFICATION_SESSIONS", "verification_sessions"),
			OTPAttempts:          getEnv("DYNAMO_TABLE_OTP_ATTEMPTS", "otp_attempts"),
		},
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", ""),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 24*time.Hour),

		Veriff: Veriff{
			BaseURL:                getEnv("VERIFF_BASE_URL", "https://stationapi.veriff.com"),
			APIKey:                 getEnv("VERIFF_API_KEY", ""),
			SharedSecret:           getEnv("VERIFF_SHARED_SECRET", ""),
			CallbackURL:            getEnv("VERIFF_CALLBACK_URL", ""),
			Timeout:                getEnvDuration("VERIFF_TIMEOUT", 10*time.Second),
			VerifyWebhookSignature: getEnvBool("VERIFF_VERIFY_WEBHOOK_SIGNATURE", false),
		},
		OTP: OTP{
			Window:           getEnvDuration("OTP_WINDOW", 10*time.Minute),
			MaxAttempts:      getEnvInt("OTP_MAX_ATTEMPTS", 3),
			AttemptRetention: getEnvDuration("OTP_ATTEMPT_RETENTION", 24*time.Hour),
			BrandName:        getEnv("SMS_BRAND_NAME", "Blindly"),
		},
		SMS: SMS{
			ProviderTimeout:    getEnvDuration("SMS_PROVIDER_TIMEOUT", 8*time.Second),
			TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
			TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
			TwilioMessagingSID: getEnv("TWILIO_MESSAGE_SERVICE_SID", ""),
			MSG91BaseURL:       getEnv("MSG91_BASE_URL", "https://api.msg91.com"),
			MSG91AuthKey:       getEnv("MSG91_AUTH_KEY", ""),
			MSG91TemplateID:    getEnv("MSG91_TEMPLATE_ID", ""),
			SNSEnabled:         getEnvBool("SNS_ENABLED", false),
			SNSRegion:          getEnv("SNS_REGION", "us-east-1"),
			SNSSenderID:        getEnv("SNS_SENDER_ID", ""),
		},

		DeadLetterBucket: getEnv("WEBHOOK_DEAD_LETTER_BUCKET", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		RabbitMQURL:      getEnv("RABBITMQ_URL", ""),
		EventsExchange:   getEnv("EVENTS_EXCHANGE", "verification_events"),
	}
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
