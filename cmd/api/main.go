package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idv-gateway/internal/application/otp"
	"github.com/idv-gateway/internal/application/webhook"
	"github.com/idv-gateway/internal/config"
	"github.com/idv-gateway/internal/domain"
	"github.com/idv-gateway/internal/infrastructure/awscfg"
	"github.com/idv-gateway/internal/infrastructure/dynamo"
	jwtinfra "github.com/idv-gateway/internal/infrastructure/jwt"
	"github.com/idv-gateway/internal/infrastructure/msg91"
	"github.com/idv-gateway/internal/infrastructure/rabbitmq"
	redisinfra "github.com/idv-gateway/internal/infrastructure/redis"
	s3infra "github.com/idv-gateway/internal/infrastructure/s3"
	"github.com/idv-gateway/internal/infrastructure/sns"
	"github.com/idv-gateway/internal/infrastructure/twilio"
	"github.com/idv-gateway/internal/infrastructure/veriff"
	transporthttp "github.com/idv-gateway/internal/transport/http"
	"github.com/joho/godotenv"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	setupLogger(cfg)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	ctx := context.Background()
	awsCfg, err := awscfg.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		slog.Error("load aws config", "err", err)
		os.Exit(1)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	var attempts otp.AttemptLog = dynamo.NewOTPAttemptRepo(dynamoClient, cfg.DynamoTables.OTPAttempts, cfg.OTP.AttemptRetention)
	if cfg.RedisURL != "" {
		rdb, err := redisinfra.NewClient(cfg.RedisURL)
		if err != nil {
			slog.Error("redis client", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		attempts = redisinfra.NewAttemptLog(rdb, "", cfg.OTP.AttemptRetention)
		slog.Info("otp attempt log backed by redis")
	}

	var publisher webhook.EventPublisher
	if cfg.RabbitMQURL != "" {
		p, err := rabbitmq.NewPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			slog.Warn("decision events disabled", "err", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	var deadLetter webhook.DeadLetterSink
	if cfg.DeadLetterBucket != "" {
		deadLetter = s3infra.NewDeadLetterStore(s3infra.NewClient(awsCfg, cfg.AWSEndpointURL), cfg.DeadLetterBucket)
	}

	// JWT provider (optional; authenticated routes reject everything without it).
	var jwtProvider *jwtinfra.Provider
	if p, err := jwtinfra.NewProvider(cfg.JWTPublicKeyPath, cfg.JWTPrivateKeyPath, cfg.JWTExpiry); err == nil {
		jwtProvider = p
	} else {
		slog.Warn("jwt provider not available", "err", err)
	}

	deps := &transporthttp.Deps{
		Profiles:     dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles),
		Sessions:     dynamo.NewVerificationSessionRepo(dynamoClient, cfg.DynamoTables.VerificationSessions),
		Issuer:       veriff.NewClient(cfg.Veriff),
		Attempts:     attempts,
		SMSProviders: smsProviders(ctx, cfg),
		Publisher:    publisher,
		DeadLetter:   deadLetter,
		JWTProvider:  jwtProvider,
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      transporthttp.NewRouter(cfg, deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "err", err)
	}
	slog.Info("server stopped")
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(h))
}

// smsProviders returns the configured providers in failover order:
// Twilio, then MSG91, then SNS. Unconfigured ones are skipped.
func smsProviders(ctx context.Context, cfg *config.Config) []otp.Provider {
	var providers []otp.Provider

	if p, err := twilio.NewProvider(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioMessagingSID, cfg.SMS.ProviderTimeout); err == nil {
		providers = append(providers, p)
	} else {
		logSkipped("twilio", err)
	}

	if p, err := msg91.NewProvider(cfg.SMS.MSG91BaseURL, cfg.SMS.MSG91AuthKey, cfg.SMS.MSG91TemplateID, cfg.SMS.ProviderTimeout); err == nil {
		providers = append(providers, p)
	} else {
		logSkipped("msg91", err)
	}

	if cfg.SMS.SNSEnabled {
		snsCfg, err := awscfg.Load(ctx, cfg, cfg.SMS.SNSRegion)
		if err != nil {
			logSkipped("sns", err)
		} else {
			providers = append(providers, sns.NewProvider(snsCfg, cfg.SMS.SNSSenderID))
		}
	}

	if len(providers) == 0 {
		slog.Warn("no sms providers configured; otp sends will fail")
	}
	return providers
}

func logSkipped(name string, err error) {
	if errors.Is(err, domain.ErrConfig) {
		slog.Info("sms provider not configured", "provider", name)
		return
	}
	slog.Warn("sms provider unavailable", "provider", name, "err", err)
}
