package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/idv-gateway/internal/application/otp"
	"github.com/idv-gateway/internal/application/verification"
	"github.com/idv-gateway/internal/application/webhook"
	"github.com/idv-gateway/internal/config"
	"github.com/idv-gateway/internal/infrastructure/veriff"
	"github.com/idv-gateway/internal/transport/http/handler"
	appmiddleware "github.com/idv-gateway/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", veriff.HeaderAuthClient, veriff.HeaderSignature},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.MethodNotAllowed(handler.MethodNotAllowed)
	r.NotFound(handler.NotFound)

	// Without a key pair every authenticated route answers 401.
	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(http.Handler) http.Handler { return http.HandlerFunc(handler.Unauthorized) }
	}

	webhookMw := func(next http.Handler) http.Handler { return next }
	if cfg.Veriff.VerifyWebhookSignature {
		webhookMw = appmiddleware.VeriffSignature(cfg.Veriff.SharedSecret)
	}

	// 5 requests/second, burst of 10 per client IP on the SMS endpoint.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	webhookSvc := webhook.NewService(webhook.ServiceDeps{
		Sessions:   deps.Sessions,
		Profiles:   deps.Profiles,
		Publisher:  deps.Publisher,
		DeadLetter: deps.DeadLetter,
	})
	verificationSvc := verification.NewService(verification.ServiceDeps{
		Profiles: deps.Profiles,
		Issuer:   deps.Issuer,
		Sessions: deps.Sessions,
	})
	otpSvc := otp.NewService(otp.ServiceDeps{
		Attempts:        deps.Attempts,
		Providers:       deps.SMSProviders,
		Window:          cfg.OTP.Window,
		MaxAttempts:     cfg.OTP.MaxAttempts,
		ProviderTimeout: cfg.SMS.ProviderTimeout,
		BrandName:       cfg.OTP.BrandName,
	})

	healthH := handler.NewHealthHandler()
	webhookH := handler.NewWebhookHandler(webhookSvc)
	verificationH := handler.NewVerificationHandler(verificationSvc)
	otpH := handler.NewOTPHandler(otpSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.With(webhookMw).Post("/webhooks/veriff", webhookH.Veriff)
		r.With(sensitiveRL.Limit).Post("/otp/send", otpH.Send)

		r.Group(func(r chi.Router) {
			r.Use(authMw)
			r.Post("/verification-sessions", verificationH.CreateSession)
		})
	})

	return r
}
