package http

import (
	"context"

	"github.com/idv-gateway/internal/application/otp"
	"github.com/idv-gateway/internal/application/webhook"
	"github.com/idv-gateway/internal/domain"
	jwtinfra "github.com/idv-gateway/internal/infrastructure/jwt"
)

// ProfileRepository is the minimal interface the router requires from a profile store.
type ProfileRepository interface {
	GetAuthenticatedUser(ctx context.Context, claims domain.UserIdentity) (*domain.UserIdentity, error)
	MarkProfileVerified(ctx context.Context, subjectID, sessionID string) error
}

// SessionRepository is the minimal interface the router requires from a verification session store.
type SessionRepository interface {
	InitSession(ctx context.Context, p domain.PendingSession) (*domain.VerificationSession, error)
	UpsertVerificationSession(ctx context.Context, u domain.SessionUpsert) (*domain.VerificationSession, error)
}

// SessionIssuer opens sessions with the identity-verification provider.
type SessionIssuer interface {
	CreateSession(ctx context.Context, subjectID string, person *domain.Person) (*domain.IssuedSession, error)
}

// Deps holds all infrastructure dependencies for the router.
// Publisher and DeadLetter may be nil.
type Deps struct {
	Profiles     ProfileRepository
	Sessions     SessionRepository
	Issuer       SessionIssuer
	Attempts     otp.AttemptLog
	SMSProviders []otp.Provider
	Publisher    webhook.EventPublisher
	DeadLetter   webhook.DeadLetterSink
	JWTProvider  *jwtinfra.Provider
}
