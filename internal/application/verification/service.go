package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/idv-gateway/internal/domain"
)

type ProfileStore interface {
	GetAuthenticatedUser(ctx context.Context, claims domain.UserIdentity) (*domain.UserIdentity, error)
}

type SessionIssuer interface {
	CreateSession(ctx context.Context, subjectID string, person *domain.Person) (*domain.IssuedSession, error)
}

type SessionStore interface {
	InitSession(ctx context.Context, p domain.PendingSession) (*domain.VerificationSession, error)
}

// Service opens identity-verification sessions for authenticated callers.
type Service interface {
	CreateSession(ctx context.Context, claims domain.UserIdentity, person domain.Person) (*domain.IssuedSession, error)
}

type ServiceDeps struct {
	Profiles ProfileStore
	Issuer   SessionIssuer
	Sessions SessionStore
}

type service struct {
	profiles ProfileStore
	issuer   SessionIssuer
	sessions SessionStore
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		profiles: deps.Profiles,
		issuer:   deps.Issuer,
		sessions: deps.Sessions,
		now:      time.Now,
	}
}

func (s *service) CreateSession(ctx context.Context, claims domain.UserIdentity, person domain.Person) (*domain.IssuedSession, error) {
	caller, err := s.profiles.GetAuthenticatedUser(ctx, claims)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve caller: %w", err)
	}

	issued, err := s.issuer.CreateSession(ctx, caller.UserID, &person)
	if err != nil {
		return nil, err
	}

	_, err = s.sessions.InitSession(ctx, domain.PendingSession{
		SessionID:  issued.SessionID,
		SubjectID:  caller.UserID,
		SessionURL: issued.SessionURL,
		At:         s.now().UTC(),
	})
	if err != nil {
		slog.Error("persist pending session failed", "session_id", issued.SessionID, "subject_id", caller.UserID, "err", err)
		return nil, fmt.Errorf("%w: init session %s: %w", domain.ErrPersistence, issued.SessionID, err)
	}
	slog.Info("verification session issued", "session_id", issued.SessionID, "subject_id", caller.UserID)
	return issued, nil
}
