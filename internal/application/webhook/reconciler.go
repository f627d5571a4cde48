package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/idv-gateway/internal/domain"
)

// SessionStore is the atomic upsert the reconciler relies on.
type SessionStore interface {
	UpsertVerificationSession(ctx context.Context, u domain.SessionUpsert) (*domain.VerificationSession, error)
}

// ProfileVerifier flags a profile once its identity has been approved.
type ProfileVerifier interface {
	MarkProfileVerified(ctx context.Context, subjectID, sessionID string) error
}

// EventPublisher announces terminal decisions to other services.
type EventPublisher interface {
	PublishDecision(ctx context.Context, ev domain.DecisionEvent) error
}

// Reconciler applies normalized events to the session store. It holds no
// per-session state; ordering and duplicates are absorbed by the store upsert.
type Reconciler struct {
	sessions  SessionStore
	profiles  ProfileVerifier
	publisher EventPublisher
	now       func() time.Time
}

func NewReconciler(sessions SessionStore, profiles ProfileVerifier, publisher EventPublisher) *Reconciler {
	return &Reconciler{sessions: sessions, profiles: profiles, publisher: publisher, now: time.Now}
}

// Apply upserts the session for ev. Status is last-write-wins; evidence fields
// present in ev overwrite, absent ones are left as stored. Ignored events are a no-op.
// Store failures are returned wrapped in domain.ErrPersistence.
func (r *Reconciler) Apply(ctx context.Context, ev NormalizedEvent) (*domain.VerificationSession, error) {
	if ev.Kind == KindIgnored {
		return nil, nil
	}

	upsert := domain.SessionUpsert{
		SessionID:  ev.SessionID,
		SubjectID:  ev.SubjectID,
		Status:     ev.Status,
		RawPayload: string(ev.Raw),
		At:         r.now().UTC(),
	}
	if ev.Kind == KindDecision {
		upsert.Evidence = ev.Evidence
	}

	sess, err := r.sessions.UpsertVerificationSession(ctx, upsert)
	if err != nil {
		return nil, fmt.Errorf("%w: upsert session %s: %w", domain.ErrPersistence, ev.SessionID, err)
	}

	subjectID := sess.SubjectID
	if subjectID == "" {
		subjectID = ev.SubjectID
	}

	if sess.Status == domain.StatusApproved && subjectID != "" && r.profiles != nil {
		err := r.profiles.MarkProfileVerified(ctx, subjectID, sess.SessionID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			slog.Warn("approved session for unknown profile", "session_id", sess.SessionID, "subject_id", subjectID)
		case err != nil:
			return sess, fmt.Errorf("%w: mark profile %s verified: %w", domain.ErrPersistence, subjectID, err)
		}
	}

	if sess.Status.IsTerminal() && r.publisher != nil {
		decision := domain.DecisionEvent{
			SessionID: sess.SessionID,
			SubjectID: subjectID,
			Status:    sess.Status,
			RiskScore: sess.RiskScore,
			DecidedAt: upsert.At,
		}
		if err := r.publisher.PublishDecision(ctx, decision); err != nil {
			slog.Warn("publish decision event failed", "session_id", sess.SessionID, "err", err)
		}
	}
	return sess, nil
}
