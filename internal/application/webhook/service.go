package webhook

import (
	"context"
	"errors"
	"log/slog"
)

// DeadLetterSink keeps payloads that could not be persisted so an operator can replay them.
type DeadLetterSink interface {
	Record(ctx context.Context, reason string, payload []byte) error
}

// Service handles one inbound provider callback end to end.
type Service interface {
	// Handle classifies and applies payload. It returns an error only for
	// domain.ErrMalformedInput; every other failure is logged and swallowed
	// so the provider never redelivers because of an internal fault.
	Handle(ctx context.Context, payload []byte) (NormalizedEvent, error)
}

type ServiceDeps struct {
	Sessions   SessionStore
	Profiles   ProfileVerifier
	Publisher  EventPublisher // optional
	DeadLetter DeadLetterSink // optional
}

type service struct {
	reconciler *Reconciler
	deadLetter DeadLetterSink
}

func NewService(deps ServiceDeps) Service {
	return &service{
		reconciler: NewReconciler(deps.Sessions, deps.Profiles, deps.Publisher),
		deadLetter: deps.DeadLetter,
	}
}

func (s *service) Handle(ctx context.Context, payload []byte) (NormalizedEvent, error) {
	ev, err := Classify(payload)
	if err != nil {
		return NormalizedEvent{}, err
	}
	if ev.Kind == KindIgnored {
		slog.Info("ignoring unrecognised webhook payload", "bytes", len(payload))
		return ev, nil
	}

	sess, err := s.reconciler.Apply(ctx, ev)
	if err != nil {
		slog.Error("webhook reconcile failed",
			"kind", ev.Kind.String(), "session_id", ev.SessionID, "status", ev.Status, "err", err)
		s.recordFailure(ctx, err, payload)
		return ev, nil
	}
	slog.Info("webhook applied",
		"kind", ev.Kind.String(), "session_id", sess.SessionID, "status", sess.Status)
	return ev, nil
}

func (s *service) recordFailure(ctx context.Context, cause error, payload []byte) {
	if s.deadLetter == nil {
		return
	}
	// The request context may already be cancelled by the time the store gave up.
	if err := s.deadLetter.Record(context.WithoutCancel(ctx), cause.Error(), payload); err != nil {
		slog.Error("dead-letter webhook payload failed", "err", errors.Join(cause, err))
	}
}
