package dynamo

import (
	"time"

	"github.com/idv-gateway/internal/domain"
)

var baseTime = time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC)

func fixedTime(ms int) time.Time {
	return baseTime.Add(time.Duration(ms) * time.Millisecond)
}

func lifecycleUpsert() domain.SessionUpsert {
	return domain.SessionUpsert{
		SessionID:  "s1",
		Status:     domain.StatusStarted,
		RawPayload: `{"id":"s1","action":"started"}`,
		At:         baseTime,
	}
}

func decisionUpsert() domain.SessionUpsert {
	score := 12.0
	return domain.SessionUpsert{
		SessionID: "s1",
		SubjectID: "u1",
		Status:    domain.StatusApproved,
		Evidence: domain.Evidence{
			RiskScore:  &score,
			RiskLabels: []string{"selfie_mismatch"},
			Document:   &domain.Document{Type: "PASSPORT", Number: "X1", Country: "IN"},
		},
		At: baseTime,
	}
}
