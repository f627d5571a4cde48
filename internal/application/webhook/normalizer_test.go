package webhook

import (
	"testing"

	"github.com/idv-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_DecisionUsesNestedID(t *testing.T) {
	ev, err := Classify([]byte(`{
		"status": "success",
		"id": "root-id",
		"verification": {
			"id": "s1",
			"status": "declined",
			"vendorData": "u1",
			"reason": "Physical document not used",
			"reasonCode": 102,
			"riskScore": {"score": 0.87},
			"riskLabels": [{"label": "document_integration_risk", "category": "document"}],
			"document": {"type": "PASSPORT", "number": "B01234567", "country": "IN", "validUntil": null}
		}
	}`))
	require.NoError(t, err)

	assert.Equal(t, KindDecision, ev.Kind)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, "u1", ev.SubjectID)
	assert.Equal(t, domain.StatusDeclined, ev.Status)
	require.NotNil(t, ev.Evidence.RiskScore)
	assert.InDelta(t, 0.87, *ev.Evidence.RiskScore, 1e-9)
	assert.Equal(t, []string{"document_integration_risk"}, ev.Evidence.RiskLabels)
	assert.Equal(t, &domain.Document{Type: "PASSPORT", Number: "B01234567", Country: "IN"}, ev.Evidence.Document)
	require.NotNil(t, ev.Evidence.FailReason)
	assert.Equal(t, "Physical document not used", *ev.Evidence.FailReason)
	require.NotNil(t, ev.Evidence.FailCode)
	assert.Equal(t, "102", *ev.Evidence.FailCode)
}

func TestClassify_DecisionWinsOverAction(t *testing.T) {
	ev, err := Classify([]byte(`{"id":"root","action":"submitted","verification":{"id":"s1","status":"approved"}}`))
	require.NoError(t, err)
	assert.Equal(t, KindDecision, ev.Kind)
	assert.Equal(t, "s1", ev.SessionID)
}

func TestClassify_LifecycleUsesRootID(t *testing.T) {
	ev, err := Classify([]byte(`{"id":"s1","attemptId":"a1","feature":"selfid","code":7002,"action":"submitted","vendorData":"u1"}`))
	require.NoError(t, err)

	assert.Equal(t, KindLifecycle, ev.Kind)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, "u1", ev.SubjectID)
	assert.Equal(t, domain.StatusSubmitted, ev.Status)
	assert.Equal(t, domain.Evidence{}, ev.Evidence)
}

func TestClassify_Ignored(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"foo":"bar"}`,
		`{"id":"s1"}`,
		`{"verification":null}`,
		`{"action":""}`,
		`{"verification":{"id":"s1"}}`,
		`{"verification":{"status":"approved","vendorData":"u1"}}`,
	} {
		ev, err := Classify([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, KindIgnored, ev.Kind, body)
	}
}

func TestClassify_Malformed(t *testing.T) {
	for _, body := range []string{
		``,
		`not json`,
		`[1,2]`,
		`{"action":"started"}`,
		`{"verification":{}}`,
		`{"verification":{"id":"","status":null}}`,
	} {
		_, err := Classify([]byte(body))
		assert.ErrorIs(t, err, domain.ErrMalformedInput, body)
	}
}

func TestClassify_IncompleteDecisionFallsBackToAction(t *testing.T) {
	ev, err := Classify([]byte(`{"id":"s1","action":"started","verification":{"id":"s1"}}`))
	require.NoError(t, err)
	assert.Equal(t, KindLifecycle, ev.Kind)
	assert.Equal(t, domain.StatusStarted, ev.Status)
}

func TestClassify_ActionKeptVerbatimIDTrimmed(t *testing.T) {
	ev, err := Classify([]byte(`{"id":" s1 ","action":" Started"}`))
	require.NoError(t, err)
	assert.Equal(t, "s1", ev.SessionID)
	assert.Equal(t, domain.VerificationStatus(" Started"), ev.Status)
}

func TestClassify_EvidenceAbsentVsEmpty(t *testing.T) {
	ev, err := Classify([]byte(`{"verification":{"id":"s1","status":"approved"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Evidence{}, ev.Evidence)

	ev, err = Classify([]byte(`{"verification":{"id":"s1","status":"approved","riskLabels":[],"riskScore":5}}`))
	require.NoError(t, err)
	assert.NotNil(t, ev.Evidence.RiskLabels)
	assert.Empty(t, ev.Evidence.RiskLabels)
	require.NotNil(t, ev.Evidence.RiskScore)
	assert.Equal(t, 5.0, *ev.Evidence.RiskScore)
}

func TestClassify_NegativeRiskScoreDropped(t *testing.T) {
	ev, err := Classify([]byte(`{"verification":{"id":"s1","status":"approved","riskScore":{"score":-1}}}`))
	require.NoError(t, err)
	assert.Nil(t, ev.Evidence.RiskScore)
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, domain.StatusApproved, NormalizeStatus("success"))
	for _, s := range []string{"approved", "declined", "resubmission_requested", "started", "submitted", "expired", "abandoned", "Success"} {
		assert.Equal(t, domain.VerificationStatus(s), NormalizeStatus(s), s)
	}
}
