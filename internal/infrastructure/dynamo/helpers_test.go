package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/idv-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"status": "started"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": "status"}, ue.Names)
	_, ok := ue.Values[":v0"]
	assert.True(t, ok)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	set := map[string]interface{}{
		"updated_at": "2026-01-01T00:00:00Z",
		"risk_score": 12.0,
		"status":     "approved",
	}
	ue1, err := buildUpdateExpr(set, nil)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(set, nil)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)
	assert.Equal(t, "risk_score", ue1.Names["#f0"])
	assert.Equal(t, "status", ue1.Names["#f1"])
	assert.Equal(t, "updated_at", ue1.Names["#f2"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1, #f2 = :v2", ue1.Expr)
}

func TestBuildUpdateExpr_DefaultsUseIfNotExists(t *testing.T) {
	ue, err := buildUpdateExpr(
		map[string]interface{}{"status": "started"},
		map[string]interface{}{"risk_score": 0, "created_at": "t0"},
	)
	require.NoError(t, err)
	assert.Equal(t,
		"SET #f0 = :v0, #f1 = if_not_exists(#f1, :v1), #f2 = if_not_exists(#f2, :v2)",
		ue.Expr)
	assert.Equal(t, "created_at", ue.Names["#f1"])
	assert.Equal(t, "risk_score", ue.Names["#f2"])
}

func TestBuildUpdateExpr_SetOverridesDefault(t *testing.T) {
	ue, err := buildUpdateExpr(
		map[string]interface{}{"risk_score": 12.0},
		map[string]interface{}{"risk_score": 0},
	)
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	n, ok := ue.Values[":v0"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "12", n.Value)
}

func TestBuildUpdateExpr_ValuesMarshalledCorrectly(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{"is_identity_verified": true}, nil)
	require.NoError(t, err)
	av, ok := ue.Values[":v0"]
	require.True(t, ok)
	boolVal, isBool := av.(*types.AttributeValueMemberBOOL)
	require.True(t, isBool)
	assert.True(t, boolVal.Value)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{}, nil)
	assert.ErrorContains(t, err, "no fields to update")
}

func TestSessionUpdates_LifecycleLeavesEvidenceUntouched(t *testing.T) {
	set, defaults := sessionUpdates(lifecycleUpsert())
	for _, f := range []string{fieldDocument, fieldRiskScore, fieldRiskLabels, fieldFailReason, fieldFailCode} {
		_, written := set[f]
		assert.False(t, written, f)
	}
	assert.Equal(t, "started", set[fieldStatus])
	assert.Contains(t, defaults, fieldRiskScore)
	assert.Contains(t, defaults, fieldRiskLabels)
	assert.Contains(t, defaults, fieldCreatedAt)
}

func TestSessionUpdates_DecisionWritesPresentEvidence(t *testing.T) {
	set, _ := sessionUpdates(decisionUpsert())
	assert.Equal(t, 12.0, set[fieldRiskScore])
	assert.Equal(t, []string{"selfie_mismatch"}, set[fieldRiskLabels])
	assert.Contains(t, set, fieldDocument)
	assert.Equal(t, "u1", set[fieldSubjectID])
	_, hasReason := set[fieldFailReason]
	assert.False(t, hasReason)
}

func TestAttemptKey_SortsByTime(t *testing.T) {
	earlier := attemptKey(fixedTime(0), "01A")
	later := attemptKey(fixedTime(1), "01B")
	assert.Less(t, earlier, later)
	assert.Less(t, attemptKeyLowerBound(fixedTime(1)), later)
	assert.Greater(t, attemptKeyLowerBound(fixedTime(1)), earlier)
}

func TestPendingUpdates_NeverOverwritesWebhookState(t *testing.T) {
	set, defaults := pendingUpdates(domain.PendingSession{
		SessionID:  "s1",
		SubjectID:  "u1",
		SessionURL: "https://magic.veriff.me/v/s1",
		At:         baseTime,
	})
	assert.Equal(t, map[string]interface{}{fieldSessionURL: "https://magic.veriff.me/v/s1"}, set)
	assert.Equal(t, "pending", defaults[fieldStatus])
	assert.Equal(t, "u1", defaults[fieldSubjectID])

	ue, err := buildUpdateExpr(set, defaults)
	require.NoError(t, err)
	assert.Contains(t, ue.Expr, "if_not_exists")
}
