package dynamo

// DynamoDB attribute names used in update and key expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldSessionID  = "session_id"
	fieldSubjectID  = "subject_id"
	fieldStatus     = "status"
	fieldSessionURL = "session_url"
	fieldRiskScore  = "risk_score"
	fieldRiskLabels = "risk_labels"
	fieldDocument   = "document"
	fieldFailReason = "fail_reason"
	fieldFailCode   = "fail_code"
	fieldRawPayload = "raw_payload"
	fieldCreatedAt  = "created_at"
	fieldUpdatedAt  = "updated_at"

	fieldProfileID             = "profile_id"
	fieldIsIdentityVerified    = "is_identity_verified"
	fieldVerificationSessionID = "verification_session_id"
	fieldVerifiedAt            = "verified_at"

	fieldPhone      = "phone"
	fieldAttemptKey = "attempt_key"
	fieldExpiresAt  = "expires_at"
)
