package domain

import "time"

// Profile is the subset of the profile record this service reads and writes.
// The table is owned by the profile service; only verification fields are updated here.
type Profile struct {
	ProfileID             string     `json:"id" dynamodbav:"profile_id"`
	Phone                 *string    `json:"phone,omitempty" dynamodbav:"phone"`
	Enable                bool       `json:"enable" dynamodbav:"enable"`
	IsIdentityVerified    bool       `json:"is_identity_verified" dynamodbav:"is_identity_verified"`
	VerificationSessionID string     `json:"verification_session_id,omitempty" dynamodbav:"verification_session_id,omitempty"`
	VerifiedAt            *time.Time `json:"verified_at,omitempty" dynamodbav:"verified_at,omitempty"`
	UpdatedAt             time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// UserIdentity is the authenticated caller resolved from request credentials.
type UserIdentity struct {
	UserID    string
	SessionID string
}
