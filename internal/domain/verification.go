package domain

import "time"

// VerificationStatus is the canonical state of a verification session.
// Provider values that have no canonical mapping are stored verbatim.
type VerificationStatus string

const (
	StatusPending               VerificationStatus = "pending"
	StatusStarted               VerificationStatus = "started"
	StatusSubmitted             VerificationStatus = "submitted"
	StatusApproved              VerificationStatus = "approved"
	StatusDeclined              VerificationStatus = "declined"
	StatusResubmissionRequested VerificationStatus = "resubmission_requested"
)

// IsTerminal reports whether the status is a final decision for the current attempt.
func (s VerificationStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusDeclined, StatusResubmissionRequested:
		return true
	}
	return false
}

// Document is the identity document evidence carried by decision payloads.
type Document struct {
	Type    string `json:"type,omitempty" dynamodbav:"type,omitempty"`
	Number  string `json:"number,omitempty" dynamodbav:"number,omitempty"`
	Country string `json:"country,omitempty" dynamodbav:"country,omitempty"`
}

// VerificationSession is the locally tracked view of a provider verification session.
// PK: session_id. Mutated only by the webhook reconciler after creation.
type VerificationSession struct {
	SessionID  string             `json:"id" dynamodbav:"session_id"`
	SubjectID  string             `json:"subject_id" dynamodbav:"subject_id,omitempty"`
	Status     VerificationStatus `json:"status" dynamodbav:"status"`
	SessionURL string             `json:"url,omitempty" dynamodbav:"session_url,omitempty"`
	RiskScore  float64            `json:"risk_score" dynamodbav:"risk_score"`
	FailReason *string            `json:"fail_reason,omitempty" dynamodbav:"fail_reason,omitempty"`
	FailCode   *string            `json:"fail_code,omitempty" dynamodbav:"fail_code,omitempty"`
	RiskLabels []string           `json:"risk_labels" dynamodbav:"risk_labels"`
	Document   *Document          `json:"document,omitempty" dynamodbav:"document,omitempty"`
	RawPayload string             `json:"-" dynamodbav:"raw_payload,omitempty"`
	CreatedAt  time.Time          `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time          `json:"updated" dynamodbav:"updated_at"`
}

// Evidence is the decision data attached to a webhook. A nil field means
// "absent" and must leave the stored value untouched.
type Evidence struct {
	RiskScore  *float64
	RiskLabels []string // nil = absent, empty = explicitly no labels
	Document   *Document
	FailReason *string
	FailCode   *string
}

// SessionUpsert is everything the store needs to merge one webhook into a session.
type SessionUpsert struct {
	SessionID  string
	SubjectID  string // empty when the payload did not echo the correlation field
	Status     VerificationStatus
	Evidence   Evidence
	RawPayload string
	At         time.Time
}

// PendingSession is the record written when a session is issued upstream.
type PendingSession struct {
	SessionID  string
	SubjectID  string
	SessionURL string
	At         time.Time
}

// Person is the optional name passed to the provider at session creation.
type Person struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// IssuedSession is what the provider returns for a newly created session.
type IssuedSession struct {
	SessionID  string `json:"id"`
	SessionURL string `json:"url"`
}

// DecisionEvent is published after a session reaches a terminal status.
type DecisionEvent struct {
	SessionID string             `json:"session_id"`
	SubjectID string             `json:"subject_id,omitempty"`
	Status    VerificationStatus `json:"status"`
	RiskScore float64            `json:"risk_score"`
	DecidedAt time.Time          `json:"decided_at"`
}
