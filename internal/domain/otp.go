package domain

import "time"

// OTPAttempt is one accepted OTP send request, kept only for rate-limit counting.
// PK: phone, SK: attempt_key (RFC3339Nano created_at + "#" + attempt id).
// ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OTPAttempt struct {
	Phone      string    `json:"phone" dynamodbav:"phone"`
	AttemptKey string    `json:"-" dynamodbav:"attempt_key"`
	AttemptID  string    `json:"id" dynamodbav:"attempt_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt  int64     `json:"expires_at" dynamodbav:"expires_at"`
}

// OTPMessage is what an SMS provider delivers. Text is the rendered body;
// Code is the raw passcode for template-based providers.
type OTPMessage struct {
	Phone string
	Text  string
	Code  string
}

// SendOTPRequest is the body accepted by the OTP-send endpoint.
type SendOTPRequest struct {
	User struct {
		Phone string `json:"phone" validate:"required,phone"`
	} `json:"user"`
	SMS struct {
		OTP string `json:"otp" validate:"required,numeric,min=4,max=10"`
	} `json:"sms"`
}
