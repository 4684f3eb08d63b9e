package model

import "time"

// ResendCountdown client-side resend window; the core API stays the
// throttling authority
const ResendCountdown = 60 * time.Second

// OtpSession one OTP exchange with the core API
type OtpSession struct {
	SessionID string `json:"session_id"`
	Phone     string `json:"phone"`
	Verified  bool   `json:"verified"`

	// nil until the verify response tells us whether the phone maps to
	// an existing account
	UserExists *bool `json:"user_exists,omitempty"`

	// Code kept after a successful verify so an unauthenticated creation
	// can embed the credentials in the create request
	Code string `json:"-"`

	ResendAfter time.Time `json:"resend_after"`
}

// CanResend reports whether the resend window has elapsed
func (s *OtpSession) CanResend(now time.Time) bool {
	return !now.Before(s.ResendAfter)
}
