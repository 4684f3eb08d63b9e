package backend

import (
	"context"
	"net/http"
)

// OtpPurpose purpose tag sent with an OTP request
type OtpPurpose string

const PurposePoolCreation OtpPurpose = "money_pool_creation"

// VerifyResult answer to an OTP verification
type VerifyResult struct {
	// UserExists tells the flow whether a full-name collection step is
	// still needed before creating anything on this phone number
	UserExists  bool   `json:"user_exists"`
	AccessToken string `json:"access_token,omitempty"`
}

// Me authenticated user snapshot
type Me struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone_number"`
}

// SendOTP asks the core API to send a one-time code and returns the
// OTP session id
func (c *Client) SendOTP(ctx context.Context, phone string, purpose OtpPurpose) (string, error) {
	body := map[string]string{
		"phone_number": phone,
		"purpose":      string(purpose),
	}
	var result struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/otp/send", nil, body, "", &result); err != nil {
		return "", err
	}
	return result.SessionID, nil
}

// VerifyOTP submits the code the user received
func (c *Client) VerifyOTP(ctx context.Context, phone, sessionID, code string) (*VerifyResult, error) {
	body := map[string]string{
		"phone_number": phone,
		"session_id":   sessionID,
		"code":         code,
	}
	var result VerifyResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/otp/verify", nil, body, "", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CurrentUser fetches the account behind a token. Callers treat any
// failure as "not logged in"; it is never surfaced.
func (c *Client) CurrentUser(ctx context.Context, bearer string) (*Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, bearer, &me); err != nil {
		return nil, err
	}
	return &me, nil
}
