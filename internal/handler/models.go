package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ccotek/cocoti-pool-flow/internal/flow"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
)

// Response generic envelope
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// Pagination paging echo for passthrough listings
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// SessionResponse wizard session state as the web client sees it
type SessionResponse struct {
	ID            string                   `json:"id"`
	Kind          string                   `json:"kind"`
	Step          string                   `json:"step"`
	Notice        string                   `json:"notice,omitempty"`
	NeedFullName  bool                     `json:"needFullName,omitempty"`
	CreatedPoolID string                   `json:"createdPoolId,omitempty"`
	Pool          *model.Pool              `json:"pool,omitempty"`
	Tip           *model.TipConfig         `json:"tipConfig,omitempty"`
	Contribution  *model.ContributionDraft `json:"contribution,omitempty"`
	Creation      *model.CreationDraft     `json:"creation,omitempty"`
	Outcome       interface{}              `json:"paymentOutcome,omitempty"`
	OtpResendAt   *time.Time               `json:"otpResendAt,omitempty"`
	ExpiresAt     time.Time                `json:"expiresAt"`
}

// ToSessionResponse builds the session view from a snapshot
func ToSessionResponse(s *flow.Session) SessionResponse {
	snap := s.Snapshot()
	resp := SessionResponse{
		ID:            snap.ID,
		Kind:          string(snap.Kind),
		Step:          snap.Step,
		Notice:        snap.Notice,
		NeedFullName:  snap.NeedFullName,
		CreatedPoolID: snap.CreatedPoolID,
		Pool:          snap.Pool,
		Tip:           snap.Tip,
		Contribution:  snap.Contribution,
		Creation:      snap.Creation,
		OtpResendAt:   snap.OtpResendAt,
		ExpiresAt:     snap.ExpiresAt,
	}
	if snap.Outcome != nil {
		resp.Outcome = snap.Outcome
	}
	return resp
}

// StartContributionRequest opens a contribution flow
type StartContributionRequest struct {
	PoolID string `json:"pool_id" binding:"required"`
}

// ContributionDetailsRequest details step payload
type ContributionDetailsRequest struct {
	Amount        decimal.Decimal  `json:"amount"`
	Message       string           `json:"message"`
	Anonymous     bool             `json:"anonymous"`
	ServiceFeePct *decimal.Decimal `json:"service_fee_percentage"`
}

// ContributionPaymentRequest payment step payload
type ContributionPaymentRequest struct {
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Method     string `json:"payment_method"`
	Phone      string `json:"phone_number"`
	CardNumber string `json:"card_number"`
	CardExpiry string `json:"card_expiry"`
	CardCVC    string `json:"card_cvc"`
}

// CreationInfoRequest info step payload
type CreationInfoRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Visibility      string           `json:"visibility"`
	Country         string           `json:"country_code"`
	Currency        string           `json:"currency"`
	TargetAmount    decimal.Decimal  `json:"target_amount"`
	MinContribution *decimal.Decimal `json:"min_contribution"`
	MaxContribution *decimal.Decimal `json:"max_contribution"`
	MaxParticipants *int             `json:"max_participants"`
	AllowAnonymous  *bool            `json:"allow_anonymous"`
	StartDate       *time.Time       `json:"start_date"`
	EndDate         *time.Time       `json:"end_date"`
	CharterAccepted bool             `json:"charter_accepted"`
}

// OtpSendRequest verification step: request a code
type OtpSendRequest struct {
	Phone string `json:"phone_number" binding:"required"`
}

// OtpVerifyRequest verification step: submit the code
type OtpVerifyRequest struct {
	Code     string `json:"code" binding:"required"`
	FullName string `json:"full_name"`
}

// CompleteRequest verification follow-up carrying the creator name
type CompleteRequest struct {
	FullName string `json:"full_name" binding:"required"`
}

// ActivateRequest activation step choice
type ActivateRequest struct {
	Publish   bool `json:"publish"`
	Confirmed bool `json:"confirmed"`
}

// CheckoutCallbackRequest provider webhook payload
type CheckoutCallbackRequest struct {
	InvoiceToken string `json:"invoice_token" binding:"required"`
	Event        string `json:"event" binding:"required"`
	Message      string `json:"message"`
}
