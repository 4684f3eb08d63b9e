package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ccotek/cocoti-pool-flow/internal/model"
	"github.com/shopspring/decimal"
)

// GetPool fetches one pool
func (c *Client) GetPool(ctx context.Context, id string) (*model.Pool, error) {
	var pool model.Pool
	if err := c.do(ctx, http.MethodGet, "/api/v1/money-pools/"+url.PathEscape(id), nil, nil, "", &pool); err != nil {
		return nil, err
	}
	return &pool, nil
}

// ListPools fetches the public pool listing
func (c *Client) ListPools(ctx context.Context, limit, page int) ([]model.Pool, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("page", strconv.Itoa(page))

	var result struct {
		Items []model.Pool `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/money-pools/public", query, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// PoolContributions fetches the contributor list of a pool
func (c *Client) PoolContributions(ctx context.Context, id string, limit, page int) ([]model.Contribution, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("page", strconv.Itoa(page))

	var result struct {
		Items []model.Contribution `json:"items"`
	}
	path := "/api/v1/money-pools/" + url.PathEscape(id) + "/contributions"
	if err := c.do(ctx, http.MethodGet, path, query, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// TipConfig fetches the service-fee bounds for a country
func (c *Client) TipConfig(ctx context.Context, countryCode string) (*model.TipConfig, error) {
	query := url.Values{}
	query.Set("product_type", "money_pool")
	query.Set("country_code", countryCode)

	var cfg model.TipConfig
	if err := c.do(ctx, http.MethodGet, "/api/v1/money-pools/tip-config/public", query, nil, "", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Countries fetches the public country list with calling codes
func (c *Client) Countries(ctx context.Context, language string) ([]model.Country, error) {
	query := url.Values{}
	query.Set("language", language)

	var result struct {
		Items []model.Country `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/geography/countries/public", query, nil, "", &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// ParticipateRequest contribution payload. InitiatePayment is always set
// by the flow so recording the contribution and opening the provider
// transaction happen in one call.
type ParticipateRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Message          string          `json:"message,omitempty"`
	Anonymous        bool            `json:"anonymous"`
	FullName         string          `json:"full_name"`
	Email            string          `json:"email,omitempty"`
	Phone            string          `json:"phone_number,omitempty"`
	PaymentMethod    string          `json:"payment_method"`
	ServiceFeeAmount decimal.Decimal `json:"service_fee_amount"`
	ServiceFeePct    decimal.Decimal `json:"service_fee_percentage"`
	InitiatePayment  bool            `json:"initiate_payment"`
}

// PaymentInitiation provider handoff data returned by a participate call
type PaymentInitiation struct {
	PublicKey     string          `json:"public_key"`
	InvoiceToken  string          `json:"invoice_token"`
	CheckoutURL   string          `json:"checkout_url"` // hosted fallback
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
}

// ParticipateResult answer to a participate call
type ParticipateResult struct {
	ContributionID string             `json:"contribution_id"`
	Payment        *PaymentInitiation `json:"payment,omitempty"`
}

// Participate records a contribution and asks the core API to start the
// provider transaction
func (c *Client) Participate(ctx context.Context, poolID string, req *ParticipateRequest, bearer string) (*ParticipateResult, error) {
	var result ParticipateResult
	path := "/api/v1/money-pools/" + url.PathEscape(poolID) + "/participate"
	if err := c.do(ctx, http.MethodPost, path, nil, req, bearer, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// OtpCredentials embedded in an unauthenticated create request: account
// login/creation and pool creation fused into one call
type OtpCredentials struct {
	Phone     string `json:"phone_number"`
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
	FullName  string `json:"full_name"`
}

// CreatePoolRequest pool creation payload. Optional fields stay nil for
// public pools (see validate.NormalizeCreation).
type CreatePoolRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Visibility      string           `json:"visibility"`
	CountryCode     string           `json:"country_code"`
	Currency        string           `json:"currency"`
	TargetAmount    decimal.Decimal  `json:"target_amount"`
	MinContribution *decimal.Decimal `json:"min_contribution,omitempty"`
	MaxContribution *decimal.Decimal `json:"max_contribution,omitempty"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	AllowAnonymous  *bool            `json:"allow_anonymous,omitempty"`
	StartDate       *time.Time       `json:"start_date,omitempty"`
	EndDate         *time.Time       `json:"end_date,omitempty"`
	ImageURLs       []string         `json:"image_urls,omitempty"`
	VideoURLs       []string         `json:"video_urls,omitempty"`

	Otp *OtpCredentials `json:"otp,omitempty"`
}

// CreateResult answer to a pool creation
type CreateResult struct {
	PoolID      string `json:"pool_id"`
	AccessToken string `json:"access_token,omitempty"`
}

// CreatePool creates a money pool. With a bearer the Otp field must be
// nil; without one the OTP credentials ride along in the same request.
func (c *Client) CreatePool(ctx context.Context, req *CreatePoolRequest, bearer string) (*CreateResult, error) {
	var result CreateResult
	if err := c.do(ctx, http.MethodPost, "/api/v1/money-pools/public/create", nil, req, bearer, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Publish transitions a draft pool to published; bearer required
func (c *Client) Publish(ctx context.Context, poolID, bearer string) error {
	path := "/api/v1/money-pools/" + url.PathEscape(poolID) + "/publish"
	return c.do(ctx, http.MethodPatch, path, nil, nil, bearer, nil)
}
