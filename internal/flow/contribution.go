package flow

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
	"github.com/ccotek/cocoti-pool-flow/internal/fee"
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
	"github.com/ccotek/cocoti-pool-flow/internal/validate"
)

// ContributionFlow drives the contribution wizard: details -> payment -> done
type ContributionFlow struct {
	backend  *backend.Client
	tokens   token.Store
	bridge   *checkout.Bridge
	sessions *Registry
}

// NewContributionFlow creates the contribution flow logic
func NewContributionFlow(client *backend.Client, tokens token.Store, bridge *checkout.Bridge, sessions *Registry) *ContributionFlow {
	return &ContributionFlow{
		backend:  client,
		tokens:   tokens,
		bridge:   bridge,
		sessions: sessions,
	}
}

// Start opens a contribution session against a pool: fetches the pool
// snapshot and the fee bounds, and seeds an empty draft
func (f *ContributionFlow) Start(ctx context.Context, clientID, poolID string) (*Session, error) {
	pool, err := f.backend.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	tip, err := f.backend.TipConfig(ctx, pool.Country)
	if err != nil {
		return nil, err
	}

	session := f.sessions.Create(clientID, KindContribution)
	session.Pool = pool
	session.Tip = tip
	session.ContributionStep = StepDetails
	session.Contribution = &model.ContributionDraft{
		Currency:      pool.Currency,
		ServiceFeePct: tip.DefaultPct,
	}
	return session, nil
}

// DetailsInput the details step fields
type DetailsInput struct {
	Amount        decimal.Decimal
	Message       string
	Anonymous     bool
	ServiceFeePct *decimal.Decimal
}

// SubmitDetails validates the details step and advances to payment.
// The fee is recomputed on every submission from the effective
// percentage, clamped to the configured bounds.
func (f *ContributionFlow) SubmitDetails(ctx context.Context, sessionID string, in DetailsInput) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, err
	}
	defer session.end()

	// drafts are copied by Snapshot for the polling endpoint, so every
	// mutation happens under the session lock
	session.mu.Lock()
	if session.ContributionStep != StepDetails {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}

	draft := session.Contribution
	draft.Amount = in.Amount
	draft.Message = in.Message
	draft.Anonymous = in.Anonymous

	pct := session.Tip.DefaultPct
	if in.ServiceFeePct != nil {
		pct = fee.ClampPct(*in.ServiceFeePct, session.Tip.MinPct, session.Tip.MaxPct)
	}
	draft.ServiceFeePct = pct
	draft.ServiceFeeAmount = fee.ServiceFee(draft.Amount, pct)

	if err := validate.ContributionDetails(draft, session.Pool); err != nil {
		session.mu.Unlock()
		return nil, err
	}

	session.ContributionStep = StepPayment
	session.Notice = ""
	session.mu.Unlock()
	f.sessions.Touch(session)
	return session, nil
}

// PaymentInput the payment step fields
type PaymentInput struct {
	FullName string
	Email    string
	Method   model.PaymentMethod
}

// PaymentHandoff what the web client needs to finish the payment: the
// checkout token for the embedded widget, or the hosted redirect URL
// when the widget script is unavailable
type PaymentHandoff struct {
	ContributionID string          `json:"contribution_id"`
	InvoiceToken   string          `json:"invoice_token,omitempty"`
	PublicKey      string          `json:"public_key,omitempty"`
	RedirectURL    string          `json:"redirect_url,omitempty"`
	Fallback       bool            `json:"fallback"`
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"service_fee_amount"`
	Total          decimal.Decimal `json:"total"`
	Currency       string          `json:"currency"`
}

// SubmitPayment validates the payment step, records the contribution
// with payment initiation, and opens the checkout session. The outcome
// is awaited in the background; the web client polls the session state.
func (f *ContributionFlow) SubmitPayment(ctx context.Context, sessionID string, in PaymentInput) (*PaymentHandoff, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, err
	}
	defer session.end()

	// mutate and read the draft under the lock; the participate call
	// itself runs on a local copy of what it needs
	session.mu.Lock()
	if session.ContributionStep != StepPayment {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}

	draft := session.Contribution
	draft.PayerFullName = in.FullName
	draft.PayerEmail = in.Email
	draft.Method = in.Method
	if in.Method.IsMobile() {
		draft.PayerPhone = in.Method.Phone
	}

	if err := validate.ContributionPayment(draft); err != nil {
		session.mu.Unlock()
		return nil, err
	}

	req := &backend.ParticipateRequest{
		Amount:           draft.Amount,
		Currency:         draft.Currency,
		Message:          draft.Message,
		Anonymous:        draft.Anonymous,
		FullName:         draft.PayerFullName,
		Email:            draft.PayerEmail,
		Phone:            draft.PayerPhone,
		PaymentMethod:    string(draft.Method.Kind),
		ServiceFeeAmount: draft.ServiceFeeAmount,
		ServiceFeePct:    draft.ServiceFeePct,
		InitiatePayment:  true,
	}
	poolID := session.Pool.ID
	amount := draft.Amount
	feeAmount := draft.ServiceFeeAmount
	total := draft.Total()
	currency := draft.Currency
	session.mu.Unlock()

	bearer := bearerFor(ctx, f.tokens, session)
	result, err := f.backend.Participate(ctx, poolID, req, bearer)
	if err != nil {
		if backend.IsUnauthorized(err) {
			// contribution accepts anonymous callers; retry without the
			// stale token rather than failing the user
			dropToken(ctx, f.tokens, session)
			result, err = f.backend.Participate(ctx, poolID, req, "")
		}
		if err != nil {
			return nil, err
		}
	}

	handoff := &PaymentHandoff{
		ContributionID: result.ContributionID,
		Amount:         amount,
		Fee:            feeAmount,
		Total:          total,
		Currency:       currency,
	}

	if result.Payment == nil {
		// nothing to collect through the provider; the flow is done
		session.mu.Lock()
		session.ContributionStep = StepDone
		session.mu.Unlock()
		return handoff, nil
	}

	checkoutSession := f.bridge.Open(ctx, checkout.Config{
		PublicKey:     result.Payment.PublicKey,
		InvoiceToken:  result.Payment.InvoiceToken,
		Amount:        result.Payment.Amount,
		Currency:      result.Payment.Currency,
		CustomerName:  req.FullName,
		CustomerPhone: req.Phone,
		HostedURL:     result.Payment.CheckoutURL,
	})
	f.sessions.IndexCheckout(checkoutSession.Ref, session.ID)

	handoff.InvoiceToken = result.Payment.InvoiceToken
	handoff.PublicKey = result.Payment.PublicKey
	if checkoutSession.Fallback {
		handoff.Fallback = true
		handoff.RedirectURL = result.Payment.CheckoutURL
	}

	go f.awaitOutcome(session, checkoutSession)

	f.sessions.Touch(session)
	return handoff, nil
}

// awaitOutcome waits for the provider to report and settles the session
func (f *ContributionFlow) awaitOutcome(session *Session, checkoutSession *checkout.Session) {
	outcome, err := checkoutSession.Await(context.Background(), f.bridge.Timeout())
	if err != nil {
		logger.Warn("Checkout %s did not settle: %v", checkoutSession.Ref, err)
		session.mu.Lock()
		session.Notice = "payment confirmation timed out; please retry"
		session.mu.Unlock()
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.LastOutcome = &outcome
	switch outcome.Kind {
	case checkout.OutcomeSuccess:
		session.ContributionStep = StepDone
		session.Notice = "contribution recorded, thank you"
	case checkout.OutcomeCancelled:
		// the payment step stays usable for a retry
		session.Notice = "payment cancelled"
	case checkout.OutcomeFailed:
		session.Notice = outcome.Message
	}
}

// Retreat steps the wizard back without losing entered values
func (f *ContributionFlow) Retreat(sessionID string) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	switch session.ContributionStep {
	case StepPayment:
		session.ContributionStep = StepDetails
	case StepDetails:
		// already at the first step
	case StepDone:
		return nil, ErrTerminalStep
	}
	return session, nil
}
