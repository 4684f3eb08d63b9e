package model

import "github.com/shopspring/decimal"

// ContributionDraft in-progress contribution, held for the lifetime of one flow session
type ContributionDraft struct {
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Message   string          `json:"message,omitempty"`
	Anonymous bool            `json:"anonymous"`

	PayerFullName string `json:"payer_full_name"`
	PayerEmail    string `json:"payer_email,omitempty"`
	PayerPhone    string `json:"payer_phone,omitempty"`

	Method PaymentMethod `json:"method"`

	// Service fee, always recomputed from Amount and ServiceFeePct
	ServiceFeePct    decimal.Decimal `json:"service_fee_percentage"`
	ServiceFeeAmount decimal.Decimal `json:"service_fee_amount"`
}

// Total amount charged including the service fee
func (d *ContributionDraft) Total() decimal.Decimal {
	return d.Amount.Add(d.ServiceFeeAmount)
}
