package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolStatus money pool status, as reported by the core API
type PoolStatus string

const (
	PoolStatusDraft     PoolStatus = "draft"
	PoolStatusPublished PoolStatus = "published"
	PoolStatusClosed    PoolStatus = "closed"
)

// Pool money pool snapshot fetched from the core API
type Pool struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Visibility  PoolVisibility `json:"visibility"`
	Status      PoolStatus     `json:"status"`
	Country     string         `json:"country_code"`
	Currency    string         `json:"currency"`

	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`

	// Contribution bounds are optional; nil means unbounded
	MinContribution *decimal.Decimal `json:"min_contribution,omitempty"`
	MaxContribution *decimal.Decimal `json:"max_contribution,omitempty"`

	AllowAnonymous bool `json:"allow_anonymous"`

	CreatedAt time.Time `json:"created_at"`
}

// Contribution one recorded contribution, as listed by the core API
type Contribution struct {
	ID        string          `json:"id"`
	PoolID    string          `json:"pool_id"`
	Name      string          `json:"contributor_name"`
	Anonymous bool            `json:"anonymous"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Message   string          `json:"message,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Country country with calling code, used by phone selectors
type Country struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	CallingCode string `json:"calling_code"`
	Currency    string `json:"currency"`
}

// TipConfig service fee percentage bounds and default for a country
type TipConfig struct {
	DefaultPct decimal.Decimal `json:"default_percentage"`
	MinPct     decimal.Decimal `json:"min_percentage"`
	MaxPct     decimal.Decimal `json:"max_percentage"`
}
