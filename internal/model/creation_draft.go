package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PoolVisibility pool visibility
type PoolVisibility string

const (
	VisibilityPublic  PoolVisibility = "public"
	VisibilityPrivate PoolVisibility = "private"
)

// MinDescriptionLength hard minimum for the pool description, trimmed
const MinDescriptionLength = 300

// Media attachment limits per pool
const (
	MaxImages = 3
	MaxVideos = 2
)

// CreationDraft in-progress money pool, held across the creation wizard steps
type CreationDraft struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Visibility  PoolVisibility `json:"visibility"`
	Country     string         `json:"country"`
	Currency    string         `json:"currency"`

	TargetAmount decimal.Decimal `json:"target_amount"`

	// Only meaningful when Visibility is not public; stripped from the
	// outbound payload otherwise
	MinContribution *decimal.Decimal `json:"min_contribution,omitempty"`
	MaxContribution *decimal.Decimal `json:"max_contribution,omitempty"`
	MaxParticipants *int             `json:"max_participants,omitempty"`
	AllowAnonymous  *bool            `json:"allow_anonymous,omitempty"`

	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`

	ImageURLs []string `json:"image_urls,omitempty"`
	VideoURLs []string `json:"video_urls,omitempty"`

	// Creator identity, required when the session is unauthenticated
	CreatorFullName string `json:"creator_full_name,omitempty"`

	CharterAccepted bool `json:"charter_accepted"`
}
