package model

// PaymentMethodKind supported payment channels
type PaymentMethodKind string

const (
	MethodWave        PaymentMethodKind = "wave"
	MethodOrangeMoney PaymentMethodKind = "orange_money"
	MethodCard        PaymentMethodKind = "card"
)

// PaymentMethod tagged union over the supported channels.
// Phone is meaningful for wave and orange_money, the card fields for card.
type PaymentMethod struct {
	Kind PaymentMethodKind `json:"kind"`

	Phone string `json:"phone,omitempty"`

	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVC    string `json:"card_cvc,omitempty"`
}

// IsMobile reports whether the method settles through a mobile wallet
func (m PaymentMethod) IsMobile() bool {
	return m.Kind == MethodWave || m.Kind == MethodOrangeMoney
}

// Known reports whether the kind is one of the supported channels
func (m PaymentMethod) Known() bool {
	switch m.Kind {
	case MethodWave, MethodOrangeMoney, MethodCard:
		return true
	}
	return false
}
