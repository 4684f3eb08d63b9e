package flow

import (
	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
	"github.com/ccotek/cocoti-pool-flow/internal/logger"
)

// SettlementProcessor audit hook on the checkout event stream. Session
// state itself is settled by the awaiting goroutine; this processor
// records the event and releases the checkout index entry.
type SettlementProcessor struct {
	sessions *Registry
}

// NewSettlementProcessor creates the settlement processor
func NewSettlementProcessor(sessions *Registry) *SettlementProcessor {
	return &SettlementProcessor{sessions: sessions}
}

func (p *SettlementProcessor) Name() string {
	return "flow-settlement"
}

func (p *SettlementProcessor) Handle(evt checkout.Event, outcome checkout.Outcome) error {
	session, err := p.sessions.ByCheckoutRef(evt.Ref)
	if err != nil {
		logger.Warn("Checkout event %s for unknown session: %s", evt.Kind, evt.Ref)
		return nil
	}

	logger.Info("Checkout %s settled %s for session %s", evt.Ref, outcome.Kind, session.ID)

	if outcome.Kind != checkout.OutcomeCancelled {
		p.sessions.mu.Lock()
		delete(p.sessions.byRef, evt.Ref)
		p.sessions.mu.Unlock()
	}
	return nil
}
