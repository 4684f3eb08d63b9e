// Package flow is the wizard engine: it sequences steps, gates them
// through validation, and drives the core API and the checkout bridge.
// Sessions are deliberately in-process and TTL-bound; losing them on
// restart matches the transient lifecycle of the drafts they hold.
package flow

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
)

// Kind flow kind
type Kind string

const (
	KindContribution Kind = "contribution"
	KindCreation     Kind = "creation"
)

// ContributionStep steps of the contribution wizard
type ContributionStep string

const (
	StepDetails ContributionStep = "details"
	StepPayment ContributionStep = "payment"
	StepDone    ContributionStep = "done"
)

// CreationStep steps of the creation wizard
type CreationStep string

const (
	StepInfo         CreationStep = "info"
	StepVerification CreationStep = "verification"
	StepActivation   CreationStep = "activation"
	StepSuccess      CreationStep = "success"
)

var (
	ErrSessionNotFound      = errors.New("flow session not found or expired")
	ErrInFlight             = errors.New("another request is in progress for this session")
	ErrWrongStep            = errors.New("operation not permitted at the current step")
	ErrTerminalStep         = errors.New("the flow is complete; no transitions remain")
	ErrConfirmationRequired = errors.New("publishing requires explicit confirmation")
	ErrFullNameRequired     = errors.New("full name is required to create your account")
	ErrMediaLimit           = errors.New("attachment limit reached for this media type")
	ErrAuthExpired          = errors.New("authentication expired, please verify your phone number again")
)

// Session one wizard run. All field access goes through the session
// mutex; the in-flight flag serializes submissions the way the web
// client disabled its buttons during a request.
type Session struct {
	ID       string
	ClientID string
	Kind     Kind

	CreatedAt time.Time
	ExpiresAt time.Time

	mu       sync.Mutex
	inFlight bool

	ContributionStep ContributionStep
	CreationStep     CreationStep

	Contribution *model.ContributionDraft
	Creation     *model.CreationDraft

	Pool *model.Pool
	Tip  *model.TipConfig
	Otp  *model.OtpSession

	// CreatedPoolID result of the creation flow
	CreatedPoolID string

	// NeedFullName set after OTP verification when the phone maps to no
	// existing account
	NeedFullName bool

	// LastOutcome most recent checkout outcome
	LastOutcome *checkout.Outcome

	// Notice last user-facing message produced by a background event
	Notice string

	// token cached for immediate reuse before the store write settles
	token string
}

// begin marks the session busy; concurrent submissions are rejected
func (s *Session) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return ErrInFlight
	}
	s.inFlight = true
	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// Expired reports whether the session TTL has elapsed. ExpiresAt is
// written by Touch under the session lock, so the read locks too.
func (s *Session) Expired(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.After(s.ExpiresAt)
}

// Snapshot consistent read of a session for presentation
type Snapshot struct {
	ID            string
	Kind          Kind
	Step          string
	Notice        string
	NeedFullName  bool
	CreatedPoolID string
	Pool          *model.Pool
	Tip           *model.TipConfig
	Contribution  *model.ContributionDraft
	Creation      *model.CreationDraft
	Outcome       *checkout.Outcome
	OtpResendAt   *time.Time
	ExpiresAt     time.Time
}

// Snapshot copies the user-visible state under the session lock
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.ID,
		Kind:          s.Kind,
		Notice:        s.Notice,
		NeedFullName:  s.NeedFullName,
		CreatedPoolID: s.CreatedPoolID,
		Pool:          s.Pool,
		Tip:           s.Tip,
		ExpiresAt:     s.ExpiresAt,
	}
	if s.Kind == KindContribution {
		snap.Step = string(s.ContributionStep)
	} else {
		snap.Step = string(s.CreationStep)
	}
	if s.Contribution != nil {
		draft := *s.Contribution
		snap.Contribution = &draft
	}
	if s.Creation != nil {
		draft := *s.Creation
		snap.Creation = &draft
	}
	if s.LastOutcome != nil {
		outcome := *s.LastOutcome
		snap.Outcome = &outcome
	}
	if s.Otp != nil {
		resendAt := s.Otp.ResendAfter
		snap.OtpResendAt = &resendAt
	}
	return snap
}

// Registry in-process session store
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	byRef    map[string]string   // checkout ref -> session id
	refsOf   map[string][]string // session id -> every ref indexed for it
	ttl      time.Duration
}

// SessionTTL converts configured minutes to a TTL duration
func SessionTTL(minutes int) time.Duration {
	if minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

// NewRegistry creates a session registry with the given TTL
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{
		sessions: make(map[string]*Session),
		byRef:    make(map[string]string),
		refsOf:   make(map[string][]string),
		ttl:      ttl,
	}
}

// Create registers a new session
func (r *Registry) Create(clientID string, kind Kind) *Session {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		ClientID:  clientID,
		Kind:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return session
}

// Get returns a live session; expired sessions read as absent
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok || session.Expired(time.Now()) {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Touch extends a session's TTL after activity
func (r *Registry) Touch(session *Session) {
	session.mu.Lock()
	session.ExpiresAt = time.Now().Add(r.ttl)
	session.mu.Unlock()
}

// IndexCheckout maps a checkout reference to its session. A session can
// accumulate several refs when cancelled checkouts are retried; every
// one is released with the session.
func (r *Registry) IndexCheckout(ref, sessionID string) {
	r.mu.Lock()
	r.byRef[ref] = sessionID
	r.refsOf[sessionID] = append(r.refsOf[sessionID], ref)
	r.mu.Unlock()
}

// releaseRefs drops every checkout ref indexed for a session; the
// caller holds r.mu
func (r *Registry) releaseRefs(sessionID string) {
	for _, ref := range r.refsOf[sessionID] {
		delete(r.byRef, ref)
	}
	delete(r.refsOf, sessionID)
}

// ByCheckoutRef resolves the session awaiting a checkout reference
func (r *Registry) ByCheckoutRef(ref string) (*Session, error) {
	r.mu.RLock()
	id, ok := r.byRef[ref]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r.Get(id)
}

// Delete destroys a session (cancel, reset, navigation away)
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	if _, ok := r.sessions[id]; ok {
		r.releaseRefs(id)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
}

// Sweep evicts expired sessions and returns how many were removed
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.Expired(now) {
			r.releaseRefs(id)
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len current number of live sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
