package flow

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/media"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
	"github.com/ccotek/cocoti-pool-flow/internal/validate"
)

// CreationFlow drives the creation wizard:
// info -> verification -> activation -> success, with verification
// skipped entirely when a valid token is already stored.
type CreationFlow struct {
	backend  *backend.Client
	tokens   token.Store
	uploader media.Uploader
	sessions *Registry
}

// NewCreationFlow creates the creation flow logic
func NewCreationFlow(client *backend.Client, tokens token.Store, uploader media.Uploader, sessions *Registry) *CreationFlow {
	return &CreationFlow{
		backend:  client,
		tokens:   tokens,
		uploader: uploader,
		sessions: sessions,
	}
}

// Start opens a creation session with an empty draft
func (f *CreationFlow) Start(ctx context.Context, clientID string) *Session {
	session := f.sessions.Create(clientID, KindCreation)
	session.CreationStep = StepInfo
	session.Creation = &model.CreationDraft{}
	return session
}

// InfoInput the info step fields
type InfoInput struct {
	Name            string
	Description     string
	Visibility      model.PoolVisibility
	Country         string
	Currency        string
	TargetAmount    decimal.Decimal
	MinContribution *decimal.Decimal
	MaxContribution *decimal.Decimal
	MaxParticipants *int
	AllowAnonymous  *bool
	StartDate       *time.Time
	EndDate         *time.Time
	CharterAccepted bool
}

// SubmitInfo validates and normalizes the info step. With a stored
// token the pool is created immediately and the verification step is
// skipped; otherwise the flow moves to verification.
func (f *CreationFlow) SubmitInfo(ctx context.Context, sessionID string, in InfoInput) (*Session, error) {
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
	if session.CreationStep != StepInfo {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}

	draft := session.Creation
	draft.Name = in.Name
	draft.Description = in.Description
	draft.Visibility = in.Visibility
	draft.Country = in.Country
	draft.Currency = in.Currency
	draft.TargetAmount = in.TargetAmount
	draft.MinContribution = in.MinContribution
	draft.MaxContribution = in.MaxContribution
	draft.MaxParticipants = in.MaxParticipants
	draft.AllowAnonymous = in.AllowAnonymous
	draft.StartDate = in.StartDate
	draft.EndDate = in.EndDate
	draft.CharterAccepted = in.CharterAccepted

	if err := validate.CreationInfo(draft); err != nil {
		session.mu.Unlock()
		return nil, err
	}
	validate.NormalizeCreation(draft)
	session.mu.Unlock()

	bearer := bearerFor(ctx, f.tokens, session)
	if bearer == "" {
		session.mu.Lock()
		session.CreationStep = StepVerification
		session.mu.Unlock()
		f.sessions.Touch(session)
		return session, nil
	}

	if err := f.create(ctx, session, bearer, nil); err != nil {
		if backend.IsUnauthorized(err) {
			dropToken(ctx, f.tokens, session)
			session.mu.Lock()
			session.CreationStep = StepVerification
			session.Notice = ErrAuthExpired.Error()
			session.mu.Unlock()
			f.sessions.Touch(session)
			return session, nil
		}
		return nil, err
	}

	session.mu.Lock()
	session.CreationStep = StepActivation
	session.mu.Unlock()
	f.sessions.Touch(session)
	return session, nil
}

// SendOTP requests a one-time code for the verification step. Resends
// inside the countdown window are rejected locally; the core API stays
// the real throttle.
func (f *CreationFlow) SendOTP(ctx context.Context, sessionID, phone string) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, err
	}
	defer session.end()

	session.mu.Lock()
	if session.CreationStep != StepVerification {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}
	otp := session.Otp
	session.mu.Unlock()

	if err := validate.Phone(phone); err != nil {
		return nil, err
	}

	now := time.Now()
	if otp != nil && otp.Phone == phone && !otp.CanResend(now) {
		return nil, &ResendTooSoonError{RetryAt: otp.ResendAfter}
	}

	otpSessionID, err := f.backend.SendOTP(ctx, phone, backend.PurposePoolCreation)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.Otp = &model.OtpSession{
		SessionID:   otpSessionID,
		Phone:       phone,
		ResendAfter: now.Add(model.ResendCountdown),
	}
	session.mu.Unlock()
	f.sessions.Touch(session)
	return session, nil
}

// ResendTooSoonError OTP resend requested before the countdown elapsed
type ResendTooSoonError struct {
	RetryAt time.Time
}

func (e *ResendTooSoonError) Error() string {
	return "please wait before requesting a new code"
}

// VerifyOTP submits the received code. When the phone maps to an
// existing account, or a full name is already on file, the pool is
// created in the same breath; otherwise the caller must follow up with
// Complete carrying the full name.
func (f *CreationFlow) VerifyOTP(ctx context.Context, sessionID, code, fullName string) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, err
	}
	defer session.end()

	session.mu.Lock()
	if session.CreationStep != StepVerification || session.Otp == nil {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}
	phone := session.Otp.Phone
	otpSessionID := session.Otp.SessionID
	session.mu.Unlock()

	result, err := f.backend.VerifyOTP(ctx, phone, otpSessionID, code)
	if err != nil {
		return nil, err
	}

	userExists := result.UserExists
	session.mu.Lock()
	session.Otp.Verified = true
	session.Otp.Code = code
	session.Otp.UserExists = &userExists
	session.NeedFullName = !userExists
	if fullName != "" {
		session.Creation.CreatorFullName = fullName
	}
	needName := session.NeedFullName && strings.TrimSpace(session.Creation.CreatorFullName) == ""
	session.mu.Unlock()

	if result.AccessToken != "" {
		persistToken(ctx, f.tokens, session, result.AccessToken)
	}

	if needName {
		// the flow stays at verification; the client collects the name
		// and calls Complete
		f.sessions.Touch(session)
		return session, nil
	}

	return f.finishVerification(ctx, session)
}

// Complete finishes a verification that was waiting on the creator's
// full name
func (f *CreationFlow) Complete(ctx context.Context, sessionID, fullName string) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, err
	}
	defer session.end()

	session.mu.Lock()
	if session.CreationStep != StepVerification || session.Otp == nil || !session.Otp.Verified {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}
	if fullName != "" {
		session.Creation.CreatorFullName = fullName
	}
	needName := session.NeedFullName && strings.TrimSpace(session.Creation.CreatorFullName) == ""
	session.mu.Unlock()

	if needName {
		return nil, ErrFullNameRequired
	}

	return f.finishVerification(ctx, session)
}

// finishVerification creates the pool, with a bearer when one appeared
// during verification or with the OTP credentials embedded
func (f *CreationFlow) finishVerification(ctx context.Context, session *Session) (*Session, error) {
	bearer := bearerFor(ctx, f.tokens, session)

	var creds *backend.OtpCredentials
	if bearer == "" {
		session.mu.Lock()
		creds = &backend.OtpCredentials{
			Phone:     session.Otp.Phone,
			SessionID: session.Otp.SessionID,
			Code:      session.Otp.Code,
			FullName:  session.Creation.CreatorFullName,
		}
		session.mu.Unlock()
	}

	if err := f.create(ctx, session, bearer, creds); err != nil {
		return nil, err
	}

	session.mu.Lock()
	session.CreationStep = StepActivation
	session.mu.Unlock()
	f.sessions.Touch(session)
	return session, nil
}

// create issues the creation call and persists any returned token
func (f *CreationFlow) create(ctx context.Context, session *Session, bearer string, creds *backend.OtpCredentials) error {
	session.mu.Lock()
	draft := session.Creation
	req := &backend.CreatePoolRequest{
		Name:            draft.Name,
		Description:     draft.Description,
		Visibility:      string(draft.Visibility),
		CountryCode:     draft.Country,
		Currency:        draft.Currency,
		TargetAmount:    draft.TargetAmount,
		MinContribution: draft.MinContribution,
		MaxContribution: draft.MaxContribution,
		MaxParticipants: draft.MaxParticipants,
		AllowAnonymous:  draft.AllowAnonymous,
		StartDate:       draft.StartDate,
		EndDate:         draft.EndDate,
		ImageURLs:       draft.ImageURLs,
		VideoURLs:       draft.VideoURLs,
		Otp:             creds,
	}
	session.mu.Unlock()

	result, err := f.backend.CreatePool(ctx, req, bearer)
	if err != nil {
		return err
	}

	session.mu.Lock()
	session.CreatedPoolID = result.PoolID
	session.mu.Unlock()
	persistToken(ctx, f.tokens, session, result.AccessToken)
	return nil
}

// Activate settles the activation step: keep the pool as a draft, or
// publish it. Publishing needs the explicit confirmation flag, and a
// 401 sends the flow back to verification instead of failing.
func (f *CreationFlow) Activate(ctx context.Context, sessionID string, publish, confirmed bool) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.begin(); err != nil {
		return nil, err
	}
	defer session.end()

	session.mu.Lock()
	if session.CreationStep != StepActivation {
		session.mu.Unlock()
		return nil, ErrWrongStep
	}
	if !publish {
		session.CreationStep = StepSuccess
		session.mu.Unlock()
		return session, nil
	}
	poolID := session.CreatedPoolID
	session.mu.Unlock()

	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	bearer := bearerFor(ctx, f.tokens, session)
	if err := f.backend.Publish(ctx, poolID, bearer); err != nil {
		if backend.IsUnauthorized(err) {
			dropToken(ctx, f.tokens, session)
			session.mu.Lock()
			session.CreationStep = StepVerification
			session.Otp = nil
			session.Notice = ErrAuthExpired.Error()
			session.mu.Unlock()
			return nil, ErrAuthExpired
		}
		return nil, err
	}

	session.mu.Lock()
	session.CreationStep = StepSuccess
	session.mu.Unlock()
	return session, nil
}

// AttachMedia uploads an illustration and records its URL on the draft,
// enforcing the per-pool attachment limits
func (f *CreationFlow) AttachMedia(ctx context.Context, sessionID string, fileType media.FileType, filename string, file io.Reader) (string, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return "", err
	}
	if err := session.begin(); err != nil {
		return "", err
	}
	defer session.end()

	session.mu.Lock()
	if session.Kind != KindCreation || session.CreationStep == StepSuccess {
		session.mu.Unlock()
		return "", ErrWrongStep
	}

	draft := session.Creation
	switch fileType {
	case media.FileTypeImage:
		if len(draft.ImageURLs) >= model.MaxImages {
			session.mu.Unlock()
			return "", ErrMediaLimit
		}
	case media.FileTypeVideo:
		if len(draft.VideoURLs) >= model.MaxVideos {
			session.mu.Unlock()
			return "", ErrMediaLimit
		}
	}
	session.mu.Unlock()

	url, err := f.uploader.Upload(ctx, fileType, filename, file)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	switch fileType {
	case media.FileTypeImage:
		draft.ImageURLs = append(draft.ImageURLs, url)
	case media.FileTypeVideo:
		draft.VideoURLs = append(draft.VideoURLs, url)
	}
	session.mu.Unlock()
	f.sessions.Touch(session)
	return url, nil
}

// Retreat steps the wizard back; entered values stay on the draft
func (f *CreationFlow) Retreat(sessionID string) (*Session, error) {
	session, err := f.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	switch session.CreationStep {
	case StepVerification:
		session.CreationStep = StepInfo
	case StepActivation:
		session.CreationStep = StepVerification
	case StepInfo:
		// already at the first step
	case StepSuccess:
		return nil, ErrTerminalStep
	}
	return session, nil
}
