package flow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/checkout"
	"github.com/ccotek/cocoti-pool-flow/internal/config"
	"github.com/ccotek/cocoti-pool-flow/internal/model"
	"github.com/ccotek/cocoti-pool-flow/internal/token"
)

// fakeCore stands in for the core API during flow tests
type fakeCore struct {
	mux *http.ServeMux

	rejectBearer bool // participate answers 401 to authenticated calls
	participated int
}

func newFakeCore() *fakeCore {
	core := &fakeCore{mux: http.NewServeMux()}

	core.mux.HandleFunc("/api/v1/money-pools/tip-config/public", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"default_percentage": "5.5",
			"min_percentage":     "1",
			"max_percentage":     "10",
		})
	})
	core.mux.HandleFunc("/api/v1/money-pools/pool-1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":               "pool-1",
			"name":             "Tabaski solidaire",
			"country_code":     "SN",
			"currency":         "XOF",
			"min_contribution": "500",
			"max_contribution": "100000",
		})
	})
	core.mux.HandleFunc("/api/v1/money-pools/pool-1/participate", func(w http.ResponseWriter, r *http.Request) {
		if core.rejectBearer && r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
			return
		}
		core.participated++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"contribution_id": "contrib-1",
			"payment": map[string]interface{}{
				"public_key":    "pk_test",
				"invoice_token": "inv-1",
				"checkout_url":  "https://paydunya.example/invoice/inv-1",
				"amount":        "5275",
				"currency":      "XOF",
			},
		})
	})
	return core
}

type contributionHarness struct {
	flow     *ContributionFlow
	bridge   *checkout.Bridge
	tokens   token.Store
	sessions *Registry
	core     *fakeCore
}

func newContributionHarness(t *testing.T, scriptOK bool) *contributionHarness {
	t.Helper()

	core := newFakeCore()
	coreServer := httptest.NewServer(core.mux)
	t.Cleanup(coreServer.Close)

	scriptStatus := http.StatusOK
	if !scriptOK {
		scriptStatus = http.StatusBadGateway
	}
	scriptServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(scriptStatus)
	}))
	t.Cleanup(scriptServer.Close)

	client := backend.NewWithHTTPClient(coreServer.URL, coreServer.Client())
	bridge, err := checkout.New(config.PayDunyaConfig{ScriptURL: scriptServer.URL, CheckoutTimeout: 2, Workers: 2})
	require.NoError(t, err)
	t.Cleanup(bridge.Close)

	tokens := token.NewMemoryStore()
	sessions := NewRegistry(time.Minute)
	return &contributionHarness{
		flow:     NewContributionFlow(client, tokens, bridge, sessions),
		bridge:   bridge,
		tokens:   tokens,
		sessions: sessions,
		core:     core,
	}
}

func detailsInput(amount string) DetailsInput {
	return DetailsInput{Amount: decimal.RequireFromString(amount)}
}

func wavePayment() PaymentInput {
	return PaymentInput{
		FullName: "Awa Ndiaye",
		Method:   model.PaymentMethod{Kind: model.MethodWave, Phone: "+221771234567"},
	}
}

func TestContributionHappyPath(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)
	assert.Equal(t, StepDetails, session.ContributionStep)
	assert.Equal(t, "XOF", session.Contribution.Currency)

	session, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("5000"))
	require.NoError(t, err)
	assert.Equal(t, StepPayment, session.ContributionStep)
	assert.True(t, session.Contribution.ServiceFeeAmount.Equal(decimal.NewFromInt(275)))

	handoff, err := h.flow.SubmitPayment(ctx, session.ID, wavePayment())
	require.NoError(t, err)
	assert.Equal(t, "contrib-1", handoff.ContributionID)
	assert.Equal(t, "inv-1", handoff.InvoiceToken)
	assert.False(t, handoff.Fallback)
	assert.True(t, handoff.Total.Equal(decimal.NewFromInt(5275)))

	// provider settles through the callback
	require.NoError(t, h.bridge.Resolve(checkout.Event{Ref: "inv-1", Kind: "completed"}))
	assert.Eventually(t, func() bool {
		return session.Snapshot().Step == string(StepDone)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestContributionFeeClampedToBounds(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)

	pct := decimal.NewFromInt(50) // above the configured max of 10
	in := detailsInput("1000")
	in.ServiceFeePct = &pct

	session, err = h.flow.SubmitDetails(ctx, session.ID, in)
	require.NoError(t, err)
	assert.True(t, session.Contribution.ServiceFeePct.Equal(decimal.NewFromInt(10)))
	assert.True(t, session.Contribution.ServiceFeeAmount.Equal(decimal.NewFromInt(100)))
}

func TestContributionAmountOutOfBoundsStaysOnDetails(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)

	_, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("499"))
	require.Error(t, err)
	assert.Equal(t, StepDetails, session.ContributionStep)
}

func TestRetreatPreservesEnteredValues(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)

	in := detailsInput("5000")
	in.Message = "bon courage"
	_, err = h.flow.SubmitDetails(ctx, session.ID, in)
	require.NoError(t, err)

	session, err = h.flow.Retreat(session.ID)
	require.NoError(t, err)
	assert.Equal(t, StepDetails, session.ContributionStep)
	assert.True(t, session.Contribution.Amount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, "bon courage", session.Contribution.Message)
}

func TestSubmitDetailsRejectedAtWrongStep(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)

	_, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("5000"))
	require.NoError(t, err)

	_, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("6000"))
	assert.ErrorIs(t, err, ErrWrongStep)
}

func TestSubmitPaymentRetriesWithoutStaleToken(t *testing.T) {
	h := newContributionHarness(t, true)
	h.core.rejectBearer = true
	ctx := context.Background()

	require.NoError(t, h.tokens.Set(ctx, "client-1", "stale-token"))

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)
	_, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("5000"))
	require.NoError(t, err)

	handoff, err := h.flow.SubmitPayment(ctx, session.ID, wavePayment())
	require.NoError(t, err)
	assert.Equal(t, "contrib-1", handoff.ContributionID)
	assert.Equal(t, 1, h.core.participated)

	tok, err := h.tokens.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSubmitPaymentFallsBackToHostedCheckout(t *testing.T) {
	h := newContributionHarness(t, false)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)
	_, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("5000"))
	require.NoError(t, err)

	handoff, err := h.flow.SubmitPayment(ctx, session.ID, wavePayment())
	require.NoError(t, err)
	assert.True(t, handoff.Fallback)
	assert.Equal(t, "https://paydunya.example/invoice/inv-1", handoff.RedirectURL)
}

func TestCancelledPaymentKeepsPaymentStep(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)
	_, err = h.flow.SubmitDetails(ctx, session.ID, detailsInput("5000"))
	require.NoError(t, err)
	_, err = h.flow.SubmitPayment(ctx, session.ID, wavePayment())
	require.NoError(t, err)

	require.NoError(t, h.bridge.Resolve(checkout.Event{Ref: "inv-1", Kind: "cancelled"}))

	assert.Eventually(t, func() bool {
		snap := session.Snapshot()
		return snap.Outcome != nil && snap.Outcome.Kind == checkout.OutcomeCancelled
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, string(StepPayment), session.Snapshot().Step)
	assert.Equal(t, "payment cancelled", session.Snapshot().Notice)
}

// exercises the session lock under the race detector: the state poll
// endpoint snapshots drafts while submissions mutate them
func TestSnapshotConcurrentWithSubmissions(t *testing.T) {
	h := newContributionHarness(t, true)
	ctx := context.Background()

	session, err := h.flow.Start(ctx, "client-1", "pool-1")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 400; i++ {
			session.Snapshot()
			h.sessions.Sweep(time.Now())
		}
	}()

	for i := 0; i < 100; i++ {
		in := detailsInput("5000")
		in.Message = "bon courage"
		_, err := h.flow.SubmitDetails(ctx, session.ID, in)
		require.NoError(t, err)
		_, err = h.flow.Retreat(session.ID)
		require.NoError(t, err)
	}
	<-done
}

func TestRegistrySweepEvictsExpiredSessions(t *testing.T) {
	sessions := NewRegistry(time.Minute)
	session := sessions.Create("client-1", KindContribution)
	require.Equal(t, 1, sessions.Len())

	removed := sessions.Sweep(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
	assert.Equal(t, 0, sessions.Len())

	_, err := sessions.Get(session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
