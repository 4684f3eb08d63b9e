package flow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteReleasesEveryCheckoutRef(t *testing.T) {
	sessions := NewRegistry(time.Minute)
	session := sessions.Create("client-1", KindContribution)

	// a cancelled checkout that was retried leaves the session holding
	// more than one ref; all of them go with the session
	sessions.IndexCheckout("ref-1", session.ID)
	sessions.IndexCheckout("ref-2", session.ID)

	got, err := sessions.ByCheckoutRef("ref-2")
	require.NoError(t, err)
	assert.Equal(t, session.ID, got.ID)

	sessions.Delete(session.ID)

	_, err = sessions.ByCheckoutRef("ref-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	sessions.mu.RLock()
	refs := len(sessions.byRef)
	tracked := len(sessions.refsOf)
	sessions.mu.RUnlock()
	assert.Zero(t, refs)
	assert.Zero(t, tracked)
}

func TestSweepReleasesEveryCheckoutRef(t *testing.T) {
	sessions := NewRegistry(time.Minute)
	session := sessions.Create("client-1", KindContribution)
	sessions.IndexCheckout("ref-1", session.ID)
	sessions.IndexCheckout("ref-2", session.ID)

	removed := sessions.Sweep(time.Now().Add(2 * time.Minute))
	require.Equal(t, 1, removed)

	sessions.mu.RLock()
	refs := len(sessions.byRef)
	tracked := len(sessions.refsOf)
	sessions.mu.RUnlock()
	assert.Zero(t, refs)
	assert.Zero(t, tracked)
}

func TestTouchExtendsExpiry(t *testing.T) {
	sessions := NewRegistry(time.Minute)
	session := sessions.Create("client-1", KindCreation)

	before := session.Snapshot().ExpiresAt
	time.Sleep(5 * time.Millisecond)
	sessions.Touch(session)
	after := session.Snapshot().ExpiresAt

	assert.True(t, after.After(before))
}
