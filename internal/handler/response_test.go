package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccotek/cocoti-pool-flow/internal/backend"
	"github.com/ccotek/cocoti-pool-flow/internal/flow"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respond(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	FlowError(c, err)
	return w
}

func TestFlowErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"session not found", flow.ErrSessionNotFound, http.StatusNotFound},
		{"in flight", flow.ErrInFlight, http.StatusConflict},
		{"wrong step", flow.ErrWrongStep, http.StatusConflict},
		{"terminal step", flow.ErrTerminalStep, http.StatusConflict},
		{"auth expired", flow.ErrAuthExpired, http.StatusUnauthorized},
		{"resend throttled", &flow.ResendTooSoonError{RetryAt: time.Now()}, http.StatusTooManyRequests},
		{"upstream status preserved", &backend.StatusError{StatusCode: http.StatusUnprocessableEntity, Message: "bad amount"}, http.StatusUnprocessableEntity},
		{"transport failure", &backend.TransportError{Err: errors.New("connection refused")}, http.StatusBadGateway},
		{"validation fallback", errors.New("description too short"), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := respond(t, tt.err)
			assert.Equal(t, tt.want, w.Code)

			var body Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestFlowErrorKeepsUpstreamMessage(t *testing.T) {
	w := respond(t, &backend.StatusError{StatusCode: http.StatusBadRequest, Message: "amount below the pool minimum"})

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "amount below the pool minimum", body.Message)
}

func TestFlowErrorHidesTransportDetail(t *testing.T) {
	w := respond(t, &backend.TransportError{Err: errors.New("dial tcp 10.0.0.5:443: i/o timeout")})

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotContains(t, body.Message, "10.0.0.5")
}
