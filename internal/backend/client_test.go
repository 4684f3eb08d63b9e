package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewWithHTTPClient(server.URL, server.Client())
	return client, server
}

func TestErrorMessageExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail field", `{"detail":"pool not found"}`, "pool not found"},
		{"message field", `{"message":"too many requests"}`, "too many requests"},
		{"error field", `{"error":"bad amount"}`, "bad amount"},
		{"msg field", `{"msg":"nope"}`, "nope"},
		{"detail wins over message", `{"message":"b","detail":"a"}`, "a"},
		{"raw text fallback", `gateway exploded`, "gateway exploded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := client.GetPool(context.Background(), "p1")
			require.Error(t, err)

			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tt.want, statusErr.Message)
			assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
		})
	}
}

func TestErrorMessageFallsBackToStatusLine(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := client.GetPool(context.Background(), "p1")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Contains(t, statusErr.Message, "503")
}

func TestIsUnauthorized(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"token expired"}`))
	}))
	defer server.Close()

	err := client.Publish(context.Background(), "p1", "stale-token")
	assert.True(t, IsUnauthorized(err))
}

func TestParticipateAlwaysInitiatesPayment(t *testing.T) {
	var received map[string]interface{}
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/money-pools/p1/participate", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(ParticipateResult{ContributionID: "c1"})
	}))
	defer server.Close()

	req := &ParticipateRequest{
		Amount:          decimal.NewFromInt(5000),
		Currency:        "XOF",
		FullName:        "Awa Ndiaye",
		PaymentMethod:   "wave",
		InitiatePayment: true,
	}
	result, err := client.Participate(context.Background(), "p1", req, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "c1", result.ContributionID)
	assert.Equal(t, true, received["initiate_payment"])
}

func TestCreatePoolEmbedsOtpCredentials(t *testing.T) {
	var received map[string]interface{}
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/money-pools/public/create", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(CreateResult{PoolID: "pool-9", AccessToken: "fresh-token"})
	}))
	defer server.Close()

	req := &CreatePoolRequest{
		Name:         "Tontine",
		Visibility:   "public",
		TargetAmount: decimal.NewFromInt(100000),
		Otp: &OtpCredentials{
			Phone:     "+221771234567",
			SessionID: "otp-1",
			Code:      "123456",
			FullName:  "Awa Ndiaye",
		},
	}
	result, err := client.CreatePool(context.Background(), req, "")
	require.NoError(t, err)
	assert.Equal(t, "pool-9", result.PoolID)
	assert.Equal(t, "fresh-token", result.AccessToken)

	otp, ok := received["otp"].(map[string]interface{})
	require.True(t, ok, "otp credentials must ride in the create request")
	assert.Equal(t, "123456", otp["code"])
	assert.Equal(t, "Awa Ndiaye", otp["full_name"])
}

func TestCreatePoolPublicOmitsBounds(t *testing.T) {
	var received map[string]interface{}
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		json.NewEncoder(w).Encode(CreateResult{PoolID: "pool-9"})
	}))
	defer server.Close()

	req := &CreatePoolRequest{
		Name:         "Tontine",
		Visibility:   "public",
		TargetAmount: decimal.NewFromInt(100000),
	}
	_, err := client.CreatePool(context.Background(), req, "tok")
	require.NoError(t, err)

	_, hasMin := received["min_contribution"]
	_, hasMax := received["max_contribution"]
	_, hasParticipants := received["max_participants"]
	assert.False(t, hasMin)
	assert.False(t, hasMax)
	assert.False(t, hasParticipants)
}

func TestSendAndVerifyOTP(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/auth/otp/send":
			json.NewEncoder(w).Encode(map[string]string{"session_id": "otp-7"})
		case "/api/v1/auth/otp/verify":
			json.NewEncoder(w).Encode(VerifyResult{UserExists: true, AccessToken: "tok-7"})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	sessionID, err := client.SendOTP(context.Background(), "+221771234567", PurposePoolCreation)
	require.NoError(t, err)
	assert.Equal(t, "otp-7", sessionID)

	result, err := client.VerifyOTP(context.Background(), "+221771234567", sessionID, "123456")
	require.NoError(t, err)
	assert.True(t, result.UserExists)
	assert.Equal(t, "tok-7", result.AccessToken)
}

func TestCurrentUser(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(Me{ID: "user-1", FullName: "Awa Ndiaye", Phone: "+221771234567"})
	}))
	defer server.Close()

	me, err := client.CurrentUser(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", me.ID)
	assert.Equal(t, "Awa Ndiaye", me.FullName)
}

func TestTransportErrorType(t *testing.T) {
	client := NewWithHTTPClient("http://127.0.0.1:1", http.DefaultClient)

	_, err := client.GetPool(context.Background(), "p1")
	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}
