package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresSecretKey(t *testing.T) {
	_, err := NewClient("https://api.example.com", "")
	assert.ErrorIs(t, err, ErrMissingSecretKey)
}

func TestInitialize(t *testing.T) {
	var gotAuth string
	var gotReq InitializeRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/transaction/initialize", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(map[string]any{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]any{
				"authorization_url": "https://pay.example.com/abc123",
				"access_code":       "abc123",
				"reference":         gotReq.Reference,
			},
		})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "sk_test_secret")
	require.NoError(t, err)

	result, err := client.Initialize(context.Background(), InitializeRequest{
		Email:     "ada@example.com",
		Amount:    150000,
		Reference: "ord_abc_1",
		Metadata:  Metadata{OrderID: "order-1"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Bearer sk_test_secret", gotAuth)
	assert.Equal(t, int64(150000), gotReq.Amount)
	assert.Equal(t, "order-1", gotReq.Metadata.OrderID)
	assert.Equal(t, "https://pay.example.com/abc123", result.AuthorizationURL)
	assert.Equal(t, "abc123", result.AccessCode)
	assert.Equal(t, "ord_abc_1", result.Reference)
}

func TestInitialize_GatewayDeclines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Invalid email address",
		})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	_, err := client.Initialize(context.Background(), InitializeRequest{Email: "bad"})

	require.ErrorIs(t, err, ErrGatewayRejected)
	assert.Contains(t, err.Error(), "Invalid email address")
}

func TestInitialize_FalseEnvelopeOn200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"status": false, "message": "duplicate reference"})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	_, err := client.Initialize(context.Background(), InitializeRequest{})

	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestInitialize_MissingAccessCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"reference": "ord_x"},
		})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	_, err := client.Initialize(context.Background(), InitializeRequest{})

	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestInitialize_NonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	_, err := client.Initialize(context.Background(), InitializeRequest{})

	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestVerify(t *testing.T) {
	paidAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/transaction/verify/ord_abc_1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": map[string]any{
				"status":   "success",
				"amount":   150000,
				"paid_at":  paidAt.Format(time.RFC3339),
				"metadata": map[string]any{"order_id": "order-1"},
			},
		})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	result, err := client.Verify(context.Background(), "ord_abc_1")

	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, int64(150000), result.Amount)
	require.NotNil(t, result.PaidAt)
	assert.True(t, paidAt.Equal(*result.PaidAt))
	assert.Equal(t, "order-1", result.Metadata.OrderID)
}

func TestVerify_AbandonedTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data":   map[string]any{"status": "abandoned", "amount": 150000},
		})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	result, err := client.Verify(context.Background(), "ord_abc_1")

	require.NoError(t, err)
	assert.Equal(t, "abandoned", result.Status)
	assert.Nil(t, result.PaidAt)
}

func TestVerify_UnknownReference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"status":  false,
			"message": "Transaction reference not found",
		})
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL, "sk_test_secret")
	_, err := client.Verify(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrGatewayRejected)
}

func TestNewReference(t *testing.T) {
	ref := NewReference("0f8fad5b-d9cb-469f-a165-70867728950e")

	assert.True(t, strings.HasPrefix(ref, "ord_0f8fad5b_"), ref)

	// Same order retried must not reuse a reference.
	assert.NotEqual(t, ref, NewReference("0f8fad5b-d9cb-469f-a165-70867728950e"))
}

func TestNewReference_ShortOrderID(t *testing.T) {
	ref := NewReference("abc")
	assert.True(t, strings.HasPrefix(ref, "ord_abc_"), ref)
}

func TestMinorUnitConversion(t *testing.T) {
	assert.Equal(t, int64(150000), ToMinorUnits(1500.00))
	assert.Equal(t, int64(1), ToMinorUnits(0.01))
	// 19.99 is not exactly representable as a float64.
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
	assert.Equal(t, int64(0), ToMinorUnits(0))

	assert.InDelta(t, 1500.00, FromMinorUnits(150000), 0.0001)
	assert.InDelta(t, 19.99, FromMinorUnits(1999), 0.0001)
}
