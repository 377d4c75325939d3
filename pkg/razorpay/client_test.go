package razorpay

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{KeyID: "rzp_test_key", KeySecret: "secret", BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestCreateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var body OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 107900, body.Amount)
		assert.Equal(t, "Food Store", body.Notes["store_name"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Order{ID: "order_1", Amount: body.Amount, Currency: body.Currency, Receipt: body.Receipt, Status: "created"})
	})

	order, err := client.CreateOrder(context.Background(), OrderRequest{
		Amount:   107900,
		Currency: "INR",
		Receipt:  "FOOD_STORE_1",
		Notes:    map[string]string{"store_name": "Food Store"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_1", order.ID)
	assert.Equal(t, "FOOD_STORE_1", order.Receipt)
}

func TestCreateOrderAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount too low"}}`))
	})

	_, err := client.CreateOrder(context.Background(), OrderRequest{Amount: 1, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount too low")
}

func TestCreateOrderHonoursCancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("gateway must not be called")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.CreateOrder(ctx, OrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetchPayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/pay_123", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"pay_123","status":"captured","amount":500}`))
	})

	payment, err := client.FetchPayment(context.Background(), "pay_123")
	require.NoError(t, err)
	assert.Equal(t, "captured", payment["status"])

	_, err = client.FetchPayment(context.Background(), " ")
	assert.Error(t, err)
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(Config{KeyID: "id"})
	assert.Error(t, err)

	client, err := NewClient(Config{KeyID: "id", KeySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, "id", client.KeyID())
}

func TestSignatureRoundTrip(t *testing.T) {
	sig := Signature("secret", "order_1", "pay_1")
	assert.Len(t, sig, 64)
	assert.Equal(t, strings.ToLower(sig), sig)
	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))

	assert.False(t, VerifySignature("other", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_2", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_1", strings.ToUpper(sig)))
	assert.False(t, VerifySignature("secret", "", "pay_1", Signature("secret", "", "pay_1")))

	for i := range sig {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		assert.False(t, VerifySignature("secret", "order_1", "pay_1", string(mutated)), "position %d", i)
	}
}
