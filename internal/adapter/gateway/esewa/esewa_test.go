package esewa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sujanms/gharbhada/internal/core/domain"
)

const (
	testProductCode = "EPAYTEST"
	testSecret      = "8gBm/:&EnhH.1/q"
)

func signPayload(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// encodeCallback builds the base64 envelope the gateway appends to its
// success redirect, signed with the given secret.
func encodeCallback(t *testing.T, secret, code, status, amount, txUUID string) string {
	t.Helper()

	fields := "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names"
	payload := fmt.Sprintf(
		"transaction_code=%s,status=%s,total_amount=%s,transaction_uuid=%s,product_code=%s,signed_field_names=%s",
		code, status, amount, txUUID, testProductCode, fields,
	)

	envelope := map[string]string{
		"transaction_code":   code,
		"status":             status,
		"total_amount":       amount,
		"transaction_uuid":   txUUID,
		"product_code":       testProductCode,
		"signed_field_names": fields,
		"signature":          signPayload(secret, payload),
	}

	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(raw)
}

func statusServer(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(respond))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyCallback_Success(t *testing.T) {
	srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testProductCode, r.URL.Query().Get("product_code"))
		assert.Equal(t, "3000", r.URL.Query().Get("total_amount"))
		assert.Equal(t, "tx-123", r.URL.Query().Get("transaction_uuid"))

		json.NewEncoder(w).Encode(map[string]any{
			"status":           "COMPLETE",
			"transaction_uuid": "tx-123",
			"total_amount":     3000,
			"ref_id":           "REF-99",
		})
	})

	client := NewClient(srv.URL, testProductCode, testSecret, time.Second)
	encoded := encodeCallback(t, testSecret, "0001TX", "COMPLETE", "3000", "tx-123")

	verified, err := client.VerifyCallback(context.Background(), encoded)

	require.NoError(t, err)
	assert.Equal(t, "tx-123", verified.TransactionUUID)
	assert.Equal(t, "0001TX", verified.TransactionCode)
	assert.Equal(t, "REF-99", verified.RefID)
	assert.True(t, verified.Amount.Equal(decimal.NewFromInt(3000)))
	assert.NotEmpty(t, verified.Raw)
}

// A payload whose amount was tampered with after signing must be rejected
// before the status endpoint is ever consulted.
func TestVerifyCallback_TamperedAmount(t *testing.T) {
	called := false
	srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	client := NewClient(srv.URL, testProductCode, testSecret, time.Second)

	// Sign for 3000, then claim 9000.
	fields := "transaction_code,status,total_amount,transaction_uuid,product_code,signed_field_names"
	payload := fmt.Sprintf(
		"transaction_code=%s,status=%s,total_amount=%s,transaction_uuid=%s,product_code=%s,signed_field_names=%s",
		"0001TX", "COMPLETE", "3000", "tx-123", testProductCode, fields,
	)
	envelope := map[string]string{
		"transaction_code":   "0001TX",
		"status":             "COMPLETE",
		"total_amount":       "9000",
		"transaction_uuid":   "tx-123",
		"product_code":       testProductCode,
		"signed_field_names": fields,
		"signature":          signPayload(testSecret, payload),
	}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	encoded := base64.StdEncoding.EncodeToString(raw)

	verified, err := client.VerifyCallback(context.Background(), encoded)

	assert.Nil(t, verified)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.False(t, called, "status endpoint must not be consulted for a bad signature")
}

func TestVerifyCallback_WrongSecret(t *testing.T) {
	srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {})

	client := NewClient(srv.URL, testProductCode, testSecret, time.Second)
	encoded := encodeCallback(t, "some-other-secret", "0001TX", "COMPLETE", "3000", "tx-123")

	verified, err := client.VerifyCallback(context.Background(), encoded)

	assert.Nil(t, verified)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestVerifyCallback_GarbagePayload(t *testing.T) {
	client := NewClient("http://unused", testProductCode, testSecret, time.Second)

	verified, err := client.VerifyCallback(context.Background(), "not-base64!!!")

	assert.Nil(t, verified)
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

// A correctly signed callback whose gateway-side status is not COMPLETE must
// be rejected: the signature alone never settles a booking.
func TestVerifyCallback_StatusNotComplete(t *testing.T) {
	srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":           "PENDING",
			"transaction_uuid": "tx-123",
			"total_amount":     3000,
		})
	})

	client := NewClient(srv.URL, testProductCode, testSecret, time.Second)
	encoded := encodeCallback(t, testSecret, "0001TX", "COMPLETE", "3000", "tx-123")

	verified, err := client.VerifyCallback(context.Background(), encoded)

	assert.Nil(t, verified)
	assert.ErrorIs(t, err, domain.ErrTransactionMismatch)
}

func TestVerifyCallback_AmountMismatchAtGateway(t *testing.T) {
	srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":           "COMPLETE",
			"transaction_uuid": "tx-123",
			"total_amount":     2500,
		})
	})

	client := NewClient(srv.URL, testProductCode, testSecret, time.Second)
	encoded := encodeCallback(t, testSecret, "0001TX", "COMPLETE", "3000", "tx-123")

	verified, err := client.VerifyCallback(context.Background(), encoded)

	assert.Nil(t, verified)
	assert.ErrorIs(t, err, domain.ErrTransactionMismatch)
}

func TestVerifyCallback_GatewayTimeout(t *testing.T) {
	srv := statusServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	client := NewClient(srv.URL, testProductCode, testSecret, 50*time.Millisecond)
	encoded := encodeCallback(t, testSecret, "0001TX", "COMPLETE", "3000", "tx-123")

	verified, err := client.VerifyCallback(context.Background(), encoded)

	assert.Nil(t, verified)
	assert.ErrorIs(t, err, domain.ErrGatewayUnreachable)
}

func TestSignRedirect_RoundTripsWithOwnVerifier(t *testing.T) {
	client := NewClient("http://gateway", testProductCode, testSecret, time.Second)

	params, err := client.SignRedirect(decimal.NewFromInt(3000), "tx-123")

	require.NoError(t, err)
	assert.Equal(t, "3000", params.Amount)
	assert.Equal(t, testProductCode, params.ProductCode)
	assert.Equal(t, "total_amount,transaction_uuid,product_code", params.SignedFieldNames)

	expected := signPayload(testSecret, "total_amount=3000,transaction_uuid=tx-123,product_code="+testProductCode)
	assert.Equal(t, expected, params.Signature)
}

func TestSignRedirect_RequiresTransactionUUID(t *testing.T) {
	client := NewClient("http://gateway", testProductCode, testSecret, time.Second)

	params, err := client.SignRedirect(decimal.NewFromInt(3000), "")

	assert.Nil(t, params)
	assert.ErrorIs(t, err, domain.ErrMissingFields)
}
