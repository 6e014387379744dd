package esewa

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sujanms/gharbhada/internal/core/domain"
	"github.com/sujanms/gharbhada/internal/core/ports"
)

const (
	statusComplete    = "COMPLETE"
	redirectFields    = "total_amount,transaction_uuid,product_code"
	defaultTimeout    = 10 * time.Second
	statusEndpointFmt = "%s/api/epay/transaction/status/?product_code=%s&total_amount=%s&transaction_uuid=%s"
)

// Client verifies eSewa callbacks and signs outbound redirects. A callback is
// only trusted after its HMAC signature checks out AND the gateway's own
// status endpoint independently confirms the transaction; the signature alone
// is insufficient against a forged client-side redirect.
type Client struct {
	baseURL     string
	productCode string
	secretKey   []byte
	httpClient  *http.Client
}

func NewClient(baseURL, productCode, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:     baseURL,
		productCode: productCode,
		secretKey:   []byte(secretKey),
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// amountField tolerates the gateway sending amounts as either a JSON number
// or a quoted string; the raw text is preserved for signature recomputation.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	*a = amountField(b)
	return nil
}

func (a amountField) String() string { return string(a) }

// callbackEnvelope is the base64-encoded JSON eSewa appends to the success
// redirect.
type callbackEnvelope struct {
	TransactionCode  string      `json:"transaction_code"`
	Status           string      `json:"status"`
	TotalAmount      amountField `json:"total_amount"`
	TransactionUUID  string      `json:"transaction_uuid"`
	ProductCode      string      `json:"product_code"`
	SignedFieldNames string      `json:"signed_field_names"`
	Signature        string      `json:"signature"`
}

type statusResponse struct {
	Status          string      `json:"status"`
	TransactionUUID string      `json:"transaction_uuid"`
	TotalAmount     amountField `json:"total_amount"`
	RefID           string      `json:"ref_id"`
}

func (c *Client) VerifyCallback(ctx context.Context, encoded string) (*ports.VerifiedTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &domain.VerificationError{Stage: "signature", Err: fmt.Errorf("decode payload: %w", domain.ErrInvalidSignature)}
	}

	var env callbackEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &domain.VerificationError{Stage: "signature", Err: fmt.Errorf("parse payload: %w", domain.ErrInvalidSignature)}
	}

	signed := fmt.Sprintf(
		"transaction_code=%s,status=%s,total_amount=%s,transaction_uuid=%s,product_code=%s,signed_field_names=%s",
		env.TransactionCode, env.Status, env.TotalAmount, env.TransactionUUID, c.productCode, env.SignedFieldNames,
	)

	if !hmac.Equal([]byte(c.sign(signed)), []byte(env.Signature)) {
		return nil, &domain.VerificationError{Stage: "signature", Err: domain.ErrInvalidSignature}
	}

	confirmed, err := c.confirmStatus(ctx, env.TransactionUUID, env.TotalAmount.String())
	if err != nil {
		return nil, err
	}

	callbackAmount, err := decimal.NewFromString(env.TotalAmount.String())
	if err != nil {
		return nil, &domain.VerificationError{Stage: "status_confirmation", Err: domain.ErrTransactionMismatch}
	}
	confirmedAmount, err := decimal.NewFromString(confirmed.TotalAmount.String())
	if err != nil {
		return nil, &domain.VerificationError{Stage: "status_confirmation", Err: domain.ErrTransactionMismatch}
	}

	if confirmed.Status != statusComplete ||
		confirmed.TransactionUUID != env.TransactionUUID ||
		!confirmedAmount.Equal(callbackAmount) {
		return nil, &domain.VerificationError{Stage: "status_confirmation", Err: domain.ErrTransactionMismatch}
	}

	return &ports.VerifiedTransaction{
		TransactionUUID: env.TransactionUUID,
		TransactionCode: env.TransactionCode,
		RefID:           confirmed.RefID,
		Amount:          callbackAmount,
		Status:          confirmed.Status,
		Raw:             json.RawMessage(raw),
	}, nil
}

// confirmStatus queries the gateway's status endpoint. This server-to-server
// call is the authoritative check; it is bounded by the client timeout and
// the caller's context.
func (c *Client) confirmStatus(ctx context.Context, transactionUUID, totalAmount string) (*statusResponse, error) {
	endpoint := fmt.Sprintf(statusEndpointFmt,
		c.baseURL,
		url.QueryEscape(c.productCode),
		url.QueryEscape(totalAmount),
		url.QueryEscape(transactionUUID),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status endpoint returned %d", domain.ErrGatewayUnreachable, resp.StatusCode)
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode status response: %v", domain.ErrGatewayUnreachable, err)
	}

	return &body, nil
}

func (c *Client) SignRedirect(amount decimal.Decimal, transactionUUID string) (*ports.RedirectParams, error) {
	if transactionUUID == "" {
		return nil, fmt.Errorf("sign redirect: %w", domain.ErrMissingFields)
	}

	amt := amount.String()
	payload := fmt.Sprintf("total_amount=%s,transaction_uuid=%s,product_code=%s", amt, transactionUUID, c.productCode)

	return &ports.RedirectParams{
		Amount:           amt,
		TransactionUUID:  transactionUUID,
		ProductCode:      c.productCode,
		Signature:        c.sign(payload),
		SignedFieldNames: redirectFields,
		GatewayURL:       c.baseURL,
	}, nil
}

func (c *Client) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secretKey)
	mac.Write([]byte(payload))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
