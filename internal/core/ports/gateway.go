package ports

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// VerifiedTransaction is a gateway callback that passed both the signature
// check and the out-of-band status confirmation. Only values from here may
// drive reconciliation.
type VerifiedTransaction struct {
	TransactionUUID string
	TransactionCode string
	RefID           string
	Amount          decimal.Decimal
	Status          string
	Raw             json.RawMessage
}

// RedirectParams are the signed fields handed to the client for the outbound
// gateway redirect.
type RedirectParams struct {
	Amount           string `json:"total_amount"`
	TransactionUUID  string `json:"transaction_uuid"`
	ProductCode      string `json:"product_code"`
	Signature        string `json:"signature"`
	SignedFieldNames string `json:"signed_field_names"`
	GatewayURL       string `json:"gateway_url"`
}

type GatewayVerifier interface {
	// VerifyCallback decodes the base64 callback envelope, checks its HMAC
	// signature, then confirms the transaction against the gateway's status
	// endpoint. Both checks must pass.
	VerifyCallback(ctx context.Context, encoded string) (*VerifiedTransaction, error)

	// SignRedirect computes the outbound signature over amount, transaction
	// uuid and product code.
	SignRedirect(amount decimal.Decimal, transactionUUID string) (*RedirectParams, error)
}
