package domain

import (
	"net/url"

	"github.com/shopspring/decimal"
)

// PaymentRequest is what the orchestrator hands the external gateway when a
// redirect-based method is chosen.
type PaymentRequest struct {
	Amount    decimal.Decimal
	Currency  string
	OrderCode string
	OrderInfo string
	ClientIP  string
	ReturnURL string
}

// GatewayVerification is the gateway's signed verdict, as carried by both the
// asynchronous server notification and the user-facing return redirect.
// Amount is in the order currency's major units.
type GatewayVerification struct {
	Verified  bool
	Succeeded bool
	OrderCode string
	Amount    decimal.Decimal
}

// PaymentGateway abstracts the external redirect gateway: it builds a signed
// checkout URL correlated by order code and verifies inbound signed params.
// The gateway's internals are a black box; only the signature scheme and the
// acknowledgement vocabulary are contractual.
type PaymentGateway interface {
	BuildPaymentURL(req PaymentRequest) (string, error)
	VerifyNotification(params url.Values) GatewayVerification
	VerifyReturn(params url.Values) GatewayVerification
}
