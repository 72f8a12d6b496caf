// Package vnpay implements the hosted-checkout gateway integration: building
// signed redirect URLs and verifying the signatures on the gateway's return
// redirects and server-to-server notifications.
package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"strconv"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	version        = "2.1.0"
	commandPay     = "pay"
	currencyCode   = "VND"
	locale         = "vn"
	orderType      = "other"
	dateFormat     = "20060102150405"
	successCode    = "00"
	paymentTimeout = 15 * time.Minute
)

type Config struct {
	TmnCode    string
	HashSecret string
	BaseURL    string
}

// Gateway signs outbound payment URLs and verifies inbound callbacks with
// HMAC-SHA512 over the alphabetically encoded query string, the scheme the
// provider mandates for both directions.
type Gateway struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) *Gateway {
	return &Gateway{cfg: cfg, now: time.Now}
}

// BuildPaymentURL returns the hosted checkout URL the customer is redirected
// to. The amount is expressed in hundredths per the wire format, and the
// whole query is signed so the gateway can detect tampering.
func (g *Gateway) BuildPaymentURL(req domain.PaymentRequest) (string, error) {
	now := g.now()

	params := url.Values{}
	params.Set("vnp_Version", version)
	params.Set("vnp_Command", commandPay)
	params.Set("vnp_TmnCode", g.cfg.TmnCode)
	params.Set("vnp_Amount", strconv.FormatInt(req.Amount.Mul(decimal.NewFromInt(100)).IntPart(), 10))
	params.Set("vnp_CreateDate", now.Format(dateFormat))
	params.Set("vnp_ExpireDate", now.Add(paymentTimeout).Format(dateFormat))
	params.Set("vnp_CurrCode", currencyCode)
	params.Set("vnp_IpAddr", req.ClientIP)
	params.Set("vnp_Locale", locale)
	params.Set("vnp_OrderInfo", req.OrderInfo)
	params.Set("vnp_OrderType", orderType)
	params.Set("vnp_ReturnUrl", req.ReturnURL)
	params.Set("vnp_TxnRef", req.OrderCode)

	query := params.Encode()
	return g.cfg.BaseURL + "?" + query + "&vnp_SecureHash=" + g.sign(query), nil
}

// VerifyNotification checks the server-to-server notification. The orderCode
// and amount are only meaningful when Verified is true.
func (g *Gateway) VerifyNotification(params url.Values) domain.GatewayVerification {
	return g.verify(params)
}

// VerifyReturn checks the browser return redirect. Return verification uses
// the same signature scheme; only the transport differs.
func (g *Gateway) VerifyReturn(params url.Values) domain.GatewayVerification {
	return g.verify(params)
}

func (g *Gateway) verify(params url.Values) domain.GatewayVerification {
	cloned := make(url.Values, len(params))
	for key, values := range params {
		cloned[key] = values
	}

	secureHash := cloned.Get("vnp_SecureHash")
	cloned.Del("vnp_SecureHash")
	cloned.Del("vnp_SecureHashType")

	expected := g.sign(cloned.Encode())
	if !hmac.Equal([]byte(secureHash), []byte(expected)) {
		return domain.GatewayVerification{}
	}

	verification := domain.GatewayVerification{
		Verified:  true,
		Succeeded: cloned.Get("vnp_ResponseCode") == successCode,
		OrderCode: cloned.Get("vnp_TxnRef"),
	}

	if raw := cloned.Get("vnp_Amount"); raw != "" {
		if hundredths, err := strconv.ParseInt(raw, 10, 64); err == nil {
			verification.Amount = decimal.NewFromInt(hundredths).Div(decimal.NewFromInt(100))
		}
	}

	return verification
}

func (g *Gateway) sign(data string) string {
	mac := hmac.New(sha512.New, []byte(g.cfg.HashSecret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
