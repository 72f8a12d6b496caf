package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"net/url"
	"testing"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testGateway() *Gateway {
	g := New(Config{
		TmnCode:    "CINEPASS",
		HashSecret: "test-secret",
		BaseURL:    "https://sandbox.gateway.example/paymentv2/vpcpay.html",
	})
	g.now = func() time.Time {
		return time.Date(2025, 7, 12, 20, 0, 0, 0, time.UTC)
	}
	return g
}

func signWith(secret string, params url.Values) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(params.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestBuildPaymentURL(t *testing.T) {
	gateway := testGateway()

	paymentURL, err := gateway.BuildPaymentURL(domain.PaymentRequest{
		Amount:    decimal.NewFromInt(101000),
		Currency:  "VND",
		OrderCode: "ORD-7F3K9Q",
		OrderInfo: "Tickets for show 7",
		ClientIP:  "203.0.113.9",
		ReturnURL: "https://cinepass.example/payments/gateway/return",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)
	query := parsed.Query()

	// Amounts travel in hundredths.
	assert.Equal(t, "10100000", query.Get("vnp_Amount"))
	assert.Equal(t, "ORD-7F3K9Q", query.Get("vnp_TxnRef"))
	assert.Equal(t, "20250712200000", query.Get("vnp_CreateDate"))
	assert.Equal(t, "20250712201500", query.Get("vnp_ExpireDate"))

	secureHash := query.Get("vnp_SecureHash")
	require.NotEmpty(t, secureHash)
	query.Del("vnp_SecureHash")
	assert.Equal(t, signWith("test-secret", query), secureHash)
}

func TestVerifyNotification(t *testing.T) {
	gateway := testGateway()

	base := func() url.Values {
		params := url.Values{}
		params.Set("vnp_TmnCode", "CINEPASS")
		params.Set("vnp_TxnRef", "ORD-7F3K9Q")
		params.Set("vnp_Amount", "10100000")
		params.Set("vnp_ResponseCode", "00")
		params.Set("vnp_TransactionNo", "14425919")
		return params
	}

	t.Run("valid success notification", func(t *testing.T) {
		params := base()
		params.Set("vnp_SecureHash", signWith("test-secret", base()))

		got := gateway.VerifyNotification(params)
		assert.True(t, got.Verified)
		assert.True(t, got.Succeeded)
		assert.Equal(t, "ORD-7F3K9Q", got.OrderCode)
		assert.True(t, got.Amount.Equal(decimal.NewFromInt(101000)), "amount %s", got.Amount)
	})

	t.Run("verified failure notification", func(t *testing.T) {
		params := base()
		params.Set("vnp_ResponseCode", "24")
		signed := base()
		signed.Set("vnp_ResponseCode", "24")
		params.Set("vnp_SecureHash", signWith("test-secret", signed))

		got := gateway.VerifyNotification(params)
		assert.True(t, got.Verified)
		assert.False(t, got.Succeeded)
	})

	t.Run("tampered amount", func(t *testing.T) {
		params := base()
		params.Set("vnp_SecureHash", signWith("test-secret", base()))
		params.Set("vnp_Amount", "100")

		got := gateway.VerifyNotification(params)
		assert.False(t, got.Verified)
	})

	t.Run("wrong secret", func(t *testing.T) {
		params := base()
		params.Set("vnp_SecureHash", signWith("other-secret", base()))

		got := gateway.VerifyNotification(params)
		assert.False(t, got.Verified)
	})

	t.Run("missing signature", func(t *testing.T) {
		got := gateway.VerifyNotification(base())
		assert.False(t, got.Verified)
	})
}

func TestVerifyDoesNotMutateParams(t *testing.T) {
	gateway := testGateway()

	params := url.Values{}
	params.Set("vnp_TxnRef", "ORD-7F3K9Q")
	params.Set("vnp_SecureHash", "deadbeef")

	gateway.VerifyReturn(params)
	assert.Equal(t, "deadbeef", params.Get("vnp_SecureHash"))
}

func TestRoundTripSignature(t *testing.T) {
	gateway := testGateway()

	paymentURL, err := gateway.BuildPaymentURL(domain.PaymentRequest{
		Amount:    decimal.NewFromInt(50000),
		OrderCode: "ORD-AAAA11",
		OrderInfo: "Tickets",
		ClientIP:  "198.51.100.1",
		ReturnURL: "https://cinepass.example/return",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(paymentURL)
	require.NoError(t, err)

	// A return carrying exactly the params we signed must verify.
	got := gateway.VerifyReturn(parsed.Query())
	assert.True(t, got.Verified)
	assert.Equal(t, "ORD-AAAA11", got.OrderCode)
}
