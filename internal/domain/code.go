package domain

import (
	"crypto/rand"
	"math/big"
)

// codeAlphabet drops 0/O and 1/I so codes survive being read over a counter.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomCode(length int) string {
	code := make([]byte, length)
	max := big.NewInt(int64(len(codeAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err) // crypto/rand only fails when the OS entropy source is broken
		}
		code[i] = codeAlphabet[n.Int64()]
	}

	return string(code)
}

// NewReservationCode returns a code like "RSV-8F3K9Q".
func NewReservationCode() string {
	return "RSV-" + randomCode(6)
}

// NewCheckinCode returns the per-ticket code encoded into the check-in QR.
func NewCheckinCode() string {
	return "TKT-" + randomCode(10)
}

// NewOrderCode returns the gateway correlation code for one payment.
func NewOrderCode() string {
	return "ORD-" + randomCode(10)
}
