package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceQuote is a short-lived snapshot of a computed grand total, cached so
// checkout can reject orders whose price drifted between quote and pay. It
// lives in the shared cache under its own TTL and is never durable.
type PriceQuote struct {
	ID         string          `json:"id"`
	UserID     int             `json:"userId"`
	ShowID     int             `json:"showId"`
	SeatKeys   []string        `json:"seatKeys"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func NewPriceQuote(userID, showID int, seatKeys []string, grandTotal decimal.Decimal) PriceQuote {
	return PriceQuote{
		ID:         uuid.NewString(),
		UserID:     userID,
		ShowID:     showID,
		SeatKeys:   seatKeys,
		GrandTotal: grandTotal,
		CreatedAt:  time.Now(),
	}
}
