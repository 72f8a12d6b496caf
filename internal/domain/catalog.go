package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PricingContext is the read-only catalog slice the pricing engine needs:
// the movie's base price, the screen format, the venue, the scheduled start
// time, and one entry per seat being priced. It is assembled once per order
// so pricing stays deterministic for a fixed input set.
type PricingContext struct {
	ShowID     int
	MovieID    int
	MovieTitle string
	BasePrice  decimal.Decimal
	FormatCode string
	VenueID    int
	ShowStart  time.Time
	Seats      []PricedSeat
}

type PricedSeat struct {
	SeatID   int
	SeatKey  string
	TypeCode string
}

// CatalogSeat is a physical seat of a screen as the catalog records it.
type CatalogSeat struct {
	ID       int
	ScreenID int
	Row      string
	Number   int
	TypeCode string
	Active   bool
}

type CatalogRepository interface {
	// GetPricingContext resolves the show, its movie and screen, and the
	// given seats. Inactive shows or seats surface as ErrRecordNotFound.
	GetPricingContext(ctx context.Context, showID int, seatIDs []int) (*PricingContext, error)

	GetSeatsByScreen(ctx context.Context, screenID int) ([]CatalogSeat, error)
	GetSeatsByIds(ctx context.Context, screenID int, seatIDs []int) ([]CatalogSeat, error)
}
