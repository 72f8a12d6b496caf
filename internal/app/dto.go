package app

import (
	"time"

	"github.com/cinepass/seat-booking/internal/pricing"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type SeatMapResponse struct {
	ShowId   int       `json:"showId"`
	ScreenId int       `json:"screenId"`
	SeatRows []SeatRow `json:"seatRows"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type Seat struct {
	Id     int    `json:"id"`
	Key    string `json:"key"`
	Type   string `json:"type"`
	Status string `json:"status"`
}

type SelectSeatRequest struct {
	SeatId int `json:"seatId" validate:"required,gt=0"`
}

type SelectionResponse struct {
	ShowId   int             `json:"showId"`
	SeatKeys []string        `json:"seatKeys"`
	Pricing  *pricing.Result `json:"pricing,omitempty"`
}

type ExtendSelectionResponse struct {
	ShowId        int      `json:"showId"`
	ExtendedSeats []string `json:"extendedSeats"`
	LapsedSeats   []string `json:"lapsedSeats,omitempty"`
}

type QuoteRequest struct {
	SeatIds     []int  `json:"seatIds" validate:"required,min=1,dive,gt=0"`
	VoucherCode string `json:"voucherCode,omitempty" validate:"omitempty,voucher_code"`
}

type QuoteResponse struct {
	QuoteId   string          `json:"quoteId"`
	ShowId    int             `json:"showId"`
	Pricing   *pricing.Result `json:"pricing"`
	ExpiresIn int             `json:"expiresInSeconds"`
}

type ReserveSeatsRequest struct {
	SeatIds []int `json:"seatIds" validate:"required,min=1,dive,gt=0"`
}

type ReservationResponse struct {
	Code         string    `json:"code"`
	ShowId       int       `json:"showId"`
	Status       string    `json:"status"`
	HoldDeadline time.Time `json:"holdDeadline"`
	SeatKeys     []string  `json:"seatKeys"`
	SkippedSeats []string  `json:"skippedSeats,omitempty"`
}

type PayAtCounterRequest struct {
	Method string `json:"method" validate:"required,oneof=cash credit_card"`
}

type PaymentResponse struct {
	PaymentId int              `json:"paymentId"`
	OrderCode string           `json:"orderCode"`
	Status    string           `json:"status"`
	Amount    decimal.Decimal  `json:"amount"`
	Currency  string           `json:"currency"`
	Tickets   []TicketResponse `json:"tickets,omitempty"`
}

type TicketResponse struct {
	Id          int    `json:"id"`
	SeatKey     string `json:"seatKey"`
	CheckinCode string `json:"checkinCode"`
	Status      string `json:"status"`
}

type CheckoutRequest struct {
	SeatIds     []int  `json:"seatIds" validate:"required,min=1,dive,gt=0"`
	Method      string `json:"method" validate:"required,oneof=credit_card e_wallet"`
	VoucherCode string `json:"voucherCode,omitempty" validate:"omitempty,voucher_code"`
	QuoteId     string `json:"quoteId,omitempty" validate:"omitempty,uuid4"`
}

type CheckoutResponse struct {
	PaymentId   int             `json:"paymentId"`
	OrderCode   string          `json:"orderCode"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	RedirectUrl string          `json:"redirectUrl"`
}

type GatewayReturnResponse struct {
	OrderCode string           `json:"orderCode"`
	Status    string           `json:"status"`
	Tickets   []TicketResponse `json:"tickets,omitempty"`
}
