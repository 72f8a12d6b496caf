package domain

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodEWallet    PaymentMethod = "e_wallet"
	PaymentMethodCash       PaymentMethod = "cash"
)

// Payment is the durable record of one checkout covering all seats of an
// order. The seats snapshot, not the live seat map, is what finalize acts on,
// so a crashed or retried finalize always sees the same seat set. Breakdown
// holds the itemized pricing result that produced Amount, so the charged
// total stays auditable after the fact.
type Payment struct {
	ID            int
	UserID        int
	ShowID        int
	Amount        decimal.Decimal
	Currency      string
	Method        PaymentMethod
	Status        PaymentStatus
	OrderCode     string
	TransactionID *string
	VoucherCode   *string
	Breakdown     json.RawMessage
	Seats         []PaymentSeat
	PaidAt        *time.Time
	CreatedAt     time.Time
}

type PaymentSeat struct {
	PaymentID int
	SeatID    int
	SeatKey   string
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetById(ctx context.Context, id int) (*Payment, error)
	GetByOrderCode(ctx context.Context, orderCode string) (*Payment, error)

	// Finalize claims the pending→success transition with a conditional
	// update on the status column, and in the same transaction mints the
	// given tickets and flips every snapshot seat to sold. It reports false
	// without error when the payment was not pending, which is the
	// idempotent no-op path under duplicate gateway notifications.
	Finalize(ctx context.Context, payment *Payment, tickets []*Ticket) (bool, error)

	// MarkFailed flips a pending payment to failed. Non-pending payments are
	// left untouched and reported with false.
	MarkFailed(ctx context.Context, paymentID int) (bool, error)
}
