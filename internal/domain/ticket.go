package domain

import (
	"context"
	"time"
)

type TicketStatus string

const (
	TicketStatusActive   TicketStatus = "active"
	TicketStatusUsed     TicketStatus = "used"
	TicketStatusRefunded TicketStatus = "refunded"
)

// Ticket is minted exactly once per (payment, seat) when a payment finalizes.
type Ticket struct {
	ID          int
	PaymentID   int
	ShowID      int
	SeatID      int
	SeatKey     string
	CheckinCode string
	Status      TicketStatus
	IssuedAt    time.Time
	CheckedInAt *time.Time
}

type TicketRepository interface {
	GetById(ctx context.Context, id int) (*Ticket, error)
	GetByPaymentId(ctx context.Context, paymentID int) ([]Ticket, error)
}
