package domain

import (
	"context"
	"time"
)

type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "reserved"
	ReservationStatusPaid      ReservationStatus = "paid"
	ReservationStatusExpired   ReservationStatus = "expired"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a durable, time-bounded hold on one or more seats of a show,
// all claimed under a single human-readable code.
type Reservation struct {
	ID           int
	Code         string
	UserID       int
	ShowID       int
	Status       ReservationStatus
	HoldDeadline time.Time
	Seats        []ReservationSeat
	CreatedAt    time.Time
}

type ReservationSeat struct {
	ReservationID int
	SeatID        int
	SeatKey       string
}

func (r *Reservation) Expired(now time.Time) bool {
	return !now.Before(r.HoldDeadline)
}

type ReservationRepository interface {
	// Create persists the reservation and flips every seat to held in one
	// transaction. Seats are re-validated inside the write; a lost race
	// returns ErrSeatConflict and nothing is committed.
	Create(ctx context.Context, reservation *Reservation) error

	GetByCode(ctx context.Context, code string) (*Reservation, error)

	// SettleAtCounter marks the reservation paid, records the payment and
	// tickets, and flips every held seat to sold, all in one transaction.
	// The seat flips are conditional on the seat still being held by this
	// exact reservation.
	SettleAtCounter(ctx context.Context, reservation *Reservation, payment *Payment, tickets []*Ticket) error

	// Expire transitions a reserved reservation to expired and releases its
	// seats, but only seats still held by this exact reservation. It returns
	// the seat keys actually released.
	Expire(ctx context.Context, reservationID int) ([]string, error)

	FindExpired(ctx context.Context, now time.Time) ([]Reservation, error)
}
