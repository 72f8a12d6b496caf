package domain

import "context"

// SeatEvent describes one seat transition for the broadcast sink.
type SeatEvent struct {
	ShowID   int        `json:"showId"`
	SeatKey  string     `json:"seatKey"`
	Status   SeatStatus `json:"newStatus"`
	ActingBy *int       `json:"actingUserId,omitempty"`
}

// SeatNotifier is the fire-and-forget broadcast of seat transitions. Delivery
// failures are logged by callers, never allowed to fail a booking flow.
type SeatNotifier interface {
	NotifySeatChange(ctx context.Context, event SeatEvent) error
}
