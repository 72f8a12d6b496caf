package domain

import (
	"context"
	"fmt"
	"time"
)

type SeatStatus string

const (
	SeatAvailable SeatStatus = "available"
	SeatSelecting SeatStatus = "selecting"
	SeatHeld      SeatStatus = "held"
	SeatSold      SeatStatus = "sold"
	SeatBlocked   SeatStatus = "blocked"
)

type Show struct {
	ID        int
	MovieID   int
	ScreenID  int
	StartTime time.Time
	EndTime   time.Time
	Active    bool
}

// ReservationCutoff is the moment after which no new holds are accepted and
// existing holds lapse: 30 minutes before the show starts.
func (s *Show) ReservationCutoff() time.Time {
	return s.StartTime.Add(-30 * time.Minute)
}

// SeatState is one row of the durable per-show seat map. A seat without a row
// is available; sold rows carry a ticket reference, held rows a reservation
// reference, never both.
type SeatState struct {
	ShowID        int
	SeatKey       string
	Status        SeatStatus
	ReservationID *int
	TicketID      *int
	UpdatedAt     time.Time
}

// SeatKey builds the canonical "{row}-{number}" key unique within a show.
func SeatKey(row string, number int) string {
	return fmt.Sprintf("%s-%d", row, number)
}

type ShowRepository interface {
	GetById(ctx context.Context, id int) (*Show, error)
	GetSeatStates(ctx context.Context, showID int) (map[string]SeatState, error)
}
