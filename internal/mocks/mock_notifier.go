package mocks

import (
	"context"
	"sync"

	"github.com/cinepass/seat-booking/internal/domain"
)

// MockSeatNotifier records every published event so tests can assert on the
// emitted sequence.
type MockSeatNotifier struct {
	mu     sync.Mutex
	Err    error
	events []domain.SeatEvent
}

func (m *MockSeatNotifier) NotifySeatChange(ctx context.Context, event domain.SeatEvent) error {
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)

	return nil
}

func (m *MockSeatNotifier) Events() []domain.SeatEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]domain.SeatEvent(nil), m.events...)
}
