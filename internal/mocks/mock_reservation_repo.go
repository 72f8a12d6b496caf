package mocks

import (
	"context"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
)

type MockReservationRepo struct {
	CreateFunc          func(ctx context.Context, reservation *domain.Reservation) error
	GetByCodeFunc       func(ctx context.Context, code string) (*domain.Reservation, error)
	SettleAtCounterFunc func(ctx context.Context, reservation *domain.Reservation, payment *domain.Payment, tickets []*domain.Ticket) error
	ExpireFunc          func(ctx context.Context, reservationID int) ([]string, error)
	FindExpiredFunc     func(ctx context.Context, now time.Time) ([]domain.Reservation, error)
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation) error {
	return m.CreateFunc(ctx, reservation)
}

func (m *MockReservationRepo) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	return m.GetByCodeFunc(ctx, code)
}

func (m *MockReservationRepo) SettleAtCounter(
	ctx context.Context,
	reservation *domain.Reservation,
	payment *domain.Payment,
	tickets []*domain.Ticket) error {

	return m.SettleAtCounterFunc(ctx, reservation, payment, tickets)
}

func (m *MockReservationRepo) Expire(ctx context.Context, reservationID int) ([]string, error) {
	return m.ExpireFunc(ctx, reservationID)
}

func (m *MockReservationRepo) FindExpired(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	return m.FindExpiredFunc(ctx, now)
}
