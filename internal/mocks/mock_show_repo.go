package mocks

import (
	"context"

	"github.com/cinepass/seat-booking/internal/domain"
)

type MockShowRepo struct {
	GetByIdFunc       func(ctx context.Context, id int) (*domain.Show, error)
	GetSeatStatesFunc func(ctx context.Context, showID int) (map[string]domain.SeatState, error)
}

func (m *MockShowRepo) GetById(ctx context.Context, id int) (*domain.Show, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockShowRepo) GetSeatStates(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
	return m.GetSeatStatesFunc(ctx, showID)
}
