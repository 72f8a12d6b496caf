package mocks

import (
	"context"

	"github.com/cinepass/seat-booking/internal/domain"
)

type MockCatalogRepo struct {
	GetPricingContextFunc func(ctx context.Context, showID int, seatIDs []int) (*domain.PricingContext, error)
	GetSeatsByScreenFunc  func(ctx context.Context, screenID int) ([]domain.CatalogSeat, error)
	GetSeatsByIdsFunc     func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error)
}

func (m *MockCatalogRepo) GetPricingContext(ctx context.Context, showID int, seatIDs []int) (*domain.PricingContext, error) {
	return m.GetPricingContextFunc(ctx, showID, seatIDs)
}

func (m *MockCatalogRepo) GetSeatsByScreen(ctx context.Context, screenID int) ([]domain.CatalogSeat, error) {
	return m.GetSeatsByScreenFunc(ctx, screenID)
}

func (m *MockCatalogRepo) GetSeatsByIds(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
	return m.GetSeatsByIdsFunc(ctx, screenID, seatIDs)
}
