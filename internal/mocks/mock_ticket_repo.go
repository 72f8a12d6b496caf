package mocks

import (
	"context"

	"github.com/cinepass/seat-booking/internal/domain"
)

type MockTicketRepo struct {
	GetByIdFunc        func(ctx context.Context, id int) (*domain.Ticket, error)
	GetByPaymentIdFunc func(ctx context.Context, paymentID int) ([]domain.Ticket, error)
}

func (m *MockTicketRepo) GetById(ctx context.Context, id int) (*domain.Ticket, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockTicketRepo) GetByPaymentId(ctx context.Context, paymentID int) ([]domain.Ticket, error) {
	return m.GetByPaymentIdFunc(ctx, paymentID)
}
