package mocks

import (
	"context"

	"github.com/cinepass/seat-booking/internal/domain"
)

type MockPaymentRepo struct {
	CreateFunc         func(ctx context.Context, payment *domain.Payment) error
	GetByIdFunc        func(ctx context.Context, id int) (*domain.Payment, error)
	GetByOrderCodeFunc func(ctx context.Context, orderCode string) (*domain.Payment, error)
	FinalizeFunc       func(ctx context.Context, payment *domain.Payment, tickets []*domain.Ticket) (bool, error)
	MarkFailedFunc     func(ctx context.Context, paymentID int) (bool, error)
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.Payment) error {
	return m.CreateFunc(ctx, payment)
}

func (m *MockPaymentRepo) GetById(ctx context.Context, id int) (*domain.Payment, error) {
	return m.GetByIdFunc(ctx, id)
}

func (m *MockPaymentRepo) GetByOrderCode(ctx context.Context, orderCode string) (*domain.Payment, error) {
	return m.GetByOrderCodeFunc(ctx, orderCode)
}

func (m *MockPaymentRepo) Finalize(ctx context.Context, payment *domain.Payment, tickets []*domain.Ticket) (bool, error) {
	return m.FinalizeFunc(ctx, payment, tickets)
}

func (m *MockPaymentRepo) MarkFailed(ctx context.Context, paymentID int) (bool, error) {
	return m.MarkFailedFunc(ctx, paymentID)
}
