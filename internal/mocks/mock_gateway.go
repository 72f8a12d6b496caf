package mocks

import (
	"net/url"

	"github.com/cinepass/seat-booking/internal/domain"
)

type MockPaymentGateway struct {
	BuildPaymentURLFunc    func(req domain.PaymentRequest) (string, error)
	VerifyNotificationFunc func(params url.Values) domain.GatewayVerification
	VerifyReturnFunc       func(params url.Values) domain.GatewayVerification
}

func (m *MockPaymentGateway) BuildPaymentURL(req domain.PaymentRequest) (string, error) {
	return m.BuildPaymentURLFunc(req)
}

func (m *MockPaymentGateway) VerifyNotification(params url.Values) domain.GatewayVerification {
	return m.VerifyNotificationFunc(params)
}

func (m *MockPaymentGateway) VerifyReturn(params url.Values) domain.GatewayVerification {
	return m.VerifyReturnFunc(params)
}
