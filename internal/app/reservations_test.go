package app

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/cinepass/seat-booking/internal/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type ReservationsTestSuite struct {
	suite.Suite
	app             *Application
	showRepo        *mocks.MockShowRepo
	catalogRepo     *mocks.MockCatalogRepo
	reservationRepo *mocks.MockReservationRepo
	locker          *mocks.MockSeatLocker
	redisClient     *mocks.MockRedisClient
	notifier        *mocks.MockSeatNotifier
}

func (s *ReservationsTestSuite) SetupTest() {
	s.showRepo = &mocks.MockShowRepo{}
	s.catalogRepo = &mocks.MockCatalogRepo{}
	s.reservationRepo = &mocks.MockReservationRepo{}
	s.locker = &mocks.MockSeatLocker{}
	s.redisClient = mocks.NewMockRedisClient()
	s.notifier = &mocks.MockSeatNotifier{}

	s.app = newTestApplication(func(a *Application) {
		a.showRepo = s.showRepo
		a.catalogRepo = s.catalogRepo
		a.reservationRepo = s.reservationRepo
		a.locker = s.locker
		a.redis = s.redisClient
		a.notifier = s.notifier
	})
}

func TestReservationsSuite(t *testing.T) {
	suite.Run(t, new(ReservationsTestSuite))
}

func (s *ReservationsTestSuite) TestReserveSeats() {
	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantSeatKeys   []string
		wantSkipped    []string
		wantErrMessage string
	}{
		{
			name:           "should fail validation when seat list is empty",
			body:           ReserveSeatsRequest{},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "SeatIds",
		},
		{
			name: "should fail when reservations are closed",
			body: ReserveSeatsRequest{SeatIds: []int{11}},
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					show := testShow()
					show.StartTime = time.Now().Add(10 * time.Minute)
					return show, nil
				}
			},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "reservations are closed",
		},
		{
			name: "should fail when no seat survives validation",
			body: ReserveSeatsRequest{SeatIds: []int{11}},
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return testShow(), nil
				}
				s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
					return testScreenSeats()[:1], nil
				}
				s.showRepo.GetSeatStatesFunc = func(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
					return map[string]domain.SeatState{}, nil
				}
				s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
					return "", nil
				}
			},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "none of the requested seats",
		},
		{
			name: "should surface a lost seat race as a conflict",
			body: ReserveSeatsRequest{SeatIds: []int{11}},
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return testShow(), nil
				}
				s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
					return testScreenSeats()[:1], nil
				}
				s.showRepo.GetSeatStatesFunc = func(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
					return map[string]domain.SeatState{}, nil
				}
				s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
					return "7", nil
				}
				s.reservationRepo.CreateFunc = func(ctx context.Context, reservation *domain.Reservation) error {
					return domain.ErrSeatConflict
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "should reserve owned seats and report the skipped rest",
			body: ReserveSeatsRequest{SeatIds: []int{11, 12, 999}},
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return testShow(), nil
				}
				s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
					return testScreenSeats()[:2], nil
				}
				s.showRepo.GetSeatStatesFunc = func(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
					return map[string]domain.SeatState{
						"A-2": {ShowID: 1, SeatKey: "A-2", Status: domain.SeatSold},
					}, nil
				}
				s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
					return "7", nil
				}
				s.locker.ReleaseFunc = func(ctx context.Context, showID int, seatKey, holder string) error {
					return nil
				}
				s.reservationRepo.CreateFunc = func(ctx context.Context, reservation *domain.Reservation) error {
					reservation.ID = 31
					reservation.CreatedAt = time.Now()
					return nil
				}
			},
			wantStatus:   http.StatusCreated,
			wantSeatKeys: []string{"A-1"},
			wantSkipped:  []string{"A-2", "seat 999"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/shows/1/reservations", tt.body)
			r = withURLParams(r, map[string]string{"showID": "1"})
			r = setupTestSession(s.T(), s.app, r, 7, "")

			s.app.ReserveSeats(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusCreated {
				var response ReservationResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err)

				s.Equal(tt.wantSeatKeys, response.SeatKeys)
				s.Equal(tt.wantSkipped, response.SkippedSeats)
				s.Equal("reserved", response.Status)
				s.NotEmpty(response.Code)

				events := s.notifier.Events()
				s.Require().Len(events, 1)
				s.Equal(domain.SeatHeld, events[0].Status)
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func (s *ReservationsTestSuite) TestPayAtCounter() {
	reservedFixture := func() *domain.Reservation {
		return &domain.Reservation{
			ID:           31,
			Code:         "RSV-ABC234",
			UserID:       7,
			ShowID:       1,
			Status:       domain.ReservationStatusReserved,
			HoldDeadline: time.Now().Add(time.Hour),
			Seats: []domain.ReservationSeat{
				{ReservationID: 31, SeatID: 11, SeatKey: "A-1"},
			},
		}
	}

	tests := []struct {
		name           string
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name: "should fail when the reservation does not exist",
			setupMocks: func() {
				s.reservationRepo.GetByCodeFunc = func(ctx context.Context, code string) (*domain.Reservation, error) {
					return nil, domain.ErrRecordNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "should conflict when the reservation is already settled",
			setupMocks: func() {
				s.reservationRepo.GetByCodeFunc = func(ctx context.Context, code string) (*domain.Reservation, error) {
					reservation := reservedFixture()
					reservation.Status = domain.ReservationStatusPaid
					return reservation, nil
				}
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: "already paid",
		},
		{
			name: "should expire a lapsed reservation instead of settling it",
			setupMocks: func() {
				s.reservationRepo.GetByCodeFunc = func(ctx context.Context, code string) (*domain.Reservation, error) {
					reservation := reservedFixture()
					reservation.HoldDeadline = time.Now().Add(-time.Minute)
					return reservation, nil
				}
				s.reservationRepo.ExpireFunc = func(ctx context.Context, reservationID int) ([]string, error) {
					return []string{"A-1"}, nil
				}
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: "has expired",
		},
		{
			name: "should settle the reservation and mint tickets",
			setupMocks: func() {
				s.reservationRepo.GetByCodeFunc = func(ctx context.Context, code string) (*domain.Reservation, error) {
					return reservedFixture(), nil
				}
				s.catalogRepo.GetPricingContextFunc = func(ctx context.Context, showID int, seatIDs []int) (*domain.PricingContext, error) {
					return testPricingContext(domain.PricedSeat{SeatID: 11, SeatKey: "A-1", TypeCode: "standard"}), nil
				}
				s.reservationRepo.SettleAtCounterFunc = func(
					ctx context.Context,
					reservation *domain.Reservation,
					payment *domain.Payment,
					tickets []*domain.Ticket) error {

					s.Equal(domain.PaymentStatusSuccess, payment.Status)
					s.True(payment.Amount.Equal(decimal.NewFromInt(119000)))
					s.Require().Len(tickets, 1)
					s.Equal("A-1", tickets[0].SeatKey)

					payment.ID = 51
					tickets[0].ID = 61
					return nil
				}
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/reservations/RSV-ABC234/payment", PayAtCounterRequest{Method: "cash"})
			r = withURLParams(r, map[string]string{"code": "RSV-ABC234"})
			r = setupTestSession(s.T(), s.app, r, 8, "")

			s.app.PayAtCounter(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var response PaymentResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err)

				s.Equal(51, response.PaymentId)
				s.Equal("success", response.Status)
				s.Require().Len(response.Tickets, 1)
				s.Equal("A-1", response.Tickets[0].SeatKey)
				s.NotEmpty(response.Tickets[0].CheckinCode)

				events := s.notifier.Events()
				s.Require().Len(events, 1)
				s.Equal(domain.SeatSold, events[0].Status)
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}
