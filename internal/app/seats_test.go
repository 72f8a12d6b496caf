package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/cinepass/seat-booking/internal/mocks"
	"github.com/cinepass/seat-booking/internal/seatlock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type SeatsTestSuite struct {
	suite.Suite
	app         *Application
	showRepo    *mocks.MockShowRepo
	catalogRepo *mocks.MockCatalogRepo
	locker      *mocks.MockSeatLocker
	redisClient *mocks.MockRedisClient
	notifier    *mocks.MockSeatNotifier
}

func (s *SeatsTestSuite) SetupTest() {
	s.showRepo = &mocks.MockShowRepo{}
	s.catalogRepo = &mocks.MockCatalogRepo{}
	s.locker = &mocks.MockSeatLocker{}
	s.redisClient = mocks.NewMockRedisClient()
	s.notifier = &mocks.MockSeatNotifier{}

	s.app = newTestApplication(func(a *Application) {
		a.showRepo = s.showRepo
		a.catalogRepo = s.catalogRepo
		a.locker = s.locker
		a.redis = s.redisClient
		a.notifier = s.notifier
	})
}

func TestSeatsSuite(t *testing.T) {
	suite.Run(t, new(SeatsTestSuite))
}

func testShow() *domain.Show {
	start := time.Now().Add(3 * time.Hour)
	return &domain.Show{
		ID:        1,
		MovieID:   5,
		ScreenID:  2,
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Active:    true,
	}
}

func testScreenSeats() []domain.CatalogSeat {
	return []domain.CatalogSeat{
		{ID: 11, ScreenID: 2, Row: "A", Number: 1, TypeCode: "standard", Active: true},
		{ID: 12, ScreenID: 2, Row: "A", Number: 2, TypeCode: "vip", Active: true},
		{ID: 13, ScreenID: 2, Row: "B", Number: 1, TypeCode: "standard", Active: false},
	}
}

func testPricingContext(seats ...domain.PricedSeat) *domain.PricingContext {
	return &domain.PricingContext{
		ShowID:     1,
		MovieID:    5,
		MovieTitle: "Arrival",
		BasePrice:  decimal.NewFromInt(100000),
		FormatCode: "STANDARD",
		VenueID:    1,
		// Wednesday matinee, so no weekend pricing interferes.
		ShowStart: time.Date(2025, 7, 9, 14, 0, 0, 0, time.UTC),
		Seats:     seats,
	}
}

func (s *SeatsTestSuite) TestGetSeatMap() {
	tests := []struct {
		name           string
		showID         string
		setupMocks     func()
		wantStatus     int
		wantResponse   *SeatMapResponse
		wantErrMessage string
	}{
		{
			name:           "should fail when show ID is not a positive integer",
			showID:         "0",
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "invalid showID parameter",
		},
		{
			name:   "should fail when show does not exist",
			showID: "999",
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return nil, domain.ErrRecordNotFound
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "should fail when the screen has no seats",
			showID: "1",
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return testShow(), nil
				}
				s.catalogRepo.GetSeatsByScreenFunc = func(ctx context.Context, screenID int) ([]domain.CatalogSeat, error) {
					return nil, nil
				}
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "should merge states and live locks into the seat map",
			showID: "1",
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return testShow(), nil
				}
				s.showRepo.GetSeatStatesFunc = func(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
					return map[string]domain.SeatState{
						"A-2": {ShowID: 1, SeatKey: "A-2", Status: domain.SeatSold},
					}, nil
				}
				s.catalogRepo.GetSeatsByScreenFunc = func(ctx context.Context, screenID int) ([]domain.CatalogSeat, error) {
					return testScreenSeats(), nil
				}

				s.redisClient.Set(context.Background(), seatlock.LockKey(1, "A-1"), "42", 0)
			},
			wantStatus: http.StatusOK,
			wantResponse: &SeatMapResponse{
				ShowId:   1,
				ScreenId: 2,
				SeatRows: []SeatRow{
					{
						Row: "A",
						Seats: []Seat{
							{Id: 11, Key: "A-1", Type: "standard", Status: "selecting"},
							{Id: 12, Key: "A-2", Type: "vip", Status: "sold"},
						},
					},
					{
						Row: "B",
						Seats: []Seat{
							{Id: 13, Key: "B-1", Type: "standard", Status: "blocked"},
						},
					},
				},
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodGet, fmt.Sprintf("/shows/%s/seats", tt.showID), nil)
			r = withURLParams(r, map[string]string{"showID": tt.showID})

			s.app.GetSeatMap(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse != nil {
				var response SeatMapResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err)

				diff := cmp.Diff(tt.wantResponse, &response)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func (s *SeatsTestSuite) TestSelectSeat() {
	tests := []struct {
		name           string
		body           any
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "should fail validation when seat ID is missing",
			body:           SelectSeatRequest{},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "SeatId",
		},
		{
			name: "should fail when the show is past its cutoff",
			body: SelectSeatRequest{SeatId: 11},
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					show := testShow()
					show.StartTime = time.Now().Add(10 * time.Minute)
					return show, nil
				}
				s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
					return testScreenSeats()[:1], nil
				}
			},
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "selection closed",
		},
		{
			name: "should conflict when the seat already has a durable state",
			body: SelectSeatRequest{SeatId: 11},
			setupMocks: func() {
				s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
					return testShow(), nil
				}
				s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
					return testScreenSeats()[:1], nil
				}
				s.showRepo.GetSeatStatesFunc = func(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
					return map[string]domain.SeatState{
						"A-1": {ShowID: 1, SeatKey: "A-1", Status: domain.SeatHeld},
					}, nil
				}
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: "no longer available",
		},
		{
			name: "should conflict when another user holds the lock",
			body: SelectSeatRequest{SeatId: 11},
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
				s.locker.TryAcquireFunc = func(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
					return false, nil
				}
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: "being selected by someone else",
		},
		{
			name: "should lock the seat and price the selection",
			body: SelectSeatRequest{SeatId: 11},
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
				s.locker.TryAcquireFunc = func(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
					s.Equal("A-1", seatKey)
					s.Equal("7", holder)
					s.Equal(selectionLockTTL, ttl)
					return true, nil
				}
				s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
					return "7", nil
				}
				s.catalogRepo.GetPricingContextFunc = func(ctx context.Context, showID int, seatIDs []int) (*domain.PricingContext, error) {
					return testPricingContext(domain.PricedSeat{SeatID: 11, SeatKey: "A-1", TypeCode: "standard"}), nil
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

			w, r := executeRequest(s.T(), http.MethodPost, "/shows/1/seats/selection", tt.body)
			r = withURLParams(r, map[string]string{"showID": "1"})
			r = setupTestSession(s.T(), s.app, r, 7, "")

			s.app.SelectSeat(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var response SelectionResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err)

				s.Equal([]string{"A-1"}, response.SeatKeys)
				s.Require().NotNil(response.Pricing)

				// 100,000 base + 10,000 venue, 8% tax, rounded to 1,000.
				s.True(response.Pricing.GrandTotal.Equal(decimal.NewFromInt(119000)),
					"grand total = %s", response.Pricing.GrandTotal)

				events := s.notifier.Events()
				s.Require().Len(events, 1)
				s.Equal(domain.SeatSelecting, events[0].Status)
				s.Equal("A-1", events[0].SeatKey)
			}

			checkErrorResponse(s.T(), w, tt.wantStatus, tt.wantErrMessage)
		})
	}
}

func (s *SeatsTestSuite) TestCancelSelection() {
	s.Run("should refuse to release a seat locked by someone else", func() {
		s.SetupTest()

		s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
			return testShow(), nil
		}
		s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
			return testScreenSeats()[:1], nil
		}
		s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
			return "99", nil
		}

		w, r := executeRequest(s.T(), http.MethodDelete, "/shows/1/seats/selection", SelectSeatRequest{SeatId: 11})
		r = withURLParams(r, map[string]string{"showID": "1"})
		r = setupTestSession(s.T(), s.app, r, 7, "")

		s.app.CancelSelection(w, r)

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("should release an owned seat", func() {
		s.SetupTest()

		released := false

		s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
			return testShow(), nil
		}
		s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
			return testScreenSeats()[:1], nil
		}
		s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
			return "7", nil
		}
		s.locker.ReleaseFunc = func(ctx context.Context, showID int, seatKey, holder string) error {
			released = true
			s.Equal("A-1", seatKey)
			s.Equal("7", holder)
			return nil
		}

		w, r := executeRequest(s.T(), http.MethodDelete, "/shows/1/seats/selection", SelectSeatRequest{SeatId: 11})
		r = withURLParams(r, map[string]string{"showID": "1"})
		r = setupTestSession(s.T(), s.app, r, 7, "")

		s.app.CancelSelection(w, r)

		s.Equal(http.StatusNoContent, w.Code)
		s.True(released)

		events := s.notifier.Events()
		s.Require().Len(events, 1)
		s.Equal(domain.SeatAvailable, events[0].Status)
	})
}

func (s *SeatsTestSuite) TestExtendSelection() {
	s.Run("should fail when nothing is selected", func() {
		s.SetupTest()

		w, r := executeRequest(s.T(), http.MethodPost, "/shows/1/seats/selection/extension", nil)
		r = withURLParams(r, map[string]string{"showID": "1"})
		r = setupTestSession(s.T(), s.app, r, 7, "")

		s.app.ExtendSelection(w, r)

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("should extend live locks and report lapsed ones", func() {
		s.SetupTest()

		s.redisClient.SAdd(context.Background(), selectionSetKey(1, "7"), 11, 12)

		s.showRepo.GetByIdFunc = func(ctx context.Context, id int) (*domain.Show, error) {
			return testShow(), nil
		}
		s.catalogRepo.GetSeatsByIdsFunc = func(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
			return testScreenSeats()[:2], nil
		}
		s.locker.OwnerFunc = func(ctx context.Context, showID int, seatKey string) (string, error) {
			return "7", nil
		}
		s.locker.ExtendFunc = func(ctx context.Context, showID int, seatKey, holder string, ttl time.Duration) (bool, error) {
			s.Equal(checkoutLockTTL, ttl)
			// A-2's lock expired between the membership read and the extend.
			return seatKey != "A-2", nil
		}

		w, r := executeRequest(s.T(), http.MethodPost, "/shows/1/seats/selection/extension", nil)
		r = withURLParams(r, map[string]string{"showID": "1"})
		r = setupTestSession(s.T(), s.app, r, 7, "")

		s.app.ExtendSelection(w, r)

		s.Equal(http.StatusOK, w.Code)

		var response ExtendSelectionResponse
		err := json.NewDecoder(w.Body).Decode(&response)
		s.Require().NoError(err)

		s.Equal([]string{"A-1"}, response.ExtendedSeats)
		s.Equal([]string{"A-2"}, response.LapsedSeats)

		// The lapsed seat must be pruned from the selection set.
		members, err := s.redisClient.SMembers(context.Background(), selectionSetKey(1, "7")).Result()
		s.Require().NoError(err)
		s.Equal([]string{"11"}, members)
	})
}
