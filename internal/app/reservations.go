package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/go-chi/chi/v5"
)

// ReserveSeats converts the caller's locked seats into a durable hold under
// one reservation code. Seats that fail validation are dropped rather than
// failing the whole request; the response reports what was skipped.
func (app *Application) ReserveSeats(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input ReserveSeatsRequest

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	show, err := app.showRepo.GetById(r.Context(), showID)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	now := time.Now()
	if !show.Active || !now.Before(show.ReservationCutoff()) {
		app.badRequestResponse(w, r, domain.ErrReservationClosed)
		return
	}

	seats, err := app.catalogRepo.GetSeatsByIds(r.Context(), show.ScreenID, input.SeatIds)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	states, err := app.showRepo.GetSeatStates(r.Context(), showID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)
	holder := app.lockHolder(r)

	var accepted []domain.ReservationSeat
	var skipped []string

	found := make(map[int]bool, len(seats))

	for _, seat := range seats {
		found[seat.ID] = true
		seatKey := domain.SeatKey(seat.Row, seat.Number)

		if !seat.Active {
			skipped = append(skipped, seatKey)
			continue
		}

		if _, taken := states[seatKey]; taken {
			skipped = append(skipped, seatKey)
			continue
		}

		owner, err := app.locker.Owner(r.Context(), showID, seatKey)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		if owner != holder {
			skipped = append(skipped, seatKey)
			continue
		}

		accepted = append(accepted, domain.ReservationSeat{
			SeatID:  seat.ID,
			SeatKey: seatKey,
		})
	}

	for _, seatID := range input.SeatIds {
		if !found[seatID] {
			skipped = append(skipped, fmt.Sprintf("seat %d", seatID))
		}
	}

	if len(accepted) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("none of the requested seats can be reserved"))
		return
	}

	reservation := &domain.Reservation{
		Code:         domain.NewReservationCode(),
		UserID:       userID,
		ShowID:       showID,
		Status:       domain.ReservationStatusReserved,
		HoldDeadline: show.ReservationCutoff(),
		Seats:        accepted,
	}

	err = app.reservationRepo.Create(r.Context(), reservation)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatConflict), errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	logger.Info("reservation created", "code", reservation.Code, "seats", len(accepted))

	// The durable hold now protects the seats; the advisory locks are
	// redundant and released best effort.
	for _, seat := range reservation.Seats {
		err = app.locker.Release(r.Context(), showID, seat.SeatKey, holder)
		if err != nil {
			logger.Error("failed to release seat lock", "seat_key", seat.SeatKey, "error", err)
		}

		app.redis.SRem(r.Context(), selectionSetKey(showID, holder), seat.SeatID)
		app.notifySeatChange(r.Context(), showID, seat.SeatKey, domain.SeatHeld, &userID)
	}

	resp := ReservationResponse{
		Code:         reservation.Code,
		ShowId:       showID,
		Status:       string(reservation.Status),
		HoldDeadline: reservation.HoldDeadline,
		SeatKeys:     seatKeysOf(reservation.Seats),
		SkippedSeats: skipped,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// PayAtCounter settles a reservation synchronously at the box office: one
// payment, one ticket per seat, seats flipped to sold, all in a single
// transaction. No gateway is involved.
func (app *Application) PayAtCounter(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	code := chi.URLParam(r, "code")
	if code == "" {
		app.badRequestResponse(w, r, fmt.Errorf("missing reservation code"))
		return
	}

	var input PayAtCounterRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	reservation, err := app.reservationRepo.GetByCode(r.Context(), code)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if reservation.Status != domain.ReservationStatusReserved {
		app.editConflictResponseWithErr(w, r, fmt.Errorf("reservation %s is already %s", code, reservation.Status))
		return
	}

	if reservation.Expired(time.Now()) {
		released, err := app.reservationRepo.Expire(r.Context(), reservation.ID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		for _, seatKey := range released {
			app.notifySeatChange(r.Context(), reservation.ShowID, seatKey, domain.SeatAvailable, nil)
		}

		app.editConflictResponseWithErr(w, r, fmt.Errorf("reservation %s: %w", code, domain.ErrReservationExpired))
		return
	}

	seatIDs := make([]int, 0, len(reservation.Seats))
	for _, seat := range reservation.Seats {
		seatIDs = append(seatIDs, seat.SeatID)
	}

	pctx, err := app.catalogRepo.GetPricingContext(r.Context(), reservation.ShowID, seatIDs)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	// Counter settlement prices the snapshot without membership or voucher
	// discounts; those belong to the online checkout flow.
	result, err := app.pricer.Price(pctx, "", "")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	breakdown, err := json.Marshal(result)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	payment := &domain.Payment{
		UserID:    reservation.UserID,
		ShowID:    reservation.ShowID,
		Amount:    result.GrandTotal,
		Currency:  "VND",
		Method:    domain.PaymentMethod(input.Method),
		Status:    domain.PaymentStatusSuccess,
		OrderCode: domain.NewOrderCode(),
		Breakdown: breakdown,
	}

	tickets := make([]*domain.Ticket, 0, len(reservation.Seats))
	for _, seat := range reservation.Seats {
		tickets = append(tickets, &domain.Ticket{
			ShowID:      reservation.ShowID,
			SeatID:      seat.SeatID,
			SeatKey:     seat.SeatKey,
			CheckinCode: domain.NewCheckinCode(),
			Status:      domain.TicketStatusActive,
		})
	}

	err = app.reservationRepo.SettleAtCounter(r.Context(), reservation, payment, tickets)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict), errors.Is(err, domain.ErrSeatConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	logger.Info("reservation settled at counter", "code", code, "payment_id", payment.ID)

	for _, ticket := range tickets {
		app.notifySeatChange(r.Context(), reservation.ShowID, ticket.SeatKey, domain.SeatSold, nil)
	}

	resp := PaymentResponse{
		PaymentId: payment.ID,
		OrderCode: payment.OrderCode,
		Status:    string(payment.Status),
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		Tickets:   toTicketResponses(tickets),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func seatKeysOf(seats []domain.ReservationSeat) []string {
	keys := make([]string, 0, len(seats))
	for _, seat := range seats {
		keys = append(keys, seat.SeatKey)
	}
	return keys
}

func toTicketResponses(tickets []*domain.Ticket) []TicketResponse {
	resp := make([]TicketResponse, 0, len(tickets))
	for _, ticket := range tickets {
		resp = append(resp, TicketResponse{
			Id:          ticket.ID,
			SeatKey:     ticket.SeatKey,
			CheckinCode: ticket.CheckinCode,
			Status:      string(ticket.Status),
		})
	}
	return resp
}
