package app

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/cinepass/seat-booking/internal/pricing"
	"github.com/cinepass/seat-booking/internal/seatlock"
)

const (
	// selectionLockTTL bounds how long a picked seat stays off the market
	// before checkout begins.
	selectionLockTTL = 60 * time.Second

	// checkoutLockTTL is the extended window granted when the user enters
	// checkout.
	checkoutLockTTL = 300 * time.Second
)

func selectionSetKey(showID int, holder string) string {
	return fmt.Sprintf("seat_selection:%d:%s", showID, holder)
}

// GetSeatMap returns the full seat map of a show: the screen's catalog seats
// merged with durable seat states and live advisory locks.
func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
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

	seats, err := app.catalogRepo.GetSeatsByScreen(r.Context(), show.ScreenID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(seats) == 0 {
		logger.Warn("seat map not found for show", "show_id", showID)
		app.notFoundResponse(w, r)
		return
	}

	states, err := app.showRepo.GetSeatStates(r.Context(), showID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	locked, err := app.lockedSeatKeys(r.Context(), showID, seats)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := toSeatMapResponse(show, seats, states, locked)

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// lockedSeatKeys reads every seat's advisory lock in one MGET.
func (app *Application) lockedSeatKeys(ctx context.Context, showID int, seats []domain.CatalogSeat) (map[string]bool, error) {
	keys := make([]string, 0, len(seats))
	seatKeys := make([]string, 0, len(seats))

	for _, seat := range seats {
		seatKey := domain.SeatKey(seat.Row, seat.Number)
		seatKeys = append(seatKeys, seatKey)
		keys = append(keys, seatlock.LockKey(showID, seatKey))
	}

	values, err := app.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading seat locks: %w", err)
	}

	locked := make(map[string]bool)
	for i, value := range values {
		if value != nil {
			locked[seatKeys[i]] = true
		}
	}

	return locked, nil
}

func toSeatMapResponse(
	show *domain.Show,
	seats []domain.CatalogSeat,
	states map[string]domain.SeatState,
	locked map[string]bool) SeatMapResponse {

	resp := SeatMapResponse{
		ShowId:   show.ID,
		ScreenId: show.ScreenID,
	}

	// Seats arrive pre-sorted by row and number, so rows can be built in a
	// single pass.
	var currentRow *SeatRow

	for _, seat := range seats {
		if currentRow == nil || seat.Row != currentRow.Row {
			if currentRow != nil {
				resp.SeatRows = append(resp.SeatRows, *currentRow)
			}
			currentRow = &SeatRow{Row: seat.Row}
		}

		seatKey := domain.SeatKey(seat.Row, seat.Number)

		status := domain.SeatAvailable
		switch {
		case !seat.Active:
			status = domain.SeatBlocked
		case states[seatKey].Status != "":
			status = states[seatKey].Status
		case locked[seatKey]:
			status = domain.SeatSelecting
		}

		currentRow.Seats = append(currentRow.Seats, Seat{
			Id:     seat.ID,
			Key:    seatKey,
			Type:   seat.TypeCode,
			Status: string(status),
		})
	}

	if currentRow != nil {
		resp.SeatRows = append(resp.SeatRows, *currentRow)
	}

	return resp
}

// SelectSeat takes the advisory lock for one seat and reports the pricing of
// everything the caller currently has selected for this show.
func (app *Application) SelectSeat(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input SelectSeatRequest

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

	show, seat, err := app.resolveShowSeat(r.Context(), showID, input.SeatId)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	now := time.Now()
	if !now.Before(show.ReservationCutoff()) {
		app.badRequestResponse(w, r, fmt.Errorf("seat selection closed for this show"))
		return
	}

	seatKey := domain.SeatKey(seat.Row, seat.Number)

	states, err := app.showRepo.GetSeatStates(r.Context(), showID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if _, taken := states[seatKey]; taken {
		app.editConflictResponseWithErr(w, r, fmt.Errorf("seat %s is no longer available", seatKey))
		return
	}

	userID := app.contextGetUserId(r)
	holder := app.lockHolder(r)

	ok, err := app.locker.TryAcquire(r.Context(), showID, seatKey, holder, selectionLockTTL)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if !ok {
		app.editConflictResponseWithErr(w, r, fmt.Errorf("seat %s is being selected by someone else", seatKey))
		return
	}

	err = app.redis.SAdd(r.Context(), selectionSetKey(showID, holder), seat.ID).Err()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.notifySeatChange(r.Context(), showID, seatKey, domain.SeatSelecting, &userID)

	result, seatKeys, err := app.priceSelection(r, showID, holder, "")
	if err != nil {
		logger.Error("failed to price current selection", "error", err)
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := SelectionResponse{
		ShowId:   showID,
		SeatKeys: seatKeys,
		Pricing:  result,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// CancelSelection releases one selected seat.
func (app *Application) CancelSelection(w http.ResponseWriter, r *http.Request) {
	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input SelectSeatRequest

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

	_, seat, err := app.resolveShowSeat(r.Context(), showID, input.SeatId)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	seatKey := domain.SeatKey(seat.Row, seat.Number)
	userID := app.contextGetUserId(r)
	holder := app.lockHolder(r)

	owner, err := app.locker.Owner(r.Context(), showID, seatKey)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
	if owner != holder {
		app.badRequestResponse(w, r, fmt.Errorf("seat %s is not selected by you: %w", seatKey, domain.ErrLockNotOwned))
		return
	}

	err = app.locker.Release(r.Context(), showID, seatKey, holder)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.redis.SRem(r.Context(), selectionSetKey(showID, holder), seat.ID)
	app.notifySeatChange(r.Context(), showID, seatKey, domain.SeatAvailable, &userID)

	w.WriteHeader(http.StatusNoContent)
}

// ExtendSelection grants the caller's live locks the longer checkout TTL.
// Lapsed locks cannot be resurrected; they are reported back so the client
// can re-select.
func (app *Application) ExtendSelection(w http.ResponseWriter, r *http.Request) {
	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	holder := app.lockHolder(r)

	seats, err := app.selectedSeats(r.Context(), showID, holder)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(seats) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("no seats selected for this show"))
		return
	}

	resp := ExtendSelectionResponse{ShowId: showID}

	for _, seat := range seats {
		seatKey := domain.SeatKey(seat.Row, seat.Number)

		ok, err := app.locker.Extend(r.Context(), showID, seatKey, holder, checkoutLockTTL)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		if ok {
			resp.ExtendedSeats = append(resp.ExtendedSeats, seatKey)
		} else {
			resp.LapsedSeats = append(resp.LapsedSeats, seatKey)
			app.redis.SRem(r.Context(), selectionSetKey(showID, holder), seat.ID)
		}
	}

	if len(resp.ExtendedSeats) == 0 {
		app.badRequestResponse(w, r, fmt.Errorf("all selections lapsed, please re-select your seats"))
		return
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// resolveShowSeat loads the show and one active catalog seat of its screen.
func (app *Application) resolveShowSeat(ctx context.Context, showID, seatID int) (*domain.Show, *domain.CatalogSeat, error) {
	show, err := app.showRepo.GetById(ctx, showID)
	if err != nil {
		return nil, nil, err
	}

	if !show.Active {
		return nil, nil, fmt.Errorf("show %d: %w", showID, domain.ErrRecordNotFound)
	}

	seats, err := app.catalogRepo.GetSeatsByIds(ctx, show.ScreenID, []int{seatID})
	if err != nil {
		return nil, nil, err
	}

	if len(seats) == 0 || !seats[0].Active {
		return nil, nil, fmt.Errorf("seat %d: %w", seatID, domain.ErrRecordNotFound)
	}

	return show, &seats[0], nil
}

// selectedSeats returns the caller's selection for a show, pruning entries
// whose locks lapsed.
func (app *Application) selectedSeats(ctx context.Context, showID int, holder string) ([]domain.CatalogSeat, error) {
	members, err := app.redis.SMembers(ctx, selectionSetKey(showID, holder)).Result()
	if err != nil {
		return nil, err
	}

	if len(members) == 0 {
		return nil, nil
	}

	seatIDs := make([]int, 0, len(members))
	for _, member := range members {
		id, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		seatIDs = append(seatIDs, id)
	}

	show, err := app.showRepo.GetById(ctx, showID)
	if err != nil {
		return nil, err
	}

	seats, err := app.catalogRepo.GetSeatsByIds(ctx, show.ScreenID, seatIDs)
	if err != nil {
		return nil, err
	}

	live := make([]domain.CatalogSeat, 0, len(seats))
	for _, seat := range seats {
		seatKey := domain.SeatKey(seat.Row, seat.Number)

		owner, err := app.locker.Owner(ctx, showID, seatKey)
		if err != nil {
			return nil, err
		}

		if owner == holder {
			live = append(live, seat)
			continue
		}

		app.redis.SRem(ctx, selectionSetKey(showID, holder), seat.ID)
	}

	return live, nil
}

// priceSelection prices everything the caller currently holds for a show.
func (app *Application) priceSelection(r *http.Request, showID int, holder, voucherCode string) (*pricing.Result, []string, error) {
	seats, err := app.selectedSeats(r.Context(), showID, holder)
	if err != nil {
		return nil, nil, err
	}

	if len(seats) == 0 {
		return nil, nil, nil
	}

	seatIDs := make([]int, 0, len(seats))
	seatKeys := make([]string, 0, len(seats))
	for _, seat := range seats {
		seatIDs = append(seatIDs, seat.ID)
		seatKeys = append(seatKeys, domain.SeatKey(seat.Row, seat.Number))
	}

	pctx, err := app.catalogRepo.GetPricingContext(r.Context(), showID, seatIDs)
	if err != nil {
		return nil, nil, err
	}

	result, err := app.pricer.Price(pctx, app.sessionMembershipTier(r), voucherCode)
	if err != nil {
		return nil, nil, err
	}

	return result, seatKeys, nil
}

// notifySeatChange publishes a seat event; delivery is best effort and never
// fails the request.
func (app *Application) notifySeatChange(ctx context.Context, showID int, seatKey string, status domain.SeatStatus, actingBy *int) {
	err := app.notifier.NotifySeatChange(ctx, domain.SeatEvent{
		ShowID:   showID,
		SeatKey:  seatKey,
		Status:   status,
		ActingBy: actingBy,
	})
	if err != nil {
		app.logger.Error("failed to publish seat change", "show_id", showID, "seat_key", seatKey, "error", err)
	}
}
