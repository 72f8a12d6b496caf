package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/shopspring/decimal"
)

// priceDriftTolerance is how far, in minor units, the live price may move
// from a quoted one before checkout refuses.
var priceDriftTolerance = decimal.NewFromInt(1000)

// InitiateCheckout turns the caller's locked seats into a pending payment and
// hands back the gateway redirect URL. No ticket exists until the gateway
// confirms; the seats stay protected by their extended locks meanwhile.
func (app *Application) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input CheckoutRequest

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

	if !show.Active || !time.Now().Before(show.ReservationCutoff()) {
		app.badRequestResponse(w, r, fmt.Errorf("checkout: %w", domain.ErrReservationClosed))
		return
	}

	pctx, err := app.catalogRepo.GetPricingContext(r.Context(), showID, input.SeatIds)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	states, err := app.showRepo.GetSeatStates(r.Context(), showID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	userID := app.contextGetUserId(r)
	holder := app.lockHolder(r)

	// Unlike reservations, checkout is all or nothing: the customer is about
	// to pay for exactly these seats.
	for _, seat := range pctx.Seats {
		if _, taken := states[seat.SeatKey]; taken {
			app.editConflictResponseWithErr(w, r, fmt.Errorf("seat %s is no longer available", seat.SeatKey))
			return
		}

		owner, err := app.locker.Owner(r.Context(), showID, seat.SeatKey)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		if owner != holder {
			app.badRequestResponse(w, r, fmt.Errorf("seat %s is not locked by you: %w", seat.SeatKey, domain.ErrLockNotOwned))
			return
		}
	}

	result, err := app.pricer.Price(pctx, app.sessionMembershipTier(r), input.VoucherCode)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnknownVoucher):
			app.badRequestResponse(w, r, fmt.Errorf("voucher code %q is not recognized", input.VoucherCode))
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if input.QuoteId != "" {
		quote, err := app.getQuote(r, input.QuoteId)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrQuoteExpired):
				app.badRequestResponse(w, r, fmt.Errorf("quote has expired, request a new one"))
			default:
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		// A quote is only valid for the exact order it priced; a close-enough
		// total from someone else's quote proves nothing.
		if quote.UserID != userID || quote.ShowID != showID || !coversSeats(quote.SeatKeys, pctx.Seats) {
			app.badRequestResponse(w, r, fmt.Errorf("quote %s does not cover this order", input.QuoteId))
			return
		}

		drift := result.GrandTotal.Sub(quote.GrandTotal).Abs()
		if drift.GreaterThan(priceDriftTolerance) {
			app.badRequestResponse(w, r, fmt.Errorf(
				"price changed from %s to %s since the quote: %w",
				quote.GrandTotal, result.GrandTotal, domain.ErrPriceDrift))
			return
		}
	}

	breakdown, err := json.Marshal(result)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	payment := &domain.Payment{
		UserID:    userID,
		ShowID:    showID,
		Amount:    result.GrandTotal,
		Currency:  "VND",
		Method:    domain.PaymentMethod(input.Method),
		Status:    domain.PaymentStatusPending,
		OrderCode: domain.NewOrderCode(),
		Breakdown: breakdown,
	}

	if input.VoucherCode != "" {
		payment.VoucherCode = &input.VoucherCode
	}

	for _, seat := range pctx.Seats {
		payment.Seats = append(payment.Seats, domain.PaymentSeat{
			SeatID:  seat.SeatID,
			SeatKey: seat.SeatKey,
		})
	}

	err = app.paymentRepo.Create(r.Context(), payment)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	redirectURL, err := app.gateway.BuildPaymentURL(domain.PaymentRequest{
		Amount:    payment.Amount,
		Currency:  payment.Currency,
		OrderCode: payment.OrderCode,
		OrderInfo: fmt.Sprintf("Tickets for %s", pctx.MovieTitle),
		ClientIP:  clientIP(r),
		ReturnURL: app.config.VNPay.ReturnURL,
	})
	if err != nil {
		// Without a redirect URL the gateway can never confirm this payment,
		// so fail it now instead of leaving it pending forever.
		if _, failErr := app.paymentRepo.MarkFailed(r.Context(), payment.ID); failErr != nil {
			logger.Error("failed to mark unredirected payment as failed",
				"payment_id", payment.ID, "error", failErr)
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("checkout initiated",
		"payment_id", payment.ID,
		"order_code", payment.OrderCode,
		"amount", payment.Amount,
	)

	resp := CheckoutResponse{
		PaymentId:   payment.ID,
		OrderCode:   payment.OrderCode,
		Amount:      payment.Amount,
		Currency:    payment.Currency,
		RedirectUrl: redirectURL,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// finalizePayment runs the idempotent success path: take the status latch,
// mint tickets, mark seats sold. Only the latch winner gets tickets back;
// every other caller sees won == false and must treat the payment as already
// settled. Lock release and notifications happen after commit, best effort.
func (app *Application) finalizePayment(ctx context.Context, payment *domain.Payment, transactionID string) (bool, []*domain.Ticket, error) {
	tickets := make([]*domain.Ticket, 0, len(payment.Seats))
	for _, seat := range payment.Seats {
		tickets = append(tickets, &domain.Ticket{
			ShowID:      payment.ShowID,
			SeatID:      seat.SeatID,
			SeatKey:     seat.SeatKey,
			CheckinCode: domain.NewCheckinCode(),
			Status:      domain.TicketStatusActive,
		})
	}

	if transactionID != "" {
		payment.TransactionID = &transactionID
	}

	won, err := app.paymentRepo.Finalize(ctx, payment, tickets)
	if err != nil {
		return false, nil, err
	}

	if !won {
		return false, nil, nil
	}

	holder := fmt.Sprint(payment.UserID)

	for _, seat := range payment.Seats {
		err = app.locker.Release(ctx, payment.ShowID, seat.SeatKey, holder)
		if err != nil {
			app.logger.Error("failed to release seat lock after finalize",
				"seat_key", seat.SeatKey, "error", err)
		}

		app.redis.SRem(ctx, selectionSetKey(payment.ShowID, holder), seat.SeatID)
		app.notifySeatChange(ctx, payment.ShowID, seat.SeatKey, domain.SeatSold, nil)
	}

	return true, tickets, nil
}

// coversSeats reports whether the quoted seat keys are exactly the seats
// being bought, in any order.
func coversSeats(quoted []string, seats []domain.PricedSeat) bool {
	if len(quoted) != len(seats) {
		return false
	}

	remaining := make(map[string]int, len(quoted))
	for _, key := range quoted {
		remaining[key]++
	}

	for _, seat := range seats {
		if remaining[seat.SeatKey] == 0 {
			return false
		}
		remaining[seat.SeatKey]--
	}

	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
