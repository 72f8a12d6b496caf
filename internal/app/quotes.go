package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/redis/go-redis/v9"
)

const quoteTTL = 5 * time.Minute

func quoteKey(quoteID string) string {
	return fmt.Sprintf("price_quote:%s", quoteID)
}

// CreateQuote prices a seat set with an optional voucher and caches the
// result, so checkout can later verify the customer pays what they were
// shown.
func (app *Application) CreateQuote(w http.ResponseWriter, r *http.Request) {
	showID, err := app.readIDParam(r, "showID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	var input QuoteRequest

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

	seatKeys := make([]string, 0, len(pctx.Seats))
	for _, seat := range pctx.Seats {
		seatKeys = append(seatKeys, seat.SeatKey)
	}

	quote := domain.NewPriceQuote(app.contextGetUserId(r), showID, seatKeys, result.GrandTotal)

	quoteBytes, err := json.Marshal(quote)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.redis.Set(r.Context(), quoteKey(quote.ID), quoteBytes, quoteTTL).Err()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := QuoteResponse{
		QuoteId:   quote.ID,
		ShowId:    showID,
		Pricing:   result,
		ExpiresIn: int(quoteTTL.Seconds()),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// getQuote loads a cached quote; an unknown or lapsed id reports
// ErrQuoteExpired.
func (app *Application) getQuote(r *http.Request, quoteID string) (*domain.PriceQuote, error) {
	quoteBytes, err := app.redis.Get(r.Context(), quoteKey(quoteID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrQuoteExpired
		}
		return nil, err
	}

	var quote domain.PriceQuote
	err = json.Unmarshal(quoteBytes, &quote)
	if err != nil {
		return nil, err
	}

	return &quote, nil
}
