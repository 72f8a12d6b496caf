package domain

import "errors"

var (
	ErrRecordNotFound     = errors.New("record not found")
	ErrEditConflict       = errors.New("edit conflict")
	ErrSeatConflict       = errors.New("seat(s) are already sold, held or locked")
	ErrLockNotOwned       = errors.New("seat lock is not owned by the caller")
	ErrEmptySeatSet       = errors.New("at least one seat is required")
	ErrReservationExpired = errors.New("reservation has expired, seats are available again")
	ErrReservationClosed  = errors.New("reservations are closed for this show")
	ErrQuoteExpired       = errors.New("price quote not found or expired")
	ErrPriceDrift         = errors.New("price has changed, please refresh and try again")
	ErrUnknownVoucher     = errors.New("voucher code is not recognized")
)
