package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

// holdSeat claims a seat for a reservation. A seat is available exactly when
// it has no state row, so the insert itself is the re-validation: any
// existing row, whatever its status, loses the race.
func holdSeat(ctx context.Context, tx pgx.Tx, showID int, seatKey string, reservationID int) error {
	query := `
		INSERT INTO seat_states (show_id, seat_key, status, reservation_id)
		VALUES ($1, $2, 'held', $3)
		ON CONFLICT (show_id, seat_key) DO NOTHING
	`

	tag, err := tx.Exec(ctx, query, showID, seatKey, reservationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("seat %s: %w", seatKey, domain.ErrSeatConflict)
	}
	return nil
}

// sellHeldSeat flips a seat to sold only while it is still held by the given
// reservation.
func sellHeldSeat(ctx context.Context, tx pgx.Tx, showID int, seatKey string, reservationID, ticketID int) error {
	query := `
		UPDATE seat_states
		SET status = 'sold', ticket_id = $4, reservation_id = NULL, updated_at = NOW()
		WHERE show_id = $1 AND seat_key = $2 AND status = 'held' AND reservation_id = $3
	`

	tag, err := tx.Exec(ctx, query, showID, seatKey, reservationID, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("seat %s: %w", seatKey, domain.ErrSeatConflict)
	}
	return nil
}

// sellSeat records a direct checkout sale. The seat normally has no state row
// at this point since online selection holds seats in the lock tier only, but
// a stale hold left by a lapsed reservation may be overwritten. Sold and
// blocked rows never are.
func sellSeat(ctx context.Context, tx pgx.Tx, showID int, seatKey string, ticketID int) error {
	query := `
		INSERT INTO seat_states (show_id, seat_key, status, ticket_id)
		VALUES ($1, $2, 'sold', $3)
		ON CONFLICT (show_id, seat_key) DO UPDATE
		SET status = 'sold', ticket_id = $3, reservation_id = NULL, updated_at = NOW()
		WHERE seat_states.status NOT IN ('sold', 'blocked')
	`

	tag, err := tx.Exec(ctx, query, showID, seatKey, ticketID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("seat %s: %w", seatKey, domain.ErrSeatConflict)
	}
	return nil
}

// insertTicket mints one ticket row and fills in the generated fields.
func insertTicket(ctx context.Context, tx pgx.Tx, ticket *domain.Ticket) error {
	query := `
		INSERT INTO tickets (payment_id, show_id, seat_id, seat_key, checkin_code, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, issued_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		ticket.PaymentID,
		ticket.ShowID,
		ticket.SeatID,
		ticket.SeatKey,
		ticket.CheckinCode,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.IssuedAt)

	if isUniqueViolation(err, "tickets_checkin_code_key") {
		return fmt.Errorf("checkin code collision: %w", domain.ErrEditConflict)
	}

	return err
}

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint. The random human-readable codes (reservation, order,
// checkin) are unique columns, so a collision must surface as ErrEditConflict
// the caller can retry, not as a raw database error.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}
