package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create persists the reservation and claims every seat in one transaction.
// Seat claims are conditional inserts, so a seat taken between validation and
// the write loses here with ErrSeatConflict and the whole reservation rolls
// back.
func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO reservations (code, user_id, show_id, status, hold_deadline)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			reservation.Code,
			reservation.UserID,
			reservation.ShowID,
			reservation.Status,
			reservation.HoldDeadline,
		).Scan(&reservation.ID, &reservation.CreatedAt)

		if err != nil {
			if isUniqueViolation(err, "reservations_code_key") {
				return fmt.Errorf("reservation code collision: %w", domain.ErrEditConflict)
			}
			return err
		}

		for i := range reservation.Seats {
			reservation.Seats[i].ReservationID = reservation.ID

			err = holdSeat(ctx, tx, reservation.ShowID, reservation.Seats[i].SeatKey, reservation.ID)
			if err != nil {
				return err
			}
		}

		rows := make([][]any, 0, len(reservation.Seats))
		for _, seat := range reservation.Seats {
			rows = append(rows, []any{
				reservation.ID,
				seat.SeatID,
				seat.SeatKey,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"reservation_seats"},
			[]string{"reservation_id", "seat_id", "seat_key"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

func (p *PostgresReservationRepository) GetByCode(ctx context.Context, code string) (*domain.Reservation, error) {
	query := `
		SELECT id, code, user_id, show_id, status, hold_deadline, created_at
		FROM reservations
		WHERE code = $1
	`

	var reservation domain.Reservation

	err := p.db.QueryRow(ctx, query, code).Scan(
		&reservation.ID,
		&reservation.Code,
		&reservation.UserID,
		&reservation.ShowID,
		&reservation.Status,
		&reservation.HoldDeadline,
		&reservation.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	seats, err := p.retrieveSeats(ctx, reservation.ID)
	if err != nil {
		return nil, err
	}
	reservation.Seats = seats

	return &reservation, nil
}

// SettleAtCounter records a counter payment against a reserved reservation:
// the reservation flips to paid, the payment and its tickets are written, and
// every seat moves held to sold conditional on this reservation still holding
// it. A reservation already settled or expired returns ErrEditConflict.
func (p *PostgresReservationRepository) SettleAtCounter(
	ctx context.Context,
	reservation *domain.Reservation,
	payment *domain.Payment,
	tickets []*domain.Ticket) error {

	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations
			SET status = 'paid'
			WHERE id = $1 AND status = 'reserved'
		`

		tag, err := tx.Exec(ctx, query, reservation.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrEditConflict
		}
		reservation.Status = domain.ReservationStatusPaid

		query = `
			INSERT INTO payments (user_id, show_id, amount, currency, method, status, order_code, breakdown, paid_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, '[]'::jsonb), NOW())
			RETURNING id, paid_at, created_at
		`

		err = tx.QueryRow(
			ctx,
			query,
			payment.UserID,
			payment.ShowID,
			payment.Amount,
			payment.Currency,
			payment.Method,
			payment.Status,
			payment.OrderCode,
			payment.Breakdown,
		).Scan(&payment.ID, &payment.PaidAt, &payment.CreatedAt)

		if err != nil {
			if isUniqueViolation(err, "payments_order_code_key") {
				return fmt.Errorf("order code collision: %w", domain.ErrEditConflict)
			}
			return err
		}

		for _, ticket := range tickets {
			ticket.PaymentID = payment.ID

			err = insertTicket(ctx, tx, ticket)
			if err != nil {
				return err
			}

			err = sellHeldSeat(ctx, tx, reservation.ShowID, ticket.SeatKey, reservation.ID, ticket.ID)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// Expire transitions a reserved reservation to expired and frees its seats.
// Seats claimed since by another flow are left alone; only the keys actually
// released are returned. Reservations no longer reserved are a no-op.
func (p *PostgresReservationRepository) Expire(ctx context.Context, reservationID int) ([]string, error) {
	var released []string

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE reservations
			SET status = 'expired'
			WHERE id = $1 AND status = 'reserved'
		`

		tag, err := tx.Exec(ctx, query, reservationID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		query = `
			DELETE FROM seat_states
			WHERE reservation_id = $1 AND status = 'held'
			RETURNING seat_key
		`

		rows, err := tx.Query(ctx, query, reservationID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var seatKey string
			if err := rows.Scan(&seatKey); err != nil {
				return err
			}
			released = append(released, seatKey)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return released, nil
}

func (p *PostgresReservationRepository) FindExpired(ctx context.Context, now time.Time) ([]domain.Reservation, error) {
	query := `
		SELECT id, code, user_id, show_id, status, hold_deadline, created_at
		FROM reservations
		WHERE status = 'reserved' AND hold_deadline < $1
		ORDER BY hold_deadline
	`

	rows, err := p.db.Query(ctx, query, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)

	for rows.Next() {
		var reservation domain.Reservation

		err = rows.Scan(
			&reservation.ID,
			&reservation.Code,
			&reservation.UserID,
			&reservation.ShowID,
			&reservation.Status,
			&reservation.HoldDeadline,
			&reservation.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		reservations = append(reservations, reservation)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return reservations, nil
}

func (p *PostgresReservationRepository) retrieveSeats(ctx context.Context, reservationID int) ([]domain.ReservationSeat, error) {
	query := `
		SELECT reservation_id, seat_id, seat_key
		FROM reservation_seats
		WHERE reservation_id = $1
		ORDER BY seat_key
	`

	rows, err := p.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.ReservationSeat, 0)

	for rows.Next() {
		var seat domain.ReservationSeat

		err = rows.Scan(&seat.ReservationID, &seat.SeatID, &seat.SeatKey)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
