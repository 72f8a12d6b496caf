package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

// Create persists a pending payment together with its seat snapshot. The
// snapshot, not the live seat map, is what finalize later acts on.
func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO payments (user_id, show_id, amount, currency, method, status, order_code, voucher_code, breakdown)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9, '[]'::jsonb))
			RETURNING id, created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			payment.UserID,
			payment.ShowID,
			payment.Amount,
			payment.Currency,
			payment.Method,
			payment.Status,
			payment.OrderCode,
			payment.VoucherCode,
			payment.Breakdown,
		).Scan(&payment.ID, &payment.CreatedAt)

		if err != nil {
			if isUniqueViolation(err, "payments_order_code_key") {
				return fmt.Errorf("order code collision: %w", domain.ErrEditConflict)
			}
			return err
		}

		rows := make([][]any, 0, len(payment.Seats))
		for i := range payment.Seats {
			payment.Seats[i].PaymentID = payment.ID
			rows = append(rows, []any{
				payment.ID,
				payment.Seats[i].SeatID,
				payment.Seats[i].SeatKey,
			})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"payment_seats"},
			[]string{"payment_id", "seat_id", "seat_key"},
			pgx.CopyFromRows(rows),
		)

		return err
	})
}

func (p *PostgresPaymentRepository) GetById(ctx context.Context, id int) (*domain.Payment, error) {
	query := `
		SELECT id, user_id, show_id, amount, currency, method, status,
			order_code, transaction_id, voucher_code, breakdown, paid_at, created_at
		FROM payments
		WHERE id = $1
	`

	return p.getOne(ctx, query, id)
}

func (p *PostgresPaymentRepository) GetByOrderCode(ctx context.Context, orderCode string) (*domain.Payment, error) {
	query := `
		SELECT id, user_id, show_id, amount, currency, method, status,
			order_code, transaction_id, voucher_code, breakdown, paid_at, created_at
		FROM payments
		WHERE order_code = $1
	`

	return p.getOne(ctx, query, orderCode)
}

func (p *PostgresPaymentRepository) getOne(ctx context.Context, query string, arg any) (*domain.Payment, error) {
	var payment domain.Payment

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&payment.ID,
		&payment.UserID,
		&payment.ShowID,
		&payment.Amount,
		&payment.Currency,
		&payment.Method,
		&payment.Status,
		&payment.OrderCode,
		&payment.TransactionID,
		&payment.VoucherCode,
		&payment.Breakdown,
		&payment.PaidAt,
		&payment.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	seats, err := p.retrieveSeats(ctx, payment.ID)
	if err != nil {
		return nil, err
	}
	payment.Seats = seats

	return &payment, nil
}

// Finalize claims the pending to success transition with a conditional update
// and, in the same transaction, mints the tickets and marks every snapshot
// seat sold. Exactly one caller ever gets true; everyone else sees the latch
// already taken and gets false with no writes, which is the idempotent path
// under duplicate gateway notifications.
func (p *PostgresPaymentRepository) Finalize(ctx context.Context, payment *domain.Payment, tickets []*domain.Ticket) (bool, error) {
	won := false

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE payments
			SET status = 'success', transaction_id = $2, paid_at = NOW()
			WHERE id = $1 AND status = 'pending'
			RETURNING paid_at
		`

		err := tx.QueryRow(ctx, query, payment.ID, payment.TransactionID).Scan(&payment.PaidAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}

		won = true
		payment.Status = domain.PaymentStatusSuccess

		for _, ticket := range tickets {
			ticket.PaymentID = payment.ID

			err = insertTicket(ctx, tx, ticket)
			if err != nil {
				return err
			}

			err = sellSeat(ctx, tx, payment.ShowID, ticket.SeatKey, ticket.ID)
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return false, err
	}

	return won, nil
}

// MarkFailed flips a pending payment to failed. It reports false when the
// payment already left pending, mirroring the finalize latch.
func (p *PostgresPaymentRepository) MarkFailed(ctx context.Context, paymentID int) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'failed'
		WHERE id = $1 AND status = 'pending'
	`

	tag, err := p.db.Exec(ctx, query, paymentID)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

func (p *PostgresPaymentRepository) retrieveSeats(ctx context.Context, paymentID int) ([]domain.PaymentSeat, error) {
	query := `
		SELECT payment_id, seat_id, seat_key
		FROM payment_seats
		WHERE payment_id = $1
		ORDER BY seat_key
	`

	rows, err := p.db.Query(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.PaymentSeat, 0)

	for rows.Next() {
		var seat domain.PaymentSeat

		err = rows.Scan(&seat.PaymentID, &seat.SeatID, &seat.SeatKey)
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
