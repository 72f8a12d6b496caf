package repository

import (
	"context"
	"errors"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTicketRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTicketRepository(db *pgxpool.Pool) *PostgresTicketRepository {
	return &PostgresTicketRepository{
		db: db,
	}
}

func (p *PostgresTicketRepository) GetById(ctx context.Context, id int) (*domain.Ticket, error) {
	query := `
		SELECT id, payment_id, show_id, seat_id, seat_key, checkin_code, status, issued_at, checked_in_at
		FROM tickets
		WHERE id = $1
	`

	var ticket domain.Ticket

	err := p.db.QueryRow(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.PaymentID,
		&ticket.ShowID,
		&ticket.SeatID,
		&ticket.SeatKey,
		&ticket.CheckinCode,
		&ticket.Status,
		&ticket.IssuedAt,
		&ticket.CheckedInAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &ticket, nil
}

func (p *PostgresTicketRepository) GetByPaymentId(ctx context.Context, paymentID int) ([]domain.Ticket, error) {
	query := `
		SELECT id, payment_id, show_id, seat_id, seat_key, checkin_code, status, issued_at, checked_in_at
		FROM tickets
		WHERE payment_id = $1
		ORDER BY seat_key
	`

	rows, err := p.db.Query(ctx, query, paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.Ticket, 0)

	for rows.Next() {
		var ticket domain.Ticket

		err = rows.Scan(
			&ticket.ID,
			&ticket.PaymentID,
			&ticket.ShowID,
			&ticket.SeatID,
			&ticket.SeatKey,
			&ticket.CheckinCode,
			&ticket.Status,
			&ticket.IssuedAt,
			&ticket.CheckedInAt,
		)
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}
