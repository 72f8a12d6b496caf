package repository

import (
	"context"
	"errors"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id int) (*domain.Show, error) {
	query := `
		SELECT id, movie_id, screen_id, start_time, end_time, active
		FROM shows
		WHERE id = $1
	`

	var show domain.Show

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieID,
		&show.ScreenID,
		&show.StartTime,
		&show.EndTime,
		&show.Active,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &show, nil
}

// GetSeatStates returns every non-available seat of a show keyed by seat key.
// Seats absent from the map are available.
func (p *PostgresShowRepository) GetSeatStates(ctx context.Context, showID int) (map[string]domain.SeatState, error) {
	query := `
		SELECT seat_key, status, reservation_id, ticket_id, updated_at
		FROM seat_states
		WHERE show_id = $1
	`

	rows, err := p.db.Query(ctx, query, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := make(map[string]domain.SeatState)

	for rows.Next() {
		state := domain.SeatState{ShowID: showID}

		err = rows.Scan(
			&state.SeatKey,
			&state.Status,
			&state.ReservationID,
			&state.TicketID,
			&state.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		states[state.SeatKey] = state
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return states, nil
}
