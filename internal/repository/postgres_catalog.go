package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresCatalogRepository struct {
	db *pgxpool.Pool
}

func NewPostgresCatalogRepository(db *pgxpool.Pool) *PostgresCatalogRepository {
	return &PostgresCatalogRepository{
		db: db,
	}
}

// GetPricingContext resolves everything pricing needs for one order in two
// queries: the show joined with its movie and screen, then the seats.
func (p *PostgresCatalogRepository) GetPricingContext(
	ctx context.Context,
	showID int,
	seatIDs []int) (*domain.PricingContext, error) {

	query := `
		SELECT
			s.id,
			m.id,
			m.title,
			m.base_price,
			sc.format_code,
			sc.venue_id,
			s.start_time
		FROM shows s
		JOIN movies m ON s.movie_id = m.id
		JOIN screens sc ON s.screen_id = sc.id
		WHERE s.id = $1 AND s.active = true
	`

	var pctx domain.PricingContext

	err := p.db.QueryRow(ctx, query, showID).Scan(
		&pctx.ShowID,
		&pctx.MovieID,
		&pctx.MovieTitle,
		&pctx.BasePrice,
		&pctx.FormatCode,
		&pctx.VenueID,
		&pctx.ShowStart,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	seats, err := p.seatsByIds(ctx, showID, seatIDs)
	if err != nil {
		return nil, err
	}
	pctx.Seats = seats

	return &pctx, nil
}

func (p *PostgresCatalogRepository) seatsByIds(ctx context.Context, showID int, seatIDs []int) ([]domain.PricedSeat, error) {
	query := `
		SELECT st.id, st.seat_row, st.seat_number, st.type_code
		FROM seats st
		JOIN shows s ON st.screen_id = s.screen_id
		WHERE s.id = $1 AND st.id = ANY($2) AND st.active = true
	`

	rows, err := p.db.Query(ctx, query, showID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.PricedSeat, 0, len(seatIDs))

	for rows.Next() {
		var seat domain.PricedSeat
		var row string
		var number int

		err = rows.Scan(&seat.SeatID, &row, &number, &seat.TypeCode)
		if err != nil {
			return nil, err
		}

		seat.SeatKey = domain.SeatKey(row, number)
		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(seats) != len(seatIDs) {
		return nil, fmt.Errorf("resolving %d of %d seats: %w", len(seats), len(seatIDs), domain.ErrRecordNotFound)
	}

	return seats, nil
}

func (p *PostgresCatalogRepository) GetSeatsByScreen(ctx context.Context, screenID int) ([]domain.CatalogSeat, error) {
	query := `
		SELECT id, screen_id, seat_row, seat_number, type_code, active
		FROM seats
		WHERE screen_id = $1
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, screenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCatalogSeats(rows)
}

func (p *PostgresCatalogRepository) GetSeatsByIds(ctx context.Context, screenID int, seatIDs []int) ([]domain.CatalogSeat, error) {
	query := `
		SELECT id, screen_id, seat_row, seat_number, type_code, active
		FROM seats
		WHERE screen_id = $1 AND id = ANY($2)
		ORDER BY seat_row, seat_number
	`

	rows, err := p.db.Query(ctx, query, screenID, seatIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanCatalogSeats(rows)
}

func scanCatalogSeats(rows pgx.Rows) ([]domain.CatalogSeat, error) {
	seats := make([]domain.CatalogSeat, 0)

	for rows.Next() {
		var seat domain.CatalogSeat

		err := rows.Scan(
			&seat.ID,
			&seat.ScreenID,
			&seat.Row,
			&seat.Number,
			&seat.TypeCode,
			&seat.Active,
		)
		if err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}
