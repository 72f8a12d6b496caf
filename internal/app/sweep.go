package app

import (
	"context"
	"time"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/go-co-op/gocron/v2"
)

// startExpirySweep schedules the background job that expires reservations
// whose hold deadline passed without payment. The returned function stops the
// scheduler.
func (app *Application) startExpirySweep() (func(), error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(app.config.Sweep.Interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			app.sweepExpiredReservations(ctx)
		}),
	)
	if err != nil {
		return nil, err
	}

	scheduler.Start()

	return func() {
		err := scheduler.Shutdown()
		if err != nil {
			app.logger.Error("failed to shut down sweep scheduler", "error", err)
		}
	}, nil
}

// sweepExpiredReservations releases seats held by lapsed reservations. Each
// reservation is expired independently so one failure never blocks the rest.
func (app *Application) sweepExpiredReservations(ctx context.Context) {
	expired, err := app.reservationRepo.FindExpired(ctx, time.Now())
	if err != nil {
		app.logger.Error("failed to find expired reservations", "error", err)
		return
	}

	for _, reservation := range expired {
		released, err := app.reservationRepo.Expire(ctx, reservation.ID)
		if err != nil {
			app.logger.Error("failed to expire reservation",
				"code", reservation.Code, "error", err)
			continue
		}

		for _, seatKey := range released {
			app.notifySeatChange(ctx, reservation.ShowID, seatKey, domain.SeatAvailable, nil)
		}

		app.logger.Info("expired reservation swept",
			"code", reservation.Code, "seats_released", len(released))
	}
}
