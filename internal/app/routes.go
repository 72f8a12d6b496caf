package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware("seat-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/health", app.GetHealth)

	r.Route("/shows/{showID}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMap)

		r.With(app.requireAuthentication).Route("/", func(r chi.Router) {
			r.Post("/seats/selection", app.SelectSeat)
			r.Delete("/seats/selection", app.CancelSelection)
			r.Post("/seats/selection/extension", app.ExtendSelection)
			r.Post("/quotes", app.CreateQuote)
			r.Post("/reservations", app.ReserveSeats)
			r.Post("/checkout", app.InitiateCheckout)
		})
	})

	r.With(app.requireStaff).Post("/reservations/{code}/payment", app.PayAtCounter)

	// The gateway calls both of these as plain GETs with signed query params.
	r.Get("/payments/gateway/notification", app.GatewayNotification)
	r.Get("/payments/gateway/return", app.GatewayReturn)

	r.With(app.requireAuthentication).Get("/tickets/{ticketID}/qr", app.GetTicketQR)

	return r
}
