package app

import (
	"net/http"

	"github.com/skip2/go-qrcode"
)

// GetTicketQR renders a ticket's check-in code as a PNG QR image. Tickets are
// only visible to the user who paid for them; anyone else gets a 404 rather
// than a hint the ticket exists.
func (app *Application) GetTicketQR(w http.ResponseWriter, r *http.Request) {
	ticketID, err := app.readIDParam(r, "ticketID")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	ticket, err := app.ticketRepo.GetById(r.Context(), ticketID)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	payment, err := app.paymentRepo.GetById(r.Context(), ticket.PaymentID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if payment.UserID != app.contextGetUserId(r) {
		app.notFoundResponse(w, r)
		return
	}

	png, err := qrcode.Encode(ticket.CheckinCode, qrcode.Medium, 256)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)

	_, err = w.Write(png)
	if err != nil {
		app.logError(r, err)
	}
}
