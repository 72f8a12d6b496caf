package app

import (
	"fmt"
	"net/http"

	"github.com/cinepass/seat-booking/internal/domain"
	"github.com/cinepass/seat-booking/internal/vnpay"
)

// GatewayNotification is the server-to-server confirmation endpoint the
// gateway retries until acknowledged. It always answers HTTP 200 with a
// response code; transport-level errors would only make the gateway retry
// harder. Duplicate deliveries are absorbed by the finalize latch.
func (app *Application) GatewayNotification(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	params := r.URL.Query()

	v := app.gateway.VerifyNotification(params)
	if !v.Verified {
		logger.Warn("gateway notification with invalid signature")
		app.writeAck(w, r, vnpay.AckOf(vnpay.AckBadSignature, "Invalid signature"))
		return
	}

	payment, err := app.paymentRepo.GetByOrderCode(r.Context(), v.OrderCode)
	if err != nil {
		switch {
		case isNotFound(err):
			app.writeAck(w, r, vnpay.AckOf(vnpay.AckOrderNotFound, "Order not found"))
		default:
			logger.Error("failed to load payment for notification", "order_code", v.OrderCode, "error", err)
			app.writeAck(w, r, vnpay.AckOf(vnpay.AckInternalError, "Internal error"))
		}
		return
	}

	if !v.Amount.Equal(payment.Amount) {
		logger.Warn("gateway notification amount mismatch",
			"order_code", payment.OrderCode,
			"expected", payment.Amount,
			"got", v.Amount,
		)
		app.writeAck(w, r, vnpay.AckOf(vnpay.AckAmountMismatch, "Invalid amount"))
		return
	}

	if payment.Status != domain.PaymentStatusPending {
		app.writeAck(w, r, vnpay.AckOf(vnpay.AckAlreadyProcessed, "Order already processed"))
		return
	}

	if !v.Succeeded {
		_, err = app.paymentRepo.MarkFailed(r.Context(), payment.ID)
		if err != nil {
			logger.Error("failed to mark payment failed", "order_code", payment.OrderCode, "error", err)
			app.writeAck(w, r, vnpay.AckOf(vnpay.AckInternalError, "Internal error"))
			return
		}

		logger.Info("payment failed at gateway", "order_code", payment.OrderCode)
		app.writeAck(w, r, vnpay.AckOf(vnpay.AckSuccess, "Confirm Success"))
		return
	}

	won, _, err := app.finalizePayment(r.Context(), payment, params.Get("vnp_TransactionNo"))
	if err != nil {
		logger.Error("failed to finalize payment", "order_code", payment.OrderCode, "error", err)
		app.writeAck(w, r, vnpay.AckOf(vnpay.AckInternalError, "Internal error"))
		return
	}

	if !won {
		// Someone settled the payment between our status read and the latch.
		app.writeAck(w, r, vnpay.AckOf(vnpay.AckAlreadyProcessed, "Order already processed"))
		return
	}

	logger.Info("payment finalized", "order_code", payment.OrderCode, "payment_id", payment.ID)
	app.writeAck(w, r, vnpay.AckOf(vnpay.AckSuccess, "Confirm Success"))
}

// GatewayReturn handles the customer's redirect back from the gateway. It is
// read-only: the authoritative settlement runs through the notification
// endpoint, so this only reports what the payment record currently says.
func (app *Application) GatewayReturn(w http.ResponseWriter, r *http.Request) {
	v := app.gateway.VerifyReturn(r.URL.Query())
	if !v.Verified {
		app.badRequestResponse(w, r, fmt.Errorf("invalid gateway signature"))
		return
	}

	payment, err := app.paymentRepo.GetByOrderCode(r.Context(), v.OrderCode)
	if err != nil {
		switch {
		case isNotFound(err):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := GatewayReturnResponse{
		OrderCode: payment.OrderCode,
		Status:    string(payment.Status),
	}

	if payment.Status == domain.PaymentStatusSuccess {
		tickets, err := app.ticketRepo.GetByPaymentId(r.Context(), payment.ID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		for _, ticket := range tickets {
			resp.Tickets = append(resp.Tickets, TicketResponse{
				Id:          ticket.ID,
				SeatKey:     ticket.SeatKey,
				CheckinCode: ticket.CheckinCode,
				Status:      string(ticket.Status),
			})
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) writeAck(w http.ResponseWriter, r *http.Request, ack vnpay.Ack) {
	err := app.writeJSON(w, http.StatusOK, ack, nil)
	if err != nil {
		app.logError(r, err)
	}
}
