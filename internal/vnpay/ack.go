package vnpay

// Response codes the notification endpoint must answer with. The gateway
// retries delivery until it receives a well-formed acknowledgement, so every
// outcome, including failure, maps to one of these.
const (
	AckSuccess          = "00"
	AckOrderNotFound    = "01"
	AckAlreadyProcessed = "02"
	AckAmountMismatch   = "04"
	AckBadSignature     = "97"
	AckInternalError    = "99"
)

// Ack is the JSON body returned to the gateway's notification calls.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

func AckOf(code, message string) Ack {
	return Ack{RspCode: code, Message: message}
}
