package request

type InitiatePaymentRequest struct {
	Method string `json:"method" binding:"required,oneof=card wallet"`
}
