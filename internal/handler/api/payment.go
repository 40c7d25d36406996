package api

import (
	"errors"
	"net/http"

	reqdto "chargeslot/internal/handler/dto/request"
	"chargeslot/internal/handler/middleware"
	"chargeslot/internal/infra"
	"chargeslot/internal/usecase/commands"
	"chargeslot/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	paymentCommands commands.PaymentCommands
	paymentQueries  queries.PaymentQueries
}

func NewPaymentHandler(paymentCommands commands.PaymentCommands, paymentQueries queries.PaymentQueries) *PaymentHandler {
	return &PaymentHandler{
		paymentCommands: paymentCommands,
		paymentQueries:  paymentQueries,
	}
}

// @Summary Initiate payment
// @Description Price the hold and open the payment window
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param request body reqdto.InitiatePaymentRequest true "Payment request"
// @Success 201 {object} queries.PaymentView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Router /bookings/{id}/payment [post]
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	userID, bookingID, ok := h.requestScope(c)
	if !ok {
		return
	}

	var req reqdto.InitiatePaymentRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	view, err := h.paymentCommands.InitiatePayment(c.Request.Context(), userID, commands.InitiatePaymentInput{
		BookingID: bookingID,
		Method:    req.Method,
	})
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// @Summary Process payment
// @Description Run the gateway attempt for the pending payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.PaymentView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 402 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 410 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings/{id}/payment/process [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	userID, bookingID, ok := h.requestScope(c)
	if !ok {
		return
	}

	view, err := h.paymentCommands.ProcessPayment(c.Request.Context(), userID, bookingID)
	if err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Refund payment
// @Description Refund a captured payment and release the booking
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /bookings/{id}/payment/refund [post]
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	userID, bookingID, ok := h.requestScope(c)
	if !ok {
		return
	}

	if err := h.paymentCommands.RefundPayment(c.Request.Context(), userID, bookingID); err != nil {
		h.writePaymentError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Get payment
// @Description Get the payment for a booking
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.PaymentView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/payment [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	userID, bookingID, ok := h.requestScope(c)
	if !ok {
		return
	}

	view, err := h.paymentQueries.GetByBookingID(c.Request.Context(), userID, bookingID)
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Payment not found",
			})
		case errors.Is(err, commands.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Booking belongs to another user",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
		return
	}

	c.JSON(http.StatusOK, view)
}

// @Summary Get receipt
// @Description Get the receipt for a paid booking
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.Receipt
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /bookings/{id}/receipt [get]
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	userID, bookingID, ok := h.requestScope(c)
	if !ok {
		return
	}

	receipt, err := h.paymentQueries.GetReceipt(c.Request.Context(), userID, bookingID)
	if err != nil {
		switch {
		case infra.IsKind(err, infra.KindNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Receipt not found",
			})
		case errors.Is(err, commands.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Booking belongs to another user",
			})
		default:
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Receipt not available",
			})
		}
		return
	}

	c.JSON(http.StatusOK, receipt)
}

func (h *PaymentHandler) requestScope(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
		return uuid.Nil, uuid.Nil, false
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid booking ID format",
		})
		return uuid.Nil, uuid.Nil, false
	}

	return userID, bookingID, true
}

func (h *PaymentHandler) writePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, commands.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, commands.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "No pending payment for booking",
		})
	case errors.Is(err, commands.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Booking belongs to another user",
		})
	case errors.Is(err, commands.ErrPaymentAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Payment already exists for booking",
		})
	case errors.Is(err, commands.ErrReservationExpired):
		c.JSON(http.StatusGone, gin.H{
			"error": "Reservation hold expired",
		})
	case errors.Is(err, commands.ErrPaymentFailed):
		msg := "Payment was declined"
		if reason := err.Error(); reason != commands.ErrPaymentFailed.Error() {
			msg += ": " + reason
		}
		c.JSON(http.StatusPaymentRequired, gin.H{
			"error": msg,
		})
	case errors.Is(err, commands.ErrRefundNotAllowed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Refund not allowed",
		})
	case errors.Is(err, commands.ErrInvalidState):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "Operation not allowed in current state",
		})
	case errors.Is(err, commands.ErrPaymentGateway):
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Payment gateway unavailable",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
