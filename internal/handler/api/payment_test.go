//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"chargeslot/internal/domain/payment"
	"chargeslot/internal/domain/user"
	"chargeslot/internal/handler/api"
	"chargeslot/internal/infra"
	"chargeslot/internal/pkg/errs"
	"chargeslot/internal/usecase/commands"
	"chargeslot/internal/usecase/queries"
	"chargeslot/tests/common/builder"
	"chargeslot/tests/common/httptest"
	"chargeslot/tests/common/testutil"
	commandsmock "chargeslot/tests/mock/commands"
	queriesmock "chargeslot/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type PaymentHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockPaymentCommands
	mockQueries  *queriesmock.MockPaymentQueries
	handler      *api.PaymentHandler
	actorID      uuid.UUID
}

func (s *PaymentHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockPaymentCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockPaymentQueries(s.mockCtrl)
	s.handler = api.NewPaymentHandler(s.mockCommands, s.mockQueries)
	s.actorID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Set("user_id", s.actorID)
		c.Set("user_role", user.RoleDriver)
		c.Next()
	}

	s.router.POST("/bookings/:id/payment", authMiddleware, s.handler.InitiatePayment)
	s.router.GET("/bookings/:id/payment", authMiddleware, s.handler.GetPayment)
	s.router.POST("/bookings/:id/payment/process", authMiddleware, s.handler.ProcessPayment)
	s.router.POST("/bookings/:id/payment/refund", authMiddleware, s.handler.RefundPayment)
	s.router.GET("/bookings/:id/receipt", authMiddleware, s.handler.GetReceipt)
}

func (s *PaymentHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestPaymentHandlerSuite(t *testing.T) {
	suite.Run(t, new(PaymentHandlerTestSuite))
}

// ================================================================================
// TestInitiatePayment
// ================================================================================

func (s *PaymentHandlerTestSuite) TestInitiatePayment() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/payment"

	reqBody := map[string]any{"method": "card"}
	returnView := builder.NewPaymentBuilder().WithBookingID(bookingID).BuildView(payment.StatusPending)
	expectedInput := commands.InitiatePaymentInput{BookingID: bookingID, Method: "card"}

	s.Run("success: returns 201 Created with the pending payment", func() {
		s.mockCommands.EXPECT().InitiatePayment(gomock.Any(), s.actorID, expectedInput).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response queries.PaymentView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &response)
		s.Equal(bookingID, response.BookingID)
		s.Equal(payment.StatusPending.String(), response.Status)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name   string
			mutate func(m map[string]any)
		}{
			{name: "missing field: method (required)", mutate: testutil.Field("method", nil)},
			{name: "unsupported method", mutate: testutil.Field("method", "cash")},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				requestMap := map[string]any{"method": "card"}
				tc.mutate(requestMap)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/bookings/invalid-uuid/payment", reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid booking ID")
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "booking not found",
				commandsError:  commands.ErrBookingNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Booking not found",
			},
			{
				name:           "not the owner",
				commandsError:  commands.ErrNotOwner,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "another user",
			},
			{
				name:           "payment already open",
				commandsError:  commands.ErrPaymentAlreadyExists,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "already exists",
			},
			{
				name:           "hold expired",
				commandsError:  commands.ErrReservationExpired,
				expectedStatus: http.StatusGone,
				expectedMsg:    "expired",
			},
			{
				name:           "wrong state",
				commandsError:  commands.ErrInvalidState,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "current state",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().InitiatePayment(gomock.Any(), s.actorID, expectedInput).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestProcessPayment
// ================================================================================

func (s *PaymentHandlerTestSuite) TestProcessPayment() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/payment/process"

	returnView := builder.NewPaymentBuilder().WithBookingID(bookingID).BuildView(payment.StatusSuccess)

	s.Run("success: returns 200 OK with the captured payment", func() {
		s.mockCommands.EXPECT().ProcessPayment(gomock.Any(), s.actorID, bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")

		var response queries.PaymentView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(payment.StatusSuccess.String(), response.Status)
		s.NotNil(response.TransactionID)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "no pending payment",
				commandsError:  commands.ErrPaymentNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "No pending payment",
			},
			{
				name:           "not the owner",
				commandsError:  commands.ErrNotOwner,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "another user",
			},
			{
				name:           "hold expired",
				commandsError:  commands.ErrReservationExpired,
				expectedStatus: http.StatusGone,
				expectedMsg:    "expired",
			},
			{
				name:           "charge declined",
				commandsError:  commands.ErrPaymentFailed,
				expectedStatus: http.StatusPaymentRequired,
				expectedMsg:    "declined",
			},
			{
				name:           "charge declined with gateway reason",
				commandsError:  errs.Mark(errs.New("insufficient_funds"), commands.ErrPaymentFailed),
				expectedStatus: http.StatusPaymentRequired,
				expectedMsg:    "insufficient_funds",
			},
			{
				name:           "payment already settled",
				commandsError:  commands.ErrInvalidState,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "current state",
			},
			{
				name:           "gateway unavailable",
				commandsError:  commands.ErrPaymentGateway,
				expectedStatus: http.StatusBadGateway,
				expectedMsg:    "gateway",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().ProcessPayment(gomock.Any(), s.actorID, bookingID).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestRefundPayment
// ================================================================================

func (s *PaymentHandlerTestSuite) TestRefundPayment() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/payment/refund"

	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().RefundPayment(gomock.Any(), s.actorID, bookingID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "booking not found",
				commandsError:  commands.ErrBookingNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Booking not found",
			},
			{
				name:           "not the owner",
				commandsError:  commands.ErrNotOwner,
				expectedStatus: http.StatusForbidden,
				expectedMsg:    "another user",
			},
			{
				name:           "refund not allowed",
				commandsError:  commands.ErrRefundNotAllowed,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "Refund not allowed",
			},
			{
				name:           "gateway unavailable",
				commandsError:  commands.ErrPaymentGateway,
				expectedStatus: http.StatusBadGateway,
				expectedMsg:    "gateway",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().RefundPayment(gomock.Any(), s.actorID, bookingID).
					Return(tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestGetPayment / TestGetReceipt
// ================================================================================

func (s *PaymentHandlerTestSuite) TestGetPayment() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/payment"

	returnView := builder.NewPaymentBuilder().WithBookingID(bookingID).BuildView(payment.StatusSuccess)

	s.Run("success: returns 200 OK with PaymentView", func() {
		s.mockQueries.EXPECT().GetByBookingID(gomock.Any(), s.actorID, bookingID).
			Return(returnView, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response queries.PaymentView
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(returnView.ID, response.ID)
		s.Equal(returnView.AmountCents, response.AmountCents)
	})

	s.Run("error: 404 Not Found for missing payment", func() {
		s.mockQueries.EXPECT().GetByBookingID(gomock.Any(), s.actorID, bookingID).
			Return(nil, infra.WrapRepoErr("payment not found", nil, infra.KindNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Payment not found")
	})

	s.Run("error: 403 Forbidden for another user's payment", func() {
		s.mockQueries.EXPECT().GetByBookingID(gomock.Any(), s.actorID, bookingID).
			Return(nil, queries.ErrNotOwner).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "another user")
	})
}

func (s *PaymentHandlerTestSuite) TestGetReceipt() {
	bookingID := uuid.New()
	url := "/bookings/" + bookingID.String() + "/receipt"

	receipt := &queries.Receipt{
		Number:        "RCPT-20260310-0001",
		BookingID:     bookingID,
		ChargerName:   "Dock A-1",
		UserEmail:     "driver@example.com",
		AmountCents:   444,
		Currency:      payment.DefaultCurrency,
		TransactionID: "txn_deadbeef",
	}

	s.Run("success: returns 200 OK with the receipt", func() {
		s.mockQueries.EXPECT().GetReceipt(gomock.Any(), s.actorID, bookingID).
			Return(receipt, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response queries.Receipt
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(receipt.Number, response.Number)
		s.Equal(receipt.AmountCents, response.AmountCents)
	})

	s.Run("error: 404 Not Found for unpaid booking", func() {
		s.mockQueries.EXPECT().GetReceipt(gomock.Any(), s.actorID, bookingID).
			Return(nil, infra.WrapRepoErr("receipt not found", nil, infra.KindNotFound)).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Receipt not found")
	})

	s.Run("error: 403 Forbidden for another user's receipt", func() {
		s.mockQueries.EXPECT().GetReceipt(gomock.Any(), s.actorID, bookingID).
			Return(nil, queries.ErrNotOwner).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusForbidden, "another user")
	})
}
