package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/pkg/logger"
	"github.com/scriberly/billing-service/pkg/res"
)

// PaymentHandler обработчик журнала платежей.
type PaymentHandler struct {
	payments repository.PaymentRepository
	log      *logger.Logger
}

// NewPaymentHandler создает новый обработчик платежей.
func NewPaymentHandler(payments repository.PaymentRepository, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		log:      log,
	}
}

// GetPayments возвращает платежи пользователя, новые первыми
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Invalid or missing user_id"})
		return
	}

	payments, err := h.payments.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		h.log.Error("Failed to get payments for user %d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, res.ErrorResponse{Error: "Failed to get payments"})
		return
	}

	c.JSON(http.StatusOK, payments)
}
