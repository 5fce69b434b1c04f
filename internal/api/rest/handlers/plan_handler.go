package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scriberly/billing-service/internal/domain"
	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/pkg/logger"
	"github.com/scriberly/billing-service/pkg/req"
	"github.com/scriberly/billing-service/pkg/res"
)

// PlanHandler обработчик каталога тарифных планов.
type PlanHandler struct {
	plans repository.PlanRepository
	log   *logger.Logger
}

// NewPlanHandler создает новый обработчик планов.
func NewPlanHandler(plans repository.PlanRepository, log *logger.Logger) *PlanHandler {
	return &PlanHandler{
		plans: plans,
		log:   log,
	}
}

// GetPlans возвращает список всех планов
func (h *PlanHandler) GetPlans(c *gin.Context) {
	plans, err := h.plans.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list plans: %v", err)
		c.JSON(http.StatusInternalServerError, res.ErrorResponse{Error: "Failed to list plans"})
		return
	}

	c.JSON(http.StatusOK, plans)
}

// GetPlan возвращает план по ID
func (h *PlanHandler) GetPlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Invalid plan ID format"})
		return
	}

	plan, err := h.plans.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, res.ErrorResponse{Error: "Plan not found"})
			return
		}
		h.log.Error("Failed to get plan %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, res.ErrorResponse{Error: "Failed to get plan"})
		return
	}

	c.JSON(http.StatusOK, plan)
}

// CreatePlan создает новый план каталога. Созданная запись неизменяемая:
// правки каталога выполняются добавлением нового плана.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	request, err := req.Decode[domain.PlanRequest](c.Request.Body)
	if err != nil {
		h.log.Warn("Failed to decode plan request: %v", err)
		c.JSON(http.StatusBadRequest, res.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := req.IsValid(request); err != nil {
		h.log.Warn("Plan request validation failed: %v", err)
		c.JSON(http.StatusUnprocessableEntity, res.ErrorResponse{
			Error:   "Invalid plan data",
			Details: req.ValidationDetails(err),
		})
		return
	}

	plan := &domain.SubscriptionPlan{
		PlanName:         request.PlanName,
		Price:            request.Price,
		Currency:         request.Currency,
		PaymentFrequency: domain.PaymentFrequency(request.PaymentFrequency),
		Characters:       request.Characters,
		Minutes:          request.Minutes,
		TeamMembers:      request.TeamMembers,
		CreditGrant:      request.CreditGrant.Clone(),
	}

	if err := h.plans.Create(c.Request.Context(), plan); err != nil {
		h.log.Error("Failed to create plan: %v", err)
		c.JSON(http.StatusInternalServerError, res.ErrorResponse{Error: "Failed to create plan"})
		return
	}

	h.log.Info("Created plan %d (%s)", plan.ID, plan.PlanName)
	c.JSON(http.StatusCreated, plan)
}
