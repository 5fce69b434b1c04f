package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scriberly/billing-service/internal/repository"
	"github.com/scriberly/billing-service/pkg/logger"
	"github.com/scriberly/billing-service/pkg/res"
)

// TemplateHandler обработчик каталога шаблонов контента.
type TemplateHandler struct {
	templates repository.TemplateRepository
	log       *logger.Logger
}

// NewTemplateHandler создает новый обработчик шаблонов.
func NewTemplateHandler(templates repository.TemplateRepository, log *logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		templates: templates,
		log:       log,
	}
}

// GetTemplates возвращает список активных шаблонов
func (h *TemplateHandler) GetTemplates(c *gin.Context) {
	templates, err := h.templates.List(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list templates: %v", err)
		c.JSON(http.StatusInternalServerError, res.ErrorResponse{Error: "Failed to list templates"})
		return
	}

	c.JSON(http.StatusOK, templates)
}
