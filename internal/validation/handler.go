package validation

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/errs"
)

// Handler handles HTTP requests for milestone verification
type Handler struct {
	intake *Intake
	logger *zap.Logger
}

// NewHandler creates a new validation handler
func NewHandler(intake *Intake, logger *zap.Logger) *Handler {
	return &Handler{
		intake: intake,
		logger: logger,
	}
}

// RegisterRoutes registers verification routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	validations := router.Group("/validations")
	{
		validations.POST("", h.submitValidation)
		validations.GET("/:id", h.getValidation)
	}
}

func (h *Handler) submitValidation(c *gin.Context) {
	var req SubmitValidationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.intake.Submit(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("Validation submission rejected", zap.Error(err))
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"validationId": result.ValidationID,
		"status":       result.Status,
		"message":      result.Message,
	})
}

func (h *Handler) getValidation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid validation id"})
		return
	}

	v, err := h.intake.GetValidation(c.Request.Context(), id)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, v)
}
