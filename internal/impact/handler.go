package impact

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/errs"
)

type Handler struct {
	aggregator *Aggregator
	exporter   *ExcelExporter
	logger     *zap.Logger
}

func NewHandler(aggregator *Aggregator, exporter *ExcelExporter, logger *zap.Logger) *Handler {
	return &Handler{
		aggregator: aggregator,
		exporter:   exporter,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	impact := r.Group("/impact")
	{
		impact.GET("/metrics", h.getMetrics)
		impact.GET("/metrics/export", h.exportMetrics)
	}
}

func (h *Handler) getMetrics(c *gin.Context) {
	metrics, err := h.aggregator.Get(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load impact metrics", zap.Error(err))
		c.JSON(errs.HTTPStatus(err), gin.H{"error": "failed to load impact metrics"})
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *Handler) exportMetrics(c *gin.Context) {
	metrics, err := h.aggregator.Get(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to load impact metrics for export", zap.Error(err))
		c.JSON(errs.HTTPStatus(err), gin.H{"error": "failed to load impact metrics"})
		return
	}

	var buf bytes.Buffer
	if err := h.exporter.Export(metrics, &buf); err != nil {
		h.logger.Error("Failed to generate impact report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate report"})
		return
	}

	filename := fmt.Sprintf("impact_report_%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
