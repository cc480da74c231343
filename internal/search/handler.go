package search

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the project search endpoint.
type Handler struct {
	indexer *Indexer
	logger  *zap.Logger
}

// NewHandler creates a new search handler.
func NewHandler(indexer *Indexer, logger *zap.Logger) *Handler {
	return &Handler{
		indexer: indexer,
		logger:  logger,
	}
}

// RegisterRoutes registers search routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search/projects", h.searchProjects)
}

func (h *Handler) searchProjects(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	ids, err := h.indexer.SearchProjects(c.Request.Context(), query, limit)
	if err != nil {
		h.logger.Warn("Project search failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "search unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"projectIds": ids})
}
