package payments

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fundflow-africa/donations-backend/pkg/currency"
	"fundflow-africa/donations-backend/pkg/errs"
)

type Handler struct {
	service    *Service
	ingress    *Ingress
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewHandler(service *Service, ingress *Ingress, reconciler *Reconciler, logger *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		ingress:    ingress,
		reconciler: reconciler,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	pay := r.Group("/payments")
	{
		pay.POST("/checkout", h.createCheckout)
		pay.GET("/transactions/:id", h.getTransaction)
		pay.POST("/transactions/:id/retry", h.retryTransaction)
		pay.POST("/offline/sync", h.syncOffline)
	}
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.stripeWebhook)
		webhooks.POST("/mobile-money", h.mobileMoneyWebhook)
	}
	r.GET("/currency/convert", h.convertCurrency)
	r.GET("/currency/supported", h.supportedCurrencies)
}

func (h *Handler) createCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.CreateCheckout(c.Request.Context(), req)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	tx, err := h.service.GetTransaction(c.Request.Context(), id)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) retryTransaction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction id"})
		return
	}

	tx, err := h.service.RetryTransaction(c.Request.Context(), id)
	if err != nil {
		h.logger.Warn("Transaction retry rejected", zap.Error(err))
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, tx)
}

func (h *Handler) syncOffline(c *gin.Context) {
	var req struct {
		Transactions []OfflineTransaction `json:"transactions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transactions data"})
		return
	}

	result, err := h.reconciler.Replay(c.Request.Context(), req.Transactions)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":               true,
		"processed":             result.Processed,
		"failed":                result.Failed,
		"processedTransactions": result.ProcessedItems,
		"failedTransactions":    result.FailedItems,
	})
}

// stripeWebhook reads the raw body before any binding so the signature
// is verified over the exact bytes the provider sent.
func (h *Handler) stripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if err := h.ingress.HandleCard(c.Request.Context(), body, c.GetHeader("Stripe-Signature")); err != nil {
		h.logger.Warn("Card webhook rejected", zap.Error(err))
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handler) mobileMoneyWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	event, err := h.ingress.HandleMobileMoney(c.Request.Context(), body, c.GetHeader("X-Webhook-Signature"))
	if err != nil {
		h.logger.Warn("Mobile money webhook rejected", zap.Error(err))
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "type": event.Type})
}

func (h *Handler) convertCurrency(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.Query("amount"), 64)
	if err != nil || amount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be a positive number"})
		return
	}

	conversion, err := currency.Convert(c.Query("from"), c.Query("to"), amount)
	if err != nil {
		c.JSON(errs.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, conversion)
}

func (h *Handler) supportedCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"currencies": currency.SupportedCurrencies()})
}
