package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"shop-helper/internal/catalog"
	"shop-helper/internal/ledger"
	"shop-helper/internal/models"
	"shop-helper/internal/reconcile"
	"shop-helper/internal/service"
	"shop-helper/internal/snapshot"
	"shop-helper/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	shop          *service.ShopService
	observations  *service.ObservationService
	snapshots     *service.SnapshotService
	defaultPolicy reconcile.Policy
	staleWindow   time.Duration
}

// NewHandler creates a new HTTP handler
func NewHandler(
	shop *service.ShopService,
	observations *service.ObservationService,
	snapshots *service.SnapshotService,
	defaultPolicy reconcile.Policy,
	staleWindow time.Duration,
) *Handler {
	return &Handler{
		shop:          shop,
		observations:  observations,
		snapshots:     snapshots,
		defaultPolicy: defaultPolicy,
		staleWindow:   staleWindow,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/observations", h.resolveObservation)
		v1.GET("/observations/recent", h.recentObservations)

		v1.POST("/items", h.createItem)
		v1.GET("/items", h.listItems)
		v1.GET("/items/:id", h.getItem)
		v1.PUT("/items/:id/name", h.renameItem)
		v1.POST("/items/:id/stock", h.adjustStock)
		v1.PUT("/items/:id/price", h.setPrice)
		v1.GET("/items/:id/price", h.getPrice)
		v1.POST("/items/:id/sales", h.recordSale)

		v1.GET("/sales", h.listSales)
		v1.DELETE("/sales", h.purgeSales)

		v1.GET("/inventory/stale", h.staleItems)
		v1.GET("/inventory/value", h.inventoryValue)
		v1.GET("/ledger/stats", h.ledgerStats)

		v1.GET("/snapshot", h.exportSnapshot)
		v1.POST("/snapshot", h.importSnapshot)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

type observationRequest struct {
	RawText      string     `json:"raw_text"`
	CapturedAt   *time.Time `json:"captured_at,omitempty"`
	Threshold    *int       `json:"threshold,omitempty"`
	AcceptMargin *int       `json:"accept_margin,omitempty"`
}

// resolveObservation runs one capture through the reconciliation engine
func (h *Handler) resolveObservation(c *gin.Context) {
	var req observationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	obs := models.Observation{RawText: req.RawText, CapturedAt: time.Now().UTC()}
	if req.CapturedAt != nil {
		obs.CapturedAt = *req.CapturedAt
	}

	var res reconcile.Resolution
	if req.Threshold != nil || req.AcceptMargin != nil {
		policy := h.defaultPolicy
		if req.Threshold != nil {
			policy.Threshold = *req.Threshold
		}
		if req.AcceptMargin != nil {
			policy.AcceptMargin = *req.AcceptMargin
		}
		res = h.observations.ResolveWith(c.Request.Context(), obs, policy)
	} else {
		res = h.observations.Resolve(c.Request.Context(), obs)
	}

	c.JSON(http.StatusOK, res)
}

// recentObservations returns the recent resolution log, newest first
func (h *Handler) recentObservations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	c.JSON(http.StatusOK, gin.H{"resolutions": h.observations.Recent(limit)})
}

type createItemRequest struct {
	DisplayName    string `json:"display_name" binding:"required"`
	ReferencePrice *int64 `json:"reference_price,omitempty"`
}

// createItem confirms a new catalog identity
func (h *Handler) createItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.shop.CreateItem(c.Request.Context(), req.DisplayName, req.ReferencePrice)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// listItems returns all items with inventory state
func (h *Handler) listItems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.shop.ListItems()})
}

// getItem returns one item with its inventory record
func (h *Handler) getItem(c *gin.Context) {
	view, err := h.shop.GetItem(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type renameItemRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// renameItem corrects an item's display name
func (h *Handler) renameItem(c *gin.Context) {
	var req renameItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.shop.RenameItem(c.Request.Context(), c.Param("id"), req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

type adjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// adjustStock applies a stock delta
func (h *Handler) adjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	newStock, err := h.shop.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item_id": c.Param("id"), "stock": newStock})
}

type setPriceRequest struct {
	Price *int64 `json:"price" binding:"required"`
}

// setPrice overwrites the asking price
func (h *Handler) setPrice(c *gin.Context) {
	var req setPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := h.shop.SetPrice(c.Request.Context(), c.Param("id"), *req.Price); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"item_id": c.Param("id"), "price": *req.Price})
}

// getPrice returns the current asking price for the price-copy flow
func (h *Handler) getPrice(c *gin.Context) {
	price, err := h.shop.ItemPrice(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_id": c.Param("id"), "price": price})
}

type recordSaleRequest struct {
	Quantity  int        `json:"quantity" binding:"required,min=1"`
	UnitPrice *int64     `json:"unit_price" binding:"required"`
	SoldAt    *time.Time `json:"sold_at,omitempty"`
}

// recordSale commits a sale against stock
func (h *Handler) recordSale(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	soldAt := time.Time{}
	if req.SoldAt != nil {
		soldAt = *req.SoldAt
	}

	entry, err := h.shop.RecordSale(c.Request.Context(), c.Param("id"), req.Quantity, *req.UnitPrice, soldAt)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// listSales lists recorded sales, newest first
func (h *Handler) listSales(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	itemID := c.Query("item_id")
	c.JSON(http.StatusOK, gin.H{"sales": h.shop.Sales(itemID, limit)})
}

// purgeSales removes sale entries older than the given cutoff
func (h *Handler) purgeSales(c *gin.Context) {
	before, err := time.Parse(time.RFC3339, c.Query("before"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid or missing 'before' parameter, expected RFC3339",
		})
		return
	}

	removed := h.shop.PurgeSales(c.Request.Context(), before)
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// staleItems flags stocked items that have not sold within the window
func (h *Handler) staleItems(c *gin.Context) {
	window := h.staleWindow
	if daysStr := c.Query("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil || days < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'days' parameter"})
			return
		}
		window = time.Duration(days) * 24 * time.Hour
	}

	c.JSON(http.StatusOK, gin.H{"items": h.shop.StaleItems(window)})
}

// inventoryValue totals the current stock value
func (h *Handler) inventoryValue(c *gin.Context) {
	c.JSON(http.StatusOK, h.shop.InventoryValue())
}

// ledgerStats summarizes the sale ledger
func (h *Handler) ledgerStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.shop.LedgerStats())
}

// exportSnapshot returns the full observable state
func (h *Handler) exportSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.snapshots.Export())
}

// importSnapshot validates and loads a previously exported snapshot
func (h *Handler) importSnapshot(c *gin.Context) {
	var snap snapshot.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid snapshot body",
			"details": err.Error(),
		})
		return
	}

	if err := h.snapshots.Import(c.Request.Context(), snap); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":   len(snap.Items),
		"records": len(snap.Records),
		"sales":   len(snap.Sales),
	})
}

// respondError maps domain errors to HTTP status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, catalog.ErrDuplicateItem):
		status = http.StatusConflict
	case errors.Is(err, catalog.ErrEmptyName):
		status = http.StatusBadRequest
	case errors.Is(err, ledger.ErrNegativeStock),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrInvalidPrice),
		errors.Is(err, ledger.ErrInvalidQuantity):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, snapshot.ErrImportIntegrity):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
