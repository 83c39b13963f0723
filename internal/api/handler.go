package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"rentalmate/internal/models"
	"rentalmate/internal/service"
	"rentalmate/internal/store"
	"rentalmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Handler contains HTTP handlers
type Handler struct {
	bookings  *service.BookingService
	jwtSecret string
	checkers  []HealthChecker
}

// NewHandler creates a new HTTP handler. The checkers back the readiness
// endpoint; the service is not ready until all of them respond.
func NewHandler(bookings *service.BookingService, jwtSecret string, checkers ...HealthChecker) *Handler {
	return &Handler{
		bookings:  bookings,
		jwtSecret: jwtSecret,
		checkers:  checkers,
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

	bookings := router.Group("/api/bookings")
	bookings.Use(AuthMiddleware(h.jwtSecret))
	{
		bookings.POST("/create-order", h.createOrder)
		bookings.POST("/verify-payment", h.verifyPayment)
		bookings.GET("", h.listBookings)
		bookings.GET("/:id", h.getBooking)
		bookings.PUT("/:id/cancel", h.cancelBooking)
		bookings.PUT("/:id/status", RequireRoles(models.RoleOwner, models.RoleAdmin), h.updateStatus)
		bookings.GET("/stats/overview", RequireRoles(models.RoleOwner, models.RoleAdmin), h.stats)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports ready only when every backing dependency responds
func (h *Handler) readinessCheck(c *gin.Context) {
	for _, checker := range h.checkers {
		if err := checker.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"error":  err.Error(),
			})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createOrder prices a stay and issues a payment order handle
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
			"errors":  []string{err.Error()},
		})
		return
	}

	resp, err := h.bookings.CreateOrder(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": resp})
}

// verifyPayment verifies the payment proof and creates the booking
func (h *Handler) verifyPayment(c *gin.Context) {
	var req service.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
			"errors":  []string{err.Error()},
		})
		return
	}

	booking, err := h.bookings.VerifyPayment(c.Request.Context(), principalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Booking created successfully",
		"data":    booking,
	})
}

// listBookings returns the caller's role-scoped booking page
func (h *Handler) listBookings(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	status := c.Query("status")

	result, err := h.bookings.ListBookings(c.Request.Context(), principalFrom(c), status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       result.Count,
		"total":       result.Total,
		"totalPages":  result.TotalPages,
		"currentPage": result.CurrentPage,
		"data":        result.Bookings,
	})
}

// getBooking returns one booking for its tenant, owner, or an admin
func (h *Handler) getBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking ID"})
		return
	}

	booking, err := h.bookings.GetBooking(c.Request.Context(), principalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

// cancelBooking cancels a booking and reports the computed refund
func (h *Handler) cancelBooking(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking ID"})
		return
	}

	var req cancelRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.bookings.CancelBooking(c.Request.Context(), principalFrom(c), id, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Booking cancelled successfully",
		"data":    result,
	})
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateStatus moves a booking forward along its lifecycle
func (h *Handler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid booking ID"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Invalid request body",
			"errors":  []string{err.Error()},
		})
		return
	}

	booking, err := h.bookings.UpdateStatus(c.Request.Context(), principalFrom(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Booking status updated successfully",
		"data":    booking,
	})
}

// stats returns the owner/admin dashboard aggregates
func (h *Handler) stats(c *gin.Context) {
	overview, err := h.bookings.Stats(c.Request.Context(), principalFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": overview})
}

// respondError maps service and store errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  vErr.Fields,
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Resource not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Not authorized for this booking"})
	case errors.Is(err, service.ErrSignatureMismatch),
		errors.Is(err, service.ErrCannotCancel),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrRoomSoldOut),
		errors.Is(err, service.ErrRoomTypeNotFound),
		errors.Is(err, service.ErrVerifyInFlight):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
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
