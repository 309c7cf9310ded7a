package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/app/dto"
	catalogsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/catalog"
	domainbooking "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/booking"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Mine(c *gin.Context)
}

type BookingHandler struct {
	Service *catalogsvc.Service
	Logger  *slog.Logger
}

type createBookingRequest struct {
	ListingID string `json:"listing_id"`
}

func (h BookingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ListingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "listing_id is required"})
		return
	}
	booking, err := h.Service.Book(c.Request.Context(), p.ID, req.ListingID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapBooking(booking))
}

func (h BookingHandler) Mine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.MyBookings(c.Request.Context(), p.ID)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapBookingViews(items))
}

func (h BookingHandler) respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogsvc.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
	case errors.Is(err, catalogsvc.ErrOutsideCommune):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainlistings.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case errors.Is(err, domainlistings.ErrAlreadyBooked):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domainbooking.ErrOwnBooking):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("booking operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ BookingHTTP = (*BookingHandler)(nil)
