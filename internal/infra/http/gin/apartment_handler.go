package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/app/dto"
	domainapartment "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/apartment"
)

type ApartmentHTTP interface {
	List(c *gin.Context)
}

// ApartmentHandler serves the community directory used by the signup form.
type ApartmentHandler struct {
	Apartments domainapartment.Repository
	Logger     *slog.Logger
}

func (h ApartmentHandler) List(c *gin.Context) {
	if h.Apartments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "apartment directory unavailable"})
		return
	}
	items, err := h.Apartments.List(c.Request.Context())
	if err != nil {
		if h.Logger != nil {
			h.Logger.Error("apartment list failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": dto.MapApartments(items)})
}

var _ ApartmentHTTP = (*ApartmentHandler)(nil)
