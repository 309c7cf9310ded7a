package ginserver

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"

	"github.com/Shreenikagenaiapps/nestmate-app/internal/app/dto"
	catalogsvc "github.com/Shreenikagenaiapps/nestmate-app/internal/app/services/catalog"
	domainlistings "github.com/Shreenikagenaiapps/nestmate-app/internal/domain/listings"
)

type ListingHTTP interface {
	Create(c *gin.Context)
	Browse(c *gin.Context)
	Get(c *gin.Context)
	Mine(c *gin.Context)
	UploadPhoto(c *gin.Context)
}

type ListingHandler struct {
	Service *catalogsvc.Service
	Logger  *slog.Logger
}

type createListingRequest struct {
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	PriceCents    int64      `json:"price_cents"`
	ImageURL      string     `json:"image_url"`
	Location      string     `json:"location"`
	Category      string     `json:"category"`
	AvailableFrom *time.Time `json:"available_from"`

	Bedrooms  int    `json:"bedrooms"`
	Bathrooms int    `json:"bathrooms"`
	SizeSqFt  int    `json:"size_sqft"`
	Brand     string `json:"brand"`
	Model     string `json:"model"`
	Condition string `json:"condition"`
	Warranty  string `json:"warranty"`
	FuelType  string `json:"fuel_type"`
	Seats     int    `json:"seats"`
}

func (r createListingRequest) details() (domainlistings.Details, error) {
	category, err := domainlistings.ParseCategory(r.Category)
	if err != nil {
		return nil, err
	}
	switch category {
	case domainlistings.CategoryHouse:
		return domainlistings.HouseDetails{Bedrooms: r.Bedrooms, Bathrooms: r.Bathrooms, SizeSqFt: r.SizeSqFt}, nil
	case domainlistings.CategoryElectronics:
		return domainlistings.ElectronicsDetails{Brand: r.Brand, Model: r.Model, Condition: r.Condition, Warranty: r.Warranty}, nil
	case domainlistings.CategoryCar:
		return domainlistings.CarDetails{Brand: r.Brand, Model: r.Model, FuelType: r.FuelType, Seats: r.Seats}, nil
	case domainlistings.CategoryToy:
		return domainlistings.ToyDetails{}, nil
	case domainlistings.CategoryEquipment:
		return domainlistings.EquipmentDetails{}, nil
	default:
		return domainlistings.OtherDetails{}, nil
	}
}

func (h ListingHandler) Create(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	details, err := req.details()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var availableFrom time.Time
	if req.AvailableFrom != nil {
		availableFrom = *req.AvailableFrom
	}
	listing, err := h.Service.CreateListing(c.Request.Context(), catalogsvc.CreateListingParams{
		OwnerID:       p.ID,
		ApartmentID:   p.ApartmentID,
		Title:         req.Title,
		Description:   req.Description,
		PriceCents:    req.PriceCents,
		ImageURL:      req.ImageURL,
		Location:      req.Location,
		Details:       details,
		AvailableFrom: availableFrom,
	})
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.MapListing(listing))
}

func (h ListingHandler) Browse(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	filter := domainlistings.Filter{Query: c.Query("q")}
	if raw := c.Query("category"); raw != "" {
		category, err := domainlistings.ParseCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Category = category
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = domainlistings.Status(raw)
	}
	items, err := h.Service.Browse(c.Request.Context(), p.ID, filter)
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListings(items))
}

func (h ListingHandler) Get(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	listing, err := h.Service.Listing(c.Request.Context(), p.ID, c.Param("id"))
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(listing))
}

func (h ListingHandler) Mine(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	items, err := h.Service.MyListings(c.Request.Context(), p.ID)
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListings(items))
}

func (h ListingHandler) UploadPhoto(c *gin.Context) {
	p, ok := requireAuth(c)
	if !ok {
		return
	}
	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	reader, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is unreadable"})
		return
	}
	defer reader.Close()
	listing, err := h.Service.AttachPhoto(c.Request.Context(), p.ID, c.Param("id"), file.Filename, reader, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		h.respondListingError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MapListing(listing))
}

func (h ListingHandler) respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalogsvc.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "auth required"})
	case errors.Is(err, catalogsvc.ErrForbidden), errors.Is(err, catalogsvc.ErrOutsideCommune):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, domainlistings.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
	case errors.Is(err, domainlistings.ErrTitleRequired),
		errors.Is(err, domainlistings.ErrPriceNegative),
		errors.Is(err, domainlistings.ErrUnknownCategory),
		errors.Is(err, domainlistings.ErrBrandRequired),
		errors.Is(err, domainlistings.ErrBedroomsCount),
		errors.Is(err, domainlistings.ErrBathroomsCount),
		errors.Is(err, domainlistings.ErrSizeNegative),
		errors.Is(err, domainlistings.ErrSeatsCount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if h.Logger != nil {
			h.Logger.Error("listing operation failed", "error", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var _ ListingHTTP = (*ListingHandler)(nil)
