// README: Address autocomplete, geocoding and fare quoting.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lani/internal/maps"
	"lani/internal/modules/pricing"
	"lani/internal/types"
)

type GeoHandler struct {
	geocoder *maps.Geocoder
	pricing  *pricing.Service
}

// NewGeoHandler accepts a nil geocoder when no Maps API key is configured;
// the address endpoints then answer 503 while quoting keeps working.
func NewGeoHandler(geocoder *maps.Geocoder, pricing *pricing.Service) *GeoHandler {
	return &GeoHandler{geocoder: geocoder, pricing: pricing}
}

func (h *GeoHandler) Autocomplete(c *gin.Context) {
	if h.geocoder == nil {
		writeError(c, http.StatusServiceUnavailable, "geocoding is not configured")
		return
	}
	input := c.Query("input")
	if input == "" {
		writeError(c, http.StatusBadRequest, "missing input")
		return
	}
	predictions, err := h.geocoder.Autocomplete(c.Request.Context(), input)
	if err != nil {
		writeError(c, http.StatusBadGateway, "autocomplete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

func (h *GeoHandler) Resolve(c *gin.Context) {
	if h.geocoder == nil {
		writeError(c, http.StatusServiceUnavailable, "geocoding is not configured")
		return
	}
	address := c.Query("address")
	if address == "" {
		writeError(c, http.StatusBadRequest, "missing address")
		return
	}
	p, err := h.geocoder.Resolve(c.Request.Context(), address)
	if err != nil {
		writeError(c, http.StatusBadGateway, "geocode failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"lat": p.Lat, "lng": p.Lng})
}

type quoteReq struct {
	City        string  `json:"city"`
	PickupLat   float64 `json:"pickupLat"`
	PickupLng   float64 `json:"pickupLng"`
	DeliveryLat float64 `json:"deliveryLat"`
	DeliveryLng float64 `json:"deliveryLng"`
	Scheduled   bool    `json:"scheduled"`
}

// Quote prices a prospective dispatch; the app calls this continuously while
// addresses are being typed, so unresolved coordinates are fine and quote to
// the discount-only baseline.
func (h *GeoHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.City == "" {
		writeError(c, http.StatusBadRequest, "missing city")
		return
	}
	fare, err := h.pricing.Quote(c.Request.Context(), req.City,
		types.Point{Lat: req.PickupLat, Lng: req.PickupLng},
		types.Point{Lat: req.DeliveryLat, Lng: req.DeliveryLng},
		req.Scheduled)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "quote failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"fare": fare, "currency": "NGN"})
}
