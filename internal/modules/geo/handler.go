package geo

import (
	"net/http"
	"strconv"

	"tripsify/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	geoGroup := v1.Group("/geo")
	{
		geoGroup.GET("/countries", h.ListCountries)
		geoGroup.GET("/countries/:id/cities", h.ListCities)
	}
}

func (h *Handler) ListCountries(c *gin.Context) {
	countries, err := h.service.Countries(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "GEO_LOOKUP_FAILED", "Failed to load countries")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"countries": countries})
}

func (h *Handler) ListCities(c *gin.Context) {
	countryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid country ID")
		return
	}

	cities, err := h.service.Cities(c.Request.Context(), countryID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "GEO_LOOKUP_FAILED", "Failed to load cities")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cities": cities})
}
