package tours

import (
	"errors"
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
	toursGroup := v1.Group("/tours")
	{
		toursGroup.GET("", h.List)
		toursGroup.GET("/:id", h.Get)
	}
}

func (h *Handler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	result, err := h.service.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "TOURS_LOOKUP_FAILED", "Failed to load tours")
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid tour ID")
		return
	}

	tour, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrTourNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Tour not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "TOURS_LOOKUP_FAILED", "Failed to load tour")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tour": tour})
}
