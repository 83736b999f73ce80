package appversion

import (
	"net/http"

	"tripsify/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// VersionInfo is what the app's update checker polls on launch.
type VersionInfo struct {
	MinSupportedBuild int    `json:"min_supported_build"`
	LatestBuild       int    `json:"latest_build"`
	UpdateURL         string `json:"update_url,omitempty"`
}

// RequiresUpdate reports whether a client at build must be blocked
// behind the forced-update modal.
func (v VersionInfo) RequiresUpdate(build int) bool {
	return build < v.MinSupportedBuild
}

type Handler struct {
	info VersionInfo
}

func NewHandler(info VersionInfo) *Handler {
	return &Handler{info: info}
}

func (h *Handler) RegisterRoutes(v1 *gin.RouterGroup) {
	v1.GET("/version", h.GetVersion)
}

func (h *Handler) GetVersion(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"version": h.info})
}
