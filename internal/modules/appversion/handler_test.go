package appversion

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequiresUpdate(t *testing.T) {
	info := VersionInfo{MinSupportedBuild: 5, LatestBuild: 9}

	assert.True(t, info.RequiresUpdate(4))
	assert.False(t, info.RequiresUpdate(5))
	assert.False(t, info.RequiresUpdate(9))
}

func TestGetVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	v1 := r.Group("/api/v1")
	NewHandler(VersionInfo{MinSupportedBuild: 5, LatestBuild: 9, UpdateURL: "https://example.com/u"}).RegisterRoutes(v1)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/version", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Version VersionInfo `json:"version"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 5, resp.Data.Version.MinSupportedBuild)
	assert.Equal(t, "https://example.com/u", resp.Data.Version.UpdateURL)
}
