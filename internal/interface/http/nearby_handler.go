package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/cyclecare/internal/domain/locator"
	apperrors "github.com/yanqian/cyclecare/pkg/errors"
)

// Nearby proxies the places search. Errors use the flat {"error": "..."} body the map page expects.
func (h *Handler) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	lng, lngErr := strconv.ParseFloat(strings.TrimSpace(c.Query("lng")), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Latitude and longitude are required"})
		return
	}

	q := locator.Query{
		Location: locator.LatLng{Lat: lat, Lng: lng},
		Type:     locator.FacilityType(strings.ToLower(c.DefaultQuery("type", string(locator.FacilityHospital)))),
		Radius:   locator.DefaultRadius,
	}
	if raw := c.Query("radius"); raw != "" {
		if radius, err := strconv.Atoi(raw); err == nil {
			q.Radius = radius
		}
	}

	places, err := h.searcher.Nearby(c.Request.Context(), q)
	if err != nil {
		if apperrors.IsCode(err, apperrors.CodeInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": apperrorMessage(err)})
			return
		}
		h.logger.Error("nearby search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch nearby places"})
		return
	}
	if places == nil {
		places = []locator.Place{}
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}

// NearbyHealth checks that the places provider accepts our key.
func (h *Handler) NearbyHealth(c *gin.Context) {
	now := time.Now().UTC().Format(time.RFC3339)
	if err := h.searcher.Health(c.Request.Context()); err != nil {
		h.logger.Warn("places health check failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"status":    "error",
			"message":   "Places API check failed",
			"error":     errMessage(err),
			"timestamp": now,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"message":   "Places API is working correctly",
		"timestamp": now,
	})
}

func apperrorMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}
