package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

// abortWithError answers known domain errors with their own status and
// anything else with status and the generic message.
func abortWithError(c *gin.Context, err error, status int, msg string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, domain.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "user already exists"})
	case errors.Is(err, domain.ErrInvalidCoordinate):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coordinate"})
	case errors.Is(err, domain.ErrInvalidHistory):
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidHistory.Error()})
	case errors.Is(err, domain.ErrNoPlaceFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no place found nearby"})
	case errors.Is(err, domain.ErrMapsUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "maps service unavailable"})
	default:
		c.JSON(status, gin.H{"error": msg})
	}
}

type coordinateRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

func (r *coordinateRequest) coordinate() domain.Coordinate {
	return domain.Coordinate{Lat: *r.Latitude, Lon: *r.Longitude}
}
