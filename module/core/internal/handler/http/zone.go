package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type geofenceService interface {
	Zones() []domain.Zone
	Check(c domain.Coordinate) (domain.ZoneCheck, error)
}

type ZoneHandler struct {
	geofenceSvc geofenceService
}

func NewZoneHandler(geofenceSvc geofenceService) *ZoneHandler {
	return &ZoneHandler{geofenceSvc: geofenceSvc}
}

func (h *ZoneHandler) Register(r *gin.RouterGroup) {
	r.GET("/zones", h.ListZones)
	r.POST("/zones/check", h.CheckPosition)
}

func (h *ZoneHandler) ListZones(c *gin.Context) {
	zones := h.geofenceSvc.Zones()
	if zones == nil {
		zones = []domain.Zone{}
	}
	c.JSON(http.StatusOK, zones)
}

func (h *ZoneHandler) CheckPosition(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	res, err := h.geofenceSvc.Check(req.coordinate())
	if err != nil {
		abortWithError(c, err, http.StatusInternalServerError, "failed to check position")
		return
	}

	c.JSON(http.StatusOK, res)
}
