package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/service"
	"github.com/nandanugg/tourist-safety/module/core/tracking"
)

type userService interface {
	Register(ctx context.Context, user domain.User, position *domain.Coordinate) (*domain.User, error)
	Remove(ctx context.Context, userID string) error
	UpdatePosition(ctx context.Context, userID string, position domain.Coordinate) error
	Get(ctx context.Context, userID string) (*domain.TrackedUser, error)
	List(ctx context.Context) ([]domain.User, error)
}

type trackingService interface {
	Start(ctx context.Context, userID string, src tracking.PositionSource, hooks service.SessionHooks) (*service.Session, error)
	Stop(userID string) bool
	Status(userID string) (domain.TrackingStatus, bool)
}

// sourceProvider hands out device position streams, e.g. the MQTT subscriber.
type sourceProvider interface {
	Source(userID string) tracking.PositionSource
}

type registerRequest struct {
	ID       string             `json:"id"`
	Name     string             `json:"name" binding:"required"`
	Mobile   string             `json:"mobile" binding:"required"`
	Position *coordinateRequest `json:"position"`
}

type UserHandler struct {
	userSvc     userService
	trackingSvc trackingService
	sources     sourceProvider
}

// NewUserHandler builds the admin handler. sources may be nil when no device
// transport is configured; server-side tracking is then unavailable.
func NewUserHandler(userSvc userService, trackingSvc trackingService, sources sourceProvider) *UserHandler {
	return &UserHandler{userSvc: userSvc, trackingSvc: trackingSvc, sources: sources}
}

func (h *UserHandler) Register(r *gin.RouterGroup) {
	r.POST("/users", h.RegisterUser)
	r.GET("/users", h.ListUsers)
	r.GET("/users/:user_id", h.GetUser)
	r.DELETE("/users/:user_id", h.RemoveUser)
	r.PUT("/users/:user_id/position", h.UpdatePosition)
	r.POST("/users/:user_id/tracking", h.StartTracking)
	r.DELETE("/users/:user_id/tracking", h.StopTracking)
	r.GET("/users/:user_id/tracking", h.TrackingStatus)
}

func (h *UserHandler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var pos *domain.Coordinate
	if req.Position != nil {
		p := req.Position.coordinate()
		pos = &p
	}

	user, err := h.userSvc.Register(c.Request.Context(), domain.User{ID: req.ID, Name: req.Name, Mobile: req.Mobile}, pos)
	if err != nil {
		abortWithError(c, err, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userSvc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch users"})
		return
	}
	if users == nil {
		users = []domain.User{}
	}

	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userSvc.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		abortWithError(c, err, http.StatusInternalServerError, "failed to fetch user")
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) RemoveUser(c *gin.Context) {
	if err := h.userSvc.Remove(c.Request.Context(), c.Param("user_id")); err != nil {
		abortWithError(c, err, http.StatusInternalServerError, "failed to remove user")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) UpdatePosition(c *gin.Context) {
	var req coordinateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.userSvc.UpdatePosition(c.Request.Context(), c.Param("user_id"), req.coordinate()); err != nil {
		abortWithError(c, err, http.StatusInternalServerError, "failed to update position")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) StartTracking(c *gin.Context) {
	if h.sources == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "device transport not configured"})
		return
	}
	userID := c.Param("user_id")

	if _, err := h.trackingSvc.Start(c.Request.Context(), userID, h.sources.Source(userID), service.SessionHooks{}); err != nil {
		abortWithError(c, err, http.StatusInternalServerError, "failed to start tracking")
		return
	}

	status, _ := h.trackingSvc.Status(userID)
	c.JSON(http.StatusAccepted, status)
}

func (h *UserHandler) StopTracking(c *gin.Context) {
	if !h.trackingSvc.Stop(c.Param("user_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active tracking session"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *UserHandler) TrackingStatus(c *gin.Context) {
	status, ok := h.trackingSvc.Status(c.Param("user_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active tracking session"})
		return
	}

	c.JSON(http.StatusOK, status)
}
