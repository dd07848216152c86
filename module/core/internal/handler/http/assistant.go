package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type assistantService interface {
	Chat(ctx context.Context, history []domain.ChatMessage) (string, error)
	GuideChat(ctx context.Context, history []domain.ChatMessage) (string, error)
	SafetyTips(ctx context.Context, locationDescription string) (string, error)
	SafetySuggestions(ctx context.Context, locationDescription string) (string, error)
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
	EmergencyGuidance(ctx context.Context, query string) (string, error)
	IncidentReport(ctx context.Context, description, location string) (*domain.IncidentReport, error)
	EmergencyChat(ctx context.Context, history []domain.ChatMessage, position *domain.Coordinate) (domain.AssistantReply, error)
	NearestPlace(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error)
}

type chatRequest struct {
	History []domain.ChatMessage `json:"history" binding:"required"`
}

type safetyTipsRequest struct {
	LocationDescription string `json:"location_description" binding:"required"`
}

type translateRequest struct {
	Text           string `json:"text" binding:"required"`
	TargetLanguage string `json:"target_language" binding:"required"`
}

type guidanceRequest struct {
	Query string `json:"query" binding:"required"`
}

type incidentRequest struct {
	Description string `json:"description" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

type emergencyChatRequest struct {
	History  []domain.ChatMessage `json:"history" binding:"required"`
	Position *coordinateRequest   `json:"position"`
}

type AssistantHandler struct {
	assistantSvc assistantService
}

func NewAssistantHandler(assistantSvc assistantService) *AssistantHandler {
	return &AssistantHandler{assistantSvc: assistantSvc}
}

func (h *AssistantHandler) Register(r *gin.RouterGroup) {
	r.POST("/assist/chat", h.Chat)
	r.POST("/assist/guide", h.GuideChat)
	r.POST("/assist/safety-tips", h.SafetyTips)
	r.POST("/assist/safety-suggestions", h.SafetySuggestions)
	r.POST("/assist/translate", h.Translate)
	r.POST("/assist/emergency-guidance", h.EmergencyGuidance)
	r.POST("/assist/incident-report", h.IncidentReport)
	r.POST("/assist/emergency-chat", h.EmergencyChat)
	r.GET("/places/nearest", h.NearestPlace)
}

func (h *AssistantHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	text, err := h.assistantSvc.Chat(c.Request.Context(), req.History)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to get a response from the assistant")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": text})
}

func (h *AssistantHandler) GuideChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	text, err := h.assistantSvc.GuideChat(c.Request.Context(), req.History)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to get a response from the guide")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": text})
}

func (h *AssistantHandler) SafetyTips(c *gin.Context) {
	var req safetyTipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	tips, err := h.assistantSvc.SafetyTips(c.Request.Context(), req.LocationDescription)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to generate safety tips")
		return
	}

	c.JSON(http.StatusOK, gin.H{"safety_tips": tips})
}

func (h *AssistantHandler) SafetySuggestions(c *gin.Context) {
	var req safetyTipsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	suggestions, err := h.assistantSvc.SafetySuggestions(c.Request.Context(), req.LocationDescription)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to generate personalized safety suggestions")
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

func (h *AssistantHandler) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	text, err := h.assistantSvc.Translate(c.Request.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to translate text")
		return
	}

	c.JSON(http.StatusOK, gin.H{"translated_text": text})
}

func (h *AssistantHandler) EmergencyGuidance(c *gin.Context) {
	var req guidanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	text, err := h.assistantSvc.EmergencyGuidance(c.Request.Context(), req.Query)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to get emergency guidance")
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": text})
}

func (h *AssistantHandler) IncidentReport(c *gin.Context) {
	var req incidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	report, err := h.assistantSvc.IncidentReport(c.Request.Context(), req.Description, req.Location)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to generate incident report")
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *AssistantHandler) EmergencyChat(c *gin.Context) {
	var req emergencyChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	var pos *domain.Coordinate
	if req.Position != nil {
		p := req.Position.coordinate()
		pos = &p
	}

	reply, err := h.assistantSvc.EmergencyChat(c.Request.Context(), req.History, pos)
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to get a response from the assistant")
		return
	}

	c.JSON(http.StatusOK, reply)
}

func (h *AssistantHandler) NearestPlace(c *gin.Context) {
	placeType := c.Query("type")
	if placeType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}

	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid latitude parameter"})
		return
	}

	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid longitude parameter"})
		return
	}

	place, err := h.assistantSvc.NearestPlace(c.Request.Context(), placeType, domain.Coordinate{Lat: lat, Lon: lon})
	if err != nil {
		abortWithError(c, err, http.StatusBadGateway, "failed to find a nearby place")
		return
	}

	c.JSON(http.StatusOK, place)
}
