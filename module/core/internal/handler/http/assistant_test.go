package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type mockAssistantService struct {
	chatFn              func(ctx context.Context, history []domain.ChatMessage) (string, error)
	guideChatFn         func(ctx context.Context, history []domain.ChatMessage) (string, error)
	safetyTipsFn        func(ctx context.Context, locationDescription string) (string, error)
	suggestionsFn       func(ctx context.Context, locationDescription string) (string, error)
	translateFn         func(ctx context.Context, text, targetLanguage string) (string, error)
	emergencyGuidanceFn func(ctx context.Context, query string) (string, error)
	incidentReportFn    func(ctx context.Context, description, location string) (*domain.IncidentReport, error)
	emergencyChatFn     func(ctx context.Context, history []domain.ChatMessage, position *domain.Coordinate) (domain.AssistantReply, error)
	nearestPlaceFn      func(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error)
}

func (m *mockAssistantService) Chat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	return m.chatFn(ctx, history)
}

func (m *mockAssistantService) GuideChat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	return m.guideChatFn(ctx, history)
}

func (m *mockAssistantService) SafetyTips(ctx context.Context, locationDescription string) (string, error) {
	return m.safetyTipsFn(ctx, locationDescription)
}

func (m *mockAssistantService) SafetySuggestions(ctx context.Context, locationDescription string) (string, error) {
	return m.suggestionsFn(ctx, locationDescription)
}

func (m *mockAssistantService) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return m.translateFn(ctx, text, targetLanguage)
}

func (m *mockAssistantService) EmergencyGuidance(ctx context.Context, query string) (string, error) {
	return m.emergencyGuidanceFn(ctx, query)
}

func (m *mockAssistantService) IncidentReport(ctx context.Context, description, location string) (*domain.IncidentReport, error) {
	return m.incidentReportFn(ctx, description, location)
}

func (m *mockAssistantService) EmergencyChat(ctx context.Context, history []domain.ChatMessage, position *domain.Coordinate) (domain.AssistantReply, error) {
	return m.emergencyChatFn(ctx, history, position)
}

func (m *mockAssistantService) NearestPlace(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error) {
	return m.nearestPlaceFn(ctx, placeType, at)
}

func setupAssistantRouter(svc assistantService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAssistantHandler(svc).Register(r.Group(""))
	return r
}

var sampleHistory = []map[string]string{
	{"role": "user", "content": "hi"},
	{"role": "model", "content": "hello"},
	{"role": "user", "content": "is it safe here?"},
}

func TestChat_Success(t *testing.T) {
	svc := &mockAssistantService{
		chatFn: func(_ context.Context, history []domain.ChatMessage) (string, error) {
			if len(history) != 3 || history[1].Role != domain.RoleModel {
				t.Fatalf("unexpected history %+v", history)
			}
			return "Yes, mostly.", nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/chat", map[string]any{"history": sampleHistory})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["response"] != "Yes, mostly." {
		t.Errorf("unexpected response %v", resp)
	}
}

func TestChat_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid history", domain.ErrInvalidHistory, http.StatusBadRequest},
		{"no text", domain.ErrNoText, http.StatusBadGateway},
		{"upstream", errors.New("timeout"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAssistantService{
				chatFn: func(context.Context, []domain.ChatMessage) (string, error) { return "", tt.err },
			}
			w := doJSON(setupAssistantRouter(svc), "POST", "/assist/chat", map[string]any{"history": sampleHistory})
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestGuideChat_MissingHistory(t *testing.T) {
	w := doJSON(setupAssistantRouter(&mockAssistantService{}), "POST", "/assist/guide", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSafetyTips(t *testing.T) {
	svc := &mockAssistantService{
		safetyTipsFn: func(_ context.Context, loc string) (string, error) {
			if loc != "Near Upper Lake" {
				t.Fatalf("unexpected location %s", loc)
			}
			return "Stay in lit areas.", nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/safety-tips", map[string]string{"location_description": "Near Upper Lake"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["safety_tips"] != "Stay in lit areas." {
		t.Errorf("unexpected response %v", resp)
	}
}

func TestSafetySuggestions(t *testing.T) {
	svc := &mockAssistantService{
		suggestionsFn: func(_ context.Context, loc string) (string, error) {
			if loc != "User is at latitude 23.2599 and longitude 77.4126." {
				t.Fatalf("unexpected location %s", loc)
			}
			return "Call 112.", nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/safety-suggestions",
		map[string]string{"location_description": "User is at latitude 23.2599 and longitude 77.4126."})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["suggestions"] != "Call 112." {
		t.Errorf("unexpected response %v", resp)
	}
}

func TestSafetySuggestions_UpstreamFailure(t *testing.T) {
	svc := &mockAssistantService{
		suggestionsFn: func(context.Context, string) (string, error) { return "", errors.New("quota exceeded") },
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/safety-suggestions", map[string]string{"location_description": "Bhopal"})
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["error"] != "failed to generate personalized safety suggestions" {
		t.Errorf("expected generic message, got %v", resp)
	}
}

func TestTranslate(t *testing.T) {
	svc := &mockAssistantService{
		translateFn: func(_ context.Context, text, lang string) (string, error) {
			if text != "Thank you" || lang != "Hindi" {
				t.Fatalf("unexpected input %q %q", text, lang)
			}
			return "धन्यवाद", nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/translate", map[string]string{"text": "Thank you", "target_language": "Hindi"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["translated_text"] != "धन्यवाद" {
		t.Errorf("unexpected response %v", resp)
	}
}

func TestTranslate_Errors(t *testing.T) {
	tests := []struct {
		name string
		body map[string]string
		err  error
		want int
	}{
		{"missing language", map[string]string{"text": "hi"}, nil, http.StatusBadRequest},
		{"missing text", map[string]string{"target_language": "Hindi"}, nil, http.StatusBadRequest},
		{"no text generated", map[string]string{"text": "hi", "target_language": "Hindi"}, domain.ErrNoText, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAssistantService{
				translateFn: func(context.Context, string, string) (string, error) { return "", tt.err },
			}
			w := doJSON(setupAssistantRouter(svc), "POST", "/assist/translate", tt.body)
			if w.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestEmergencyGuidance(t *testing.T) {
	svc := &mockAssistantService{
		emergencyGuidanceFn: func(_ context.Context, q string) (string, error) { return "Stay calm.", nil },
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/emergency-guidance", map[string]string{"query": "I'm lost"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestIncidentReport(t *testing.T) {
	svc := &mockAssistantService{
		incidentReportFn: func(_ context.Context, desc, loc string) (*domain.IncidentReport, error) {
			return &domain.IncidentReport{ID: "inc-1", Description: desc, Location: loc, Report: "**Incident Report**", CreatedAt: time.Unix(1715003456, 0)}, nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/incident-report", map[string]string{"description": "phone stolen", "location": "New Market"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp domain.IncidentReport
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.ID != "inc-1" || resp.Location != "New Market" {
		t.Errorf("unexpected report %+v", resp)
	}

	w = doJSON(setupAssistantRouter(svc), "POST", "/assist/incident-report", map[string]string{"description": "phone stolen"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without location, got %d", w.Code)
	}
}

func TestEmergencyChat_PlaceReply(t *testing.T) {
	svc := &mockAssistantService{
		emergencyChatFn: func(_ context.Context, _ []domain.ChatMessage, pos *domain.Coordinate) (domain.AssistantReply, error) {
			if pos == nil || pos.Lat != 23.25 {
				t.Fatalf("expected position, got %+v", pos)
			}
			return domain.PlaceReply(&domain.Place{Name: "Police Station", DurationText: "5 mins"}), nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/emergency-chat", map[string]any{
		"history":  sampleHistory,
		"position": map[string]float64{"latitude": 23.25, "longitude": 77.41},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Type   string        `json:"type"`
		Result *domain.Place `json:"result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Type != "tool-result" || resp.Result == nil || resp.Result.Name != "Police Station" {
		t.Errorf("unexpected reply %s", w.Body.String())
	}
}

func TestEmergencyChat_NoPosition(t *testing.T) {
	svc := &mockAssistantService{
		emergencyChatFn: func(_ context.Context, _ []domain.ChatMessage, pos *domain.Coordinate) (domain.AssistantReply, error) {
			if pos != nil {
				t.Fatalf("expected no position, got %+v", pos)
			}
			return domain.TextReply("Please use a map app."), nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "POST", "/assist/emergency-chat", map[string]any{"history": sampleHistory})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp["type"] != "text" || resp["content"] != "Please use a map app." {
		t.Errorf("unexpected reply %v", resp)
	}
}

func TestNearestPlace(t *testing.T) {
	svc := &mockAssistantService{
		nearestPlaceFn: func(_ context.Context, placeType string, at domain.Coordinate) (*domain.Place, error) {
			if placeType != "hospital" || at.Lat != 23.25 || at.Lon != 77.41 {
				t.Fatalf("unexpected lookup %s %+v", placeType, at)
			}
			return &domain.Place{Name: "City Hospital"}, nil
		},
	}

	w := doJSON(setupAssistantRouter(svc), "GET", "/places/nearest?type=hospital&latitude=23.25&longitude=77.41", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestNearestPlace_BadParams(t *testing.T) {
	r := setupAssistantRouter(&mockAssistantService{})

	for _, path := range []string{
		"/places/nearest?latitude=1&longitude=1",
		"/places/nearest?type=police&latitude=x&longitude=1",
		"/places/nearest?type=police&latitude=1",
	} {
		if w := doJSON(r, "GET", path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", path, w.Code)
		}
	}
}

func TestNearestPlace_NotFound(t *testing.T) {
	svc := &mockAssistantService{
		nearestPlaceFn: func(context.Context, string, domain.Coordinate) (*domain.Place, error) {
			return nil, domain.ErrNoPlaceFound
		},
	}

	w := doJSON(setupAssistantRouter(svc), "GET", "/places/nearest?type=police&latitude=1&longitude=1", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
