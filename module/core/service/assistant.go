package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/client/genai"
	"github.com/nandanugg/tourist-safety/module/core/internal/client/maps"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/storage"
)

const findNearbyPlacesTool = "findNearbyPlaces"

type TextGenerator interface {
	Generate(ctx context.Context, system, prompt string, history []domain.ChatMessage) (string, error)
	GenerateWithTools(ctx context.Context, system, prompt string, history []domain.ChatMessage, tools []genai.Tool) (*genai.Result, error)
}

// AssistantService runs the chat and report flows on top of a text
// generation model, the places finder and the incident archive.
type AssistantService struct {
	gen     TextGenerator
	places  maps.PlaceFinder
	archive storage.IncidentArchive
	log     *slog.Logger
	now     func() time.Time
	newID   func() string
}

// NewAssistantService builds the service. archive may be nil, in which case
// incident reports are generated but not stored.
func NewAssistantService(gen TextGenerator, places maps.PlaceFinder, archive storage.IncidentArchive, logger *slog.Logger) *AssistantService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantService{
		gen:     gen,
		places:  places,
		archive: archive,
		log:     logger,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// splitHistory separates the newest user message from the turns before it.
func splitHistory(history []domain.ChatMessage) (string, []domain.ChatMessage, error) {
	if len(history) == 0 || history[len(history)-1].Role != domain.RoleUser {
		return "", nil, domain.ErrInvalidHistory
	}
	last := len(history) - 1
	return history[last].Content, history[:last], nil
}

func (s *AssistantService) Chat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	prompt, prev, err := splitHistory(history)
	if err != nil {
		return "", err
	}
	if strings.ToLower(strings.TrimSpace(prompt)) == soloTravelQuestion {
		return soloTravelAnswer, nil
	}
	return s.gen.Generate(ctx, chatSystemPrompt, prompt, prev)
}

func (s *AssistantService) GuideChat(ctx context.Context, history []domain.ChatMessage) (string, error) {
	prompt, prev, err := splitHistory(history)
	if err != nil {
		return "", err
	}
	return s.gen.Generate(ctx, guideSystemPrompt, prompt, prev)
}

func (s *AssistantService) SafetyTips(ctx context.Context, locationDescription string) (string, error) {
	return s.gen.Generate(ctx, "", fmt.Sprintf(safetyTipsPromptTemplate, locationDescription), nil)
}

// SafetySuggestions gives short personalized suggestions for a user who
// raised an SOS from the described location.
func (s *AssistantService) SafetySuggestions(ctx context.Context, locationDescription string) (string, error) {
	return s.gen.Generate(ctx, "", fmt.Sprintf(safetySuggestionsPromptTemplate, locationDescription), nil)
}

// Translate returns text rendered in targetLanguage.
func (s *AssistantService) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	return s.gen.Generate(ctx, translateSystemPrompt, fmt.Sprintf(translatePromptTemplate, targetLanguage, text), nil)
}

func (s *AssistantService) EmergencyGuidance(ctx context.Context, query string) (string, error) {
	return s.gen.Generate(ctx, emergencyNoLocationPrompt, "The user says: "+query, nil)
}

// IncidentReport writes a formal report from the user's description and
// archives it when an archive is configured. Archive failures are logged and
// the report is still returned.
func (s *AssistantService) IncidentReport(ctx context.Context, description, location string) (*domain.IncidentReport, error) {
	now := s.now().UTC()
	prompt := fmt.Sprintf(incidentReportPromptTemplate, location, description, now.Format("2 Jan 2006, 15:04 MST"))

	text, err := s.gen.Generate(ctx, "", prompt, nil)
	if err != nil {
		return nil, err
	}

	report := &domain.IncidentReport{
		ID:          s.newID(),
		Description: description,
		Location:    location,
		Report:      text,
		CreatedAt:   now,
	}
	if s.archive != nil {
		url, err := s.archive.Archive(ctx, report)
		if err != nil {
			s.log.Error("incident_archive_failed", "incident_id", report.ID, "err", err)
		} else {
			report.ArchiveURL = url
		}
	}
	return report, nil
}

type placeToolArgs struct {
	PlaceType string `json:"placeType"`
}

var placeToolParameters = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"placeType": map[string]any{
			"type":        "string",
			"description": `The type of place to search for. E.g., "police", "hospital".`,
		},
	},
	"required": []string{"placeType"},
}

// EmergencyChat answers a user in distress. With a known position the model
// may ask for the nearest safe place, in which case the place is returned
// instead of text.
func (s *AssistantService) EmergencyChat(ctx context.Context, history []domain.ChatMessage, position *domain.Coordinate) (domain.AssistantReply, error) {
	prompt, prev, err := splitHistory(history)
	if err != nil {
		return domain.AssistantReply{}, err
	}

	if position == nil || s.places == nil {
		text, err := s.gen.Generate(ctx, emergencyNoLocationPrompt, prompt, prev)
		if err != nil {
			return domain.AssistantReply{}, err
		}
		return domain.TextReply(text), nil
	}
	if err := position.Validate(); err != nil {
		return domain.AssistantReply{}, err
	}

	res, err := s.gen.GenerateWithTools(ctx, emergencyWithLocationPrompt, prompt, prev, []genai.Tool{{
		Name:        findNearbyPlacesTool,
		Description: "Finds the nearby place of a given type (like police or hospital) with the shortest walking distance from the user.",
		Parameters:  placeToolParameters,
	}})
	if err != nil {
		return domain.AssistantReply{}, err
	}

	if res.ToolCall == nil || res.ToolCall.Name != findNearbyPlacesTool {
		if res.Text == "" {
			return domain.AssistantReply{}, domain.ErrNoText
		}
		return domain.TextReply(res.Text), nil
	}

	var args placeToolArgs
	if err := json.Unmarshal(res.ToolCall.Arguments, &args); err != nil || args.PlaceType == "" {
		args.PlaceType = "police"
	}

	place, err := s.places.FindNearest(ctx, args.PlaceType, *position)
	if err != nil {
		if !errors.Is(err, domain.ErrNoPlaceFound) {
			s.log.Error("find_nearest_place_failed", "type", args.PlaceType, "err", err)
		}
		return domain.TextReply(fmt.Sprintf(noPlaceFoundReply, args.PlaceType)), nil
	}
	return domain.PlaceReply(place), nil
}

func (s *AssistantService) NearestPlace(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error) {
	if err := at.Validate(); err != nil {
		return nil, err
	}
	if s.places == nil {
		return nil, domain.ErrMapsUnavailable
	}
	return s.places.FindNearest(ctx, placeType, at)
}
