package domain

import "time"

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Place is the nearest reachable place of a given type, with walking
// directions from the requesting position.
type Place struct {
	Name         string     `json:"name"`
	Vicinity     string     `json:"vicinity"`
	Location     Coordinate `json:"location"`
	DistanceText string     `json:"distance_text"`
	DurationText string     `json:"duration_text"`
	URL          string     `json:"url"`
}

type ReplyKind string

const (
	ReplyText       ReplyKind = "text"
	ReplyToolResult ReplyKind = "tool-result"
)

// AssistantReply is either a text answer or a place found by the nearby
// places tool. Exactly one of Text and Place is set, selected by Kind.
type AssistantReply struct {
	Kind  ReplyKind `json:"type"`
	Text  string    `json:"content,omitempty"`
	Place *Place    `json:"result,omitempty"`
}

func TextReply(text string) AssistantReply {
	return AssistantReply{Kind: ReplyText, Text: text}
}

func PlaceReply(p *Place) AssistantReply {
	return AssistantReply{Kind: ReplyToolResult, Place: p}
}

type IncidentReport struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Report      string    `json:"report"`
	ArchiveURL  string    `json:"archive_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
