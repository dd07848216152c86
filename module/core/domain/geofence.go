package domain

import "time"

// Zone is a circular red zone. Zones are loaded once and never mutated.
type Zone struct {
	Name         string     `json:"name,omitempty"`
	Center       Coordinate `json:"center"`
	RadiusMeters float64    `json:"radius"`
}

type AlertState int

const (
	AlertClear AlertState = iota
	AlertInZone
)

func (s AlertState) String() string {
	if s == AlertInZone {
		return "in_zone"
	}
	return "clear"
}

func (s AlertState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type GeofenceEventType string

const (
	RedZoneEntry GeofenceEventType = "red_zone_entry"
)

const (
	RedZoneAlertTitle       = "You are in a High-Risk Zone"
	RedZoneAlertDescription = "Be careful with your stuff and members."
)

// VibrationPattern is the haptic pulse sent with every red zone alert, in
// milliseconds alternating on/off.
var VibrationPattern = []int{200, 100, 200, 100, 200}

type RedZoneAlert struct {
	UserID      string            `json:"user_id"`
	Event       GeofenceEventType `json:"event"`
	Zone        Zone              `json:"zone"`
	Location    Coordinate        `json:"location"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Vibrate     []int             `json:"vibrate"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewRedZoneAlert(userID string, zone Zone, at Coordinate, ts time.Time) *RedZoneAlert {
	return &RedZoneAlert{
		UserID:      userID,
		Event:       RedZoneEntry,
		Zone:        zone,
		Location:    at,
		Title:       RedZoneAlertTitle,
		Description: RedZoneAlertDescription,
		Vibrate:     append([]int(nil), VibrationPattern...),
		Timestamp:   ts,
	}
}

// ZoneCheck is the result of evaluating one coordinate against the registry.
type ZoneCheck struct {
	Inside         bool    `json:"inside"`
	Zone           *Zone   `json:"zone,omitempty"`
	DistanceMeters float64 `json:"distance_meters,omitempty"`
}

// TrackingStatus is the latest view of a tracking session.
type TrackingStatus struct {
	UserID    string      `json:"user_id"`
	Position  *Coordinate `json:"position"`
	Error     string      `json:"error,omitempty"`
	State     AlertState  `json:"state"`
	UpdatedAt time.Time   `json:"updated_at"`
}
