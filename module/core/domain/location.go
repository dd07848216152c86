package domain

import (
	"fmt"
	"math"
	"time"
)

type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrInvalidCoordinate)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrInvalidCoordinate)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// PositionSample is a single fix delivered by a position source.
type PositionSample struct {
	Coordinate Coordinate `json:"coordinate"`
	ReceivedAt time.Time  `json:"received_at"`
}

type PositionErrorCode string

const (
	PositionPermissionDenied PositionErrorCode = "permission_denied"
	PositionUnavailable      PositionErrorCode = "position_unavailable"
	PositionTimeout          PositionErrorCode = "timeout"
	PositionUnsupported      PositionErrorCode = "unsupported"
)

// PositionError is what a source reports instead of a sample.
type PositionError struct {
	Code PositionErrorCode
}

func (e *PositionError) Error() string {
	return e.Message()
}

// Message is the text shown to the tourist.
func (e *PositionError) Message() string {
	switch e.Code {
	case PositionPermissionDenied:
		return "Location access denied. Please enable it in your browser settings."
	case PositionUnavailable:
		return "Location information is unavailable."
	case PositionTimeout:
		return "The request to get user location timed out."
	case PositionUnsupported:
		return "Geolocation is not supported by this device."
	default:
		return "An unknown error occurred."
	}
}

func ParsePositionErrorCode(s string) PositionErrorCode {
	switch PositionErrorCode(s) {
	case PositionPermissionDenied, PositionUnavailable, PositionTimeout, PositionUnsupported:
		return PositionErrorCode(s)
	default:
		return PositionErrorCode("unknown")
	}
}
