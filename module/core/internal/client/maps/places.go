package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/metrics"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api"
	// candidates checked against the distance matrix
	maxCandidates = 5
	notAvailable  = "N/A"
)

// PlaceFinder finds the nearest reachable place of a type around a position.
type PlaceFinder interface {
	FindNearest(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error)
}

// Client queries the Places nearby search and picks the candidate with the
// shortest walking time from the Distance Matrix.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(apiKey, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		PlaceID  string `json:"place_id"`
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

type matrixValue struct {
	Text  string `json:"text"`
	Value int64  `json:"value"`
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string      `json:"status"`
			Distance matrixValue `json:"distance"`
			Duration matrixValue `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

func (c *Client) FindNearest(ctx context.Context, placeType string, at domain.Coordinate) (*domain.Place, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMapsUnavailable
	}
	origin := formatLatLng(at)

	q := url.Values{}
	q.Set("location", origin)
	q.Set("rankby", "distance")
	q.Set("type", placeType)
	q.Set("keyword", placeType)
	q.Set("key", c.apiKey)

	var nearby nearbyResponse
	if err := c.getJSON(ctx, "places", "/place/nearbysearch/json", q, &nearby); err != nil {
		return nil, err
	}
	if nearby.Status != "OK" || len(nearby.Results) == 0 {
		c.logger.Warn("places search returned nothing", "status", nearby.Status, "error", nearby.ErrorMessage, "type", placeType)
		return nil, domain.ErrNoPlaceFound
	}

	n := min(len(nearby.Results), maxCandidates)
	candidates := make([]domain.Place, n)
	destinations := make([]string, n)
	for i := 0; i < n; i++ {
		r := nearby.Results[i]
		loc := domain.Coordinate{Lat: r.Geometry.Location.Lat, Lon: r.Geometry.Location.Lng}
		candidates[i] = domain.Place{
			Name:         r.Name,
			Vicinity:     r.Vicinity,
			Location:     loc,
			DistanceText: notAvailable,
			DurationText: notAvailable,
			URL:          directionsURL(origin, loc),
		}
		destinations[i] = formatLatLng(loc)
	}

	mq := url.Values{}
	mq.Set("origins", origin)
	mq.Set("destinations", strings.Join(destinations, "|"))
	mq.Set("mode", "walking")
	mq.Set("key", c.apiKey)

	var matrix matrixResponse
	err := c.getJSON(ctx, "distance_matrix", "/distancematrix/json", mq, &matrix)
	if err != nil || matrix.Status != "OK" || len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 {
		c.logger.Warn("distance matrix failed, using nearest search result",
			"status", matrix.Status, "error", matrix.ErrorMessage, "err", err)
		first := candidates[0]
		return &first, nil
	}

	best := -1
	var bestDuration int64
	for i, el := range matrix.Rows[0].Elements {
		if i >= n || el.Status != "OK" {
			continue
		}
		if best == -1 || el.Duration.Value < bestDuration {
			best = i
			bestDuration = el.Duration.Value
		}
	}
	if best == -1 {
		return nil, domain.ErrNoPlaceFound
	}

	place := candidates[best]
	el := matrix.Rows[0].Elements[best]
	place.DistanceText = el.Distance.Text
	place.DurationText = el.Duration.Text
	return &place, nil
}

func (c *Client) getJSON(ctx context.Context, service, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	t0 := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ExternalDurationMs.WithLabelValues(service).Observe(float64(time.Since(t0).Milliseconds()))
	if err != nil {
		metrics.ExternalFailTotal.WithLabelValues(service).Inc()
		return fmt.Errorf("call %s: %w", service, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		metrics.ExternalFailTotal.WithLabelValues(service).Inc()
		return fmt.Errorf("%s returned status %d", service, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", service, err)
	}
	return nil
}

func formatLatLng(c domain.Coordinate) string {
	return strconv.FormatFloat(c.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

func directionsURL(origin string, dest domain.Coordinate) string {
	return "https://www.google.com/maps/dir/?api=1&origin=" + origin +
		"&destination=" + formatLatLng(dest) + "&travelmode=walking"
}
