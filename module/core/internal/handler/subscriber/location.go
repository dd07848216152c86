package subscriber

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/tracking"
)

const (
	topicPattern = "/tourist/+/location"
	// DefaultPositionTimeout is how long a session may go without a fix
	// before it is told the position timed out.
	DefaultPositionTimeout = 10 * time.Second
)

type locationMessage struct {
	UserID    string  `json:"user_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	Error     string  `json:"error,omitempty"`
}

// LocationSubscriber listens on one wildcard topic for all tourist devices
// and routes each message to the tracking session of its user.
type LocationSubscriber struct {
	client  mqtt.Client
	sched   tracking.Scheduler
	timeout time.Duration
	log     *slog.Logger

	mu     sync.RWMutex
	routes map[string]*route
}

// NewLocationSubscriber builds the subscriber. A timeout <= 0 disables the
// staleness watchdog.
func NewLocationSubscriber(client mqtt.Client, timeout time.Duration, logger *slog.Logger) *LocationSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocationSubscriber{
		client:  client,
		sched:   tracking.SystemScheduler,
		timeout: timeout,
		log:     logger,
		routes:  make(map[string]*route),
	}
}

func (s *LocationSubscriber) Start() error {
	token := s.client.Subscribe(topicPattern, 1, s.handleMessage)
	token.Wait()
	return token.Error()
}

// Source returns the position stream of one user's device.
func (s *LocationSubscriber) Source(userID string) tracking.PositionSource {
	return &userSource{sub: s, userID: userID}
}

func (s *LocationSubscriber) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		s.log.Warn("invalid location message", "topic", msg.Topic(), "err", err)
		return
	}
	if raw.UserID == "" {
		raw.UserID = userIDFromTopic(msg.Topic())
	}

	if err := validateLocationMessage(&raw); err != nil {
		s.log.Warn("location message rejected", "topic", msg.Topic(), "err", err)
		return
	}

	s.mu.RLock()
	r := s.routes[raw.UserID]
	s.mu.RUnlock()
	if r == nil {
		s.log.Debug("no tracking session for user", "user_id", raw.UserID)
		return
	}

	if raw.Error != "" {
		r.deliverError(&domain.PositionError{Code: domain.ParsePositionErrorCode(raw.Error)})
		return
	}
	r.deliverSample(domain.PositionSample{
		Coordinate: domain.Coordinate{Lat: raw.Latitude, Lon: raw.Longitude},
		ReceivedAt: time.Unix(raw.Timestamp, 0),
	})
}

func (s *LocationSubscriber) attach(userID string, r *route) {
	s.mu.Lock()
	prev := s.routes[userID]
	s.routes[userID] = r
	s.mu.Unlock()

	if prev != nil {
		prev.cancel()
	}
	r.arm()
}

func (s *LocationSubscriber) detach(userID string, r *route) {
	s.mu.Lock()
	if s.routes[userID] == r {
		delete(s.routes, userID)
	}
	s.mu.Unlock()
	r.cancel()
}

type userSource struct {
	sub    *LocationSubscriber
	userID string
}

func (u *userSource) Name() string { return "mqtt" }

func (u *userSource) Subscribe(onSample tracking.SampleFunc, onError tracking.ErrorFunc) (tracking.Subscription, error) {
	r := &route{
		onSample: onSample,
		onError:  onError,
		sched:    u.sub.sched,
		timeout:  u.sub.timeout,
	}
	u.sub.attach(u.userID, r)

	var once sync.Once
	return tracking.CancelFunc(func() {
		once.Do(func() { u.sub.detach(u.userID, r) })
	}), nil
}

// route is one live subscription. Its mutex is held while a callback runs,
// so cancel waits for an in-flight callback and none start afterwards.
type route struct {
	onSample tracking.SampleFunc
	onError  tracking.ErrorFunc
	sched    tracking.Scheduler
	timeout  time.Duration

	mu        sync.Mutex
	cancelled bool
	watchdog  tracking.Task
	gen       uint64
}

func (r *route) deliverSample(sample domain.PositionSample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	r.rearmLocked()
	r.onSample(sample)
}

func (r *route) deliverError(perr *domain.PositionError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled {
		return
	}
	r.rearmLocked()
	r.onError(perr)
}

func (r *route) arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.cancelled {
		r.rearmLocked()
	}
}

func (r *route) rearmLocked() {
	if r.timeout <= 0 {
		return
	}
	if r.watchdog != nil {
		r.watchdog.Stop()
	}
	r.gen++
	gen := r.gen
	r.watchdog = r.sched.AfterFunc(r.timeout, func() { r.expire(gen) })
}

func (r *route) expire(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelled || r.gen != gen {
		return
	}
	r.rearmLocked()
	r.onError(&domain.PositionError{Code: domain.PositionTimeout})
}

func (r *route) cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
	if r.watchdog != nil {
		r.watchdog.Stop()
		r.watchdog = nil
	}
}

// userIDFromTopic extracts <id> from /tourist/<id>/location.
func userIDFromTopic(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")
	if len(parts) == 3 && parts[0] == "tourist" && parts[2] == "location" {
		return parts[1]
	}
	return ""
}

func validateLocationMessage(msg *locationMessage) error {
	if msg.UserID == "" {
		return fmt.Errorf("user_id: required")
	}
	if msg.Error != "" {
		return nil
	}
	if msg.Latitude < -90 || msg.Latitude > 90 {
		return fmt.Errorf("latitude: must be between -90 and 90")
	}
	if msg.Longitude < -180 || msg.Longitude > 180 {
		return fmt.Errorf("longitude: must be between -180 and 180")
	}
	if msg.Timestamp <= 0 {
		return fmt.Errorf("timestamp: must be positive")
	}
	return nil
}
