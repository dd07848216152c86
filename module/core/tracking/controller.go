package tracking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/metrics"
)

const (
	DefaultDebounce     = 2 * time.Second
	DefaultWriteTimeout = 5 * time.Second
)

// Alerter performs the red zone entry side effect (notification and haptic
// pulse). It is called once per entry.
type Alerter interface {
	Alert(ctx context.Context, alert *domain.RedZoneAlert) error
}

// PositionWriter receives the debounced last known position.
type PositionWriter interface {
	UpdatePosition(ctx context.Context, userID string, c domain.Coordinate) error
}

// StatusListener is told about every state change the session goes through.
type StatusListener interface {
	OnStatus(status domain.TrackingStatus)
}

type ZoneMatcher interface {
	Match(c domain.Coordinate) (domain.Zone, bool)
}

type Config struct {
	Debounce     time.Duration
	WriteTimeout time.Duration
	Scheduler    Scheduler
	Listener     StatusListener
	Logger       *slog.Logger
	Now          func() time.Time
}

// Controller is the live tracking state machine for one user session. It
// evaluates every sample synchronously and hands the latest coordinate to a
// debounced directory write that never blocks alerting.
type Controller struct {
	userID   string
	zones    ZoneMatcher
	alerter  Alerter
	writer   PositionWriter
	listener StatusListener
	log      *slog.Logger
	now      func() time.Time
	timeout  time.Duration
	debounce *Debouncer

	mu         sync.Mutex
	state      domain.AlertState
	position   *domain.Coordinate
	lastErr    string
	updatedAt  time.Time
	sub        Subscription
	sourceName string
	started    bool
	stopped    bool
}

func NewController(userID string, zones ZoneMatcher, alerter Alerter, writer PositionWriter, cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Controller{
		userID:   userID,
		zones:    zones,
		alerter:  alerter,
		writer:   writer,
		listener: cfg.Listener,
		log:      cfg.Logger.With("user_id", userID),
		now:      cfg.Now,
		timeout:  cfg.WriteTimeout,
		debounce: NewDebouncer(cfg.Scheduler, cfg.Debounce),
	}
}

var (
	errAlreadyStarted = errors.New("tracking session already started")
	errStopped        = errors.New("tracking session stopped")
)

// Start subscribes the controller to src. A controller is started at most once.
func (c *Controller) Start(src PositionSource) error {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return errStopped
	}
	if c.started {
		c.mu.Unlock()
		return errAlreadyStarted
	}
	c.started = true
	c.sourceName = sourceName(src)
	c.mu.Unlock()

	sub, err := src.Subscribe(c.handleSample, c.handleError)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		sub.Cancel()
		return errStopped
	}
	c.sub = sub
	c.mu.Unlock()

	metrics.ActiveSessions.Inc()
	c.log.Info("tracking_started", "source", c.sourceName)
	return nil
}

// Stop releases the subscription and drops a pending position write. It is
// idempotent; after it returns no alert or write is started by this session.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Cancel()
		metrics.ActiveSessions.Dec()
	}
	c.debounce.Stop()
	c.log.Info("tracking_stopped")
}

func (c *Controller) Status() domain.TrackingStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusLocked()
}

func (c *Controller) handleSample(s domain.PositionSample) {
	if err := s.Coordinate.Validate(); err != nil {
		c.log.Warn("position_sample_invalid", "err", err)
		c.handleError(&domain.PositionError{Code: domain.PositionUnavailable})
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}

	coord := s.Coordinate
	c.position = &coord
	c.lastErr = ""
	c.updatedAt = s.ReceivedAt
	if c.updatedAt.IsZero() {
		c.updatedAt = c.now()
	}

	var alert *domain.RedZoneAlert
	zone, inside := c.match(coord)
	switch {
	case inside && c.state == domain.AlertClear:
		c.state = domain.AlertInZone
		alert = domain.NewRedZoneAlert(c.userID, zone, coord, c.updatedAt)
	case !inside && c.state == domain.AlertInZone:
		// The alert already shown stays on screen; clearing the state lets
		// the next entry alert again.
		c.state = domain.AlertClear
		c.log.Info("red_zone_left")
	}

	if c.writer != nil {
		c.debounce.Call(func() { c.writePosition(coord) })
	}
	status := c.statusLocked()
	source := c.sourceName
	c.mu.Unlock()

	metrics.PositionSamplesTotal.WithLabelValues(source).Inc()
	if alert != nil {
		c.fireAlert(alert)
	}
	c.notify(status)
}

func (c *Controller) handleError(perr *domain.PositionError) {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.position = nil
	c.lastErr = perr.Message()
	c.updatedAt = c.now()
	status := c.statusLocked()
	c.mu.Unlock()

	metrics.PositionErrorsTotal.WithLabelValues(string(perr.Code)).Inc()
	c.log.Warn("position_error", "code", perr.Code)
	c.notify(status)
}

func (c *Controller) match(coord domain.Coordinate) (domain.Zone, bool) {
	if c.zones == nil {
		return domain.Zone{}, false
	}
	return c.zones.Match(coord)
}

func (c *Controller) fireAlert(alert *domain.RedZoneAlert) {
	metrics.RedZoneAlertsTotal.Inc()
	c.log.Info("red_zone_entered", "zone", alert.Zone.Name)
	if c.alerter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.alerter.Alert(ctx, alert); err != nil {
		metrics.AlertPublishFailTotal.Inc()
		c.log.Error("red_zone_alert_failed", "err", err)
	}
}

func (c *Controller) writePosition(coord domain.Coordinate) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.writer.UpdatePosition(ctx, c.userID, coord); err != nil {
		metrics.PositionWritesTotal.WithLabelValues("failed").Inc()
		c.log.Error("position_write_failed", "err", err)
		return
	}
	metrics.PositionWritesTotal.WithLabelValues("ok").Inc()
}

func (c *Controller) notify(status domain.TrackingStatus) {
	if c.listener != nil {
		c.listener.OnStatus(status)
	}
}

func (c *Controller) statusLocked() domain.TrackingStatus {
	var pos *domain.Coordinate
	if c.position != nil {
		p := *c.position
		pos = &p
	}
	return domain.TrackingStatus{
		UserID:    c.userID,
		Position:  pos,
		Error:     c.lastErr,
		State:     c.state,
		UpdatedAt: c.updatedAt,
	}
}

// AlertFunc adapts a plain function, such as a publisher method, to Alerter.
type AlertFunc func(ctx context.Context, alert *domain.RedZoneAlert) error

func (f AlertFunc) Alert(ctx context.Context, alert *domain.RedZoneAlert) error { return f(ctx, alert) }

// MultiAlerter fans one alert out to several alerters, returning the first
// error after trying all of them.
type MultiAlerter []Alerter

func (m MultiAlerter) Alert(ctx context.Context, alert *domain.RedZoneAlert) error {
	var firstErr error
	for _, a := range m {
		if a == nil {
			continue
		}
		if err := a.Alert(ctx, alert); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
