package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/service"
	"github.com/nandanugg/tourist-safety/module/core/tracking"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 16
)

type MessageType string

const (
	TypeStatus       MessageType = "status"
	TypeRedZoneAlert MessageType = "red_zone_alert"
	TypeError        MessageType = "error"
)

type trackingService interface {
	Start(ctx context.Context, userID string, src tracking.PositionSource, hooks service.SessionHooks) (*service.Session, error)
}

// positionFrame is what the device sends: a fix or a geolocation error code.
type positionFrame struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Error     string   `json:"error,omitempty"`
}

type statusFrame struct {
	Type MessageType `json:"type"`
	domain.TrackingStatus
}

type alertFrame struct {
	Type MessageType `json:"type"`
	*domain.RedZoneAlert
}

type errorFrame struct {
	Type  MessageType `json:"type"`
	Error string      `json:"error"`
}

type TrackHandler struct {
	svc      trackingService
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewTrackHandler(svc trackingService, logger *slog.Logger) *TrackHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrackHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger,
	}
}

func (h *TrackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/track/:user_id", h.Track)
}

// Track upgrades the request and runs a tracking session fed by the frames
// the device sends. The session ends when the socket closes.
func (h *TrackHandler) Track(c *gin.Context) {
	userID := c.Param("user_id")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "user_id", userID, "err", err)
		return
	}

	client := newClient(conn, h.log.With("user_id", userID))
	sess, err := h.svc.Start(c.Request.Context(), userID, client, service.SessionHooks{Alerter: client, Listener: client})
	if err != nil {
		msg := "failed to start tracking"
		if errors.Is(err, domain.ErrUserNotFound) {
			msg = "user not found"
		}
		client.fail(msg)
		return
	}

	go client.writePump()
	client.readPump()
	client.end("")
	sess.Stop()
}

// client is both the session's position source and its push channel.
type client struct {
	conn *websocket.Conn
	log  *slog.Logger
	send chan []byte
	done chan struct{}
	once sync.Once
	// reason is sent as an error frame before the close when the server
	// ends the socket; set once before done is closed.
	reason string

	mu        sync.Mutex
	onSample  tracking.SampleFunc
	onError   tracking.ErrorFunc
	cancelled bool
}

func newClient(conn *websocket.Conn, logger *slog.Logger) *client {
	return &client{
		conn: conn,
		log:  logger,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *client) Name() string { return "websocket" }

func (c *client) Subscribe(onSample tracking.SampleFunc, onError tracking.ErrorFunc) (tracking.Subscription, error) {
	c.mu.Lock()
	c.onSample = onSample
	c.onError = onError
	c.mu.Unlock()
	return tracking.CancelFunc(func() {
		c.mu.Lock()
		c.cancelled = true
		c.mu.Unlock()
		// the session was ended elsewhere, e.g. replaced by a newer socket
		c.end(sessionEndedMsg)
	}), nil
}

func (c *client) Alert(_ context.Context, alert *domain.RedZoneAlert) error {
	return c.push(alertFrame{Type: TypeRedZoneAlert, RedZoneAlert: alert})
}

func (c *client) OnStatus(status domain.TrackingStatus) {
	if err := c.push(statusFrame{Type: TypeStatus, TrackingStatus: status}); err != nil {
		c.log.Debug("status frame dropped", "err", err)
	}
}

const sessionEndedMsg = "tracking session ended"

var (
	errClosed     = errors.New("websocket closed")
	errSendBuffer = errors.New("websocket send buffer full")
)

func (c *client) push(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return errClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	case <-c.done:
		return errClosed
	default:
		return errSendBuffer
	}
}

func (c *client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("websocket read failed", "err", err)
			}
			return
		}

		var frame positionFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Warn("invalid position frame", "err", err)
			continue
		}
		c.deliver(frame)
	}
}

func (c *client) deliver(frame positionFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled || c.onSample == nil {
		return
	}
	if frame.Error != "" {
		c.onError(&domain.PositionError{Code: domain.ParsePositionErrorCode(frame.Error)})
		return
	}
	if frame.Latitude == nil || frame.Longitude == nil {
		c.log.Warn("position frame without coordinates")
		return
	}
	c.onSample(domain.PositionSample{
		Coordinate: domain.Coordinate{Lat: *frame.Latitude, Lon: *frame.Longitude},
		ReceivedAt: time.Now(),
	})
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if c.reason != "" {
				b, _ := json.Marshal(errorFrame{Type: TypeError, Error: c.reason})
				_ = c.conn.WriteMessage(websocket.TextMessage, b)
			}
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, c.reason))
			return
		}
	}
}

// fail reports msg to the device and closes the socket without starting
// the pumps.
func (c *client) fail(msg string) {
	b, _ := json.Marshal(errorFrame{Type: TypeError, Error: msg})
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.TextMessage, b)
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg))
	_ = c.conn.Close()
}

// end stops the write pump, which closes the socket. Only the first call
// counts.
func (c *client) end(reason string) {
	c.once.Do(func() {
		c.reason = reason
		close(c.done)
	})
}
