package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nandanugg/tourist-safety/module/core/domain"
	"github.com/nandanugg/tourist-safety/module/core/internal/repository/database"
	"github.com/nandanugg/tourist-safety/module/core/tracking"
)

// SessionHooks are per-session extras layered on top of the shared alert
// publisher, such as a socket that pushes alerts back to the device.
type SessionHooks struct {
	Alerter  tracking.Alerter
	Listener tracking.StatusListener
}

// TrackingService owns the live tracking sessions, at most one per user.
type TrackingService struct {
	zones     tracking.ZoneMatcher
	directory database.UserDirectory
	alerter   tracking.Alerter
	cfg       tracking.Config
	log       *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewTrackingService(zones tracking.ZoneMatcher, directory database.UserDirectory, alerter tracking.Alerter, cfg tracking.Config) *TrackingService {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TrackingService{
		zones:     zones,
		directory: directory,
		alerter:   alerter,
		cfg:       cfg,
		log:       cfg.Logger,
		sessions:  make(map[string]*Session),
	}
}

// Session is one user's running controller.
type Session struct {
	userID string
	ctrl   *tracking.Controller
	svc    *TrackingService
}

func (s *Session) UserID() string { return s.userID }

func (s *Session) Status() domain.TrackingStatus { return s.ctrl.Status() }

// Stop ends the session. A newer session for the same user is left alone.
func (s *Session) Stop() {
	s.svc.mu.Lock()
	if s.svc.sessions[s.userID] == s {
		delete(s.svc.sessions, s.userID)
	}
	s.svc.mu.Unlock()
	s.ctrl.Stop()
}

// Start subscribes a new controller for userID to src. Any session the user
// already had is stopped first.
//
// The directory lookup runs under the session lock. UserService.Remove
// deletes from the directory before calling Stop, so a removal racing with
// Start either fails the lookup or stops the session once it is installed.
func (s *TrackingService) Start(ctx context.Context, userID string, src tracking.PositionSource, hooks SessionHooks) (*Session, error) {
	var alerter tracking.Alerter = s.alerter
	if hooks.Alerter != nil {
		alerter = tracking.MultiAlerter{hooks.Alerter, s.alerter}
	}
	cfg := s.cfg
	cfg.Listener = hooks.Listener

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.directory.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("start tracking %s: %w", userID, err)
	}

	if prev, ok := s.sessions[userID]; ok {
		delete(s.sessions, userID)
		prev.ctrl.Stop()
		s.log.Info("tracking_session_replaced", "user_id", userID)
	}

	ctrl := tracking.NewController(userID, s.zones, alerter, s.directory, cfg)
	if err := ctrl.Start(src); err != nil {
		return nil, fmt.Errorf("start tracking %s: %w", userID, err)
	}

	sess := &Session{userID: userID, ctrl: ctrl, svc: s}
	s.sessions[userID] = sess
	return sess, nil
}

// Stop ends the user's session, reporting whether one was running.
func (s *TrackingService) Stop(userID string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	delete(s.sessions, userID)
	s.mu.Unlock()

	if ok {
		sess.ctrl.Stop()
	}
	return ok
}

func (s *TrackingService) Status(userID string) (domain.TrackingStatus, bool) {
	s.mu.Lock()
	sess, ok := s.sessions[userID]
	s.mu.Unlock()

	if !ok {
		return domain.TrackingStatus{}, false
	}
	return sess.ctrl.Status(), true
}

func (s *TrackingService) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Shutdown stops every session.
func (s *TrackingService) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.ctrl.Stop()
	}
}
