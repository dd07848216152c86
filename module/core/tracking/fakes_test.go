package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/nandanugg/tourist-safety/module/core/domain"
)

type manualTask struct {
	sched   *manualScheduler
	f       func()
	stopped bool
	fired   bool
}

func (t *manualTask) Stop() bool {
	t.sched.mu.Lock()
	defer t.sched.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// manualScheduler only runs tasks when the test calls RunDue.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

func (s *manualScheduler) AfterFunc(_ time.Duration, f func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTask{sched: s, f: f}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *manualScheduler) RunDue() int {
	s.mu.Lock()
	var due []*manualTask
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

func (s *manualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// fakeSource delivers whatever the test emits, honouring cancellation the
// way the real sources do.
type fakeSource struct {
	mu        sync.Mutex
	onSample  SampleFunc
	onError   ErrorFunc
	cancelled bool
	cancels   int
	err       error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Subscribe(onSample SampleFunc, onError ErrorFunc) (Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	f.onSample = onSample
	f.onError = onError
	f.mu.Unlock()
	return CancelFunc(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.cancelled = true
		f.cancels++
	}), nil
}

func (f *fakeSource) Emit(lat, lon float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelled || f.onSample == nil {
		return
	}
	f.onSample(domain.PositionSample{Coordinate: domain.Coordinate{Lat: lat, Lon: lon}, ReceivedAt: time.Unix(1715003456, 0)})
}

// EmitIgnoringCancel simulates a misbehaving source that keeps delivering.
func (f *fakeSource) EmitIgnoringCancel(lat, lon float64) {
	f.mu.Lock()
	cb := f.onSample
	f.mu.Unlock()
	cb(domain.PositionSample{Coordinate: domain.Coordinate{Lat: lat, Lon: lon}})
}

func (f *fakeSource) EmitError(code domain.PositionErrorCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelled || f.onError == nil {
		return
	}
	f.onError(&domain.PositionError{Code: code})
}

type recordingAlerter struct {
	mu     sync.Mutex
	alerts []*domain.RedZoneAlert
	err    error
}

func (r *recordingAlerter) Alert(_ context.Context, a *domain.RedZoneAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return r.err
}

func (r *recordingAlerter) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.alerts)
}

type positionWrite struct {
	userID string
	coord  domain.Coordinate
}

type recordingWriter struct {
	mu     sync.Mutex
	writes []positionWrite
	err    error
}

func (r *recordingWriter) UpdatePosition(_ context.Context, userID string, c domain.Coordinate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, positionWrite{userID: userID, coord: c})
	return r.err
}

func (r *recordingWriter) Writes() []positionWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]positionWrite(nil), r.writes...)
}

type recordingListener struct {
	mu       sync.Mutex
	statuses []domain.TrackingStatus
}

func (r *recordingListener) OnStatus(s domain.TrackingStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, s)
}

func (r *recordingListener) Last() domain.TrackingStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statuses[len(r.statuses)-1]
}
