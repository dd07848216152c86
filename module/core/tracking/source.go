package tracking

import "github.com/nandanugg/tourist-safety/module/core/domain"

type (
	SampleFunc func(domain.PositionSample)
	ErrorFunc  func(*domain.PositionError)
)

// Subscription is the handle returned by PositionSource.Subscribe. Cancel is
// idempotent, and once it returns no callback of the subscription runs again.
type Subscription interface {
	Cancel()
}

// PositionSource is a continuous stream of device positions. Each event is
// either a sample or an error; timeouts are reported as errors.
type PositionSource interface {
	Subscribe(onSample SampleFunc, onError ErrorFunc) (Subscription, error)
}

// CancelFunc adapts a plain function to Subscription.
type CancelFunc func()

func (f CancelFunc) Cancel() { f() }

type namedSource interface {
	Name() string
}

func sourceName(src PositionSource) string {
	if n, ok := src.(namedSource); ok {
		return n.Name()
	}
	return "unknown"
}
