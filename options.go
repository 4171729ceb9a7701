package physmon

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"
)

// Option configures a Monitor at construction time. See NewMonitor.
type Option interface {
	apply(*options) error
}

type optionFunc func(*options) error

func (f optionFunc) apply(o *options) error {
	return f(o)
}

type options struct {
	retryInterval time.Duration
	logger        *slog.Logger
	timerService  TimerService
	mutex         bool
}

func defaultOptions() options {
	return options{
		retryInterval: 30 * time.Second,
		logger:        slog.Default(),
		timerService:  defaultTimerService{},
	}
}

// WithRetryInterval sets the duration the Monitor waits, in the Waiting state, before reissuing
// AsyncOpen after a failed open attempt. The default is 30s. The interval must not be negative.
func WithRetryInterval(d time.Duration) Option {
	return optionFunc(func(o *options) error {
		if d < 0 {
			return errors.Wrap(ErrNegativeRetryInterval, "WithRetryInterval")
		}
		o.retryInterval = d
		return nil
	})
}

// WithLogger overrides the *slog.Logger used for illegal-event warnings and transition debug logs.
// The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(o *options) error {
		if l != nil {
			o.logger = l
		}
		return nil
	})
}

// WithTimerService overrides the TimerService used to schedule the retry timer. The default wraps
// time.AfterFunc.
func WithTimerService(ts TimerService) Option {
	return optionFunc(func(o *options) error {
		if ts != nil {
			o.timerService = ts
		}
		return nil
	})
}

// WithMutex serializes every call into the Monitor's dispatcher with a sync.Mutex, for callers that
// cannot guarantee delivery on a single executor (see the package doc's concurrency contract). Handlers
// still execute atomically from dispatch to return; this only protects the boundary between dispatches.
func WithMutex() Option {
	return optionFunc(func(o *options) error {
		o.mutex = true
		return nil
	})
}

// defaultTimerService schedules retries with time.AfterFunc.
type defaultTimerService struct{}

func (defaultTimerService) Start(d time.Duration, callback func()) Timer {
	return afterFuncTimer{t: time.AfterFunc(d, callback)}
}

type afterFuncTimer struct {
	t *time.Timer
}

func (a afterFuncTimer) Cancel() {
	a.t.Stop()
}
