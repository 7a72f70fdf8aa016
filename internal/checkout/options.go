package checkout

import (
	"time"

	"github.com/angelmondragon/storefront/pkg/logger"
)

const (
	DefaultSuccessDelay = 2 * time.Second
	DefaultFlashDelay   = 2 * time.Second
)

// Recorder receives order submission outcomes.
type Recorder interface {
	IncOrderSubmission(outcome string)
}

type options struct {
	scheduler    Scheduler
	logger       *logger.Logger
	metrics      Recorder
	successDelay time.Duration
	flashDelay   time.Duration
}

// Option configures a Checkout or a ProductView.
type Option func(*options)

func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.scheduler = s
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(o *options) {
		if logg != nil {
			o.logger = logg
		}
	}
}

func WithMetrics(rec Recorder) Option {
	return func(o *options) {
		if rec != nil {
			o.metrics = rec
		}
	}
}

// WithSuccessDelay sets how long a successful order stays visible before the
// cart is cleared.
func WithSuccessDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.successDelay = d
		}
	}
}

// WithFlashDelay sets how long the "added" acknowledgment lasts.
func WithFlashDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.flashDelay = d
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		scheduler:    TimerScheduler{},
		logger:       logger.Nop(),
		metrics:      nopRecorder{},
		successDelay: DefaultSuccessDelay,
		flashDelay:   DefaultFlashDelay,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type nopRecorder struct{}

func (nopRecorder) IncOrderSubmission(string) {}
