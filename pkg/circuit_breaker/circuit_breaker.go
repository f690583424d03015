package circuit_breaker

import (
	"sync"
	"time"

	"github.com/pkg/errors"
)

type State uint8

const (
	Closed State = iota + 1
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// Window is the number of recent calls the failure ratio is computed over.
	Window int `envconfig:"CB_WINDOW" default:"20"`
	// Ratio of failed calls in a full window that opens the breaker.
	Ratio float64 `envconfig:"CB_FAILURE_RATIO" default:"0.5"`
	// Cooldown is how long the breaker stays open before letting probes through.
	Cooldown time.Duration `envconfig:"CB_COOLDOWN" default:"10s"`
	// Probes is the number of consecutive successes in half-open state needed to close.
	Probes int `envconfig:"CB_HALF_OPEN_PROBES" default:"3"`
}

type Option func(*Breaker)

// WithIgnored makes errors matching any of errs count as successful calls.
func WithIgnored(errs ...error) Option {
	return func(b *Breaker) { b.ignored = append(b.ignored, errs...) }
}

func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

type Breaker struct {
	mu       sync.Mutex
	cfg      Config
	state    State
	failures []bool // ring of recent outcomes
	pos      int
	filled   int
	openedAt time.Time
	probes   int

	ignored []error
	now     func() time.Time
}

func New(cfg Config, opts ...Option) *Breaker {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	b := &Breaker{
		cfg:      cfg,
		state:    Closed,
		failures: make([]bool, cfg.Window),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Do runs fn unless the breaker is open, in which case it returns ErrOpen.
func (b *Breaker) Do(fn func() error) error {
	if !b.allow() {
		return ErrOpen
	}
	err := fn()
	b.record(b.failed(err))
	return err
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reset()
}

func (b *Breaker) failed(err error) bool {
	if err == nil {
		return false
	}
	for _, ig := range b.ignored {
		if errors.Is(err, ig) {
			return false
		}
	}
	return true
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state != Open {
		return true
	}
	if b.now().Sub(b.openedAt) < b.cfg.Cooldown {
		return false
	}
	b.state = HalfOpen
	b.probes = 0
	return true
}

func (b *Breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		if failed {
			b.trip()
			return
		}
		b.probes++
		if b.probes >= b.cfg.Probes {
			b.reset()
		}
	case Closed:
		b.failures[b.pos] = failed
		b.pos = (b.pos + 1) % len(b.failures)
		if b.filled < len(b.failures) {
			b.filled++
		}
		if b.filled < len(b.failures) {
			return
		}
		n := 0
		for _, f := range b.failures {
			if f {
				n++
			}
		}
		if float64(n)/float64(len(b.failures)) >= b.cfg.Ratio {
			b.trip()
		}
	case Open:
		// a call admitted before another goroutine tripped the breaker
	}
}

func (b *Breaker) trip() {
	b.state = Open
	b.openedAt = b.now()
	b.probes = 0
}

func (b *Breaker) reset() {
	for i := range b.failures {
		b.failures[i] = false
	}
	b.pos, b.filled, b.probes = 0, 0, 0
	b.state = Closed
}
