package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/meetreminder/meetreminder/internal/logger"
)

// HandlerFunc is invoked when its trigger fires
type HandlerFunc func(ctx context.Context) error

// Runner fires registered triggers. Handlers run one after another on the
// runner goroutine, so a handler never overlaps itself within a process.
type Runner struct {
	registry Registry
	tick     time.Duration
	now      func() time.Time
	log      *logger.Logger

	mu       sync.Mutex
	handlers map[string]HandlerFunc
	lastRun  map[string]time.Time
}

// NewRunner creates a Runner polling registry every tick
func NewRunner(registry Registry, tick time.Duration, log *logger.Logger) *Runner {
	if tick <= 0 {
		tick = 15 * time.Second
	}
	return &Runner{
		registry: registry,
		tick:     tick,
		now:      time.Now,
		log:      log.WithComponent("trigger_runner"),
		handlers: make(map[string]HandlerFunc),
		lastRun:  make(map[string]time.Time),
	}
}

// Handle binds a handler name to fn
func (r *Runner) Handle(name string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = fn
}

// Run ticks until ctx is cancelled
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()

	r.log.Info().Dur("tick", r.tick).Msg("trigger runner started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("trigger runner stopped")
			return
		case <-ticker.C:
			r.Fire(ctx)
		}
	}
}

// Fire runs every trigger whose interval has elapsed and returns how many ran.
func (r *Runner) Fire(ctx context.Context) int {
	triggers, err := r.registry.List(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("failed to list triggers")
		return 0
	}

	fired := 0
	for _, t := range triggers {
		r.mu.Lock()
		fn, ok := r.handlers[t.Handler]
		last, ran := r.lastRun[t.Handler]
		r.mu.Unlock()

		if !ok {
			r.log.Debug().Str("handler", t.Handler).Msg("no handler bound for trigger")
			continue
		}
		now := r.now()
		if ran && now.Sub(last) < t.Every {
			continue
		}

		r.mu.Lock()
		r.lastRun[t.Handler] = now
		r.mu.Unlock()

		fired++
		if err := fn(ctx); err != nil {
			r.log.Error().Err(err).Str("handler", t.Handler).Msg("trigger handler failed")
		}
	}
	return fired
}
