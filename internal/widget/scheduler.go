package widget

import (
	"context"
	"errors"
	"log"
	"time"

	"sitesearch/internal/eventbus"
	"sitesearch/internal/index"
)

// ErrNotInitialized is returned by Scheduler.Run when every attempt failed
var ErrNotInitialized = errors.New("search widget was not initialized")

// Target is what the scheduler initializes
type Target interface {
	Initialize() bool
	IsInitialized() bool
}

// RunFunc executes an initialization attempt. Hosts with their own event
// goroutine use it to run fn there; it returns false if ctx ends first.
type RunFunc func(ctx context.Context, fn func() bool) bool

// Scheduler decides when to initialize a widget. If the index source can
// signal readiness the first attempt runs once that signal fires, and the
// remaining fallback delays, measured from the signal, cover a file that
// was not fully written yet. Otherwise the fallback delays, measured from
// Run, are used. The first attempt always runs, later ones only while the
// widget is still uninitialized.
type Scheduler struct {
	target Target
	source index.Source
	delays []time.Duration
	bus    eventbus.EventBus
	run    RunFunc
}

// NewScheduler creates a scheduler. bus may be nil.
func NewScheduler(target Target, source index.Source, delays []time.Duration, bus eventbus.EventBus) *Scheduler {
	if len(delays) == 0 {
		delays = []time.Duration{100 * time.Millisecond, time.Second}
	}
	return &Scheduler{
		target: target,
		source: source,
		delays: delays,
		bus:    bus,
		run: func(_ context.Context, fn func() bool) bool {
			return fn()
		},
	}
}

// SetRunFunc sets the function that executes initialization attempts
func (s *Scheduler) SetRunFunc(fn RunFunc) {
	s.run = fn
}

// Run blocks until the widget is initialized, the schedule is exhausted or
// ctx is done. Cancellation is not an error.
func (s *Scheduler) Run(ctx context.Context) error {
	if ready := s.source.Ready(); ready != nil {
		return s.runOnReady(ctx, ready)
	}
	return s.runFallback(ctx)
}

func (s *Scheduler) runOnReady(ctx context.Context, ready <-chan struct{}) error {
	log.Printf("Waiting for search index from %s", s.source.Name())
	select {
	case <-ctx.Done():
		return nil
	case <-ready:
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.IndexReadyEvent{Source: s.source.Name()})
	}

	// The file may still be mid-write; a failed first attempt falls back to
	// the remaining delays, measured from readiness
	delays := append([]time.Duration{0}, s.delays[1:]...)
	return s.runSchedule(ctx, delays)
}

func (s *Scheduler) runFallback(ctx context.Context) error {
	return s.runSchedule(ctx, s.delays)
}

// runSchedule makes one attempt per delay, each delay measured from the
// start of the schedule. Attempts after the first only run while the target
// is still uninitialized.
func (s *Scheduler) runSchedule(ctx context.Context, delays []time.Duration) error {
	start := time.Now()
	for i, delay := range delays {
		if i > 0 {
			if s.target.IsInitialized() {
				return nil
			}
			log.Printf("Retrying search initialization (attempt %d of %d) in %s",
				i+1, len(delays), time.Until(start.Add(delay)).Round(time.Millisecond))
			if s.bus != nil {
				s.bus.Publish(eventbus.InitRetryScheduledEvent{Attempt: i + 1, DelayMs: delay.Milliseconds()})
			}
		}

		timer := time.NewTimer(time.Until(start.Add(delay)))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if i > 0 && s.target.IsInitialized() {
			return nil
		}
		if s.attempt(ctx) {
			return nil
		}
	}

	if ctx.Err() != nil || s.target.IsInitialized() {
		return nil
	}
	log.Printf("Search initialization gave up after %d attempts", len(delays))
	return ErrNotInitialized
}

func (s *Scheduler) attempt(ctx context.Context) bool {
	return s.run(ctx, s.target.Initialize)
}
