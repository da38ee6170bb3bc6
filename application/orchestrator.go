// Package application drives the game at a fixed frame rate.
package application

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Ticker advances by the time elapsed since the previous frame.
type Ticker interface {
	Tick(delta time.Duration)
}

// Orchestrator owns the frame loop. The ticker, the render hook and every
// posted function run on the loop goroutine, one at a time.
type Orchestrator struct {
	target   Ticker
	interval time.Duration
	inbox    chan func()
	render   func()
	logger   *slog.Logger
}

type option func(*Orchestrator)

// WithRender runs fn after every frame.
func WithRender(fn func()) option {
	return func(o *Orchestrator) {
		o.render = fn
	}
}

func WithLogger(l *slog.Logger) option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// NewOrchestrator ticks target fps times per second.
func NewOrchestrator(target Ticker, fps int, opts ...option) *Orchestrator {
	if fps <= 0 {
		fps = 30
	}
	o := &Orchestrator{
		target:   target,
		interval: time.Second / time.Duration(fps),
		inbox:    make(chan func()),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Post hands fn to the loop and waits until the loop has taken it.
func (o *Orchestrator) Post(ctx context.Context, fn func()) error {
	select {
	case o.inbox <- fn:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run loops until ctx is done. It returns nil when ctx was cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	last := time.Now()
	o.logger.Debug("frame loop started", "interval", o.interval)
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case fn := <-o.inbox:
			fn()
		case now := <-ticker.C:
			o.target.Tick(now.Sub(last))
			last = now
			if o.render != nil {
				o.render()
			}
		}
	}
}
