// Package daemon runs the reactive loop that keeps the capture pipeline
// pointed at the focused output.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/1broseidon/swaycast/internal/config"
	"github.com/1broseidon/swaycast/internal/selector"
	"github.com/1broseidon/swaycast/internal/sway"
)

// Compositor is the slice of the sway client the loop consumes.
type Compositor interface {
	ListWorkspaces() ([]sway.Workspace, error)
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

// PipelineSwitcher owns the capture children and swaps them between
// targets.
type PipelineSwitcher interface {
	Target() string
	Switch(target string) error
	Stop()
}

// LoopConfig holds configuration for the event loop.
type LoopConfig struct {
	Config *config.Config
	Logger *slog.Logger
}

// Loop consumes the focus notification stream and re-evaluates the
// recording target on every signal, one at a time, in arrival order. It is
// the only mutator of the supervisor and the device table; there is no
// internal parallelism.
type Loop struct {
	cfg        *config.Config
	compositor Compositor
	supervisor PipelineSwitcher
	logger     *slog.Logger
}

// NewLoop creates the event loop.
func NewLoop(cfg LoopConfig, compositor Compositor, supervisor PipelineSwitcher) *Loop {
	return &Loop{
		cfg:        cfg.Config,
		compositor: compositor,
		supervisor: supervisor,
		logger:     cfg.Logger,
	}
}

// Run subscribes to focus events, starts the initial pipeline, and blocks
// until the stream closes (compositor exited), the context is cancelled, or
// an unrecoverable error occurs. The subscription is opened before the
// initial sync so no event between the two is lost.
func (l *Loop) Run(ctx context.Context) error {
	events, err := l.compositor.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("subscribe to focus events: %w", err)
	}
	defer l.supervisor.Stop()

	if err := l.sync(true); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("shutting down")
			return nil
		case _, ok := <-events:
			if !ok {
				l.logger.Info("focus event stream closed")
				return nil
			}
			l.logger.Debug("focus changed")
			if err := l.sync(false); err != nil {
				return err
			}
		}
	}
}

// sync recomputes the recording target and swaps the pipeline when it
// moved. The comparison is by output-name identity only; an unchanged
// target is the single short-circuit in the system. force bypasses it so
// the startup pass always constructs a pipeline.
func (l *Loop) sync(force bool) error {
	workspaces, err := l.compositor.ListWorkspaces()
	if err != nil {
		return fmt.Errorf("list workspaces: %w", err)
	}
	target := selector.Target(selector.Select(l.cfg, workspaces))
	if !force && target == l.supervisor.Target() {
		return nil
	}
	return l.apply(target)
}

// apply swaps the pipeline to target. A lookup failure — the selected
// output vanished between the workspace query and the output lookup — falls
// back to black instead of aborting; IPC and spawn failures stay fatal.
func (l *Loop) apply(target string) error {
	err := l.supervisor.Switch(target)
	if err == nil {
		return nil
	}
	if errors.Is(err, sway.ErrOutputNotFound) {
		l.logger.Warn("selected output disappeared, falling back to black",
			"target", target, "error", err)
		return l.supervisor.Switch("")
	}
	return err
}
