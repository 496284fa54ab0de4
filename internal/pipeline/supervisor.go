// Package pipeline owns the capture subprocesses feeding the v4l2 loopback
// devices and swaps them atomically when the recording target changes.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/1broseidon/swaycast/internal/config"
	"github.com/1broseidon/swaycast/internal/device"
	"github.com/1broseidon/swaycast/internal/sway"
)

// ErrSpawn wraps a failure to start a capture child. Pipeline construction
// has no partial-recovery path: the caller treats it as fatal.
var ErrSpawn = errors.New("pipeline spawn failure")

const (
	pixelFormat    = "yuyv422"
	blackFrameRate = 25

	// scalerStartDelay gives wf-recorder time to write its first frames
	// before ffmpeg opens the same device for reading. This is a known
	// race-prone heuristic, not a handshake: the device offers no signal
	// for when it is safe to open.
	scalerStartDelay = 100 * time.Millisecond
)

// OutputResolver re-queries the compositor for the current state of a named
// output.
type OutputResolver interface {
	FindOutput(name string) (sway.Output, error)
}

// ActivePipeline is the set of children currently feeding the canonical
// device. It is replaced wholesale on every swap, never mutated in place.
// The ID only exists to correlate log lines across a swap.
type ActivePipeline struct {
	ID     uuid.UUID
	Target string // output name, "" while streaming black
	procs  []process
}

// Supervisor owns zero or more capture children and performs the atomic
// stop-then-start swap between targets. It is not safe for concurrent use;
// the event loop is its only caller.
type Supervisor struct {
	resolver OutputResolver
	registry *device.Registry
	logger   *slog.Logger

	start       startFunc
	scalerDelay time.Duration

	active *ActivePipeline
}

// NewSupervisor creates a supervisor spawning real wf-recorder and ffmpeg
// children.
func NewSupervisor(resolver OutputResolver, registry *device.Registry, cfg *config.Config, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		resolver:    resolver,
		registry:    registry,
		logger:      logger,
		start:       newStartFunc(cfg.Verbose),
		scalerDelay: scalerStartDelay,
	}
}

// Target returns the output currently being recorded, or "" when the black
// pipeline (or nothing yet) is active.
func (s *Supervisor) Target() string {
	if s.active == nil {
		return ""
	}
	return s.active.Target
}

// Switch tears down the active pipeline and constructs the one matching
// target; "" selects the black pipeline. Old children are signalled before
// any new child is spawned.
func (s *Supervisor) Switch(target string) error {
	s.Stop()
	if target == "" {
		return s.streamBlack()
	}
	return s.record(target)
}

// Stop kills every child owned by the active pipeline. Termination is
// best-effort and fire-and-forget: delivery failures are logged, not
// returned, and no child is waited for here (reaping happens in the
// background).
func (s *Supervisor) Stop() {
	if s.active == nil {
		return
	}
	var errs *multierror.Error
	for _, p := range s.active.procs {
		if err := p.Kill(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("kill pid %d: %w", p.Pid(), err))
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		s.logger.Warn("terminating pipeline", "pipeline", s.active.ID, "error", err)
	} else {
		s.logger.Debug("pipeline terminated", "pipeline", s.active.ID, "children", len(s.active.procs))
	}
	s.active = nil
}

// streamBlack spawns a single ffmpeg generating solid black frames at the
// canonical resolution straight into the canonical device.
func (s *Supervisor) streamBlack() error {
	canon := s.registry.Canonical()
	out := device.Path(s.registry.CanonicalDevice())
	proc, err := s.start("ffmpeg",
		"-f", "lavfi",
		"-i", fmt.Sprintf("color=c=black:s=%s:r=%d", canon, blackFrameRate),
		"-vcodec", "rawvideo",
		"-pix_fmt", pixelFormat,
		"-f", "v4l2",
		out,
	)
	if err != nil {
		return fmt.Errorf("%w: ffmpeg black source: %v", ErrSpawn, err)
	}
	s.active = &ActivePipeline{ID: uuid.New(), procs: []process{proc}}
	s.logger.Info("streaming black", "resolution", canon, "device", out, "pipeline", s.active.ID)
	return nil
}

// record spawns the capture pipeline for the named output: wf-recorder into
// the output's own device, plus a letterboxing ffmpeg scaler into the
// canonical device when the native resolution differs from the canonical
// one.
func (s *Supervisor) record(name string) error {
	output, err := s.resolver.FindOutput(name)
	if err != nil {
		return fmt.Errorf("resolve output %q: %w", name, err)
	}
	res := device.Resolution{Width: output.CurrentMode.Width, Height: output.CurrentMode.Height}
	idx := s.registry.Allocate(res)

	recorder, err := s.start("wf-recorder",
		"--muxer=v4l2",
		"--codec=rawvideo",
		"--pixel-format="+pixelFormat,
		"-o"+output.Name,
		"--file="+device.Path(idx),
	)
	if err != nil {
		return fmt.Errorf("%w: wf-recorder for %s: %v", ErrSpawn, name, err)
	}
	pl := &ActivePipeline{ID: uuid.New(), Target: name, procs: []process{recorder}}
	s.active = pl

	if idx != s.registry.CanonicalDevice() {
		canon := s.registry.Canonical()
		s.logger.Debug("output below canonical resolution, scaling",
			"output", name, "resolution", res, "canonical", canon)
		time.Sleep(s.scalerDelay)
		scaler, err := s.start("ffmpeg",
			"-i", device.Path(idx),
			"-vcodec", "rawvideo",
			"-pix_fmt", pixelFormat,
			"-f", "v4l2",
			"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
				canon.Width, canon.Height, canon.Width, canon.Height),
			device.Path(s.registry.CanonicalDevice()),
		)
		if err != nil {
			return fmt.Errorf("%w: ffmpeg scaler for %s: %v", ErrSpawn, name, err)
		}
		pl.procs = append(pl.procs, scaler)
	}

	s.logger.Info("recording", "output", name, "resolution", res,
		"device", device.Path(idx), "pipeline", pl.ID)
	return nil
}
