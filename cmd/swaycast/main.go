package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/1broseidon/swaycast/internal/config"
	"github.com/1broseidon/swaycast/internal/daemon"
	"github.com/1broseidon/swaycast/internal/device"
	"github.com/1broseidon/swaycast/internal/pipeline"
	"github.com/1broseidon/swaycast/internal/sway"
)

// version is overridden at release time via -ldflags "-X main.version=...".
var version = "0.3.0"

const description = `swaycast wraps wf-recorder and ffmpeg to automatically switch the screen
being recorded based on current window focus. If there are no screens
available for streaming, a black screen is shown instead.

DIFFERENT RESOLUTIONS

When running outputs with different resolutions, the resulting stream has
the smallest resolution that can fit all output resolutions. For example,
two outputs, one 1600x1200 and one 1920x1080, result in an output stream of
1920x1200. Any remaining space is padded black.

To support this, swaycast needs a v4l2loopback device for each distinct
resolution, plus the combined one if applicable. The --devices-from option
specifies the first device index swaycast may use; that index is always the
output device to consume in other applications.

DYNAMICALLY CHANGING RESOLUTIONS

As long as enough v4l2loopback devices are available for new resolutions,
changing an output's resolution is fine. A resolution wider or taller than
the combined one will fail, since a v4l2loopback device cannot change
resolution once opened.`

func main() {
	app := &cli.App{
		Name:        "swaycast",
		Usage:       "record whichever sway output holds focus into a v4l2 loopback device",
		Version:     version,
		Description: description,
		Flags: []cli.Flag{
			&cli.IntSliceFlag{
				Name:  "not-ws",
				Usage: "do not show this workspace `NUM` (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "not-screen",
				Usage: "do not show this screen `NAME`, e.g. HDMI-A-1 (repeatable)",
			},
			&cli.IntFlag{
				Name:    "devices-from",
				Aliases: []string{"d"},
				Value:   0,
				Usage:   "use video devices starting at `INDEX`; /dev/video<INDEX> is the output device",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "verbose logging, including child process output",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "config file `PATH` (default ~/.config/swaycast/config.yaml)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "swaycast: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))

	client := sway.NewClient(logger)

	outputs, err := client.ListOutputs()
	if err != nil {
		return err
	}
	resolutions := make([]device.Resolution, 0, len(outputs))
	for _, o := range outputs {
		resolutions = append(resolutions, device.Resolution{
			Width:  o.CurrentMode.Width,
			Height: o.CurrentMode.Height,
		})
	}
	registry, err := device.NewRegistry(cfg.DevicesFrom, resolutions)
	if err != nil {
		return err
	}
	logger.Info("device table initialized",
		"canonical", registry.Canonical(),
		"output_device", device.Path(registry.CanonicalDevice()))

	supervisor := pipeline.NewSupervisor(client, registry, cfg, logger)
	loop := daemon.NewLoop(daemon.LoopConfig{
		Config: cfg,
		Logger: logger,
	}, client, supervisor)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return loop.Run(ctx)
}

// loadConfig layers CLI flags over the optional YAML config file.
func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if c.IsSet("devices-from") {
		cfg.DevicesFrom = c.Int("devices-from")
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}
	cfg.BlacklistWorkspaces(c.IntSlice("not-ws")...)
	cfg.BlacklistScreens(c.StringSlice("not-screen")...)

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}
