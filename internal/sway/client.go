package sway

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"unicode/utf8"
)

// ErrIPC wraps every failure to reach the compositor or to parse its reply.
var ErrIPC = errors.New("sway ipc failure")

// ErrOutputNotFound is returned when a previously selected output is absent
// from a fresh get_outputs reply.
var ErrOutputNotFound = errors.New("output not found")

// Client issues blocking swaymsg queries and opens the focus notification
// stream. It holds no connection state: every query is a single swaymsg
// invocation whose output is captured and decoded.
type Client struct {
	logger *slog.Logger
}

// NewClient creates a compositor client that logs through logger.
func NewClient(logger *slog.Logger) *Client {
	return &Client{logger: logger}
}

// ListOutputs queries the compositor for all known outputs.
func (c *Client) ListOutputs() ([]Output, error) {
	var outputs []Output
	if err := c.query("get_outputs", &outputs); err != nil {
		return nil, err
	}
	c.logger.Debug("queried outputs", "count", len(outputs))
	return outputs, nil
}

// ListWorkspaces queries the compositor for all workspaces. The reply order
// is preserved; the selector relies on it.
func (c *Client) ListWorkspaces() ([]Workspace, error) {
	var workspaces []Workspace
	if err := c.query("get_workspaces", &workspaces); err != nil {
		return nil, err
	}
	c.logger.Debug("queried workspaces", "count", len(workspaces))
	return workspaces, nil
}

// FindOutput re-queries the compositor and resolves name to its current
// state. A missing name is a lookup failure, distinct from IPC failure.
func (c *Client) FindOutput(name string) (Output, error) {
	outputs, err := c.ListOutputs()
	if err != nil {
		return Output{}, err
	}
	for _, o := range outputs {
		if o.Name == name {
			return o, nil
		}
	}
	return Output{}, fmt.Errorf("%w: %s", ErrOutputNotFound, name)
}

func (c *Client) query(msgType string, v interface{}) error {
	out, err := exec.Command("swaymsg", "-t", msgType).Output()
	if err != nil {
		return fmt.Errorf("%w: swaymsg -t %s: %v", ErrIPC, msgType, err)
	}
	if !utf8.Valid(out) {
		return fmt.Errorf("%w: swaymsg -t %s returned invalid UTF-8", ErrIPC, msgType)
	}
	if err := json.Unmarshal(out, v); err != nil {
		return fmt.Errorf("%w: swaymsg -t %s returned invalid JSON: %v", ErrIPC, msgType, err)
	}
	return nil
}

// Subscribe opens the long-lived window-event stream and delivers one empty
// signal per event line. The payload is intentionally not parsed: only
// arrival matters. The channel closes when the underlying stream ends
// (compositor exited) or ctx is cancelled.
func (c *Client) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	cmd := exec.CommandContext(ctx, "swaymsg", "-t", "subscribe", "-m", `["window"]`)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: open subscribe stdout: %v", ErrIPC, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start swaymsg subscribe: %v", ErrIPC, err)
	}

	events := make(chan struct{})
	go func() {
		defer close(events)
		// Event payloads carry full window trees and routinely exceed the
		// default scanner buffer.
		scanner := bufio.NewScanner(stdout)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case events <- struct{}{}:
			case <-ctx.Done():
				_ = cmd.Wait()
				return
			}
		}
		if err := scanner.Err(); err != nil {
			c.logger.Warn("focus event stream error", "error", err)
		}
		_ = cmd.Wait()
	}()
	return events, nil
}
