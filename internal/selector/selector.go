// Package selector decides which output, if any, should currently be
// recorded, based on the compositor's workspace snapshot and the configured
// blacklists.
package selector

import (
	"sort"

	"github.com/1broseidon/swaycast/internal/config"
	"github.com/1broseidon/swaycast/internal/sway"
)

// Select filters workspaces down to valid recording candidates and orders
// them focused-first. A workspace survives iff it is visible, its output is
// not screen-blacklisted, and its number is not workspace-blacklisted. The
// ordering is a stable partition: among workspaces with equal focused state
// the compositor's reply order is preserved, there is no secondary key.
func Select(cfg *config.Config, workspaces []sway.Workspace) []sway.Workspace {
	candidates := make([]sway.Workspace, 0, len(workspaces))
	for _, ws := range workspaces {
		if !ws.Visible {
			continue
		}
		if cfg.ScreenBlacklisted(ws.Output) {
			continue
		}
		if cfg.WorkspaceBlacklisted(ws.Num) {
			continue
		}
		candidates = append(candidates, ws)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Focused && !candidates[j].Focused
	})
	return candidates
}

// Target returns the output the first candidate lives on, or "" when no
// candidate survived filtering (the black-screen fallback).
func Target(candidates []sway.Workspace) string {
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0].Output
}
