package sway

// Rect is the geometry block sway attaches to outputs and workspaces.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Mode is an output's active video mode. Refresh is in millihertz, as
// reported by sway.
type Mode struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	Refresh int `json:"refresh"`
}

// Output is one entry from `swaymsg -t get_outputs`. Outputs are read-only
// snapshots: they are re-fetched on demand, never cached.
type Output struct {
	Name        string `json:"name"`
	Rect        Rect   `json:"rect"`
	CurrentMode Mode   `json:"current_mode"`
}

// Workspace is one entry from `swaymsg -t get_workspaces`.
type Workspace struct {
	Name    string  `json:"name"`
	Focus   []int64 `json:"focus"`
	Output  string  `json:"output"`
	Focused bool    `json:"focused"`
	Rect    Rect    `json:"rect"`
	Visible bool    `json:"visible"`
	Num     int     `json:"num"`
}
