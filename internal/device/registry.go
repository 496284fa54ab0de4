package device

import (
	"errors"
	"fmt"
)

// Resolution identifies a video mode by its pixel dimensions. Refresh rate
// is deliberately excluded from identity: two outputs running the same mode
// at different rates share a capture device.
type Resolution struct {
	Width  int
	Height int
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Canonical computes the bounding-box resolution over a set of output
// resolutions: wide enough and tall enough to contain every one of them.
// The result is synthetic and need not match any real output's mode.
func Canonical(resolutions []Resolution) Resolution {
	var c Resolution
	for _, r := range resolutions {
		if r.Width > c.Width {
			c.Width = r.Width
		}
		if r.Height > c.Height {
			c.Height = r.Height
		}
	}
	return c
}

// Path returns the v4l2 device file for an allocated index.
func Path(index int) string {
	return fmt.Sprintf("/dev/video%d", index)
}

// Registry hands out one v4l2 loopback device index per distinct output
// resolution. The canonical resolution is permanently bound to the first
// configured index; every other resolution receives the next free index on
// first sight and keeps it for the life of the process. Entries are never
// released, even when the output that produced them disappears.
type Registry struct {
	devicesFrom int
	canonical   Resolution
	last        int
	indexes     map[Resolution]int
}

// NewRegistry builds the allocation table from the startup snapshot of
// output resolutions. The canonical resolution is computed once here and is
// not recomputed later, even if outputs change.
func NewRegistry(devicesFrom int, resolutions []Resolution) (*Registry, error) {
	if len(resolutions) == 0 {
		return nil, errors.New("no output resolutions to build the device table from")
	}
	r := &Registry{
		devicesFrom: devicesFrom,
		canonical:   Canonical(resolutions),
		last:        devicesFrom,
		indexes:     make(map[Resolution]int, len(resolutions)+1),
	}
	r.indexes[r.canonical] = devicesFrom
	for _, res := range resolutions {
		r.Allocate(res)
	}
	return r, nil
}

// Allocate returns the device index bound to res, assigning the next free
// index on first encounter. Idempotent for already-known resolutions.
func (r *Registry) Allocate(res Resolution) int {
	if idx, ok := r.indexes[res]; ok {
		return idx
	}
	r.last++
	r.indexes[res] = r.last
	return r.last
}

// Canonical returns the bounding-box resolution from the startup snapshot.
func (r *Registry) Canonical() Resolution {
	return r.canonical
}

// CanonicalDevice returns the index downstream consumers read from. It is
// always the first configured index, regardless of later allocations.
func (r *Registry) CanonicalDevice() int {
	return r.devicesFrom
}
