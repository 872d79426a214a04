package model

import (
	"sync/atomic"
)

// DrawModel tracks whether draw mode is on. The zero value is off and usable.
// Concurrency-safe via atomic Bool because the keyboard shortcut and the
// toolbar button both flip it.
type DrawModel struct{ enabled atomic.Bool }

// Enabled reports whether left-drag draws rectangles.
func (m *DrawModel) Enabled() bool {
	if m == nil {
		return false
	}
	return m.enabled.Load()
}

// SetEnabled stores the flag and reports whether it changed.
func (m *DrawModel) SetEnabled(b bool) bool {
	if m == nil {
		return false
	}
	return m.enabled.Swap(b) != b
}

// Toggle flips the flag and returns the new value.
func (m *DrawModel) Toggle() bool {
	if m == nil {
		return false
	}
	for {
		prev := m.enabled.Load()
		if m.enabled.CompareAndSwap(prev, !prev) {
			return !prev
		}
	}
}
