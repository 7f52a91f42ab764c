package marketdata

import "sync/atomic"

// Mode is the process-wide data-mode flag. When synthetic, callers are served
// generated data and the upstream is never contacted. The flag is read at the
// start of each operation; flipping it affects future calls only.
type Mode struct {
	synthetic atomic.Bool
}

// NewMode returns a Mode with the given startup value.
func NewMode(synthetic bool) *Mode {
	m := &Mode{}
	m.synthetic.Store(synthetic)
	return m
}

// Synthetic reports whether synthetic data is active.
func (m *Mode) Synthetic() bool { return m.synthetic.Load() }

// SetSynthetic sets the flag.
func (m *Mode) SetSynthetic(v bool) { m.synthetic.Store(v) }

// Toggle flips the flag and returns the new value.
func (m *Mode) Toggle() bool {
	for {
		old := m.synthetic.Load()
		if m.synthetic.CompareAndSwap(old, !old) {
			return !old
		}
	}
}
