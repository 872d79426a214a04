//go:build !windows

package app

func enableDPIAwareness() {}

// screenSize is unknown here; the window is placed at a fixed offset.
func screenSize() (w, h int) { return 0, 0 }
