//go:build windows

package app

import (
	"golang.org/x/sys/windows"
)

// enableDPIAwareness opts the process out of bitmap scaling so the canvas
// maps one image pixel to one screen pixel at scale 1.
func enableDPIAwareness() {
	user32 := windows.NewLazySystemDLL("user32.dll")
	setProcessDPIAware := user32.NewProc("SetProcessDPIAware")
	if setProcessDPIAware.Find() != nil {
		return
	}
	_, _, _ = setProcessDPIAware.Call()
}

// screenSize returns the primary screen size in pixels.
func screenSize() (w, h int) {
	user32 := windows.NewLazySystemDLL("user32.dll")
	getSystemMetrics := user32.NewProc("GetSystemMetrics")
	cx, _, _ := getSystemMetrics.Call(uintptr(0)) // SM_CXSCREEN
	cy, _, _ := getSystemMetrics.Call(uintptr(1)) // SM_CYSCREEN
	return int(cx), int(cy)
}
