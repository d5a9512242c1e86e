//go:build !nogpu

// Package app connects a host window to a gpuca.Context: it turns window
// events into Context calls and holds the command-line configuration
// shared by the binaries.
package app
