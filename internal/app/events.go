//go:build !nogpu

package app

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// ErrQuit is returned by Dispatch when the user asked to leave.
var ErrQuit = errors.New("app: quit requested")

// Event is one of ResizeEvent, RedrawEvent, KeyEvent or CloseEvent.
type Event interface {
	event()
}

// ResizeEvent reports a new surface size in pixels.
type ResizeEvent struct {
	Width  uint32
	Height uint32
}

// RedrawEvent asks for the next frame.
type RedrawEvent struct{}

// KeyEvent reports a key press.
type KeyEvent struct {
	Key gpucontext.Key
}

// CloseEvent reports that the window is going away.
type CloseEvent struct{}

func (ResizeEvent) event() {}
func (RedrawEvent) event() {}
func (KeyEvent) event()    {}
func (CloseEvent) event()  {}

// NewResizeEvent converts window dimensions, which hosts report as int,
// clamping negatives to zero.
func NewResizeEvent(width, height int) ResizeEvent {
	return ResizeEvent{Width: clampDim(width), Height: clampDim(height)}
}

func clampDim(v int) uint32 {
	if v < 0 {
		return 0
	}
	return uint32(v)
}

// Target is the part of gpuca.Context the event loop drives.
type Target interface {
	Resize(width, height uint32) error
	AdvanceAndRender() error
	Reseed() error
	Close() error
}

// Dispatch routes ev to target.
//
// Space and R reseed the lattice. Escape and Q return ErrQuit so the host
// can stop its loop; other keys are ignored.
func Dispatch(target Target, ev Event) error {
	switch ev := ev.(type) {
	case ResizeEvent:
		return target.Resize(ev.Width, ev.Height)
	case RedrawEvent:
		return target.AdvanceAndRender()
	case KeyEvent:
		switch ev.Key {
		case gpucontext.KeySpace, gpucontext.KeyR:
			return target.Reseed()
		case gpucontext.KeyEscape, gpucontext.KeyQ:
			return ErrQuit
		}
		return nil
	case CloseEvent:
		return target.Close()
	default:
		return fmt.Errorf("app: unknown event %T", ev)
	}
}
