//go:build !nogpu

// Command gpuca runs a cellular automaton on the GPU in a gogpu window.
//
// Space or R reseeds the lattice. Escape or Q quits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpuca"
	"github.com/gogpu/gpuca/internal/app"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	level, err := cfg.Level()
	if err != nil {
		log.Fatal(err)
	}
	gpuca.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	opts, err := cfg.Options()
	if err != nil {
		log.Fatal(err)
	}
	w, h := cfg.WindowSize()

	gapp := gogpu.NewApp(gogpu.DefaultConfig().
		WithTitle(fmt.Sprintf("gpuca: %s %dx%d", cfg.Rule, cfg.Width, cfg.Height)).
		WithSize(int(w), int(h)).
		WithContinuousRender(true))

	surface := &windowSurface{}
	var ca *gpuca.Context

	gapp.OnDraw(func(dc *gogpu.Context) {
		if ca == nil {
			provider := gapp.GPUContextProvider()
			if provider == nil {
				return
			}
			ca, err = gpuca.Initialize(provider, surface, opts...)
			if err != nil {
				log.Fatalf("Failed to initialize: %v", err)
			}
			log.Printf("Backend: %s", dc.Backend())
		}

		view, err := halView(dc.SurfaceView())
		if err != nil {
			log.Printf("Surface view: %v", err)
			return
		}
		surface.view = view

		sw, sh := dc.SurfaceSize()
		if sg := ca.SurfaceGeometry(); uint32(sw) != sg.Width || uint32(sh) != sg.Height {
			dispatch(ca, app.NewResizeEvent(int(sw), int(sh)))
		}
		dispatch(ca, app.RedrawEvent{})
	})

	gapp.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if ca == nil {
			return
		}
		dispatch(ca, app.KeyEvent{Key: key})
	})

	gapp.OnClose(func() {
		if ca != nil {
			dispatch(ca, app.CloseEvent{})
		}
	})

	if err := gapp.Run(); err != nil {
		log.Fatal(err)
	}
}

// dispatch forwards ev and handles the outcome. Fatal errors end the
// process; per-frame errors are logged and the loop continues.
func dispatch(ca *gpuca.Context, ev app.Event) {
	err := app.Dispatch(ca, ev)
	switch {
	case err == nil:
	case errors.Is(err, app.ErrQuit):
		_ = ca.Close()
		os.Exit(0)
	case gpuca.IsFatal(err):
		log.Fatalf("Fatal: %v", err)
	default:
		log.Printf("%T: %v", ev, err)
	}
}

// halView unwraps the HAL view behind the window's surface view.
func halView(sv *wgpu.TextureView) (hal.TextureView, error) {
	if sv == nil {
		return nil, errors.New("no surface view this frame")
	}
	v := sv.HalTextureView()
	if v == nil {
		return nil, errors.New("surface view released")
	}
	return v, nil
}

// windowSurface adapts the gogpu swap chain. gogpu owns acquisition and
// presentation, so the adapter only hands over the view of the current
// frame and tracks the configured size.
type windowSurface struct {
	view          hal.TextureView
	width, height uint32
}

func (s *windowSurface) Configure(width, height uint32) error {
	s.width, s.height = width, height
	return nil
}

func (s *windowSurface) Acquire() (hal.TextureView, error) {
	if s.view == nil {
		return nil, gpuca.ErrSurfaceNotConfigured
	}
	v := s.view
	s.view = nil
	return v, nil
}

func (s *windowSurface) Present() error { return nil }

func (s *windowSurface) Destroy() { s.view = nil }
