//go:build !nogpu

// Command gpuca-verify runs a lattice headless on the GPU and compares the
// result with the CPU reference rule.
//
// It exits non-zero when any cell differs. With -png it also writes the GPU
// generation as an upscaled image.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/gpuca"
	"github.com/gogpu/gpuca/internal/app"
	"github.com/gogpu/gpuca/internal/lattice"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	var (
		frames = flag.Int("frames", 64, "generations to run")
		output = flag.String("png", "", "write the final GPU generation to this PNG file")
	)
	flag.Parse()

	level, err := cfg.Level()
	if err != nil {
		log.Fatal(err)
	}
	gpuca.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := run(cfg, *frames, *output); err != nil {
		log.Fatal(err)
	}
}

func run(cfg *app.Config, frames int, output string) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	rule, err := lattice.ParseRule(cfg.Rule)
	if err != nil {
		return err
	}

	provider, err := gpuca.OpenStandalone(gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	defer provider.Close()
	log.Printf("Adapter: %s", provider.AdapterName())

	device, _ := provider.HAL()
	surface := gpuca.NewOffscreenSurface(device, gputypes.TextureFormatRGBA8Unorm)
	ca, err := gpuca.Initialize(provider, surface, opts...)
	if err != nil {
		return err
	}
	defer ca.Close()

	// Load a known start state so the CPU run begins from the same cells.
	start := lattice.RandomFill{Density: cfg.Density, Alive: lattice.StateOn}.
		Seed(ca.Geometry(), lattice.NewRNG(cfg.Seed))
	if err := ca.LoadState(start.Bytes()); err != nil {
		return err
	}
	for i := 0; i < frames; i++ {
		if err := ca.AdvanceAndRender(); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
	}
	got, err := ca.Snapshot()
	if err != nil {
		return err
	}
	want := rule.Run(start, frames)

	if output != "" {
		if err := writePNG(output, got, cfg.Scale); err != nil {
			return err
		}
		log.Printf("Snapshot saved to %s", output)
	}

	if bad := outOfRange(got, rule.States()); bad > 0 {
		return fmt.Errorf("%d cells hold a state outside %s", bad, rule)
	}
	diff := mismatches(got, want)
	if diff > 0 {
		return fmt.Errorf("%d of %d cells differ after %d generations", diff, len(want.Cells), frames)
	}
	log.Printf("OK: %s %s, %d generations, %d live cells",
		rule, ca.Geometry(), frames, got.Count(lattice.StateOn))
	return nil
}

func outOfRange(p lattice.Pattern, states uint32) int {
	n := 0
	for _, v := range p.Cells {
		if v >= states {
			n++
		}
	}
	return n
}

func mismatches(a, b lattice.Pattern) int {
	n := 0
	for i := range a.Cells {
		if a.Cells[i] != b.Cells[i] {
			n++
		}
	}
	return n
}

// palette maps cell states to colors.
var palette = []color.RGBA{
	lattice.StateOff:   {R: 10, G: 10, B: 16, A: 255},
	lattice.StateOn:    {R: 240, G: 240, B: 230, A: 255},
	lattice.StateDying: {R: 60, G: 110, B: 220, A: 255},
}

func writePNG(path string, p lattice.Pattern, scale int) error {
	src := image.NewRGBA(image.Rect(0, 0, int(p.Geometry.Width), int(p.Geometry.Height)))
	for y := uint32(0); y < p.Geometry.Height; y++ {
		for x := uint32(0); x < p.Geometry.Width; x++ {
			v := p.At(x, y)
			if int(v) < len(palette) {
				src.SetRGBA(int(x), int(y), palette[v])
			}
		}
	}
	if scale < 1 {
		scale = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx()*scale, src.Bounds().Dy()*scale))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
