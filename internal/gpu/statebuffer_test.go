//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpuca/internal/lattice"
)

func TestDoubleBufferRoles(t *testing.T) {
	g := lattice.Geometry{Width: 4, Height: 4}
	a := &StateBuffer{label: "a", geometry: g}
	b := &StateBuffer{label: "b", geometry: g}
	db, err := NewDoubleBuffer(a, b)
	if err != nil {
		t.Fatalf("NewDoubleBuffer: %v", err)
	}

	for i := range 4 {
		if db.Read() == db.Write() {
			t.Fatalf("step %d: read and write alias", i)
		}
		if db.Read() != [2]*StateBuffer{a, b}[db.Active()] {
			t.Fatalf("step %d: Read() does not match Active() = %d", i, db.Active())
		}
		before := db.Active()
		db.Swap()
		db.Swap()
		if db.Active() != before {
			t.Fatalf("step %d: double swap changed active from %d to %d", i, before, db.Active())
		}
		db.Swap()
	}
}

func TestDoubleBufferSwapExchangesRoles(t *testing.T) {
	g := lattice.Geometry{Width: 2, Height: 2}
	a := &StateBuffer{label: "a", geometry: g}
	b := &StateBuffer{label: "b", geometry: g}
	db, _ := NewDoubleBuffer(a, b)

	read, write := db.Read(), db.Write()
	db.Swap()
	if db.Read() != write || db.Write() != read {
		t.Error("Swap did not exchange read and write")
	}
}

func TestNewDoubleBufferRejects(t *testing.T) {
	g := lattice.Geometry{Width: 4, Height: 4}
	a := &StateBuffer{label: "a", geometry: g}
	other := &StateBuffer{label: "c", geometry: lattice.Geometry{Width: 8, Height: 4}}

	if _, err := NewDoubleBuffer(a, a); !errors.Is(err, ErrAliasedBuffers) {
		t.Errorf("NewDoubleBuffer(a, a) error = %v, want ErrAliasedBuffers", err)
	}
	if _, err := NewDoubleBuffer(a, nil); !errors.Is(err, ErrAliasedBuffers) {
		t.Errorf("NewDoubleBuffer(a, nil) error = %v, want ErrAliasedBuffers", err)
	}
	if _, err := NewDoubleBuffer(a, other); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("NewDoubleBuffer(a, other) error = %v, want ErrGeometryMismatch", err)
	}
}

func TestStateBufferCreateDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	set, err := NewPipelineSet(device, queue, DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("NewPipelineSet: %v", err)
	}
	defer set.Destroy()

	g := lattice.Geometry{Width: 32, Height: 16}
	b, err := NewStateBuffer(device, set, g, "state")
	if err != nil {
		t.Fatalf("NewStateBuffer: %v", err)
	}
	if b.Geometry() != g {
		t.Errorf("Geometry() = %v, want %v", b.Geometry(), g)
	}
	if b.Texture() == nil || b.InputGroup() == nil || b.OutputGroup() == nil || b.DisplayGroup() == nil {
		t.Fatal("state buffer is missing GPU objects")
	}

	b.Destroy(device)
	if b.Texture() != nil || b.InputGroup() != nil || b.OutputGroup() != nil || b.DisplayGroup() != nil {
		t.Error("Destroy left GPU objects behind")
	}
	b.Destroy(device)
}

func TestNewStateBufferInvalidGeometry(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	set, err := NewPipelineSet(device, queue, DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("NewPipelineSet: %v", err)
	}
	defer set.Destroy()

	_, err = NewStateBuffer(device, set, lattice.Geometry{Width: 0, Height: 4}, "bad")
	if !errors.Is(err, lattice.ErrInvalidGeometry) {
		t.Errorf("error = %v, want ErrInvalidGeometry", err)
	}
}

func TestUploadGeometryMismatch(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	set, err := NewPipelineSet(device, queue, DefaultPipelineConfig())
	if err != nil {
		t.Fatalf("NewPipelineSet: %v", err)
	}
	defer set.Destroy()

	b, err := NewStateBuffer(device, set, lattice.Geometry{Width: 8, Height: 8}, "state")
	if err != nil {
		t.Fatalf("NewStateBuffer: %v", err)
	}
	defer b.Destroy(device)

	p := lattice.NewPattern(lattice.Geometry{Width: 4, Height: 4})
	if err := Upload(queue, b, p); !errors.Is(err, ErrGeometryMismatch) {
		t.Errorf("Upload error = %v, want ErrGeometryMismatch", err)
	}
	if err := Upload(queue, b, lattice.NewPattern(b.Geometry())); err != nil {
		t.Errorf("Upload matching pattern: %v", err)
	}
}

func TestSeedSwapsOnce(t *testing.T) {
	h := newHarness(t, lattice.Geometry{Width: 8, Height: 8}, lattice.DirectWorkgroup())
	write := h.buffers.Write()

	if err := Seed(h.queue, h.buffers, lattice.NewPattern(lattice.Geometry{Width: 8, Height: 8})); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if h.buffers.Read() != write {
		t.Error("seeded buffer is not in the read position")
	}

	bad := lattice.NewPattern(lattice.Geometry{Width: 2, Height: 2})
	active := h.buffers.Active()
	if err := Seed(h.queue, h.buffers, bad); err == nil {
		t.Fatal("Seed with wrong geometry succeeded")
	}
	if h.buffers.Active() != active {
		t.Error("failed Seed swapped the buffers")
	}
}
