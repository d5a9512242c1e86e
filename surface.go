//go:build !nogpu

package gpuca

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// SurfaceGeometry is the size of the presentation surface in pixels.
// Only Resize changes it.
type SurfaceGeometry struct {
	Width  uint32
	Height uint32
}

// Surface is the presentation target of a Context.
//
// A window host implements it over its swap chain. Configure is called with
// the initial size and on every accepted resize; Acquire returns the view
// to draw the current frame into and Present hands the frame back.
type Surface interface {
	Configure(width, height uint32) error
	Acquire() (hal.TextureView, error)
	Present() error
	Destroy()
}

// OffscreenSurface renders into a texture owned by the surface. It serves
// headless runs and tests.
type OffscreenSurface struct {
	device hal.Device
	format gputypes.TextureFormat

	size    SurfaceGeometry
	texture hal.Texture
	view    hal.TextureView

	configures int
	presents   int
}

// NewOffscreenSurface creates an unconfigured surface on device.
func NewOffscreenSurface(device hal.Device, format gputypes.TextureFormat) *OffscreenSurface {
	return &OffscreenSurface{device: device, format: format}
}

// Configure recreates the target texture at the new size. The previous
// texture is destroyed first.
func (s *OffscreenSurface) Configure(width, height uint32) error {
	s.release()
	tex, err := s.device.CreateTexture(&hal.TextureDescriptor{
		Label:         "ca_offscreen",
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        s.format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	view, err := s.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: "ca_offscreen_view"})
	if err != nil {
		s.device.DestroyTexture(tex)
		return fmt.Errorf("create offscreen view: %w", err)
	}
	s.texture, s.view = tex, view
	s.size = SurfaceGeometry{Width: width, Height: height}
	s.configures++
	return nil
}

// Acquire returns the target view.
func (s *OffscreenSurface) Acquire() (hal.TextureView, error) {
	if s.view == nil {
		return nil, ErrSurfaceNotConfigured
	}
	return s.view, nil
}

// Present counts the frame. There is nothing to flip.
func (s *OffscreenSurface) Present() error {
	s.presents++
	return nil
}

// Destroy releases the target texture.
func (s *OffscreenSurface) Destroy() { s.release() }

// Size returns the configured size.
func (s *OffscreenSurface) Size() SurfaceGeometry { return s.size }

// Texture returns the current target texture, nil before Configure.
func (s *OffscreenSurface) Texture() hal.Texture { return s.texture }

// Configures returns how many times Configure succeeded.
func (s *OffscreenSurface) Configures() int { return s.configures }

// Presents returns how many frames were presented.
func (s *OffscreenSurface) Presents() int { return s.presents }

func (s *OffscreenSurface) release() {
	if s.view != nil {
		s.device.DestroyTextureView(s.view)
		s.view = nil
	}
	if s.texture != nil {
		s.device.DestroyTexture(s.texture)
		s.texture = nil
	}
}
