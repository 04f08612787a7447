// Package target allocates off-screen color targets: images a camera renders into and a later
// pass samples from.
package target

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/gogpu/gputypes"
)

// ErrInvalidTargetSize is returned when a target is requested with a zero width or height.
var ErrInvalidTargetSize = errors.New("target: width and height must be non-zero")

// Usage is the usage every off-screen target is created with: sampled by a later pass,
// written by uploads, and rendered into by a camera.
const Usage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageRenderAttachment

// DefaultFormat matches the swapchain format the window surface prefers.
const DefaultFormat = gputypes.TextureFormatBGRA8UnormSrgb

// Allocator creates, resizes and releases off-screen targets in a shared image table.
type Allocator interface {
	// Allocate creates a zero-filled single-layer 2D target.
	//
	// Parameters:
	//   - width, height: target size in pixels
	//   - format: the color format
	//
	// Returns:
	//   - asset.ImageHandle: handle to the target image
	//   - error: ErrInvalidTargetSize or texture.ErrUnsupportedFormat
	Allocate(width, height uint32, format gputypes.TextureFormat) (asset.ImageHandle, error)

	// Resize reallocates a target in place under the same handle. The image is mutated
	// directly, so call it from the goroutine that renders, never alongside a frame.
	//
	// Parameters:
	//   - h: the target handle
	//   - width, height: the new size in pixels
	//
	// Returns:
	//   - error: ErrInvalidTargetSize, or asset.ErrAssetNotFound for a released handle
	Resize(h asset.ImageHandle, width, height uint32) error

	// Release frees a target. Later lookups of the handle fail.
	//
	// Parameters:
	//   - h: the target handle
	//
	// Returns:
	//   - error: asset.ErrAssetNotFound if the handle was already released
	Release(h asset.ImageHandle) error

	// Images returns the table targets are stored in.
	Images() asset.Images
}

type allocator struct {
	images asset.Images
	label  string
}

var _ Allocator = &allocator{}

// NewAllocator creates a target allocator.
//
// Parameters:
//   - options: variadic list of AllocatorBuilderOption functions
//
// Returns:
//   - Allocator: the new allocator
func NewAllocator(options ...AllocatorBuilderOption) Allocator {
	a := &allocator{label: "Offscreen Target"}
	for _, opt := range options {
		opt(a)
	}
	if a.images == nil {
		a.images = asset.NewAssets[*texture.Image]()
	}
	return a
}

func (a *allocator) Allocate(width, height uint32, format gputypes.TextureFormat) (asset.ImageHandle, error) {
	if width == 0 || height == 0 {
		return asset.ImageHandle{}, fmt.Errorf("%w: got %dx%d", ErrInvalidTargetSize, width, height)
	}
	img, err := texture.NewImage(width, height, format, nil,
		texture.WithLabel(a.label),
		texture.WithUsage(Usage),
	)
	if err != nil {
		return asset.ImageHandle{}, fmt.Errorf("failed to allocate target: %w", err)
	}

	h := a.images.Add(img)
	common.Logger().Info("target allocated", "handle", h.String(), "width", width, "height", height, "format", format.String())
	return h, nil
}

func (a *allocator) Resize(h asset.ImageHandle, width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidTargetSize, width, height)
	}
	img, ok := a.images.Get(h)
	if !ok {
		return fmt.Errorf("failed to resize target %s: %w", h, asset.ErrAssetNotFound)
	}
	if img.Width == width && img.Height == height {
		return nil
	}
	img.Resize(width, height)
	common.Logger().Info("target resized", "handle", h.String(), "width", width, "height", height)
	return nil
}

func (a *allocator) Release(h asset.ImageHandle) error {
	if _, ok := a.images.Remove(h); !ok {
		return fmt.Errorf("failed to release target %s: %w", h, asset.ErrAssetNotFound)
	}
	common.Logger().Info("target released", "handle", h.String())
	return nil
}

func (a *allocator) Images() asset.Images {
	return a.images
}
