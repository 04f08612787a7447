package camera

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
)

// RenderTarget is where a camera's pass writes: the window surface or an image.
type RenderTarget struct {
	image  asset.ImageHandle
	screen bool
}

// ScreenTarget returns the window surface target.
func ScreenTarget() RenderTarget {
	return RenderTarget{screen: true}
}

// ImageTarget returns a target that renders into an image. The image needs
// the RenderAttachment usage.
//
// Parameters:
//   - h: the image handle
//
// Returns:
//   - RenderTarget: the image target
func ImageTarget(h asset.ImageHandle) RenderTarget {
	return RenderTarget{image: h}
}

// IsScreen reports whether the target is the window surface.
func (t RenderTarget) IsScreen() bool {
	return t.screen
}

// Image returns the target image and true, or false for the screen.
func (t RenderTarget) Image() (asset.ImageHandle, bool) {
	return t.image, !t.screen
}

// String returns "screen" or "image <handle>".
func (t RenderTarget) String() string {
	if t.screen {
		return "screen"
	}
	return fmt.Sprintf("image %s", t.image)
}
