package camera

import "github.com/gogpu/gputypes"

// CameraBuilderOption is a function that configures a camera during construction.
type CameraBuilderOption func(*cameraImpl)

// WithName sets the camera's debug name.
//
// Parameters:
//   - name: the debug name
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithName(name string) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.name = name
	}
}

// WithOrder sets the ordering key.
//
// Parameters:
//   - order: the ordering key; lower renders first
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithOrder(order int) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.order = order
	}
}

// WithLayers sets the render layers the camera draws.
//
// Parameters:
//   - layers: the layer mask
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithLayers(layers Layers) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.layers = layers
	}
}

// WithTarget sets where the camera renders.
//
// Parameters:
//   - target: ScreenTarget() or ImageTarget(h)
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithTarget(target RenderTarget) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.target = target
	}
}

// WithClearColor sets the clear color.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithClearColor(color gputypes.Color) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.clearColor = color
	}
}

// WithViewport sets the initial viewport size.
//
// Parameters:
//   - width, height: the viewport size in pixels
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithViewport(width, height uint32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.width = max(width, 1)
		c.height = max(height, 1)
	}
}

// WithScale sets world units per pixel. Values above 1 zoom out.
//
// Parameters:
//   - scale: the scale factor, must be positive
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithScale(scale float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if scale > 0 {
			c.scale = scale
		}
	}
}
