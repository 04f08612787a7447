package postprocess

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/gogpu/gputypes"
)

// ChainBuilderOption is a function that configures a Chain during construction.
type ChainBuilderOption func(*chain)

// WithSurfaceSize sets the initial target size, normally the window's framebuffer size.
//
// Parameters:
//   - width, height: the surface size in pixels
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithSurfaceSize(width, height uint32) ChainBuilderOption {
	return func(c *chain) {
		c.width = width
		c.height = height
	}
}

// WithFormat sets the target's color format.
//
// Parameters:
//   - format: the texture format
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithFormat(format gputypes.TextureFormat) ChainBuilderOption {
	return func(c *chain) {
		c.format = format
	}
}

// WithOrders sets the scene and presentation camera order keys. sceneOrder must be lower.
//
// Parameters:
//   - sceneOrder: the off-screen camera's order
//   - presentOrder: the presentation camera's order
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithOrders(sceneOrder, presentOrder int) ChainBuilderOption {
	return func(c *chain) {
		c.sceneOrder = sceneOrder
		c.presentOrder = presentOrder
	}
}

// WithSceneLayers sets the layers the off-screen camera renders.
//
// Parameters:
//   - layers: the layer mask
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithSceneLayers(layers camera.Layers) ChainBuilderOption {
	return func(c *chain) {
		c.sceneLayers = layers
	}
}

// WithPresentLayer sets the layer the full-screen quad and presentation camera use.
//
// Parameters:
//   - n: the layer index
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithPresentLayer(n uint) ChainBuilderOption {
	return func(c *chain) {
		c.presentLayer = n
	}
}

// WithCompositeShader replaces the composite fragment shader. It must declare the intensity and
// vignette uniforms in that order.
//
// Parameters:
//   - ref: the fragment shader reference
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithCompositeShader(ref shader.Ref) ChainBuilderOption {
	return func(c *chain) {
		c.shader = ref
	}
}

// WithClearColor sets the color the target is cleared to before the scene renders.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithClearColor(color gputypes.Color) ChainBuilderOption {
	return func(c *chain) {
		c.clearColor = color
	}
}

// WithTargetSampler sets the sampler the composite pass reads the target with.
//
// Parameters:
//   - sampler: the sampler settings
//
// Returns:
//   - ChainBuilderOption: option function to apply
func WithTargetSampler(sampler common.SamplerStagingData) ChainBuilderOption {
	return func(c *chain) {
		c.sampler = sampler
	}
}
