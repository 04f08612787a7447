// Package camera holds 2D orthographic cameras: what they see (render layers), where they draw
// (screen or image target) and when they draw relative to each other (order).
package camera

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/gogpu/gputypes"
)

// ErrCameraOrder is returned when a camera that must render first does not have a lower order.
var ErrCameraOrder = errors.New("camera: invalid render order")

type cameraImpl struct {
	mu *sync.Mutex

	name       string
	order      int
	layers     Layers
	target     RenderTarget
	clearColor gputypes.Color
	active     bool

	width, height uint32
	position      [2]float32
	scale         float32
	near, far     float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera defines the interface for a 2D camera. The projection is orthographic with the origin at
// the viewport center and one world unit per pixel at scale 1.
type Camera interface {
	// Name returns the camera's debug name.
	Name() string

	// Order returns the camera's ordering key. Cameras render in ascending order, so a camera
	// writing an image must have a lower order than any camera sampling it.
	//
	// Returns:
	//   - int: the ordering key
	Order() int

	// SetOrder changes the ordering key.
	//
	// Parameters:
	//   - order: the new key
	SetOrder(order int)

	// Layers returns the render layers the camera draws.
	//
	// Returns:
	//   - Layers: the layer mask
	Layers() Layers

	// SetLayers changes the render layers the camera draws.
	//
	// Parameters:
	//   - layers: the new layer mask
	SetLayers(layers Layers)

	// Target returns where the camera renders.
	//
	// Returns:
	//   - RenderTarget: the screen or an image
	Target() RenderTarget

	// SetTarget changes where the camera renders.
	//
	// Parameters:
	//   - target: the new target
	SetTarget(target RenderTarget)

	// ClearColor returns the color the target is cleared to before drawing.
	//
	// Returns:
	//   - gputypes.Color: the clear color
	ClearColor() gputypes.Color

	// SetClearColor changes the clear color.
	//
	// Parameters:
	//   - c: the new clear color
	SetClearColor(c gputypes.Color)

	// Active reports whether the camera renders this frame.
	Active() bool

	// SetActive enables or disables the camera.
	//
	// Parameters:
	//   - active: true to render
	SetActive(active bool)

	// Viewport returns the viewport size in pixels.
	//
	// Returns:
	//   - width, height: the viewport size
	Viewport() (width, height uint32)

	// SetViewport resizes the viewport and recomputes the projection.
	//
	// Parameters:
	//   - width, height: the viewport size in pixels
	SetViewport(width, height uint32)

	// Position returns the world-space point at the viewport center.
	Position() (x, y float32)

	// SetPosition moves the camera.
	//
	// Parameters:
	//   - x, y: the world-space point to center on
	SetPosition(x, y float32)

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 orthographic projection matrix as 16 floats (column-major).
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the combined view-projection matrix as 16 floats (column-major).
	ViewProjectionMatrix() [16]float32

	// Uniform returns the camera's GPU uniform block.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform ready for Marshal
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new 2D camera. It renders DefaultLayers to the screen at order 0 with a
// black clear color unless options say otherwise.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:         &sync.Mutex{},
		name:       "Camera",
		layers:     DefaultLayers,
		target:     ScreenTarget(),
		clearColor: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		active:     true,
		width:      1,
		height:     1,
		scale:      1,
		near:       -1000,
		far:        1000,
	}
	for _, option := range options {
		option(c)
	}
	c.updateMatrices()
	return c
}

// ValidateOrdering checks that first renders strictly before second.
//
// Parameters:
//   - first: the camera that must render first
//   - second: the camera that must render after it
//
// Returns:
//   - error: ErrCameraOrder if first.Order() >= second.Order()
func ValidateOrdering(first, second Camera) error {
	if first.Order() >= second.Order() {
		return fmt.Errorf("%w: %s (order %d) must render before %s (order %d)",
			ErrCameraOrder, first.Name(), first.Order(), second.Name(), second.Order())
	}
	return nil
}

func (c *cameraImpl) Name() string {
	return c.name
}

func (c *cameraImpl) Order() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order
}

func (c *cameraImpl) SetOrder(order int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.order = order
}

func (c *cameraImpl) Layers() Layers {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.layers
}

func (c *cameraImpl) SetLayers(layers Layers) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.layers = layers
}

func (c *cameraImpl) Target() RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) SetTarget(target RenderTarget) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
}

func (c *cameraImpl) ClearColor() gputypes.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clearColor
}

func (c *cameraImpl) SetClearColor(color gputypes.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearColor = color
}

func (c *cameraImpl) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *cameraImpl) SetActive(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = active
}

func (c *cameraImpl) Viewport() (width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

func (c *cameraImpl) SetViewport(width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = max(width, 1)
	c.height = max(height, 1)
	c.updateMatrices()
}

func (c *cameraImpl) Position() (x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1]
}

func (c *cameraImpl) SetPosition(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [2]float32{x, y}
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{ViewProj: c.viewProjectionMatrix}
}

// updateMatrices recalculates the view, projection and view-projection matrices.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	common.BuildTransform2D(c.viewMatrix[:], -c.position[0], -c.position[1], 0, 0, 1, 1)

	halfW := float32(c.width) / 2 * c.scale
	halfH := float32(c.height) / 2 * c.scale
	common.Ortho(c.projectionMatrix[:], -halfW, halfW, -halfH, halfH, c.near, c.far)

	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}
