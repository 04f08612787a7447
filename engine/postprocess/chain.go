package postprocess

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/model"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/target"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/gogpu/gputypes"
)

var (
	// ErrTargetReleased is returned by Validate when the chain's target is no longer allocated.
	ErrTargetReleased = errors.New("postprocess: target not allocated")

	// ErrTargetUnbound is returned by Validate when the composite material samples something
	// other than the chain's target.
	ErrTargetUnbound = errors.New("postprocess: composite material not bound to target")

	// ErrChainClosed is returned by operations on a closed chain.
	ErrChainClosed = errors.New("postprocess: chain closed")
)

// Defaults for NewChain.
const (
	DefaultSceneOrder   = -1
	DefaultPresentOrder = 0
	DefaultPresentLayer = 1
)

// Chain wires one post-process pass into a scene: an off-screen target, a scene camera rendering
// into it, a composite material sampling it, a full-screen quad carrying that material, a
// presentation camera drawing the quad, and the Driver animating the material.
type Chain interface {
	// Target returns the off-screen target handle.
	Target() asset.ImageHandle

	// Material returns the composite material handle.
	Material() material.Handle

	// SceneCamera returns the camera that renders the scene into the target.
	SceneCamera() camera.Camera

	// PresentCamera returns the camera that draws the full-screen quad to the screen.
	PresentCamera() camera.Camera

	// Quad returns the full-screen quad entity.
	Quad() game_object.GameObject

	// Driver returns the system that animates the composite uniforms.
	Driver() Driver

	// Resize records a new surface size. Safe to call from any goroutine, typically the window
	// thread. The chain's resize system applies it at the start of the next scene tick: it
	// reallocates the target, updates both camera viewports and rebinds the composite texture,
	// so the target never changes while a frame is reading it. Only the latest size is kept.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: target.ErrInvalidTargetSize for a zero dimension, ErrChainClosed after Close
	Resize(width, height uint32) error

	// Size returns the size the target currently has, not counting a pending Resize.
	//
	// Returns:
	//   - width, height: the target size in pixels
	Size() (width, height uint32)

	// Validate checks the chain's invariants: the target is allocated, the composite material
	// samples it, and the scene camera renders strictly before the presentation camera.
	//
	// Returns:
	//   - error: ErrTargetReleased, ErrTargetUnbound, camera.ErrCameraOrder or a material lookup error
	Validate() error

	// Close removes everything the chain added to the scene and releases the target and material.
	//
	// Returns:
	//   - error: joined cleanup errors, ErrChainClosed on a second call
	Close() error
}

type chain struct {
	mu *sync.Mutex

	sc        scene.Scene
	targets   target.Allocator
	materials material.Materials

	width, height uint32
	format        gputypes.TextureFormat
	sceneOrder    int
	presentOrder  int
	sceneLayers   camera.Layers
	presentLayer  uint
	shader        shader.Ref
	clearColor    gputypes.Color
	sampler       common.SamplerStagingData

	target     asset.ImageHandle
	material   material.Handle
	sceneCam   camera.Camera
	presentCam camera.Camera
	quad       game_object.GameObject
	quadID     uint64
	driver     Driver
	resizer    scene.System
	closed     bool

	// latest size requested by Resize, applied by resizer
	pending       bool
	pendingWidth  uint32
	pendingHeight uint32
}

var _ Chain = &chain{}

// NewChain builds a post-process chain inside sc. The target and composite material are created
// through targets and sc.Materials().
//
// Parameters:
//   - sc: the scene to wire into
//   - targets: the allocator owning the off-screen target
//   - options: variadic list of ChainBuilderOption functions
//
// Returns:
//   - Chain: the wired chain
//   - error: a target allocation error or camera.ErrCameraOrder
func NewChain(sc scene.Scene, targets target.Allocator, options ...ChainBuilderOption) (Chain, error) {
	c := &chain{
		mu:           &sync.Mutex{},
		sc:           sc,
		targets:      targets,
		materials:    sc.Materials(),
		width:        1280,
		height:       720,
		format:       target.DefaultFormat,
		sceneOrder:   DefaultSceneOrder,
		presentOrder: DefaultPresentOrder,
		sceneLayers:  camera.DefaultLayers,
		presentLayer: DefaultPresentLayer,
		shader:       shader.EmbeddedRef(shader.PostProcessing),
		clearColor:   gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		sampler: common.SamplerStagingData{
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeLinear,
			MinFilter:    gputypes.FilterModeLinear,
			MipmapFilter: gputypes.MipmapFilterModeNearest,
		},
	}
	for _, opt := range options {
		opt(c)
	}

	if c.sceneOrder >= c.presentOrder {
		return nil, fmt.Errorf("%w: scene order %d, present order %d", camera.ErrCameraOrder, c.sceneOrder, c.presentOrder)
	}
	presentLayers := camera.Layer(c.presentLayer)
	if c.sceneLayers.Intersects(presentLayers) {
		common.Logger().Warn("scene layers include the present layer; the scene camera will sample its own target",
			"sceneLayers", uint32(c.sceneLayers), "presentLayer", c.presentLayer)
	}

	h, err := targets.Allocate(c.width, c.height, c.format)
	if err != nil {
		return nil, fmt.Errorf("failed to create post-process chain: %w", err)
	}
	c.target = h

	c.material = c.materials.Add(material.NewCompositeMaterial(
		material.WithName("Post Processing"),
		material.WithShader(c.shader),
		material.WithTexture(h),
		material.WithSampler(c.sampler),
		material.WithScalar(UniformIntensity, Intensity(0)),
		material.WithScalar(UniformVignette, Vignette(0)),
	))

	c.sceneCam = camera.NewCamera(
		camera.WithName("Post Process Scene"),
		camera.WithOrder(c.sceneOrder),
		camera.WithLayers(c.sceneLayers),
		camera.WithTarget(camera.ImageTarget(h)),
		camera.WithClearColor(c.clearColor),
		camera.WithViewport(c.width, c.height),
	)
	c.presentCam = camera.NewCamera(
		camera.WithName("Post Process Present"),
		camera.WithOrder(c.presentOrder),
		camera.WithLayers(presentLayers),
		camera.WithTarget(camera.ScreenTarget()),
		camera.WithViewport(c.width, c.height),
	)
	c.quad = game_object.NewGameObject(
		game_object.WithModel(model.Fullscreen()),
		game_object.WithMaterial(c.material),
		game_object.WithLayers(presentLayers),
	)
	c.driver = NewDriver(c.material)
	c.resizer = scene.NewSystem(fmt.Sprintf("postprocess resize %s", h), scene.PriorityFirst, c.applyResize)

	sc.AddCamera(c.sceneCam)
	sc.AddCamera(c.presentCam)
	c.quadID = sc.Spawn(c.quad)
	sc.AddSystem(c.resizer)
	sc.AddSystem(c.driver)

	common.Logger().Info("post-process chain created",
		"target", h.String(), "material", c.material.String(), "width", c.width, "height", c.height)
	return c, nil
}

func (c *chain) Target() asset.ImageHandle {
	return c.target
}

func (c *chain) Material() material.Handle {
	return c.material
}

func (c *chain) SceneCamera() camera.Camera {
	return c.sceneCam
}

func (c *chain) PresentCamera() camera.Camera {
	return c.presentCam
}

func (c *chain) Quad() game_object.GameObject {
	return c.quad
}

func (c *chain) Driver() Driver {
	return c.driver
}

func (c *chain) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("failed to resize post-process chain: %w: got %dx%d", target.ErrInvalidTargetSize, width, height)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrChainClosed
	}
	c.pending = true
	c.pendingWidth, c.pendingHeight = width, height
	return nil
}

func (c *chain) Size() (uint32, uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// applyResize runs first in every tick and applies the latest pending Resize.
func (c *chain) applyResize(ctx *scene.FrameContext) error {
	c.mu.Lock()
	if !c.pending || c.closed {
		c.mu.Unlock()
		return nil
	}
	width, height := c.pendingWidth, c.pendingHeight
	c.pending = false
	c.mu.Unlock()

	if err := c.targets.Resize(c.target, width, height); err != nil {
		return fmt.Errorf("failed to resize post-process chain: %w", err)
	}
	m, err := ctx.Materials.Composite(c.material)
	if err != nil {
		return err
	}
	m.SetTexture(c.target)
	c.sceneCam.SetViewport(width, height)
	c.presentCam.SetViewport(width, height)

	c.mu.Lock()
	c.width, c.height = width, height
	c.mu.Unlock()
	return nil
}

func (c *chain) Validate() error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrChainClosed
	}
	if !c.targets.Images().Contains(c.target) {
		return fmt.Errorf("%w: %s", ErrTargetReleased, c.target)
	}
	m, err := c.materials.Composite(c.material)
	if err != nil {
		return err
	}
	if bound := m.Texture(); bound != c.target {
		return fmt.Errorf("%w: bound %s, target %s", ErrTargetUnbound, bound, c.target)
	}
	if img, ok := c.sceneCam.Target().Image(); !ok || img != c.target {
		return fmt.Errorf("%w: scene camera renders to %s", ErrTargetUnbound, c.sceneCam.Target())
	}
	return camera.ValidateOrdering(c.sceneCam, c.presentCam)
}

func (c *chain) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrChainClosed
	}
	c.closed = true
	c.mu.Unlock()

	c.sc.RemoveSystem(c.resizer.Name())
	c.sc.RemoveSystem(c.driver.Name())
	c.sc.Despawn(c.quadID)
	c.sc.RemoveCamera(c.presentCam)
	c.sc.RemoveCamera(c.sceneCam)

	var errs []error
	if err := c.materials.Remove(c.material); err != nil {
		errs = append(errs, err)
	}
	if err := c.targets.Release(c.target); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
