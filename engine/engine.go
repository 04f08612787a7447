package engine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

// ErrNoScene is returned by Frame when no scene has been set.
var ErrNoScene = errors.New("engine: no scene")

// ResizeHook is called after the renderer surface was reconfigured for a new framebuffer size.
type ResizeHook func(width, height uint32) error

// engine implements the Engine interface.
// Coordinates the window thread and the render goroutine.
type engine struct {
	mu *sync.Mutex

	window   window.Window
	renderer renderer.Renderer
	images   asset.Images
	scene    scene.Scene
	clock    *scene.Clock

	rendererOptions []renderer.RendererBuilderOption
	resizeHooks     []ResizeHook

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once // ensures quitChannel is only closed once
	stopOnce    sync.Once
	fatal       error
}

// Engine is the main entry point for the engine.
// It owns the window and renderer and drives one scene: each frame advances the scene clock,
// runs the scene's systems, and renders the scene's camera passes.
type Engine interface {
	// Window returns the underlying window.
	Window() window.Window

	// Renderer returns the renderer drawing into the window.
	Renderer() renderer.Renderer

	// Images returns the image table render targets and loaded assets live in.
	Images() asset.Images

	// Scene returns the scene drawn each frame, or nil.
	Scene() scene.Scene

	// SetScene replaces the scene drawn each frame. The scene clock restarts.
	//
	// Parameters:
	//   - s: the scene to draw
	SetScene(s scene.Scene)

	// OnResize registers a hook called after every framebuffer resize, in registration order.
	// Post-process chains register their Resize here so the off-screen target follows the
	// surface size.
	//
	// Parameters:
	//   - hook: the function to call with the new size
	OnResize(hook ResizeHook)

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default). Takes effect before Run.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Frame runs one frame on the calling goroutine: tick the scene then render its plan.
	//
	// Returns:
	//   - error: ErrNoScene, a system error, or a render error
	Frame() error

	// Run starts the render goroutine and runs the window message loop on the calling
	// goroutine until the window closes or Quit is called.
	//
	// Returns:
	//   - error: the error that stopped the engine, if any
	Run() error

	// Quit signals the render goroutine to stop. Safe to call multiple times.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine. When no window is given through WithWindow one is created
// with default options. The renderer is created for the window with the options given through
// WithRendererOptions.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
//   - error: if the window or renderer could not be created
func NewEngine(options ...EngineBuilderOption) (Engine, error) {
	e := newEngine()
	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		w, err := window.NewWindow()
		if err != nil {
			return nil, err
		}
		e.window = w
	}
	if e.renderer == nil {
		r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, e.window, e.rendererOptions...)
		if err != nil {
			return nil, fmt.Errorf("failed to create renderer: %w", err)
		}
		e.renderer = r
	}

	e.window.SetResizeCallback(func(width, height int) {
		if err := e.resize(width, height); err != nil {
			common.Logger().Error("resize failed", "width", width, "height", height, "err", err)
		}
	})
	if err := e.resize(e.window.Width(), e.window.Height()); err != nil {
		return nil, err
	}
	return e, nil
}

func newEngine() *engine {
	return &engine{
		mu:          &sync.Mutex{},
		images:      asset.NewAssets[*texture.Image](),
		clock:       scene.NewClock(),
		profiler:    profiler.NewProfiler(time.Second),
		quitChannel: make(chan struct{}),
	}
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Images() asset.Images {
	return e.images
}

func (e *engine) Scene() scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scene
}

func (e *engine) SetScene(s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scene = s
	e.clock = scene.NewClock()
}

func (e *engine) OnResize(hook ResizeHook) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resizeHooks = append(e.resizeHooks, hook)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

// resize reconfigures the surface, then fits screen cameras and runs the hooks.
// A minimised window reports 0x0 and is ignored.
func (e *engine) resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := e.renderer.Resize(width, height); err != nil {
		return err
	}

	e.mu.Lock()
	sc := e.scene
	hooks := append([]ResizeHook(nil), e.resizeHooks...)
	e.mu.Unlock()

	if sc != nil {
		for _, cam := range sc.Cameras() {
			if cam.Target().IsScreen() {
				cam.SetViewport(uint32(width), uint32(height))
			}
		}
	}

	var errs []error
	for _, hook := range hooks {
		if err := hook(uint32(width), uint32(height)); err != nil {
			errs = append(errs, err)
		}
	}
	common.Logger().Info("surface resized", "width", width, "height", height)
	return errors.Join(errs...)
}

func (e *engine) Frame() error {
	e.mu.Lock()
	sc, clock := e.scene, e.clock
	e.mu.Unlock()

	if sc == nil {
		return ErrNoScene
	}
	if !sc.Active() {
		return nil
	}
	if err := sc.Tick(clock.Tick()); err != nil {
		return err
	}
	return e.renderer.Render(sc.Plan(), e.images, sc.Materials())
}

func (e *engine) Run() error {
	e.wg.Add(1)
	go e.handleRender()

	e.window.SetUpdateCallback(func() {
		select {
		case <-e.quitChannel:
			e.stop()
		default:
		}
	})
	e.window.ProcessMessages()

	e.signalQuit()
	e.stop()
	return e.fatal
}

// stop waits for the render goroutine, then frees the GPU before destroying the window the
// surface belongs to. Runs on the window thread.
func (e *engine) stop() {
	e.stopOnce.Do(func() {
		e.wg.Wait()
		e.renderer.Release()
		if err := e.window.Close(); err != nil && !errors.Is(err, window.ErrNotInitialized) {
			common.Logger().Warn("window close failed", "err", err)
		}
	})
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// handleRender runs the render loop until the quit channel closes. Render errors are logged
// and the loop continues; a released material is a logic error and stops the engine.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.fatal = fmt.Errorf("render goroutine panicked: %v", r)
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	var lastErr string
	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		start := time.Now()
		if err := e.Frame(); err != nil {
			if errors.Is(err, material.ErrMaterialNotFound) {
				e.fatal = err
				common.Logger().Error("frame failed", "err", fmt.Sprintf("%+v", err))
				e.signalQuit()
				return
			}
			// identical errors repeat every frame
			if msg := err.Error(); msg != lastErr {
				common.Logger().Error("frame failed", "err", err)
				lastErr = msg
			}
		} else {
			lastErr = ""
		}

		if e.profilingEnabled.Load() {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}
