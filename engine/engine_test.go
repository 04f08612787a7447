package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/gogpu/gputypes"
)

// fakeRenderer records the calls the engine makes.
type fakeRenderer struct {
	resizes [][2]int
	frames  [][]scene.Pass
	images  asset.Images
	err     error
}

var _ renderer.Renderer = &fakeRenderer{}

func (f *fakeRenderer) Resize(width, height int) error {
	f.resizes = append(f.resizes, [2]int{width, height})
	return f.err
}
func (f *fakeRenderer) SetPresentMode(mode renderer.PresentMode) {}
func (f *fakeRenderer) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8UnormSrgb
}
func (f *fakeRenderer) Pipeline(key string) pipeline.Pipeline { return nil }
func (f *fakeRenderer) Pipelines() []string                   { return nil }
func (f *fakeRenderer) Render(passes []scene.Pass, images asset.Images, materials material.Materials) error {
	f.frames = append(f.frames, passes)
	f.images = images
	return nil
}
func (f *fakeRenderer) Release() {}

func newTestEngine(sc scene.Scene) (*engine, *fakeRenderer) {
	e := newEngine()
	r := &fakeRenderer{}
	e.renderer = r
	e.scene = sc
	return e, r
}

func TestFrameTicksThenRenders(t *testing.T) {
	var ticked []uint64
	sc := scene.NewScene("test",
		scene.WithCameras(camera.NewCamera()),
		scene.WithObjects(game_object.NewGameObject()),
		scene.WithSystems(scene.NewSystem("count", scene.PriorityUpdate, func(ctx *scene.FrameContext) error {
			ticked = append(ticked, ctx.Frame)
			return nil
		})),
	)
	e, r := newTestEngine(sc)

	for range 3 {
		if err := e.Frame(); err != nil {
			t.Fatalf("Frame: %v", err)
		}
	}
	if len(ticked) != 3 {
		t.Errorf("system ran %d times, want 3", len(ticked))
	}
	if len(r.frames) != 3 {
		t.Fatalf("rendered %d frames, want 3", len(r.frames))
	}
	if len(r.frames[0]) != 1 || len(r.frames[0][0].Objects) != 1 {
		t.Errorf("plan = %+v, want one pass with one object", r.frames[0])
	}
	if r.images != e.Images() {
		t.Error("renderer should resolve against the engine's image table")
	}
}

func TestFrameStopsOnSystemError(t *testing.T) {
	boom := errors.New("boom")
	sc := scene.NewScene("test", scene.WithSystems(scene.NewSystem("fail", 0, func(*scene.FrameContext) error {
		return boom
	})))
	e, r := newTestEngine(sc)

	if err := e.Frame(); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if len(r.frames) != 0 {
		t.Error("a failed tick should not render")
	}
}

func TestFrameReleasedMaterialCarriesStack(t *testing.T) {
	sc := scene.NewScene("test")
	h := sc.Materials().Add(material.NewCustom2DMaterial())
	if err := sc.Materials().Remove(h); err != nil {
		t.Fatal(err)
	}
	sc.AddSystem(scene.NewSystem("lookup", scene.PriorityUpdate, func(ctx *scene.FrameContext) error {
		_, err := ctx.Materials.Get(h)
		return err
	}))
	e, _ := newTestEngine(sc)

	err := e.Frame()
	if !errors.Is(err, material.ErrMaterialNotFound) {
		t.Fatalf("err = %v, want ErrMaterialNotFound", err)
	}
	// handleRender logs fatal errors with %+v
	if verbose := fmt.Sprintf("%+v", err); !strings.Contains(verbose, "registry.go") {
		t.Errorf("logged error has no lookup stack:\n%s", verbose)
	}
}

func TestFrameWithoutScene(t *testing.T) {
	e, _ := newTestEngine(nil)
	if err := e.Frame(); !errors.Is(err, ErrNoScene) {
		t.Errorf("err = %v, want ErrNoScene", err)
	}
}

func TestFrameSkipsInactiveScene(t *testing.T) {
	e, r := newTestEngine(scene.NewScene("idle", scene.WithActive(false)))
	if err := e.Frame(); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if len(r.frames) != 0 {
		t.Error("inactive scene should not render")
	}
}

func TestResizeFansOut(t *testing.T) {
	screen := camera.NewCamera(camera.WithName("screen"))
	offscreen := camera.NewCamera(camera.WithName("offscreen"),
		camera.WithTarget(camera.ImageTarget(asset.ImageHandle{})),
		camera.WithViewport(16, 16))
	e, r := newTestEngine(scene.NewScene("test", scene.WithCameras(screen, offscreen)))

	var hooked [][2]uint32
	e.OnResize(func(width, height uint32) error {
		hooked = append(hooked, [2]uint32{width, height})
		return nil
	})

	if err := e.resize(800, 600); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if len(r.resizes) != 1 || r.resizes[0] != [2]int{800, 600} {
		t.Errorf("renderer resizes = %v", r.resizes)
	}
	if w, h := screen.Viewport(); w != 800 || h != 600 {
		t.Errorf("screen viewport = %dx%d, want 800x600", w, h)
	}
	if w, h := offscreen.Viewport(); w != 16 || h != 16 {
		t.Errorf("offscreen viewport = %dx%d, should be left to its owner", w, h)
	}
	if len(hooked) != 1 || hooked[0] != [2]uint32{800, 600} {
		t.Errorf("hooks = %v", hooked)
	}

	// minimised
	if err := e.resize(0, 0); err != nil {
		t.Fatalf("resize 0x0: %v", err)
	}
	if len(r.resizes) != 1 || len(hooked) != 1 {
		t.Error("a 0x0 resize should be ignored")
	}
}

func TestResizeReportsHookErrors(t *testing.T) {
	e, _ := newTestEngine(nil)
	boom := errors.New("boom")
	ran := false
	e.OnResize(func(uint32, uint32) error { return boom })
	e.OnResize(func(uint32, uint32) error { ran = true; return nil })

	if err := e.resize(10, 10); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if !ran {
		t.Error("later hooks should still run")
	}
}

func TestSetRenderFrameLimit(t *testing.T) {
	e, _ := newTestEngine(nil)
	e.SetRenderFrameLimit(50)
	if e.renderFrameLimit.Milliseconds() != 20 {
		t.Errorf("limit = %v, want 20ms", e.renderFrameLimit)
	}
	e.SetRenderFrameLimit(0)
	if e.renderFrameLimit != 0 {
		t.Errorf("limit = %v, want uncapped", e.renderFrameLimit)
	}
}
