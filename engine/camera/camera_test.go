package camera

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/gogpu/gputypes"
)

func TestLayers(t *testing.T) {
	scene := DefaultLayers
	present := Layer(1)

	if scene.Intersects(present) {
		t.Fatal("layers 0 and 1 intersect")
	}
	both := scene.With(1)
	if !both.Intersects(present) || !both.Contains(0) || both.Count() != 2 {
		t.Fatalf("both = %b", both)
	}
	if both.Without(0) != present {
		t.Fatalf("Without(0) = %b", both.Without(0))
	}
	if Layer(100) != Layer(MaxLayer) {
		t.Fatal("layer index not clamped")
	}
}

func TestRenderTarget(t *testing.T) {
	if !ScreenTarget().IsScreen() {
		t.Fatal("screen target not screen")
	}
	if _, ok := ScreenTarget().Image(); ok {
		t.Fatal("screen target has an image")
	}

	images := asset.NewAssets[*texture.Image]()
	h := images.Add(&texture.Image{})
	target := ImageTarget(h)
	if target.IsScreen() {
		t.Fatal("image target reports screen")
	}
	if got, ok := target.Image(); !ok || got != h {
		t.Fatalf("Image() = %s, %v", got, ok)
	}
}

func TestValidateOrdering(t *testing.T) {
	tests := []struct {
		name          string
		first, second int
		wantErr       bool
	}{
		{"scene before present", -1, 0, false},
		{"equal orders", 0, 0, true},
		{"reversed", 1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewCamera(WithName("a"), WithOrder(tt.first))
			b := NewCamera(WithName("b"), WithOrder(tt.second))
			err := ValidateOrdering(a, b)
			if tt.wantErr != errors.Is(err, ErrCameraOrder) {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func project(m [16]float32, x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

func TestProjectionCoversViewport(t *testing.T) {
	c := NewCamera(WithViewport(800, 600))
	vp := c.ViewProjectionMatrix()

	x, y := project(vp, 400, -300)
	if math.Abs(float64(x-1)) > 1e-6 || math.Abs(float64(y+1)) > 1e-6 {
		t.Fatalf("corner maps to (%v, %v), want (1, -1)", x, y)
	}

	c.SetViewport(400, 400)
	c.SetPosition(100, 0)
	vp = c.ViewProjectionMatrix()
	x, _ = project(vp, 100, 0)
	if math.Abs(float64(x)) > 1e-6 {
		t.Fatalf("camera center maps to x=%v, want 0", x)
	}
	x, _ = project(vp, 300, 0)
	if math.Abs(float64(x-1)) > 1e-6 {
		t.Fatalf("right edge maps to x=%v, want 1", x)
	}

	u := c.Uniform()
	if u.Size() != 64 || len(u.Marshal()) != 64 || u.ViewProj != vp {
		t.Fatal("uniform does not carry the view-projection")
	}
}

func TestCameraDefaultsAndSetters(t *testing.T) {
	c := NewCamera()
	if c.Order() != 0 || c.Layers() != DefaultLayers || !c.Target().IsScreen() || !c.Active() {
		t.Fatal("unexpected defaults")
	}
	c.SetActive(false)
	c.SetOrder(-1)
	c.SetLayers(Layer(3))
	c.SetClearColor(gputypes.Color{R: 1, A: 1})
	c.SetViewport(0, 0)
	if c.Active() || c.Order() != -1 || c.Layers() != Layer(3) || c.ClearColor().R != 1 {
		t.Fatal("setters not applied")
	}
	if w, h := c.Viewport(); w != 1 || h != 1 {
		t.Fatalf("zero viewport not clamped: %dx%d", w, h)
	}
}
