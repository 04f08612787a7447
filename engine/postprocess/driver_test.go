package postprocess

import (
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
)

const tolerance = 1e-6

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) <= tolerance
}

func TestFormulaRanges(t *testing.T) {
	for i := 0; i <= 10000; i++ {
		ts := float64(i) * 0.01
		if v := Intensity(ts); v < -1.0/500 || v > 1.0/500 {
			t.Fatalf("Intensity(%v) = %v out of range", ts, v)
		}
		if v := Vignette(ts); v < 0 || v > 1 {
			t.Fatalf("Vignette(%v) = %v out of range", ts, v)
		}
	}
}

func TestFormulaPeriods(t *testing.T) {
	for _, ts := range []float64{0, 0.3, 1, 2.5, 17} {
		if !near(Intensity(ts), Intensity(ts+math.Pi/4)) {
			t.Fatalf("Intensity not periodic at %v", ts)
		}
		if !near(Vignette(ts), Vignette(ts+math.Pi)) {
			t.Fatalf("Vignette not periodic at %v", ts)
		}
	}
}

func TestFormulaValues(t *testing.T) {
	tests := []struct {
		t                   float64
		intensity, vignette float32
	}{
		{0, 0, 0.5},
		{math.Pi / 16, 1.0 / 500, float32((math.Sin(math.Pi/8) + 1) / 2)},
		{math.Pi / 4, 0, 1},
		{3 * math.Pi / 4, 0, 0},
	}
	for _, tt := range tests {
		if got := Intensity(tt.t); !near(got, tt.intensity) {
			t.Errorf("Intensity(%v) = %v, want %v", tt.t, got, tt.intensity)
		}
		if got := Vignette(tt.t); !near(got, tt.vignette) {
			t.Errorf("Vignette(%v) = %v, want %v", tt.t, got, tt.vignette)
		}
	}
}

func TestDriverWritesScalars(t *testing.T) {
	materials := material.NewMaterials()
	m := material.NewCompositeMaterial(
		material.WithScalar(UniformIntensity, 0),
		material.WithScalar(UniformVignette, 0),
	)
	h := materials.Add(m)
	d := NewDriver(h, WithDriverName("driver"), WithDriverPriority(scene.PriorityFirst))
	if d.Name() != "driver" || d.Priority() != scene.PriorityFirst || d.Material() != h {
		t.Fatal("options not applied")
	}

	ctx := &scene.FrameContext{Time: scene.NewTime(1, 0.1), Materials: materials}
	if err := d.Update(ctx); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if v, _ := m.Scalar(UniformIntensity); v != Intensity(1) {
		t.Fatalf("intensity = %v", v)
	}
	if v, _ := m.Scalar(UniformVignette); v != Vignette(1) {
		t.Fatalf("vignette = %v", v)
	}

	// Same time, same output.
	before := m.Uniforms()
	if err := d.Update(ctx); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if string(before) != string(m.Uniforms()) {
		t.Fatal("driver is not deterministic")
	}
}

func TestDriverErrors(t *testing.T) {
	materials := material.NewMaterials()
	ctx := &scene.FrameContext{Materials: materials}

	undeclared := NewDriver(materials.Add(material.NewCompositeMaterial()))
	if err := undeclared.Update(ctx); !errors.Is(err, material.ErrUnknownUniform) {
		t.Fatalf("err = %v, want ErrUnknownUniform", err)
	}

	h := materials.Add(material.NewCompositeMaterial())
	if err := materials.Remove(h); err != nil {
		t.Fatal(err)
	}
	if err := NewDriver(h).Update(ctx); !errors.Is(err, material.ErrMaterialNotFound) {
		t.Fatalf("err = %v, want ErrMaterialNotFound", err)
	}
}
