package material

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
)

func floatAt(buf []byte, i int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
}

func TestCompositeScalars(t *testing.T) {
	m := NewCompositeMaterial(
		WithName("Post"),
		WithScalar("intensity", 0.5),
		WithScalar("vignette", 0.25),
	)
	v0 := m.Version()

	if err := m.SetScalar("vignette", 0.75); err != nil {
		t.Fatalf("SetScalar: %v", err)
	}
	if got, ok := m.Scalar("vignette"); !ok || got != 0.75 {
		t.Fatalf("Scalar(vignette) = %v, %v", got, ok)
	}
	if m.Version() <= v0 {
		t.Fatal("version not bumped by SetScalar")
	}

	u := m.Uniforms()
	if len(u) != 16 {
		t.Fatalf("uniforms len = %d, want 16", len(u))
	}
	if floatAt(u, 0) != 0.5 || floatAt(u, 1) != 0.75 || floatAt(u, 2) != 0 {
		t.Fatalf("uniforms = %v %v %v", floatAt(u, 0), floatAt(u, 1), floatAt(u, 2))
	}

	scalars := m.Scalars()
	if len(scalars) != 2 || scalars[0].Name != "intensity" || scalars[1].Name != "vignette" {
		t.Fatalf("scalars = %+v", scalars)
	}
	scalars[0].Value = 99
	if got, _ := m.Scalar("intensity"); got != 0.5 {
		t.Fatal("Scalars returned internal storage")
	}
}

func TestCompositeRejectsUndeclaredScalar(t *testing.T) {
	m := NewCompositeMaterial(WithScalar("intensity", 0))
	v0 := m.Version()
	err := m.SetScalar("brightness", 1)
	if !errors.Is(err, ErrUnknownUniform) {
		t.Fatalf("err = %v, want ErrUnknownUniform", err)
	}
	if m.Version() != v0 {
		t.Fatal("rejected SetScalar bumped version")
	}
	if _, ok := m.Scalar("brightness"); ok {
		t.Fatal("undeclared scalar readable")
	}
}

func TestCompositeTextureBinding(t *testing.T) {
	images := asset.NewAssets[*texture.Image]()
	first := images.Add(&texture.Image{})
	second := images.Add(&texture.Image{})

	m := NewCompositeMaterial(WithTexture(first))
	if m.Shader() != shader.EmbeddedRef(shader.PostProcessing) {
		t.Fatalf("default shader = %+v", m.Shader())
	}
	tex := m.Textures()
	if len(tex) != 1 || tex[0].Image != first || tex[0].Binding != 1 {
		t.Fatalf("textures = %+v", tex)
	}

	v0 := m.Version()
	m.SetTexture(second)
	if m.Texture() != second || m.Textures()[0].Image != second {
		t.Fatal("texture not rebound")
	}
	if m.Version() <= v0 {
		t.Fatal("version not bumped by SetTexture")
	}
}

func TestWithScalarRedeclared(t *testing.T) {
	m := NewCompositeMaterial(WithScalar("a", 1), WithScalar("b", 2), WithScalar("a", 3))
	s := m.Scalars()
	if len(s) != 2 || s[0] != (Scalar{"a", 3}) || s[1] != (Scalar{"b", 2}) {
		t.Fatalf("scalars = %+v", s)
	}
}

func TestCustom2DMaterial(t *testing.T) {
	m := NewCustom2DMaterial()
	if m.Color() != [4]float32{1, 1, 1, 1} {
		t.Fatalf("default color = %v", m.Color())
	}
	if m.Texture().IsValid() {
		t.Fatal("default texture should be unset")
	}
	if m.Shader().Embedded != shader.Custom2DMaterial {
		t.Fatalf("shader = %+v", m.Shader())
	}

	v0 := m.Version()
	m.SetColor([4]float32{0.5, 0, 1, 1})
	u := m.Uniforms()
	if len(u) != 16 || floatAt(u, 0) != 0.5 || floatAt(u, 2) != 1 {
		t.Fatalf("uniforms = %v", u)
	}
	if m.Version() <= v0 {
		t.Fatal("version not bumped")
	}
}

func TestArrayTextureMaterial(t *testing.T) {
	images := asset.NewAssets[*texture.Image]()
	h := images.Add(&texture.Image{})

	m := NewArrayTextureMaterial(h, 4)
	if m.LayerCount() != 4 || m.ArrayTexture() != h {
		t.Fatalf("layers = %d", m.LayerCount())
	}
	if floatAt(m.Uniforms(), 0) != 4 {
		t.Fatal("layer count not packed")
	}
	m.SetLayerCount(0)
	if m.LayerCount() != 1 {
		t.Fatalf("layer count clamped to %d, want 1", m.LayerCount())
	}
	params := GPUArrayTextureParams{}
	if params.Size() != 16 || len(params.Marshal()) != 16 {
		t.Fatal("GPUArrayTextureParams not 16 bytes")
	}
}

func TestMaterialsRegistry(t *testing.T) {
	table := NewMaterials()
	comp := table.Add(NewCompositeMaterial(WithScalar("intensity", 0)))
	custom := table.Add(NewCustom2DMaterial())

	if table.Len() != 2 {
		t.Fatalf("Len = %d", table.Len())
	}
	if _, err := table.Composite(comp); err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if _, err := table.Composite(custom); !errors.Is(err, ErrNotComposite) {
		t.Fatalf("err = %v, want ErrNotComposite", err)
	}

	if err := table.Remove(comp); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_, err := table.Get(comp)
	if !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("err = %v, want ErrMaterialNotFound", err)
	}
	// The lookup failure carries a stack trace for the crash report.
	if trace := fmt.Sprintf("%+v", err); trace == err.Error() {
		t.Fatal("error has no stack trace")
	}
	if _, err := table.Composite(comp); !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("err = %v, want ErrMaterialNotFound", err)
	}
	if err := table.Remove(comp); !errors.Is(err, ErrMaterialNotFound) {
		t.Fatalf("double remove: %v", err)
	}

	count := 0
	table.Each(func(Handle, Material) { count++ })
	if count != 1 {
		t.Fatalf("Each visited %d", count)
	}
}
