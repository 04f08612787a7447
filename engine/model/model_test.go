package model

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

func TestQuadMatchesVertexShaderLayout(t *testing.T) {
	q := Quad()
	if q.Kind() != KindQuad || q.VertexCount() != 4 || q.IndexCount() != 6 {
		t.Fatalf("quad = %s %d/%d", q.Kind(), q.VertexCount(), q.IndexCount())
	}

	vs, err := q.VertexShader().Load(shader.ShaderTypeVertex)
	if err != nil {
		t.Fatalf("load vertex shader: %v", err)
	}
	layouts := vs.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("got %d vertex layouts, want 1", len(layouts))
	}
	var v GPUVertex
	if int(layouts[0].ArrayStride) != v.Size() {
		t.Fatalf("stride %d, vertex size %d", layouts[0].ArrayStride, v.Size())
	}
	if len(q.VertexData()) != 4*v.Size() || len(q.IndexData()) != 12 {
		t.Fatalf("buffer sizes %d/%d", len(q.VertexData()), len(q.IndexData()))
	}

	// Second vertex is the bottom-right corner.
	x := math.Float32frombits(binary.LittleEndian.Uint32(q.VertexData()[20:]))
	u := math.Float32frombits(binary.LittleEndian.Uint32(q.VertexData()[32:]))
	if x != 0.5 || u != 1 {
		t.Fatalf("vertex 1: x=%v u=%v", x, u)
	}
}

func TestFullscreenHasNoBuffers(t *testing.T) {
	f := Fullscreen()
	if f.Kind() != KindFullscreen || f.VertexData() != nil || f.IndexCount() != 0 || f.VertexCount() != 3 {
		t.Fatal("fullscreen mesh should be three generated vertices")
	}
	if f.VertexShader() != shader.EmbeddedRef(shader.FullscreenVertex) {
		t.Fatalf("vertex shader = %s", f.VertexShader().Key())
	}
	if Fullscreen() != f {
		t.Fatal("Fullscreen should return a shared instance")
	}
}

func TestModelDataMarshal(t *testing.T) {
	d := GPUModelData{}
	d.Transform[12] = 3
	buf := d.Marshal()
	if d.Size() != 64 || len(buf) != 64 {
		t.Fatal("model data should be 64 bytes")
	}
	if math.Float32frombits(binary.LittleEndian.Uint32(buf[48:])) != 3 {
		t.Fatal("translation not at column 3")
	}
}
