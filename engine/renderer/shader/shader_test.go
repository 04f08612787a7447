package shader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestEmbeddedShadersValidate(t *testing.T) {
	names := EmbeddedNames()
	if len(names) != 5 {
		t.Fatalf("embedded shaders = %v", names)
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			src, err := Embedded(name)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := Validate(src); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestQuadVertexReflection(t *testing.T) {
	s, err := NewShader("quad", ShaderTypeVertex, WithEmbeddedSource(QuadVertex))
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.EntryPoint() != "vs_main" {
		t.Fatalf("entry point = %q", s.EntryPoint())
	}
	if got := s.Groups(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("groups = %v", got)
	}

	view := s.BindGroupLayoutDescriptor(0)
	if len(view.Entries) != 1 || view.Entries[0].Buffer == nil {
		t.Fatalf("group 0 = %+v", view)
	}
	if view.Entries[0].Buffer.MinBindingSize != 64 {
		t.Fatalf("view uniform size = %d, want 64", view.Entries[0].Buffer.MinBindingSize)
	}
	if view.Entries[0].Visibility != gputypes.ShaderStageVertex {
		t.Fatalf("visibility = %v", view.Entries[0].Visibility)
	}
	if s.BindGroupVarName(1, 0) != "model" {
		t.Fatalf("group 1 binding 0 = %q", s.BindGroupVarName(1, 0))
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 1 {
		t.Fatalf("vertex layouts = %d", len(layouts))
	}
	l := layouts[0]
	if l.ArrayStride != 20 || len(l.Attributes) != 2 {
		t.Fatalf("layout = %+v", l)
	}
	if l.Attributes[0].Format != gputypes.VertexFormatFloat32x3 || l.Attributes[0].Offset != 0 {
		t.Fatalf("position attribute = %+v", l.Attributes[0])
	}
	if l.Attributes[1].Format != gputypes.VertexFormatFloat32x2 || l.Attributes[1].Offset != 12 || l.Attributes[1].ShaderLocation != 1 {
		t.Fatalf("uv attribute = %+v", l.Attributes[1])
	}
}

func TestFullscreenVertexHasNoBuffers(t *testing.T) {
	s := MustShader("fullscreen", ShaderTypeVertex, WithEmbeddedSource(FullscreenVertex))
	if len(s.VertexLayouts()) != 0 || len(s.Groups()) != 0 {
		t.Fatalf("layouts %v groups %v", s.VertexLayouts(), s.Groups())
	}
}

func TestMaterialShaderReflection(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		texture string
		dim     gputypes.TextureViewDimension
		uniform uint64
	}{
		{"custom 2d", Custom2DMaterial, "base_color_texture", gputypes.TextureViewDimension2D, 16},
		{"array texture", ArrayTexture, "array_texture", gputypes.TextureViewDimension2DArray, 16},
		{"post processing", PostProcessing, "source_texture", gputypes.TextureViewDimension2D, 16},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShader(tt.name, ShaderTypeFragment, WithEmbeddedSource(tt.source))
			if err != nil {
				t.Fatalf("NewShader: %v", err)
			}
			if s.EntryPoint() != "fs_main" {
				t.Fatalf("entry point = %q", s.EntryPoint())
			}
			desc := s.BindGroupLayoutDescriptor(2)
			if len(desc.Entries) != 3 {
				t.Fatalf("group 2 entries = %d", len(desc.Entries))
			}
			uniform, tex, smp := desc.Entries[0], desc.Entries[1], desc.Entries[2]
			if uniform.Buffer == nil || uniform.Buffer.MinBindingSize != tt.uniform {
				t.Fatalf("uniform entry = %+v", uniform)
			}
			if tex.Texture == nil || tex.Texture.ViewDimension != tt.dim || tex.Texture.SampleType != gputypes.TextureSampleTypeFloat {
				t.Fatalf("texture entry = %+v", tex.Texture)
			}
			if smp.Sampler == nil || smp.Sampler.Type != gputypes.SamplerBindingTypeFiltering {
				t.Fatalf("sampler entry = %+v", smp)
			}
			if b, ok := s.BindGroupFromVarName(2, tt.texture); !ok || b != 1 {
				t.Fatalf("BindGroupFromVarName(%q) = %d, %v", tt.texture, b, ok)
			}
			if len(s.VertexLayouts()) != 0 {
				t.Fatal("fragment shader reported vertex layouts")
			}
		})
	}
}

func TestNewShaderErrors(t *testing.T) {
	if _, err := NewShader("none", ShaderTypeFragment); !errors.Is(err, ErrNoSource) {
		t.Fatalf("err = %v, want ErrNoSource", err)
	}
	if _, err := NewShader("bad", ShaderTypeFragment, WithSource("fn broken( {")); !errors.Is(err, ErrInvalidShader) {
		t.Fatalf("err = %v, want ErrInvalidShader", err)
	}
	if _, err := NewShader("stage", ShaderTypeFragment, WithEmbeddedSource(QuadVertex)); !errors.Is(err, ErrEntryPointNotFound) {
		t.Fatalf("err = %v, want ErrEntryPointNotFound", err)
	}
	if _, err := NewShader("named", ShaderTypeVertex, WithEmbeddedSource(QuadVertex), WithEntryPoint("missing")); !errors.Is(err, ErrEntryPointNotFound) {
		t.Fatalf("err = %v, want ErrEntryPointNotFound", err)
	}
	if _, err := NewShader("missing", ShaderTypeFragment, WithEmbeddedSource("nope.wgsl")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestShaderFromPath(t *testing.T) {
	src, err := Embedded(PostProcessing)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "post.wgsl")
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := NewShader("post", ShaderTypeFragment, WithSourceFromPath(path))
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if s.Source() != src || s.Key() != "post" {
		t.Fatal("source or key not kept")
	}
}

func TestRefLoad(t *testing.T) {
	ref := EmbeddedRef(ArrayTexture)
	if ref.IsZero() || ref.Key() != "embedded:array_texture.wgsl" {
		t.Fatalf("ref = %+v key %q", ref, ref.Key())
	}
	s, err := ref.Load(ShaderTypeFragment)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.Key() != ref.Key() {
		t.Fatalf("key = %q", s.Key())
	}

	if _, err := (Ref{}).Load(ShaderTypeFragment); !errors.Is(err, ErrNoSource) {
		t.Fatalf("zero ref: %v", err)
	}
	if PathRef("a.wgsl").Key() != "path:a.wgsl" {
		t.Fatal("path key")
	}
}
