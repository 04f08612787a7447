package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

func TestKey(t *testing.T) {
	vs := shader.EmbeddedRef(shader.QuadVertex)
	fs := shader.EmbeddedRef(shader.Custom2DMaterial)

	base := Key(vs, fs, gputypes.TextureFormatBGRA8UnormSrgb, 1)
	if base != Key(vs, fs, gputypes.TextureFormatBGRA8UnormSrgb, 0) {
		t.Error("sample count 0 and 1 should share a key")
	}

	others := []string{
		Key(vs, shader.EmbeddedRef(shader.ArrayTexture), gputypes.TextureFormatBGRA8UnormSrgb, 1),
		Key(shader.EmbeddedRef(shader.FullscreenVertex), fs, gputypes.TextureFormatBGRA8UnormSrgb, 1),
		Key(vs, fs, gputypes.TextureFormatRGBA8Unorm, 1),
		Key(vs, fs, gputypes.TextureFormatBGRA8UnormSrgb, 4),
		Key(vs, shader.PathRef(shader.Custom2DMaterial), gputypes.TextureFormatBGRA8UnormSrgb, 1),
	}
	for i, k := range others {
		if k == base {
			t.Errorf("key %d collides with base key %q", i, base)
		}
	}
}

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("p")
	if p.PipelineKey() != "p" {
		t.Errorf("key = %q", p.PipelineKey())
	}
	if !p.BlendEnabled() {
		t.Error("blending should default to enabled")
	}
	if p.SampleCount() != 1 {
		t.Errorf("sample count = %d, want 1", p.SampleCount())
	}
	if p.CullMode() != wgpu.CullModeNone {
		t.Errorf("cull mode = %v", p.CullMode())
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v", p.Topology())
	}
	if p.Shader(shader.ShaderTypeVertex) != nil || p.Shader(shader.ShaderTypeFragment) != nil {
		t.Error("shaders should be unset")
	}
	if p.RenderPipeline() != nil {
		t.Error("render pipeline should be nil before registration")
	}
}

func TestNewPipelineOptions(t *testing.T) {
	vs, err := shader.EmbeddedRef(shader.FullscreenVertex).Load(shader.ShaderTypeVertex)
	if err != nil {
		t.Fatalf("load vertex: %v", err)
	}
	fs, err := shader.EmbeddedRef(shader.PostProcessing).Load(shader.ShaderTypeFragment)
	if err != nil {
		t.Fatalf("load fragment: %v", err)
	}

	p := NewPipeline("composite",
		WithVertexShader(vs),
		WithFragmentShader(fs),
		WithTarget(gputypes.TextureFormatRGBA8Unorm, 4),
		WithBlendEnabled(false),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
	)
	if p.Shader(shader.ShaderTypeVertex) != vs || p.Shader(shader.ShaderTypeFragment) != fs {
		t.Error("shaders not stored")
	}
	if p.Format() != gputypes.TextureFormatRGBA8Unorm || p.SampleCount() != 4 {
		t.Errorf("target = %v x%d", p.Format(), p.SampleCount())
	}
	if p.BlendEnabled() {
		t.Error("blending should be disabled")
	}
	if p.CullMode() != wgpu.CullModeBack || p.FrontFace() != wgpu.FrontFaceCW {
		t.Error("raster state not applied")
	}

	p.Release()
	if p.RenderPipeline() != nil || p.BindGroupLayouts() != nil {
		t.Error("release should clear GPU objects")
	}
}
