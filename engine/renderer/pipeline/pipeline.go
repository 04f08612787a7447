package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// pipeline is the implementation of the Pipeline interface.
// It pairs a vertex and fragment shader with the color target they render into and holds the
// WebGPU objects created for that combination.
type pipeline struct {
	// pipelineKey is the unique identifier for this pipeline, used for caching and lookups
	pipelineKey string

	// both shaders are required before the pipeline can be registered with a backend.

	vertexShader, fragmentShader shader.Shader

	// format and sampleCount describe the color attachment the pipeline draws into.
	// Off-screen targets use sample count 1; the screen uses the renderer's MSAA count.
	format      gputypes.TextureFormat
	sampleCount uint32

	renderPipeline   *wgpu.RenderPipeline
	bindGroupLayouts []*wgpu.BindGroupLayout

	blendEnabled bool
	cullMode     wgpu.CullMode
	topology     wgpu.PrimitiveTopology
	frontFace    wgpu.FrontFace
	writeMask    wgpu.ColorWriteMask
	blendState   *wgpu.BlendState
}

// Pipeline defines a render pipeline: a vertex and fragment shader, the color target format and
// sample count, and the blend, cull and topology state used when the GPU pipeline is created.
type Pipeline interface {
	// PipelineKey returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	PipelineKey() string

	// Shader retrieves the shader associated with the specified type if it exists, nil otherwise.
	//
	// Parameters:
	//   - shaderType: the type of shader to retrieve (vertex or fragment)
	//
	// Returns:
	//   - shader.Shader: the shader associated with the specified type, or nil if not set
	Shader(shaderType shader.ShaderType) shader.Shader

	// Format returns the color target format the pipeline renders into.
	Format() gputypes.TextureFormat

	// SampleCount returns the multisample count of the color target.
	SampleCount() uint32

	// RenderPipeline returns the created GPU pipeline, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroupLayouts returns the layouts the pipeline layout was built from, indexed by group.
	//
	// Returns:
	//   - []*wgpu.BindGroupLayout: one layout per group, empty layouts filling unused groups
	BindGroupLayouts() []*wgpu.BindGroupLayout

	// BlendEnabled returns whether alpha blending is enabled for this pipeline.
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state used when blending is enabled.
	BlendState() *wgpu.BlendState

	// SetRenderPipeline stores the created GPU pipeline and the layouts it was built from.
	// Called by the renderer backend during registration.
	//
	// Parameters:
	//   - rp: the created render pipeline
	//   - layouts: the bind group layouts of its pipeline layout
	SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout)

	// Release frees the GPU pipeline. Bind group layouts are shared and owned by the backend.
	Release()
}

// Compile-time check that pipeline implements Pipeline
var _ Pipeline = &pipeline{}

// Key builds the cache key of the pipeline drawing the given shaders into a target of the given
// format and sample count.
//
// Parameters:
//   - vertex: the vertex shader reference
//   - fragment: the fragment shader reference
//   - format: the color target format
//   - sampleCount: the color target sample count
//
// Returns:
//   - string: the cache key
func Key(vertex, fragment shader.Ref, format gputypes.TextureFormat, sampleCount uint32) string {
	return fmt.Sprintf("%s+%s@%s/x%d", vertex.Key(), fragment.Key(), format, max(sampleCount, 1))
}

// NewPipeline creates a new render Pipeline with the given key and options.
// Blending defaults to straight alpha over, culling to none and topology to a triangle list.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - opts: a variadic list of PipelineBuilderOption functions to configure the pipeline
//
// Returns:
//   - Pipeline: a new Pipeline instance with the specified configuration
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		pipelineKey:  pipelineKey,
		format:       gputypes.TextureFormatBGRA8UnormSrgb,
		sampleCount:  1,
		blendEnabled: true,
		cullMode:     wgpu.CullModeNone,
		topology:     wgpu.PrimitiveTopologyTriangleList,
		frontFace:    wgpu.FrontFaceCCW,
		writeMask:    wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.sampleCount == 0 {
		p.sampleCount = 1
	}
	return p
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) Format() gputypes.TextureFormat {
	return p.format
}

func (p *pipeline) SampleCount() uint32 {
	return p.sampleCount
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	return p.renderPipeline
}

func (p *pipeline) BindGroupLayouts() []*wgpu.BindGroupLayout {
	return p.bindGroupLayouts
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline, layouts []*wgpu.BindGroupLayout) {
	p.renderPipeline = rp
	p.bindGroupLayouts = layouts
}

func (p *pipeline) Release() {
	if p.renderPipeline != nil {
		p.renderPipeline.Release()
		p.renderPipeline = nil
	}
	p.bindGroupLayouts = nil
}
