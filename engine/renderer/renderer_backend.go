package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA) of the
// screen pass. Off-screen targets are always single-sampled so later passes can sample them.
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// RendererBackend is the top-level backend interface for the Renderer.
// It embeds the concrete backend interface for the selected GPU API.
type RendererBackend interface {
	wgpuRendererBackend
}

// wgpuRendererBackend is the set of GPU operations the renderer drives each frame.
type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain and the MSAA color texture for the given size.
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the swapchain format chosen during ConfigureSurface.
	SurfaceFormat() gputypes.TextureFormat

	// SampleCount returns the sample count of the screen pass.
	SampleCount() uint32

	// RegisterRenderPipeline compiles the pipeline's shaders and creates its GPU pipeline.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads vertex and index data into the provider's mesh buffers.
	// Either slice may be empty.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, vertexCount, indexCount int) error

	// InitBindGroup creates the bind group described by descriptor. Buffer bindings get a
	// uniform buffer sized by bufferSizes or the entry's minimum binding size; texture and
	// sampler bindings use the views and samplers already stored on the provider.
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor gputypes.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error

	// InitSampler creates a sampler and stores it on the provider at binding.
	InitSampler(provider bind_group_provider.BindGroupProvider, binding int, sampler common.SamplerStagingData) error

	// CreateImageTexture creates the GPU texture for img, uploads its pixels when the image is a
	// copy destination and returns the texture with a view covering every layer.
	CreateImageTexture(img *texture.Image) (*wgpu.Texture, *wgpu.TextureView, error)

	// ReleaseTexture frees a texture and view returned by CreateImageTexture.
	ReleaseTexture(tex *wgpu.Texture, view *wgpu.TextureView)

	// WriteBuffers queues uniform buffer writes.
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame acquires the next swapchain image and opens the frame's command encoder.
	BeginFrame() error

	// BeginPass starts a render pass that clears to clear. A nil target renders to the
	// swapchain image, resolving through the MSAA texture when enabled.
	BeginPass(target *wgpu.TextureView, clear gputypes.Color) error

	// DrawCall draws one mesh with the given pipeline. bindGroups is indexed by group; nil
	// entries bind an empty group.
	DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error

	// EndPass ends the current render pass.
	EndPass() error

	// EndFrame finishes the command encoder and submits it to the queue.
	EndFrame() error

	// Present presents the acquired swapchain image.
	Present()

	// Release frees every GPU object owned by the backend.
	Release()
}
