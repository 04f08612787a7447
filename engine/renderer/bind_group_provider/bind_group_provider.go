package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the unexported implementation of BindGroupProvider.
type bindGroupProvider struct {
	// label is a debug label added for convenience.
	label string

	// version is the content stamp the bind group was last built for. The renderer compares it
	// against the source object (material version, texture generations) to decide on a rebuild.
	version uint64

	// The following fields are GPU allocated resources populated by the renderer backend.

	// bindGroup is the GPU bind group created for this provider, or nil if not initialized.
	bindGroup *wgpu.BindGroup
	// buffers holds the GPU buffers created for this provider, keyed by binding index.
	buffers map[int]*wgpu.Buffer
	// textureViews holds the texture views bound by this provider, keyed by binding index.
	// Views are owned by the renderer's image cache and are not released with the provider.
	textureViews map[int]*wgpu.TextureView
	// samplers holds the GPU samplers created for this provider, keyed by binding index.
	samplers map[int]*wgpu.Sampler

	// vertexBuffer and indexBuffer are set for mesh providers only.
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	// indexCount is the number of indices for indexed draws, or 0 for non-indexed meshes.
	indexCount int
	// vertexCount is the number of vertices drawn when the mesh has no index buffer.
	vertexCount int
}

// BindGroupProvider holds the GPU resources behind one bind group or one mesh.
// The renderer keeps a provider per camera (view uniform), per game object (transform uniform),
// per material (uniform block, textures and samplers) and per model (vertex and index buffers).
//
// Usage pattern:
//  1. Create via NewBindGroupProvider(label)
//  2. The backend fills buffers, samplers and views and creates the bind group
//  3. Per frame, BufferWrites update uniform buffers
//  4. Release when the owning object goes away
type BindGroupProvider interface {
	// Release frees the bind group, buffers, samplers and mesh buffers held by the provider.
	Release()

	// Label returns the debug label for this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// Version returns the content stamp the bind group was built for.
	//
	// Returns:
	//   - uint64: the stamp, 0 before the first build
	Version() uint64

	// SetVersion records the content stamp of the current bind group.
	//
	// Parameters:
	//   - v: the new stamp
	SetVersion(v uint64)

	// BindGroup returns the GPU bind group, or nil if not initialized.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// Buffer returns the GPU buffer for the given binding, or nil if not initialized.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns all GPU buffers keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: the buffers
	Buffers() map[int]*wgpu.Buffer

	// TextureView returns the texture view for the given binding, or nil if not set.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.TextureView: the view or nil
	TextureView(binding int) *wgpu.TextureView

	// Sampler returns the GPU sampler for the given binding, or nil if not initialized.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Sampler: the sampler or nil
	Sampler(binding int) *wgpu.Sampler

	// VertexBuffer returns the GPU vertex buffer, or nil if not initialized.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the GPU index buffer, or nil if not initialized.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns the number of indices for indexed draws.
	IndexCount() int

	// VertexCount returns the number of vertices for non-indexed draws.
	VertexCount() int

	// SetBindGroup replaces the bind group, releasing the previous one.
	//
	// Parameters:
	//   - bg: the created bind group
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBuffer stores the buffer for a binding, releasing any buffer it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the created buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetTextureView stores a texture view for a specific binding.
	//
	// Parameters:
	//   - binding: the binding index
	//   - tv: the texture view to bind
	SetTextureView(binding int, tv *wgpu.TextureView)

	// SetSampler stores a GPU sampler for a binding, releasing any sampler it replaces.
	//
	// Parameters:
	//   - binding: the binding index
	//   - s: the sampler to store
	SetSampler(binding int, s *wgpu.Sampler)

	// SetMesh stores the mesh buffers and draw counts.
	//
	// Parameters:
	//   - vertexBuffer: the vertex buffer, or nil for vertex-pulling meshes
	//   - indexBuffer: the index buffer, or nil for non-indexed meshes
	//   - vertexCount: the vertex count
	//   - indexCount: the index count
	SetMesh(vertexBuffer, indexBuffer *wgpu.Buffer, vertexCount, indexCount int)
}

// Compile-time check that bindGroupProvider implements BindGroupProvider
var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates a new BindGroupProvider with the provided options.
//
// Parameters:
//   - label: the debug label used for the GPU objects created for this provider
//   - options: a variadic list of options to configure the provider
//
// Returns:
//   - BindGroupProvider: a new instance of BindGroupProvider configured with the provided options
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:        label,
		buffers:      make(map[int]*wgpu.Buffer),
		textureViews: make(map[int]*wgpu.TextureView),
		samplers:     make(map[int]*wgpu.Sampler),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) Version() uint64 {
	return p.version
}

func (p *bindGroupProvider) SetVersion(v uint64) {
	p.version = v
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) TextureView(binding int) *wgpu.TextureView {
	return p.textureViews[binding]
}

func (p *bindGroupProvider) Sampler(binding int) *wgpu.Sampler {
	return p.samplers[binding]
}

func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer {
	return p.vertexBuffer
}

func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer {
	return p.indexBuffer
}

func (p *bindGroupProvider) IndexCount() int {
	return p.indexCount
}

func (p *bindGroupProvider) VertexCount() int {
	return p.vertexCount
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	if p.bindGroup != nil && p.bindGroup != bg {
		p.bindGroup.Release()
	}
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if old := p.buffers[binding]; old != nil && old != buf {
		old.Release()
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) SetTextureView(binding int, tv *wgpu.TextureView) {
	p.textureViews[binding] = tv
}

func (p *bindGroupProvider) SetSampler(binding int, s *wgpu.Sampler) {
	if old := p.samplers[binding]; old != nil && old != s {
		old.Release()
	}
	p.samplers[binding] = s
}

func (p *bindGroupProvider) SetMesh(vertexBuffer, indexBuffer *wgpu.Buffer, vertexCount, indexCount int) {
	p.vertexBuffer = vertexBuffer
	p.indexBuffer = indexBuffer
	p.vertexCount = vertexCount
	p.indexCount = indexCount
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for i, s := range p.samplers {
		if s != nil {
			s.Release()
		}
		delete(p.samplers, i)
	}
	for i, buf := range p.buffers {
		if buf != nil {
			buf.Release()
		}
		delete(p.buffers, i)
	}
	clear(p.textureViews)

	if p.vertexBuffer != nil {
		p.vertexBuffer.Release()
		p.vertexBuffer = nil
	}
	if p.indexBuffer != nil {
		p.indexBuffer.Release()
		p.indexBuffer = nil
	}
	p.version = 0
}
