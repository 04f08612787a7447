package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

var (
	// ErrNoFrame is returned by pass and draw calls made outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame while the previous frame is not yet presented.
	ErrFrameInProgress = errors.New("renderer: previous frame not yet presented")
)

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat   wgpu.TextureFormat
	msaaTexture     *wgpu.Texture
	msaaTextureView *wgpu.TextureView

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the screen pass

	// layouts caches bind group layouts by their entry signature so equal descriptors from
	// different shaders resolve to the same layout object.
	layouts        map[string]*wgpu.BindGroupLayout
	emptyBindGroup *wgpu.BindGroup

	// Frame state for batched rendering across multiple passes
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount) (wgpuRendererBackend, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: max(sampleCount, MSAAOff),
		layouts:     make(map[string]*wgpu.BindGroupLayout),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	limits := wgpu.DefaultLimits()
	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	width, height = max(width, 1), max(height, 1)

	capabilities := b.surface.GetCapabilities(b.adapter)
	if len(capabilities.Formats) == 0 {
		return fmt.Errorf("%w: surface reports no formats", ErrUnsupported)
	}
	b.surfaceFormat = capabilities.Formats[0]
	for _, f := range capabilities.Formats {
		if _, ok := fromWGPUTextureFormat(f); ok {
			b.surfaceFormat = f
			break
		}
	}

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseMSAA()
	if b.sampleCount <= MSAAOff {
		return nil
	}

	// The screen pass draws into the MSAA texture and resolves into the swapchain view.
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "MSAA Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        b.surfaceFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create msaa texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create msaa view: %w", err)
	}
	b.msaaTexture = tex
	b.msaaTextureView = view
	return nil
}

func (b *wgpuRendererBackendImpl) releaseMSAA() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SurfaceFormat() gputypes.TextureFormat {
	b.mu.Lock()
	defer b.mu.Unlock()

	f, _ := fromWGPUTextureFormat(b.surfaceFormat)
	return f
}

func (b *wgpuRendererBackendImpl) SampleCount() uint32 {
	return uint32(b.sampleCount)
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vertexShader := p.Shader(shader.ShaderTypeVertex)
	fragmentShader := p.Shader(shader.ShaderTypeFragment)
	if vertexShader == nil || fragmentShader == nil {
		return errors.New("both vertex and fragment shaders must be set to create a render pipeline")
	}

	format, err := toWGPUTextureFormat(p.Format())
	if err != nil {
		return err
	}
	vertexLayouts, err := toWGPUVertexBufferLayouts(vertexShader.VertexLayouts())
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	vs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertexShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertexShader.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: fragmentShader.Key(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fragmentShader.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer fs.Release()

	merged := mergeBindGroupLayouts(vertexShader.BindGroupLayoutDescriptors(), fragmentShader.BindGroupLayoutDescriptors())
	maxGroup := -1
	for g := range merged {
		maxGroup = max(maxGroup, g)
	}
	bindGroupLayouts := make([]*wgpu.BindGroupLayout, maxGroup+1)
	for g := range bindGroupLayouts {
		// unused groups below the highest one still need a layout
		layout, layoutErr := b.bindGroupLayout(merged[g])
		if layoutErr != nil {
			return fmt.Errorf("failed to create bind group layout for group %d: %w", g, layoutErr)
		}
		bindGroupLayouts[g] = layout
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: bindGroupLayouts,
	})
	if err != nil {
		return err
	}
	defer pipelineLayout.Release()

	target := wgpu.ColorTargetState{
		Format:    format,
		WriteMask: p.WriteMask(),
	}
	if p.BlendEnabled() {
		target.Blend = p.BlendState()
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vertexShader.EntryPoint(),
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fragmentShader.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: p.SampleCount(),
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return err
	}

	p.SetRenderPipeline(created, bindGroupLayouts)
	return nil
}

// bindGroupLayout returns the cached layout for desc, creating it on first use.
// The caller holds b.mu.
func (b *wgpuRendererBackendImpl) bindGroupLayout(desc gputypes.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayout, error) {
	key := layoutKey(desc)
	if layout, ok := b.layouts[key]; ok {
		return layout, nil
	}
	converted, err := toWGPUBindGroupLayoutDescriptor(desc)
	if err != nil {
		return nil, err
	}
	layout, err := b.device.CreateBindGroupLayout(converted)
	if err != nil {
		return nil, err
	}
	b.layouts[key] = layout
	return layout, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, vertexCount, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	var vertexBuffer, indexBuffer *wgpu.Buffer
	if len(vertexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Vertex Buffer", wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, vertexData)
		if err != nil {
			return err
		}
		vertexBuffer = buf
	}
	if len(indexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" Index Buffer", wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, indexData)
		if err != nil {
			if vertexBuffer != nil {
				vertexBuffer.Release()
			}
			return err
		}
		indexBuffer = buf
	}

	provider.SetMesh(vertexBuffer, indexBuffer, vertexCount, indexCount)
	return nil
}

// createBuffer creates a buffer holding data, padded to the 4-byte copy alignment.
func (b *wgpuRendererBackendImpl) createBuffer(label string, usage wgpu.BufferUsage, data []byte) (*wgpu.Buffer, error) {
	size := align4(uint64(len(data)))
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
	if err != nil {
		return nil, err
	}
	if uint64(len(data)) != size {
		padded := make([]byte, size)
		copy(padded, data)
		data = padded
	}
	if err := b.queue.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, err
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor gputypes.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		provider.SetBindGroup(nil)
		return nil
	}

	layout, err := b.bindGroupLayout(descriptor)
	if err != nil {
		return err
	}

	bindGroupEntries := make([]wgpu.BindGroupEntry, len(descriptor.Entries))
	for i, entry := range descriptor.Entries {
		binding := int(entry.Binding)

		switch {
		case entry.Texture != nil:
			tv := provider.TextureView(binding)
			if tv == nil {
				return fmt.Errorf("texture binding %d of %s has no texture view", binding, provider.Label())
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding:     entry.Binding,
				TextureView: tv,
			}
		case entry.Sampler != nil:
			samp := provider.Sampler(binding)
			if samp == nil {
				return fmt.Errorf("sampler binding %d of %s has no sampler", binding, provider.Label())
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Sampler: samp,
			}
		case entry.Buffer != nil:
			usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			if entry.Buffer.Type != gputypes.BufferBindingTypeUniform {
				usage = wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst
			}
			size := align4(common.Coalesce(bufferSizes[binding], entry.Buffer.MinBindingSize, 16))

			// reuse the existing buffer unless the block grew
			buf := provider.Buffer(binding)
			if buf == nil || buf.GetSize() < size {
				buf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
					Label: fmt.Sprintf("%s Buffer %d", provider.Label(), binding),
					Size:  size,
					Usage: usage,
				})
				if err != nil {
					return err
				}
				provider.SetBuffer(binding, buf)
			}
			bindGroupEntries[i] = wgpu.BindGroupEntry{
				Binding: entry.Binding,
				Buffer:  buf,
				Offset:  0,
				Size:    wgpu.WholeSize,
			}
		default:
			return fmt.Errorf("%w: binding %d of %s", ErrUnsupported, binding, provider.Label())
		}
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label() + " Bind Group",
		Layout:  layout,
		Entries: bindGroupEntries,
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bindGroup)
	return nil
}

func (b *wgpuRendererBackendImpl) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, sampler common.SamplerStagingData) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(toWGPUSamplerDescriptor(provider.Label()+" Sampler", sampler))
	if err != nil {
		return err
	}
	provider.SetSampler(binding, samp)
	return nil
}

func (b *wgpuRendererBackendImpl) CreateImageTexture(img *texture.Image) (*wgpu.Texture, *wgpu.TextureView, error) {
	desc, err := toWGPUTextureDescriptor(img.Descriptor())
	if err != nil {
		return nil, nil, err
	}
	viewDesc, err := toWGPUTextureViewDescriptor(img.ViewDescriptor())
	if err != nil {
		return nil, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(desc)
	if err != nil {
		return nil, nil, err
	}

	layers := max(img.Layers, 1)
	if img.Usage&gputypes.TextureUsageCopyDst != 0 && len(img.Data) == img.LayerSize()*int(layers) {
		err = b.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  tex,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			img.Data,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  img.Width * img.BytesPerPixel(),
				RowsPerImage: img.Height,
			},
			&wgpu.Extent3D{
				Width:              img.Width,
				Height:             img.Height,
				DepthOrArrayLayers: layers,
			},
		)
		if err != nil {
			tex.Release()
			return nil, nil, fmt.Errorf("upload %q: %w", img.Label, err)
		}
	}

	view, err := tex.CreateView(viewDesc)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}

func (b *wgpuRendererBackendImpl) ReleaseTexture(tex *wgpu.Texture, view *wgpu.TextureView) {
	if view != nil {
		view.Release()
	}
	if tex != nil {
		tex.Release()
	}
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		buf := w.Provider.Buffer(w.Binding)
		if buf == nil {
			continue
		}
		if err := b.queue.WriteBuffer(buf, w.Offset, w.Data); err != nil {
			return fmt.Errorf("write %s binding %d: %w", w.Provider.Label(), w.Binding, err)
		}
	}
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// a held surface texture means the last frame was never presented
	if b.frameSurface != nil {
		return ErrFrameInProgress
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameEncoder = encoder
	b.frameSurface = surfaceTexture
	b.frameView = view
	return nil
}

func (b *wgpuRendererBackendImpl) BeginPass(target *wgpu.TextureView, clear gputypes.Color) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}

	attachment := wgpu.RenderPassColorAttachment{
		View:       target,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: toWGPUColor(clear),
	}
	if target == nil {
		// When MSAA is enabled the MSAA texture is the attachment and the swapchain view is
		// the resolve target; otherwise the swapchain view is drawn to directly.
		if b.msaaTextureView != nil {
			attachment.View = b.msaaTextureView
			attachment.ResolveTarget = b.frameView
			attachment.StoreOp = wgpu.StoreOpDiscard
		} else {
			attachment.View = b.frameView
		}
	}

	b.framePass = b.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	})
	return nil
}

func (b *wgpuRendererBackendImpl) DrawCall(
	p pipeline.Pipeline,
	mesh bind_group_provider.BindGroupProvider,
	bindGroups []bind_group_provider.BindGroupProvider,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	if p.RenderPipeline() == nil {
		return fmt.Errorf("pipeline %s is not registered", p.PipelineKey())
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	for i := range p.BindGroupLayouts() {
		var group *wgpu.BindGroup
		if i < len(bindGroups) && bindGroups[i] != nil {
			group = bindGroups[i].BindGroup()
		}
		if group == nil {
			empty, err := b.emptyGroup()
			if err != nil {
				return err
			}
			group = empty
		}
		b.framePass.SetBindGroup(uint32(i), group, nil)
	}

	if vb := mesh.VertexBuffer(); vb != nil {
		b.framePass.SetVertexBuffer(0, vb, 0, wgpu.WholeSize)
	}
	if ib := mesh.IndexBuffer(); ib != nil && mesh.IndexCount() > 0 {
		b.framePass.SetIndexBuffer(ib, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(uint32(mesh.IndexCount()), 1, 0, 0, 0)
		return nil
	}
	b.framePass.Draw(uint32(mesh.VertexCount()), 1, 0, 0)
	return nil
}

// emptyGroup returns the bind group bound to groups a pipeline declares no resources for.
// The caller holds b.mu.
func (b *wgpuRendererBackendImpl) emptyGroup() (*wgpu.BindGroup, error) {
	if b.emptyBindGroup != nil {
		return b.emptyBindGroup, nil
	}
	layout, err := b.bindGroupLayout(gputypes.BindGroupLayoutDescriptor{})
	if err != nil {
		return nil, err
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Empty Bind Group",
		Layout: layout,
	})
	if err != nil {
		return nil, err
	}
	b.emptyBindGroup = group
	return group, nil
}

func (b *wgpuRendererBackendImpl) EndPass() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	err := b.framePass.End()
	b.framePass.Release()
	b.framePass = nil
	return err
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return ErrNoFrame
	}
	if b.framePass != nil {
		_ = b.framePass.End()
		b.framePass.Release()
		b.framePass = nil
	}

	commandBuffer, err := b.frameEncoder.Finish(nil)
	b.frameEncoder.Release()
	b.frameEncoder = nil
	if err != nil {
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)
	commandBuffer.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseFrameSurface()
	b.releaseMSAA()
	if b.emptyBindGroup != nil {
		b.emptyBindGroup.Release()
		b.emptyBindGroup = nil
	}
	for k, layout := range b.layouts {
		layout.Release()
		delete(b.layouts, k)
	}
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

func align4(n uint64) uint64 {
	return (n + 3) &^ 3
}

// layoutKey builds a signature of a layout's entries, ignoring the label.
func layoutKey(desc gputypes.BindGroupLayoutDescriptor) string {
	var sb strings.Builder
	for _, e := range desc.Entries {
		fmt.Fprintf(&sb, "%d:%d:", e.Binding, e.Visibility)
		switch {
		case e.Buffer != nil:
			fmt.Fprintf(&sb, "buf%d/%d/%t;", e.Buffer.Type, e.Buffer.MinBindingSize, e.Buffer.HasDynamicOffset)
		case e.Sampler != nil:
			fmt.Fprintf(&sb, "smp%d;", e.Sampler.Type)
		case e.Texture != nil:
			fmt.Fprintf(&sb, "tex%d/%d/%t;", e.Texture.SampleType, e.Texture.ViewDimension, e.Texture.Multisampled)
		default:
			sb.WriteString("?;")
		}
	}
	return sb.String()
}

// mergeBindGroupLayouts merges the bind group layout descriptors of a vertex and fragment
// shader into one set of descriptors keyed by group index. Entries present in both stages
// have their visibility combined.
//
// Parameters:
//   - vertexLayouts: bind group layout descriptors from the vertex shader
//   - fragmentLayouts: bind group layout descriptors from the fragment shader
//
// Returns:
//   - map[int]gputypes.BindGroupLayoutDescriptor: the merged descriptors keyed by group index
func mergeBindGroupLayouts(
	vertexLayouts, fragmentLayouts map[int]gputypes.BindGroupLayoutDescriptor,
) map[int]gputypes.BindGroupLayoutDescriptor {
	merged := make(map[int]gputypes.BindGroupLayoutDescriptor)

	for g, vDesc := range vertexLayouts {
		merged[g] = vDesc
	}
	for g, fDesc := range fragmentLayouts {
		vDesc, hasV := merged[g]
		if !hasV {
			merged[g] = fDesc
			continue
		}

		// group in both, merge entries by binding number
		entryMap := make(map[uint32]gputypes.BindGroupLayoutEntry)
		for _, e := range vDesc.Entries {
			entryMap[e.Binding] = e
		}
		for _, e := range fDesc.Entries {
			if existing, ok := entryMap[e.Binding]; ok {
				existing.Visibility |= e.Visibility
				entryMap[e.Binding] = existing
			} else {
				entryMap[e.Binding] = e
			}
		}

		entries := make([]gputypes.BindGroupLayoutEntry, 0, len(entryMap))
		for _, e := range entryMap {
			entries = append(entries, e)
		}
		slices.SortFunc(entries, func(a, b gputypes.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})

		merged[g] = gputypes.BindGroupLayoutDescriptor{
			Label:   vDesc.Label,
			Entries: entries,
		}
	}

	return merged
}
