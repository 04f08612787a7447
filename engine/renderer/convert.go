package renderer

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// ErrUnsupported is returned when a gputypes value has no wgpu counterpart the renderer handles.
var ErrUnsupported = errors.New("renderer: unsupported value")

// The engine describes GPU objects with gputypes; the backend speaks wgpu. The two enumerate
// most values differently, so every conversion goes through a name-by-name table.

var textureFormats = map[gputypes.TextureFormat]wgpu.TextureFormat{
	gputypes.TextureFormatR8Unorm:        wgpu.TextureFormatR8Unorm,
	gputypes.TextureFormatR8Snorm:        wgpu.TextureFormatR8Snorm,
	gputypes.TextureFormatR8Uint:         wgpu.TextureFormatR8Uint,
	gputypes.TextureFormatR8Sint:         wgpu.TextureFormatR8Sint,
	gputypes.TextureFormatR16Uint:        wgpu.TextureFormatR16Uint,
	gputypes.TextureFormatR16Sint:        wgpu.TextureFormatR16Sint,
	gputypes.TextureFormatR16Float:       wgpu.TextureFormatR16Float,
	gputypes.TextureFormatRG8Unorm:       wgpu.TextureFormatRG8Unorm,
	gputypes.TextureFormatRG8Snorm:       wgpu.TextureFormatRG8Snorm,
	gputypes.TextureFormatRG8Uint:        wgpu.TextureFormatRG8Uint,
	gputypes.TextureFormatRG8Sint:        wgpu.TextureFormatRG8Sint,
	gputypes.TextureFormatR32Float:       wgpu.TextureFormatR32Float,
	gputypes.TextureFormatR32Uint:        wgpu.TextureFormatR32Uint,
	gputypes.TextureFormatR32Sint:        wgpu.TextureFormatR32Sint,
	gputypes.TextureFormatRG16Uint:       wgpu.TextureFormatRG16Uint,
	gputypes.TextureFormatRG16Sint:       wgpu.TextureFormatRG16Sint,
	gputypes.TextureFormatRG16Float:      wgpu.TextureFormatRG16Float,
	gputypes.TextureFormatRGBA8Unorm:     wgpu.TextureFormatRGBA8Unorm,
	gputypes.TextureFormatRGBA8UnormSrgb: wgpu.TextureFormatRGBA8UnormSrgb,
	gputypes.TextureFormatRGBA8Snorm:     wgpu.TextureFormatRGBA8Snorm,
	gputypes.TextureFormatRGBA8Uint:      wgpu.TextureFormatRGBA8Uint,
	gputypes.TextureFormatRGBA8Sint:      wgpu.TextureFormatRGBA8Sint,
	gputypes.TextureFormatBGRA8Unorm:     wgpu.TextureFormatBGRA8Unorm,
	gputypes.TextureFormatBGRA8UnormSrgb: wgpu.TextureFormatBGRA8UnormSrgb,
	gputypes.TextureFormatRG32Float:      wgpu.TextureFormatRG32Float,
	gputypes.TextureFormatRG32Uint:       wgpu.TextureFormatRG32Uint,
	gputypes.TextureFormatRG32Sint:       wgpu.TextureFormatRG32Sint,
	gputypes.TextureFormatRGBA16Uint:     wgpu.TextureFormatRGBA16Uint,
	gputypes.TextureFormatRGBA16Sint:     wgpu.TextureFormatRGBA16Sint,
	gputypes.TextureFormatRGBA16Float:    wgpu.TextureFormatRGBA16Float,
	gputypes.TextureFormatRGBA32Float:    wgpu.TextureFormatRGBA32Float,
	gputypes.TextureFormatRGBA32Uint:     wgpu.TextureFormatRGBA32Uint,
	gputypes.TextureFormatRGBA32Sint:     wgpu.TextureFormatRGBA32Sint,
}

func toWGPUTextureFormat(f gputypes.TextureFormat) (wgpu.TextureFormat, error) {
	if w, ok := textureFormats[f]; ok {
		return w, nil
	}
	return wgpu.TextureFormatUndefined, fmt.Errorf("%w: texture format %s", ErrUnsupported, f)
}

func fromWGPUTextureFormat(w wgpu.TextureFormat) (gputypes.TextureFormat, bool) {
	for f, candidate := range textureFormats {
		if candidate == w {
			return f, true
		}
	}
	return gputypes.TextureFormatUndefined, false
}

func toWGPUTextureUsage(u gputypes.TextureUsage) wgpu.TextureUsage {
	var out wgpu.TextureUsage
	if u&gputypes.TextureUsageCopySrc != 0 {
		out |= wgpu.TextureUsageCopySrc
	}
	if u&gputypes.TextureUsageCopyDst != 0 {
		out |= wgpu.TextureUsageCopyDst
	}
	if u&gputypes.TextureUsageTextureBinding != 0 {
		out |= wgpu.TextureUsageTextureBinding
	}
	if u&gputypes.TextureUsageStorageBinding != 0 {
		out |= wgpu.TextureUsageStorageBinding
	}
	if u&gputypes.TextureUsageRenderAttachment != 0 {
		out |= wgpu.TextureUsageRenderAttachment
	}
	return out
}

func toWGPUTextureDimension(d gputypes.TextureDimension) wgpu.TextureDimension {
	switch d {
	case gputypes.TextureDimension1D:
		return wgpu.TextureDimension1D
	case gputypes.TextureDimension3D:
		return wgpu.TextureDimension3D
	default:
		return wgpu.TextureDimension2D
	}
}

func toWGPUTextureViewDimension(d gputypes.TextureViewDimension) wgpu.TextureViewDimension {
	switch d {
	case gputypes.TextureViewDimension1D:
		return wgpu.TextureViewDimension1D
	case gputypes.TextureViewDimension2DArray:
		return wgpu.TextureViewDimension2DArray
	case gputypes.TextureViewDimensionCube:
		return wgpu.TextureViewDimensionCube
	case gputypes.TextureViewDimensionCubeArray:
		return wgpu.TextureViewDimensionCubeArray
	case gputypes.TextureViewDimension3D:
		return wgpu.TextureViewDimension3D
	default:
		return wgpu.TextureViewDimension2D
	}
}

func toWGPUTextureDescriptor(d gputypes.TextureDescriptor) (*wgpu.TextureDescriptor, error) {
	format, err := toWGPUTextureFormat(d.Format)
	if err != nil {
		return nil, err
	}
	return &wgpu.TextureDescriptor{
		Label:     d.Label,
		Usage:     toWGPUTextureUsage(d.Usage),
		Dimension: toWGPUTextureDimension(d.Dimension),
		Size: wgpu.Extent3D{
			Width:              d.Size.Width,
			Height:             d.Size.Height,
			DepthOrArrayLayers: max(d.Size.DepthOrArrayLayers, 1),
		},
		Format:        format,
		MipLevelCount: max(d.MipLevelCount, 1),
		SampleCount:   max(d.SampleCount, 1),
	}, nil
}

func toWGPUTextureViewDescriptor(d gputypes.TextureViewDescriptor) (*wgpu.TextureViewDescriptor, error) {
	format, err := toWGPUTextureFormat(d.Format)
	if err != nil {
		return nil, err
	}
	return &wgpu.TextureViewDescriptor{
		Label:           d.Label,
		Format:          format,
		Dimension:       toWGPUTextureViewDimension(d.Dimension),
		BaseMipLevel:    d.BaseMipLevel,
		MipLevelCount:   max(d.MipLevelCount, 1),
		BaseArrayLayer:  d.BaseArrayLayer,
		ArrayLayerCount: max(d.ArrayLayerCount, 1),
		Aspect:          wgpu.TextureAspectAll,
	}, nil
}

func toWGPUAddressMode(m gputypes.AddressMode) wgpu.AddressMode {
	switch m {
	case gputypes.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gputypes.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func toWGPUFilterMode(m gputypes.FilterMode) wgpu.FilterMode {
	if m == gputypes.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func toWGPUMipmapFilterMode(m gputypes.MipmapFilterMode) wgpu.MipmapFilterMode {
	if m == gputypes.MipmapFilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

// toWGPUSamplerDescriptor fills unset fields with repeat addressing and linear filtering.
func toWGPUSamplerDescriptor(label string, s common.SamplerStagingData) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  toWGPUAddressMode(common.Coalesce(s.AddressModeU, gputypes.AddressModeRepeat)),
		AddressModeV:  toWGPUAddressMode(common.Coalesce(s.AddressModeV, gputypes.AddressModeRepeat)),
		AddressModeW:  toWGPUAddressMode(common.Coalesce(s.AddressModeW, gputypes.AddressModeRepeat)),
		MagFilter:     toWGPUFilterMode(common.Coalesce(s.MagFilter, gputypes.FilterModeLinear)),
		MinFilter:     toWGPUFilterMode(common.Coalesce(s.MinFilter, gputypes.FilterModeLinear)),
		MipmapFilter:  toWGPUMipmapFilterMode(common.Coalesce(s.MipmapFilter, gputypes.MipmapFilterModeLinear)),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func toWGPUShaderStage(s gputypes.ShaderStages) wgpu.ShaderStage {
	var out wgpu.ShaderStage
	if s&gputypes.ShaderStageVertex != 0 {
		out |= wgpu.ShaderStageVertex
	}
	if s&gputypes.ShaderStageFragment != 0 {
		out |= wgpu.ShaderStageFragment
	}
	if s&gputypes.ShaderStageCompute != 0 {
		out |= wgpu.ShaderStageCompute
	}
	return out
}

func toWGPUBufferBindingType(t gputypes.BufferBindingType) wgpu.BufferBindingType {
	switch t {
	case gputypes.BufferBindingTypeStorage:
		return wgpu.BufferBindingTypeStorage
	case gputypes.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferBindingTypeReadOnlyStorage
	default:
		return wgpu.BufferBindingTypeUniform
	}
}

func toWGPUSamplerBindingType(t gputypes.SamplerBindingType) wgpu.SamplerBindingType {
	switch t {
	case gputypes.SamplerBindingTypeNonFiltering:
		return wgpu.SamplerBindingTypeNonFiltering
	case gputypes.SamplerBindingTypeComparison:
		return wgpu.SamplerBindingTypeComparison
	default:
		return wgpu.SamplerBindingTypeFiltering
	}
}

func toWGPUTextureSampleType(t gputypes.TextureSampleType) wgpu.TextureSampleType {
	switch t {
	case gputypes.TextureSampleTypeUnfilterableFloat:
		return wgpu.TextureSampleTypeUnfilterableFloat
	case gputypes.TextureSampleTypeDepth:
		return wgpu.TextureSampleTypeDepth
	case gputypes.TextureSampleTypeSint:
		return wgpu.TextureSampleTypeSint
	case gputypes.TextureSampleTypeUint:
		return wgpu.TextureSampleTypeUint
	default:
		return wgpu.TextureSampleTypeFloat
	}
}

func toWGPUBindGroupLayoutDescriptor(d gputypes.BindGroupLayoutDescriptor) (*wgpu.BindGroupLayoutDescriptor, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(d.Entries))
	for _, e := range d.Entries {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    e.Binding,
			Visibility: toWGPUShaderStage(e.Visibility),
		}
		switch {
		case e.Buffer != nil:
			entry.Buffer = wgpu.BufferBindingLayout{
				Type:             toWGPUBufferBindingType(e.Buffer.Type),
				HasDynamicOffset: e.Buffer.HasDynamicOffset,
				MinBindingSize:   e.Buffer.MinBindingSize,
			}
		case e.Sampler != nil:
			entry.Sampler = wgpu.SamplerBindingLayout{Type: toWGPUSamplerBindingType(e.Sampler.Type)}
		case e.Texture != nil:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    toWGPUTextureSampleType(e.Texture.SampleType),
				ViewDimension: toWGPUTextureViewDimension(e.Texture.ViewDimension),
				Multisampled:  e.Texture.Multisampled,
			}
		default:
			return nil, fmt.Errorf("%w: binding %d of %q is not a buffer, sampler or texture", ErrUnsupported, e.Binding, d.Label)
		}
		entries = append(entries, entry)
	}
	return &wgpu.BindGroupLayoutDescriptor{Label: d.Label, Entries: entries}, nil
}

func toWGPUVertexFormat(f gputypes.VertexFormat) (wgpu.VertexFormat, error) {
	switch f {
	case gputypes.VertexFormatFloat32:
		return wgpu.VertexFormatFloat32, nil
	case gputypes.VertexFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2, nil
	case gputypes.VertexFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3, nil
	case gputypes.VertexFormatFloat32x4:
		return wgpu.VertexFormatFloat32x4, nil
	case gputypes.VertexFormatUint32:
		return wgpu.VertexFormatUint32, nil
	case gputypes.VertexFormatSint32:
		return wgpu.VertexFormatSint32, nil
	}
	return wgpu.VertexFormatUndefined, fmt.Errorf("%w: vertex format %s", ErrUnsupported, f)
}

func toWGPUVertexBufferLayouts(layouts []gputypes.VertexBufferLayout) ([]wgpu.VertexBufferLayout, error) {
	out := make([]wgpu.VertexBufferLayout, 0, len(layouts))
	for _, l := range layouts {
		attrs := make([]wgpu.VertexAttribute, 0, len(l.Attributes))
		for _, a := range l.Attributes {
			format, err := toWGPUVertexFormat(a.Format)
			if err != nil {
				return nil, err
			}
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         format,
				Offset:         a.Offset,
				ShaderLocation: a.ShaderLocation,
			})
		}
		step := wgpu.VertexStepModeVertex
		if l.StepMode == gputypes.VertexStepModeInstance {
			step = wgpu.VertexStepModeInstance
		}
		out = append(out, wgpu.VertexBufferLayout{
			ArrayStride: l.ArrayStride,
			StepMode:    step,
			Attributes:  attrs,
		})
	}
	return out, nil
}

func toWGPUColor(c gputypes.Color) wgpu.Color {
	return wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
