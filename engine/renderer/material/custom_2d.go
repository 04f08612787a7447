package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// custom2DMaterial is the implementation of the Custom2DMaterial interface.
type custom2DMaterial struct {
	mu      sync.Mutex
	name    string
	shader  shader.Ref
	params  GPUCustom2DParams
	texture asset.ImageHandle
	sampler common.SamplerStagingData
	version uint64
}

// Custom2DMaterial tints an optional texture with a uniform color. Without a texture the quad is
// drawn in the flat color.
type Custom2DMaterial interface {
	Material

	// Color retrieves the RGBA tint.
	Color() [4]float32

	// SetColor replaces the RGBA tint.
	//
	// Parameters:
	//   - color: the new tint
	SetColor(color [4]float32)

	// Texture retrieves the bound texture; the handle is invalid when none is set.
	Texture() asset.ImageHandle

	// SetTexture binds a texture. Pass the zero handle to clear it.
	//
	// Parameters:
	//   - h: the image handle
	SetTexture(h asset.ImageHandle)
}

var _ Custom2DMaterial = &custom2DMaterial{}

// NewCustom2DMaterial creates a custom 2D material, white and untextured by default.
//
// Parameters:
//   - options: variadic list of Custom2DBuilderOption functions
//
// Returns:
//   - Custom2DMaterial: the new material
func NewCustom2DMaterial(options ...Custom2DBuilderOption) Custom2DMaterial {
	m := &custom2DMaterial{
		name:    "Custom 2D Material",
		shader:  shader.EmbeddedRef(shader.Custom2DMaterial),
		params:  GPUCustom2DParams{Color: [4]float32{1, 1, 1, 1}},
		version: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *custom2DMaterial) Name() string {
	return m.name
}

func (m *custom2DMaterial) Shader() shader.Ref {
	return m.shader
}

func (m *custom2DMaterial) Textures() []TextureBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []TextureBinding{{Binding: 1, Image: m.texture, Sampler: m.sampler}}
}

func (m *custom2DMaterial) Uniforms() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.Marshal()
}

func (m *custom2DMaterial) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *custom2DMaterial) Color() [4]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.Color
}

func (m *custom2DMaterial) SetColor(color [4]float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.Color = color
	m.version++
}

func (m *custom2DMaterial) Texture() asset.ImageHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texture
}

func (m *custom2DMaterial) SetTexture(h asset.ImageHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texture = h
	m.version++
}

// Custom2DBuilderOption is a function that configures a custom 2D material during construction.
type Custom2DBuilderOption func(*custom2DMaterial)

// WithColor is an option builder that sets the RGBA tint.
//
// Parameters:
//   - color: the tint color
//
// Returns:
//   - Custom2DBuilderOption: a function that applies the color option to a material
func WithColor(color [4]float32) Custom2DBuilderOption {
	return func(m *custom2DMaterial) {
		m.params.Color = color
	}
}

// WithColorTexture is an option builder that binds the texture to tint.
//
// Parameters:
//   - h: the image handle
//
// Returns:
//   - Custom2DBuilderOption: a function that applies the texture option to a material
func WithColorTexture(h asset.ImageHandle) Custom2DBuilderOption {
	return func(m *custom2DMaterial) {
		m.texture = h
	}
}
