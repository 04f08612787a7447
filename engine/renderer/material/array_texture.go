package material

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/gogpu/gputypes"
)

// arrayTextureMaterial is the implementation of the ArrayTextureMaterial interface.
type arrayTextureMaterial struct {
	mu      sync.Mutex
	array   asset.ImageHandle
	params  GPUArrayTextureParams
	version uint64
}

// ArrayTextureMaterial draws every layer of a 2D array texture side by side across a quad.
type ArrayTextureMaterial interface {
	Material

	// ArrayTexture retrieves the bound array image.
	ArrayTexture() asset.ImageHandle

	// LayerCount retrieves the number of layers spread across the quad.
	LayerCount() uint32

	// SetLayerCount changes the number of layers shown.
	//
	// Parameters:
	//   - n: layer count, at least 1
	SetLayerCount(n uint32)
}

var _ ArrayTextureMaterial = &arrayTextureMaterial{}

// NewArrayTextureMaterial creates a material sampling array with layers layers.
//
// Parameters:
//   - array: handle of an image reinterpreted as a 2D array
//   - layers: the layer count
//
// Returns:
//   - ArrayTextureMaterial: the new material
func NewArrayTextureMaterial(array asset.ImageHandle, layers uint32) ArrayTextureMaterial {
	return &arrayTextureMaterial{
		array:   array,
		params:  GPUArrayTextureParams{LayerCount: float32(max(layers, 1))},
		version: 1,
	}
}

func (m *arrayTextureMaterial) Name() string {
	return "Array Texture Material"
}

func (m *arrayTextureMaterial) Shader() shader.Ref {
	return shader.EmbeddedRef(shader.ArrayTexture)
}

func (m *arrayTextureMaterial) Textures() []TextureBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []TextureBinding{{
		Binding: 1,
		Image:   m.array,
		Sampler: common.SamplerStagingData{
			AddressModeU: gputypes.AddressModeRepeat,
			AddressModeV: gputypes.AddressModeRepeat,
			AddressModeW: gputypes.AddressModeRepeat,
		},
	}}
}

func (m *arrayTextureMaterial) Uniforms() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.params.Marshal()
}

func (m *arrayTextureMaterial) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *arrayTextureMaterial) ArrayTexture() asset.ImageHandle {
	return m.array
}

func (m *arrayTextureMaterial) LayerCount() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(m.params.LayerCount)
}

func (m *arrayTextureMaterial) SetLayerCount(n uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params.LayerCount = float32(max(n, 1))
	m.version++
}
