package material

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// Scalar is one named float uniform of a CompositeMaterial.
type Scalar struct {
	Name  string
	Value float32
}

// compositeMaterial is the implementation of the CompositeMaterial interface.
type compositeMaterial struct {
	mu      sync.Mutex
	name    string
	shader  shader.Ref
	texture asset.ImageHandle
	sampler common.SamplerStagingData
	scalars []Scalar
	version uint64
}

// CompositeMaterial is a full-screen material that samples one input image (usually an off-screen
// target) and exposes a fixed set of named float uniforms. The uniform block is the scalars packed
// as consecutive f32 in declaration order, so the WGSL struct must declare the same fields in the
// same order.
type CompositeMaterial interface {
	Material

	// Texture retrieves the bound input image.
	//
	// Returns:
	//   - asset.ImageHandle: the input image handle
	Texture() asset.ImageHandle

	// SetTexture binds a new input image.
	//
	// Parameters:
	//   - h: the image handle
	SetTexture(h asset.ImageHandle)

	// SetScalar writes a declared uniform.
	//
	// Parameters:
	//   - name: the uniform name declared with WithScalar
	//   - value: the new value
	//
	// Returns:
	//   - error: ErrUnknownUniform if name was not declared
	SetScalar(name string, value float32) error

	// Scalar reads a declared uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - float32: the current value
	//   - bool: false if name was not declared
	Scalar(name string) (float32, bool)

	// Scalars returns a copy of all uniforms in declaration order.
	//
	// Returns:
	//   - []Scalar: the uniforms
	Scalars() []Scalar
}

var _ CompositeMaterial = &compositeMaterial{}

// NewCompositeMaterial creates a composite material. Declare every uniform with WithScalar;
// SetScalar rejects anything else.
//
// Parameters:
//   - options: variadic list of CompositeBuilderOption functions
//
// Returns:
//   - CompositeMaterial: the new material
func NewCompositeMaterial(options ...CompositeBuilderOption) CompositeMaterial {
	m := &compositeMaterial{
		name:    "Composite Material",
		shader:  shader.EmbeddedRef(shader.PostProcessing),
		version: 1,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *compositeMaterial) Name() string {
	return m.name
}

func (m *compositeMaterial) Shader() shader.Ref {
	return m.shader
}

func (m *compositeMaterial) Textures() []TextureBinding {
	m.mu.Lock()
	defer m.mu.Unlock()
	return []TextureBinding{{Binding: 1, Image: m.texture, Sampler: m.sampler}}
}

func (m *compositeMaterial) Uniforms() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	values := make([]float32, len(m.scalars))
	for i, s := range m.scalars {
		values[i] = s.Value
	}
	return common.PackFloat32s(values...)
}

func (m *compositeMaterial) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *compositeMaterial) Texture() asset.ImageHandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.texture
}

func (m *compositeMaterial) SetTexture(h asset.ImageHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.texture = h
	m.version++
}

func (m *compositeMaterial) SetScalar(name string, value float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.scalars {
		if m.scalars[i].Name == name {
			m.scalars[i].Value = value
			m.version++
			return nil
		}
	}
	return fmt.Errorf("%w: %q on %s", ErrUnknownUniform, name, m.name)
}

func (m *compositeMaterial) Scalar(name string) (float32, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.scalars {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

func (m *compositeMaterial) Scalars() []Scalar {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Scalar, len(m.scalars))
	copy(out, m.scalars)
	return out
}
