package material

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// CompositeBuilderOption is a function that configures a composite material during construction.
type CompositeBuilderOption func(*compositeMaterial)

// WithName is an option builder that sets the name of the composite material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - CompositeBuilderOption: a function that applies the name option to a material
func WithName(name string) CompositeBuilderOption {
	return func(m *compositeMaterial) {
		m.name = name
	}
}

// WithShader is an option builder that sets the fragment shader of the composite material.
// Defaults to the embedded post-processing shader.
//
// Parameters:
//   - ref: the fragment shader reference
//
// Returns:
//   - CompositeBuilderOption: a function that applies the shader option to a material
func WithShader(ref shader.Ref) CompositeBuilderOption {
	return func(m *compositeMaterial) {
		m.shader = ref
	}
}

// WithTexture is an option builder that binds the input image.
//
// Parameters:
//   - h: the input image handle
//
// Returns:
//   - CompositeBuilderOption: a function that applies the texture option to a material
func WithTexture(h asset.ImageHandle) CompositeBuilderOption {
	return func(m *compositeMaterial) {
		m.texture = h
	}
}

// WithSampler is an option builder that sets the sampler used for the input image.
//
// Parameters:
//   - sampler: the sampler configuration
//
// Returns:
//   - CompositeBuilderOption: a function that applies the sampler option to a material
func WithSampler(sampler common.SamplerStagingData) CompositeBuilderOption {
	return func(m *compositeMaterial) {
		m.sampler = sampler
	}
}

// WithScalar is an option builder that declares a named float uniform and its initial value.
// Uniforms are packed in the order they are declared. Declaring a name twice keeps the first
// position and the last value.
//
// Parameters:
//   - name: the uniform name
//   - value: the initial value
//
// Returns:
//   - CompositeBuilderOption: a function that applies the uniform declaration to a material
func WithScalar(name string, value float32) CompositeBuilderOption {
	return func(m *compositeMaterial) {
		for i := range m.scalars {
			if m.scalars[i].Name == name {
				m.scalars[i].Value = value
				return
			}
		}
		m.scalars = append(m.scalars, Scalar{Name: name, Value: value})
	}
}
