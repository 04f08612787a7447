package model

import "github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"

// ModelBuilderOption is a functional option for configuring a Model during construction.
type ModelBuilderOption func(*model)

// WithName sets the model identifier.
//
// Parameters:
//   - name: the model name
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithKind sets whether the mesh is world-space or fullscreen.
//
// Parameters:
//   - kind: the mesh kind
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithKind(kind Kind) ModelBuilderOption {
	return func(m *model) {
		m.kind = kind
	}
}

// WithVertexShader sets the vertex stage used to draw the mesh.
//
// Parameters:
//   - ref: the vertex shader reference
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithVertexShader(ref shader.Ref) ModelBuilderOption {
	return func(m *model) {
		m.vertexShader = ref
	}
}

// WithVertexData sets the packed vertex buffer and vertex count.
//
// Parameters:
//   - data: the vertex bytes, nil for shader-generated vertices
//   - count: the number of vertices
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithVertexData(data []byte, count int) ModelBuilderOption {
	return func(m *model) {
		m.vertexData = data
		m.vertexCount = count
	}
}

// WithIndexData sets the packed uint16 index buffer and index count.
//
// Parameters:
//   - data: the index bytes
//   - count: the number of indices
//
// Returns:
//   - ModelBuilderOption: option function to apply
func WithIndexData(data []byte, count int) ModelBuilderOption {
	return func(m *model) {
		m.indexData = data
		m.indexCount = count
	}
}
