// Package model holds the CPU-side meshes the 2D examples draw: a unit quad for sprites and a
// fullscreen triangle for composite passes.
package model

import (
	"encoding/binary"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// Kind identifies how a mesh is positioned on screen.
type Kind int

const (
	// KindQuad is a world-space mesh transformed by the camera and the entity transform.
	KindQuad Kind = iota
	// KindFullscreen covers the whole target regardless of camera or transform.
	KindFullscreen
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindQuad:
		return "quad"
	case KindFullscreen:
		return "fullscreen"
	default:
		return "unknown"
	}
}

type model struct {
	name                  string
	kind                  Kind
	vertexShader          shader.Ref
	vertexData, indexData []byte
	vertexCount           int
	indexCount            int
}

// Model defines the interface for a drawable mesh. Meshes are immutable after construction so a
// single instance is shared by every entity that draws it.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Kind reports whether the mesh is world-space or fullscreen.
	//
	// Returns:
	//   - Kind: the mesh kind
	Kind() Kind

	// VertexShader returns the vertex stage the mesh is drawn with.
	//
	// Returns:
	//   - shader.Ref: the vertex shader reference
	VertexShader() shader.Ref

	// VertexData returns the packed vertex buffer, or nil when vertices are generated in the shader.
	//
	// Returns:
	//   - []byte: the vertex bytes
	VertexData() []byte

	// IndexData returns the packed uint16 index buffer, or nil for non-indexed meshes.
	//
	// Returns:
	//   - []byte: the index bytes
	IndexData() []byte

	// VertexCount returns the number of vertices drawn for non-indexed meshes.
	VertexCount() int

	// IndexCount returns the number of indices.
	IndexCount() int
}

var _ Model = &model{}

var (
	quad       = newQuad()
	fullscreen = newFullscreen()
)

// Quad returns the shared unit quad spanning -0.5..0.5 on X and Y. Entity scale sets its pixel size.
//
// Returns:
//   - Model: the quad mesh
func Quad() Model {
	return quad
}

// Fullscreen returns the shared fullscreen triangle. Its three vertices are generated from the
// vertex index, so it has no vertex or index buffer.
//
// Returns:
//   - Model: the fullscreen mesh
func Fullscreen() Model {
	return fullscreen
}

// NewModel creates a mesh from options. Most callers want Quad or Fullscreen.
//
// Parameters:
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		kind:         KindQuad,
		vertexShader: shader.EmbeddedRef(shader.QuadVertex),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func newQuad() Model {
	vertices := []GPUVertex{
		{Position: [3]float32{-0.5, -0.5, 0}, TexCoord: [2]float32{0, 1}},
		{Position: [3]float32{0.5, -0.5, 0}, TexCoord: [2]float32{1, 1}},
		{Position: [3]float32{0.5, 0.5, 0}, TexCoord: [2]float32{1, 0}},
		{Position: [3]float32{-0.5, 0.5, 0}, TexCoord: [2]float32{0, 0}},
	}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	vertexData := make([]byte, 0, len(vertices)*20)
	for i := range vertices {
		vertexData = append(vertexData, vertices[i].Marshal()...)
	}
	// Index buffers must be a multiple of 4 bytes; 6 uint16 indices already are.
	indexData := make([]byte, 0, len(indices)*2)
	for _, idx := range indices {
		indexData = binary.LittleEndian.AppendUint16(indexData, idx)
	}

	return NewModel(
		WithName("Quad"),
		WithVertexData(vertexData, len(vertices)),
		WithIndexData(indexData, len(indices)),
	)
}

func newFullscreen() Model {
	return NewModel(
		WithName("Fullscreen"),
		WithKind(KindFullscreen),
		WithVertexShader(shader.EmbeddedRef(shader.FullscreenVertex)),
		WithVertexData(nil, 3),
	)
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Kind() Kind {
	return m.kind
}

func (m *model) VertexShader() shader.Ref {
	return m.vertexShader
}

func (m *model) VertexData() []byte {
	return m.vertexData
}

func (m *model) IndexData() []byte {
	return m.indexData
}

func (m *model) VertexCount() int {
	return m.vertexCount
}

func (m *model) IndexCount() int {
	return m.indexCount
}
