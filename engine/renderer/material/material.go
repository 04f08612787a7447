// Package material defines the shader-parameter bundles the renderer binds to quads: a uniform
// block, texture/sampler pairs and the fragment shader that reads them. Materials live in a
// Materials table and are shared by handle, so an update made through the table is what the
// renderer uploads on the next frame.
package material

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
)

// Group is the bind group index every material binds its resources to. Groups 0 and 1 hold the
// camera view and per-entity transform.
const Group = 2

// UniformBinding is the binding index of a material's uniform block within Group.
const UniformBinding = 0

var (
	// ErrMaterialNotFound is returned when a material handle does not resolve. Callers treat it
	// as a logic error; the error carries the stack of the failed lookup.
	ErrMaterialNotFound = errors.New("material: not found")

	// ErrNotComposite is returned when a handle resolves to a material of another kind.
	ErrNotComposite = errors.New("material: not a composite material")

	// ErrUnknownUniform is returned by SetScalar for a name the material did not declare.
	ErrUnknownUniform = errors.New("material: unknown uniform")
)

// TextureBinding binds one image and its sampler. The texture goes to Binding and the sampler
// to Binding+1 within Group.
type TextureBinding struct {
	Binding uint32
	// Image is the bound image. An invalid handle binds the renderer's 1x1 white fallback.
	Image   asset.ImageHandle
	Sampler common.SamplerStagingData
}

// Material is anything the renderer can bind for a draw.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Shader retrieves the fragment shader reference the material's pipeline is built from.
	//
	// Returns:
	//   - shader.Ref: the fragment shader reference
	Shader() shader.Ref

	// Textures retrieves the material's texture bindings in binding order.
	//
	// Returns:
	//   - []TextureBinding: the texture bindings
	Textures() []TextureBinding

	// Uniforms returns the material's uniform block, packed for upload to UniformBinding.
	//
	// Returns:
	//   - []byte: the uniform bytes, a multiple of 16 bytes long
	Uniforms() []byte

	// Version increases every time the material is mutated. The renderer re-uploads uniforms and
	// rebuilds bind groups when it sees a new version, so a change lands on the next frame.
	//
	// Returns:
	//   - uint64: the current version
	Version() uint64
}
