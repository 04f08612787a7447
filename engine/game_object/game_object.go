package game_object

import (
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/model"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
)

type gameObject struct {
	mu *sync.Mutex

	id       atomic.Uint64
	enabled  atomic.Bool
	mdl      model.Model
	material material.Handle
	layers   camera.Layers

	position [3]float32
	scale    [2]float32
	rotation float32
}

// GameObject defines the interface for a drawable scene entity: a mesh, the material it is shaded
// with, the render layers that decide which cameras see it, and a 2D transform.
type GameObject interface {
	// ID returns the object's unique identifier, 0 until the scene assigns one.
	//
	// Returns:
	//   - uint64: the object ID
	ID() uint64

	// SetID sets the object's unique identifier.
	//
	// Parameters:
	//   - id: the ID to assign
	SetID(id uint64)

	// Enabled returns whether this object is enabled for rendering.
	//
	// Returns:
	//   - bool: true if enabled
	Enabled() bool

	// SetEnabled sets whether the object is enabled for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Model returns the mesh drawn for this object.
	//
	// Returns:
	//   - model.Model: the mesh
	Model() model.Model

	// Material returns the handle of the material the object is shaded with.
	//
	// Returns:
	//   - material.Handle: the material handle
	Material() material.Handle

	// SetMaterial swaps the object's material.
	//
	// Parameters:
	//   - h: the new material handle
	SetMaterial(h material.Handle)

	// Layers returns the render layers the object is drawn on.
	//
	// Returns:
	//   - camera.Layers: the layer mask
	Layers() camera.Layers

	// SetLayers moves the object to other render layers.
	//
	// Parameters:
	//   - layers: the layer mask
	SetLayers(layers camera.Layers)

	// Position returns the object's translation. Z orders overlapping quads.
	//
	// Returns:
	//   - x, y, z: position components
	Position() (x, y, z float32)

	// SetPosition updates the object's translation.
	//
	// Parameters:
	//   - x, y, z: new position components
	SetPosition(x, y, z float32)

	// Scale returns the object's scale. For the unit quad this is its size in pixels.
	//
	// Returns:
	//   - sx, sy: scale components
	Scale() (sx, sy float32)

	// SetScale updates the object's scale.
	//
	// Parameters:
	//   - sx, sy: new scale components
	SetScale(sx, sy float32)

	// Rotation returns the rotation around Z in radians.
	Rotation() float32

	// SetRotation updates the rotation around Z.
	//
	// Parameters:
	//   - radians: the new rotation
	SetRotation(radians float32)

	// Transform builds the object's 4x4 model matrix (column-major).
	//
	// Returns:
	//   - [16]float32: translation * rotation * scale
	Transform() [16]float32

	// Uniform returns the per-object GPU uniform block.
	//
	// Returns:
	//   - model.GPUModelData: the uniform ready for Marshal
	Uniform() model.GPUModelData
}

var _ GameObject = &gameObject{}

// NewGameObject creates a new GameObject. Defaults are the shared unit quad, layer 0, unit scale
// and enabled.
//
// Parameters:
//   - options: functional options to configure the object
//
// Returns:
//   - GameObject: the newly created object
func NewGameObject(options ...GameObjectBuilderOption) GameObject {
	g := &gameObject{
		mu:     &sync.Mutex{},
		mdl:    model.Quad(),
		layers: camera.DefaultLayers,
		scale:  [2]float32{1, 1},
	}
	g.enabled.Store(true)
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *gameObject) ID() uint64 {
	return g.id.Load()
}

func (g *gameObject) SetID(id uint64) {
	g.id.Store(id)
}

func (g *gameObject) Enabled() bool {
	return g.enabled.Load()
}

func (g *gameObject) SetEnabled(enabled bool) {
	g.enabled.Store(enabled)
}

func (g *gameObject) Model() model.Model {
	return g.mdl
}

func (g *gameObject) Material() material.Handle {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.material
}

func (g *gameObject) SetMaterial(h material.Handle) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.material = h
}

func (g *gameObject) Layers() camera.Layers {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.layers
}

func (g *gameObject) SetLayers(layers camera.Layers) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.layers = layers
}

func (g *gameObject) Position() (x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position[0], g.position[1], g.position[2]
}

func (g *gameObject) SetPosition(x, y, z float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.position = [3]float32{x, y, z}
}

func (g *gameObject) Scale() (sx, sy float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.scale[0], g.scale[1]
}

func (g *gameObject) SetScale(sx, sy float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.scale = [2]float32{sx, sy}
}

func (g *gameObject) Rotation() float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rotation
}

func (g *gameObject) SetRotation(radians float32) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rotation = radians
}

func (g *gameObject) Transform() [16]float32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	var m [16]float32
	common.BuildTransform2D(m[:], g.position[0], g.position[1], g.position[2], g.rotation, g.scale[0], g.scale[1])
	return m
}

func (g *gameObject) Uniform() model.GPUModelData {
	return model.GPUModelData{Transform: g.Transform()}
}
