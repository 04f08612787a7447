package game_object

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/model"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
)

// GameObjectBuilderOption is a functional option for configuring a GameObject during construction.
type GameObjectBuilderOption func(*gameObject)

// WithEnabled sets whether the GameObject is enabled for rendering.
//
// Parameters:
//   - enabled: true to render the object, false to skip it
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Enabled state
func WithEnabled(enabled bool) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.enabled.Store(enabled)
	}
}

// WithModel sets the mesh for this GameObject.
//
// Parameters:
//   - m: the mesh, usually model.Quad() or model.Fullscreen()
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the Model
func WithModel(m model.Model) GameObjectBuilderOption {
	return func(obj *gameObject) {
		if m != nil {
			obj.mdl = m
		}
	}
}

// WithMaterial sets the material the GameObject is shaded with.
//
// Parameters:
//   - h: the material handle
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the material
func WithMaterial(h material.Handle) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.material = h
	}
}

// WithLayers sets the render layers the GameObject is drawn on.
//
// Parameters:
//   - layers: the layer mask
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the layers
func WithLayers(layers camera.Layers) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.layers = layers
	}
}

// WithPosition sets the initial position.
//
// Parameters:
//   - x, y, z: position components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the position
func WithPosition(x, y, z float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.position = [3]float32{x, y, z}
	}
}

// WithScale sets the initial scale.
//
// Parameters:
//   - sx, sy: scale components
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the scale
func WithScale(sx, sy float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.scale = [2]float32{sx, sy}
	}
}

// WithRotation sets the initial rotation around Z.
//
// Parameters:
//   - radians: the rotation
//
// Returns:
//   - GameObjectBuilderOption: functional option to set the rotation
func WithRotation(radians float32) GameObjectBuilderOption {
	return func(obj *gameObject) {
		obj.rotation = radians
	}
}
