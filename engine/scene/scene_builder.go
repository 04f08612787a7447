package scene

import (
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithMaterials shares a material table with the scene.
//
// Parameters:
//   - materials: the material table
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaterials(materials material.Materials) SceneBuilderOption {
	return func(s *scene) {
		s.materials = materials
	}
}

// WithObjects adds initial objects to the scene.
// Objects without IDs will be assigned new IDs.
//
// Parameters:
//   - objects: the objects to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithObjects(objects ...game_object.GameObject) SceneBuilderOption {
	return func(s *scene) {
		for _, obj := range objects {
			s.spawn(obj)
		}
	}
}

// WithCameras registers initial cameras.
//
// Parameters:
//   - cams: the cameras to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCameras(cams ...camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.cameras = append(s.cameras, cams...)
	}
}

// WithSystems registers initial systems.
//
// Parameters:
//   - systems: the systems to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSystems(systems ...System) SceneBuilderOption {
	return func(s *scene) {
		s.systems = append(s.systems, systems...)
	}
}
