package scene

import (
	"cmp"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/pkg/errors"
)

// Scene holds the GameObjects, cameras and systems of one view. Systems run in Tick; Plan
// resolves which objects each camera draws. Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Materials returns the material table objects in this scene reference.
	//
	// Returns:
	//   - material.Materials: the shared material table
	Materials() material.Materials

	// Spawn adds a GameObject to the scene and assigns it an ID if it has none.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - uint64: the object ID
	Spawn(obj game_object.GameObject) uint64

	// Get retrieves a GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id uint64) game_object.GameObject

	// Despawn removes a GameObject by ID.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - bool: true if the object was present
	Despawn(id uint64) bool

	// Count returns the number of GameObjects in the scene.
	Count() int

	// AddCamera registers a camera. Adding the same camera twice is a no-op.
	//
	// Parameters:
	//   - cam: the camera to add
	AddCamera(cam camera.Camera)

	// RemoveCamera unregisters a camera.
	//
	// Parameters:
	//   - cam: the camera to remove
	//
	// Returns:
	//   - bool: true if the camera was registered
	RemoveCamera(cam camera.Camera) bool

	// Cameras returns the registered cameras sorted ascending by order. Cameras with equal order
	// keep their registration order.
	//
	// Returns:
	//   - []camera.Camera: the sorted cameras
	Cameras() []camera.Camera

	// AddSystem registers a per-frame system.
	//
	// Parameters:
	//   - sys: the system to add
	AddSystem(sys System)

	// RemoveSystem unregisters every system with the given name.
	//
	// Parameters:
	//   - name: the system name
	//
	// Returns:
	//   - bool: true if a system was removed
	RemoveSystem(name string) bool

	// Tick runs every system once, sorted by priority, with a FrameContext built from t.
	// The first failing system aborts the tick.
	//
	// Parameters:
	//   - t: the frame time
	//
	// Returns:
	//   - error: the wrapped system error, if any
	Tick(t Time) error

	// Time returns the time of the last Tick.
	Time() Time

	// Frame returns the number of completed ticks.
	Frame() uint64

	// Plan returns a draw list per active camera, in render order. Each pass lists the enabled
	// objects whose layers intersect the camera's layers, in spawn order.
	//
	// Returns:
	//   - []Pass: the render passes for this frame
	Plan() []Pass
}

// Pass is one camera's share of a frame.
type Pass struct {
	Camera  camera.Camera
	Objects []game_object.GameObject
}

type scene struct {
	mu *sync.RWMutex

	name      string
	active    bool
	materials material.Materials

	objects []game_object.GameObject
	byID    map[uint64]game_object.GameObject
	nextID  uint64

	cameras []camera.Camera
	systems []System

	time  Time
	frame uint64
}

var _ Scene = &scene{}

// NewScene creates an empty scene. The scene owns a fresh material table unless WithMaterials
// shares one.
//
// Parameters:
//   - name: the scene identifier
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:     &sync.RWMutex{},
		name:   name,
		active: true,
		byID:   make(map[uint64]game_object.GameObject),
		nextID: 1,
	}
	for _, option := range options {
		option(s)
	}
	if s.materials == nil {
		s.materials = material.NewMaterials()
	}
	return s
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Materials() material.Materials {
	return s.materials
}

func (s *scene) Spawn(obj game_object.GameObject) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawn(obj)
}

// spawn adds obj. Caller must hold the write lock.
func (s *scene) spawn(obj game_object.GameObject) uint64 {
	if obj.ID() == 0 {
		obj.SetID(s.nextID)
	}
	id := obj.ID()
	if id >= s.nextID {
		s.nextID = id + 1
	}
	if _, ok := s.byID[id]; ok {
		return id
	}
	s.byID[id] = obj
	s.objects = append(s.objects, obj)
	return id
}

func (s *scene) Get(id uint64) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

func (s *scene) Despawn(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.byID[id]
	if !ok {
		return false
	}
	delete(s.byID, id)
	if i := slices.Index(s.objects, obj); i >= 0 {
		s.objects = slices.Delete(s.objects, i, i+1)
	}
	return true
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

func (s *scene) AddCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.cameras, cam) {
		return
	}
	s.cameras = append(s.cameras, cam)
}

func (s *scene) RemoveCamera(cam camera.Camera) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.cameras, cam)
	if i < 0 {
		return false
	}
	s.cameras = slices.Delete(s.cameras, i, i+1)
	return true
}

func (s *scene) Cameras() []camera.Camera {
	s.mu.RLock()
	cams := slices.Clone(s.cameras)
	s.mu.RUnlock()

	slices.SortStableFunc(cams, func(a, b camera.Camera) int {
		return cmp.Compare(a.Order(), b.Order())
	})
	return cams
}

func (s *scene) AddSystem(sys System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems = append(s.systems, sys)
}

func (s *scene) RemoveSystem(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.systems)
	s.systems = slices.DeleteFunc(s.systems, func(sys System) bool {
		return sys.Name() == name
	})
	return len(s.systems) != n
}

func (s *scene) Tick(t Time) error {
	s.mu.Lock()
	s.time = t
	frame := s.frame
	systems := slices.Clone(s.systems)
	s.mu.Unlock()

	slices.SortStableFunc(systems, func(a, b System) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})

	// Systems run without the scene lock so they can spawn, despawn and read cameras.
	ctx := &FrameContext{
		Time:      t,
		Frame:     frame,
		Scene:     s,
		Materials: s.materials,
	}
	for _, sys := range systems {
		if err := sys.Update(ctx); err != nil {
			// %+v still reaches the stack of a wrapped error
			return errors.Wrapf(err, "scene %s: system %s", s.name, sys.Name())
		}
	}

	s.mu.Lock()
	s.frame++
	s.mu.Unlock()
	return nil
}

func (s *scene) Time() Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.time
}

func (s *scene) Frame() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

func (s *scene) Plan() []Pass {
	cams := s.Cameras()

	s.mu.RLock()
	objects := slices.Clone(s.objects)
	s.mu.RUnlock()

	passes := make([]Pass, 0, len(cams))
	for _, cam := range cams {
		if !cam.Active() {
			continue
		}
		layers := cam.Layers()
		pass := Pass{Camera: cam}
		for _, obj := range objects {
			if obj.Enabled() && obj.Layers().Intersects(layers) {
				pass.Objects = append(pass.Objects, obj)
			}
		}
		passes = append(passes, pass)
	}
	return passes
}
