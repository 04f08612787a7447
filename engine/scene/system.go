package scene

import "github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"

// Priorities for systems. Lower runs first within a tick.
const (
	PriorityFirst  = -100
	PriorityUpdate = 0
	PriorityLast   = 100
)

// FrameContext is the explicit per-frame state handed to systems.
type FrameContext struct {
	Time      Time
	Frame     uint64
	Scene     Scene
	Materials material.Materials
}

// System is per-frame logic run by Scene.Tick before the frame is rendered.
type System interface {
	// Name identifies the system in errors and for RemoveSystem.
	Name() string

	// Priority orders systems within a tick; lower runs first, ties run in insertion order.
	Priority() int

	// Update runs the system for one frame.
	//
	// Parameters:
	//   - ctx: the frame context
	//
	// Returns:
	//   - error: a failure aborts the rest of the tick
	Update(ctx *FrameContext) error
}

type systemFunc struct {
	name     string
	priority int
	fn       func(ctx *FrameContext) error
}

var _ System = &systemFunc{}

// NewSystem wraps a function as a System.
//
// Parameters:
//   - name: the system name
//   - priority: the ordering key
//   - fn: the per-frame function
//
// Returns:
//   - System: the system
func NewSystem(name string, priority int, fn func(ctx *FrameContext) error) System {
	return &systemFunc{name: name, priority: priority, fn: fn}
}

func (s *systemFunc) Name() string {
	return s.name
}

func (s *systemFunc) Priority() int {
	return s.priority
}

func (s *systemFunc) Update(ctx *FrameContext) error {
	return s.fn(ctx)
}
