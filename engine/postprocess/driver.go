// Package postprocess renders a scene into an off-screen target and re-composites it onto the
// screen through a full-screen material whose intensity and vignette follow elapsed time.
package postprocess

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
)

// Uniform names declared by the composite material, in WGSL field order.
const (
	UniformIntensity = "intensity"
	UniformVignette  = "vignette"
)

// Intensity returns the chromatic offset strength at t seconds: sin(8t)/500.
//
// Parameters:
//   - t: elapsed seconds
//
// Returns:
//   - float32: a value in [-1/500, 1/500]
func Intensity(t float64) float32 {
	return float32(math.Sin(8*t) / 500)
}

// Vignette returns the vignette strength at t seconds: (sin(2t)+1)/2.
//
// Parameters:
//   - t: elapsed seconds
//
// Returns:
//   - float32: a value in [0, 1]
func Vignette(t float64) float32 {
	return float32((math.Sin(2*t) + 1) / 2)
}

// Driver is a scene system that writes Intensity and Vignette into a composite material every
// frame. It keeps no state between frames.
type Driver interface {
	scene.System

	// Material returns the composite material the driver writes to.
	//
	// Returns:
	//   - material.Handle: the material handle
	Material() material.Handle
}

type driver struct {
	name     string
	priority int
	material material.Handle
}

var _ Driver = &driver{}

// NewDriver creates a driver for the composite material behind h.
//
// Parameters:
//   - h: the composite material handle
//   - options: variadic list of DriverBuilderOption functions
//
// Returns:
//   - Driver: the new driver
func NewDriver(h material.Handle, options ...DriverBuilderOption) Driver {
	d := &driver{
		name:     fmt.Sprintf("postprocess %s", h),
		priority: scene.PriorityUpdate,
		material: h,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *driver) Name() string {
	return d.name
}

func (d *driver) Priority() int {
	return d.priority
}

func (d *driver) Material() material.Handle {
	return d.material
}

func (d *driver) Update(ctx *scene.FrameContext) error {
	m, err := ctx.Materials.Composite(d.material)
	if err != nil {
		return err
	}

	t := ctx.Time.Elapsed()
	if err := m.SetScalar(UniformIntensity, Intensity(t)); err != nil {
		return fmt.Errorf("failed to drive intensity: %w", err)
	}
	if err := m.SetScalar(UniformVignette, Vignette(t)); err != nil {
		return fmt.Errorf("failed to drive vignette: %w", err)
	}
	return nil
}
