package postprocess

// DriverBuilderOption is a function that configures a Driver during construction.
type DriverBuilderOption func(*driver)

// WithDriverName overrides the system name. Names must be unique within a scene for RemoveSystem.
//
// Parameters:
//   - name: the system name
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithDriverName(name string) DriverBuilderOption {
	return func(d *driver) {
		d.name = name
	}
}

// WithDriverPriority changes when the driver runs relative to other systems.
//
// Parameters:
//   - priority: the system priority
//
// Returns:
//   - DriverBuilderOption: option function to apply
func WithDriverPriority(priority int) DriverBuilderOption {
	return func(d *driver) {
		d.priority = priority
	}
}
