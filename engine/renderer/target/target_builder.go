package target

import "github.com/Carmen-Shannon/oxy-fx/engine/asset"

// AllocatorBuilderOption is a function that configures an Allocator during construction.
type AllocatorBuilderOption func(*allocator)

// WithImages is an option builder that stores targets in an existing image table, typically the
// asset server's, so materials can bind targets and loaded images through the same handles.
//
// Parameters:
//   - images: the shared image table
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the table option to an allocator
func WithImages(images asset.Images) AllocatorBuilderOption {
	return func(a *allocator) {
		a.images = images
	}
}

// WithLabel is an option builder that sets the debug label given to allocated targets.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - AllocatorBuilderOption: a function that applies the label option to an allocator
func WithLabel(label string) AllocatorBuilderOption {
	return func(a *allocator) {
		a.label = label
	}
}
