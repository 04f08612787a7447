package asset

import (
	"io/fs"
	"os"
)

// ServerBuilderOption is a function that configures a Server during construction.
type ServerBuilderOption func(*server)

// WithRoot is an option builder that sets the directory relative paths are loaded from.
// Ignored when WithFS is also given.
//
// Parameters:
//   - dir: the asset root directory
//
// Returns:
//   - ServerBuilderOption: a function that applies the root option to a server
func WithRoot(dir string) ServerBuilderOption {
	return func(s *server) {
		s.root = dir
	}
}

// WithFS is an option builder that loads assets from an fs.FS instead of the OS filesystem.
//
// Parameters:
//   - fsys: the filesystem to read from
//
// Returns:
//   - ServerBuilderOption: a function that applies the filesystem option to a server
func WithFS(fsys fs.FS) ServerBuilderOption {
	return func(s *server) {
		s.fsys = fsys
	}
}

// WithWorkers is an option builder that sets the number of decode workers.
//
// Parameters:
//   - n: maximum concurrent decodes
//
// Returns:
//   - ServerBuilderOption: a function that applies the worker count option to a server
func WithWorkers(n int) ServerBuilderOption {
	return func(s *server) {
		s.workers = n
	}
}

// WithImages is an option builder that makes the server publish into an existing image table,
// so render targets and loaded images share one handle space.
//
// Parameters:
//   - images: the image table
//
// Returns:
//   - ServerBuilderOption: a function that applies the image table option to a server
func WithImages(images Images) ServerBuilderOption {
	return func(s *server) {
		s.images = images
	}
}

func defaultFS(root string) fs.FS {
	if root == "" {
		root = "assets"
	}
	return os.DirFS(root)
}
