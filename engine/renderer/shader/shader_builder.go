package shader

import "os"

// ShaderBuilderOption is a function that configures a shader during construction.
type ShaderBuilderOption func(*shader)

// WithSource is an option builder that uses WGSL source held in memory.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - ShaderBuilderOption: a function that applies the source option to a shader
func WithSource(source string) ShaderBuilderOption {
	return func(s *shader) {
		s.load = func() (string, error) {
			return source, nil
		}
	}
}

// WithSourceFromPath is an option builder that reads WGSL source from a file when the shader is built.
//
// Parameters:
//   - path: the file path to read WGSL source from
//
// Returns:
//   - ShaderBuilderOption: a function that applies the path option to a shader
func WithSourceFromPath(path string) ShaderBuilderOption {
	return func(s *shader) {
		s.load = func() (string, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return "", err
			}
			return string(data), nil
		}
	}
}

// WithEmbeddedSource is an option builder that uses one of the WGSL files compiled into the binary.
//
// Parameters:
//   - name: the embedded file name, e.g. PostProcessing
//
// Returns:
//   - ShaderBuilderOption: a function that applies the embedded source option to a shader
func WithEmbeddedSource(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.load = func() (string, error) {
			return Embedded(name)
		}
	}
}

// WithEntryPoint is an option builder that selects an entry point by name when a source declares
// more than one for the shader's stage. By default the first entry point of the stage is used.
//
// Parameters:
//   - name: the entry point function name
//
// Returns:
//   - ShaderBuilderOption: a function that applies the entry point option to a shader
func WithEntryPoint(name string) ShaderBuilderOption {
	return func(s *shader) {
		s.entryPoint = name
	}
}
