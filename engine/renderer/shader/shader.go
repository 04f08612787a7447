package shader

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gputypes"
)

// ShaderType identifies which render pipeline stage a shader provides.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex shader type, used for vertex processing in render pipelines.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment shader type, used for fragment processing in pair with a vertex shader.
	ShaderTypeFragment
)

// String returns the stage name.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

var (
	// ErrInvalidShader is returned when WGSL source fails to parse, lower or validate.
	ErrInvalidShader = errors.New("shader: invalid WGSL")

	// ErrEntryPointNotFound is returned when the source has no entry point for the requested stage.
	ErrEntryPointNotFound = errors.New("shader: entry point not found")

	// ErrNoSource is returned when a shader is built without any source option.
	ErrNoSource = errors.New("shader: no source provided")
)

// shader is the implementation of the Shader interface.
// It holds the validated source and the layout metadata reflected from it.
type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	entryPoint                 string
	bindGroupLayoutDescriptors map[int]gputypes.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	vertexLayouts              []gputypes.VertexBufferLayout

	load func() (string, error)
}

// Shader defines the interface for a loaded and validated WGSL shader. It exposes the shader's
// unique key, source code, entry point, bind group layout descriptors and vertex buffer layouts
// the renderer needs for pipeline creation and material binding.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used for caching and lookups.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the WGSL shader source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// ShaderType returns the stage this shader provides.
	//
	// Returns:
	//   - ShaderType: ShaderTypeVertex or ShaderTypeFragment
	ShaderType() ShaderType

	// EntryPoint returns the entry point name for this shader's stage.
	//
	// Returns:
	//   - string: the entry point name (e.g. "vs_main")
	EntryPoint() string

	// BindGroupLayoutDescriptor retrieves the bind group layout descriptor for a group index.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - gputypes.BindGroupLayoutDescriptor: the descriptor, or an empty descriptor if the group is unused
	BindGroupLayoutDescriptor(group int) gputypes.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors retrieves all reflected bind group layout descriptors, keyed by group index.
	//
	// Returns:
	//   - map[int]gputypes.BindGroupLayoutDescriptor: descriptors keyed by group index
	BindGroupLayoutDescriptors() map[int]gputypes.BindGroupLayoutDescriptor

	// Groups returns the bind group indices the shader uses, ascending.
	Groups() []int

	// BindGroupVarName retrieves the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the bind group index
	//   - binding: the binding index within the group
	//
	// Returns:
	//   - string: the variable name, or an empty string if not found
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName retrieves the binding index of a named variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the variable name within the group
	//
	// Returns:
	//   - int: the binding index, or -1 if not found
	//   - bool: true if the variable name was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// VertexLayouts retrieves the vertex buffer layouts consumed by a vertex shader's entry point.
	// Empty for fragment shaders and for vertex shaders that only read builtins.
	//
	// Returns:
	//   - []gputypes.VertexBufferLayout: the vertex buffer layouts
	VertexLayouts() []gputypes.VertexBufferLayout
}

var _ Shader = &shader{}

// NewShader creates a new Shader, loading its source from the configured option, validating it
// and reflecting its bind group and vertex layouts.
//
// Parameters:
//   - key: a unique identifier for the shader, used for caching and lookups
//   - shaderType: the stage the shader provides
//   - options: variadic list of ShaderBuilderOption functions; one source option is required
//
// Returns:
//   - Shader: the validated shader
//   - error: ErrNoSource, ErrInvalidShader or ErrEntryPointNotFound
func NewShader(key string, shaderType ShaderType, options ...ShaderBuilderOption) (Shader, error) {
	s := &shader{
		key:                        key,
		shaderType:                 shaderType,
		bindGroupLayoutDescriptors: make(map[int]gputypes.BindGroupLayoutDescriptor),
		bindingVarNames:            make(map[int]map[int]string),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.load == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSource, key)
	}

	source, err := s.load()
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	s.source = source

	if err := s.reflect(); err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

// MustShader is NewShader for shaders embedded in the binary, where a failure is a programming error.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - shaderType: the stage the shader provides
//   - options: variadic list of ShaderBuilderOption functions
//
// Returns:
//   - Shader: the validated shader
func MustShader(key string, shaderType ShaderType, options ...ShaderBuilderOption) Shader {
	s, err := NewShader(key, shaderType, options...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) BindGroupLayoutDescriptor(group int) gputypes.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]gputypes.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) Groups() []int {
	groups := make([]int, 0, len(s.bindGroupLayoutDescriptors))
	for g := range s.bindGroupLayoutDescriptors {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	return groups
}

func (s *shader) BindGroupVarName(group, binding int) string {
	if s.bindingVarNames[group] == nil {
		return ""
	}
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	if s.bindingVarNames[group] == nil {
		return -1, false
	}
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) VertexLayouts() []gputypes.VertexBufferLayout {
	return s.vertexLayouts
}
