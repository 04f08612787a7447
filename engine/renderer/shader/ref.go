package shader

// Ref names a WGSL source without loading it: either a file compiled into the binary or a path
// on disk. Materials carry Refs; the renderer turns them into Shaders when it builds pipelines.
type Ref struct {
	// Embedded is the name of an embedded source such as PostProcessing.
	Embedded string
	// Path is a filesystem path, used when Embedded is empty.
	Path string
}

// EmbeddedRef returns a Ref to an embedded source.
func EmbeddedRef(name string) Ref {
	return Ref{Embedded: name}
}

// PathRef returns a Ref to a WGSL file on disk.
func PathRef(path string) Ref {
	return Ref{Path: path}
}

// IsZero reports whether the Ref names nothing.
func (r Ref) IsZero() bool {
	return r.Embedded == "" && r.Path == ""
}

// Key returns a stable cache key for the referenced source.
func (r Ref) Key() string {
	if r.Embedded != "" {
		return "embedded:" + r.Embedded
	}
	return "path:" + r.Path
}

// Load builds and validates the referenced shader.
//
// Parameters:
//   - shaderType: the stage the shader provides
//   - options: extra options such as WithEntryPoint
//
// Returns:
//   - Shader: the validated shader
//   - error: ErrNoSource for a zero Ref, or any NewShader error
func (r Ref) Load(shaderType ShaderType, options ...ShaderBuilderOption) (Shader, error) {
	var src ShaderBuilderOption
	switch {
	case r.Embedded != "":
		src = WithEmbeddedSource(r.Embedded)
	case r.Path != "":
		src = WithSourceFromPath(r.Path)
	}
	if src != nil {
		options = append([]ShaderBuilderOption{src}, options...)
	}
	return NewShader(r.Key(), shaderType, options...)
}
