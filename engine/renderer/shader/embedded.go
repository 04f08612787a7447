package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"slices"
)

// Names of the WGSL sources compiled into the binary.
const (
	QuadVertex       = "quad_vertex.wgsl"
	FullscreenVertex = "fullscreen_vertex.wgsl"
	Custom2DMaterial = "custom_2d_material.wgsl"
	ArrayTexture     = "array_texture.wgsl"
	PostProcessing   = "post_processing.wgsl"
)

//go:embed assets/*.wgsl
var embedded embed.FS

// Embedded returns the source of a WGSL file compiled into the binary.
//
// Parameters:
//   - name: the file name
//
// Returns:
//   - string: the WGSL source
//   - error: fs.ErrNotExist wrapped with the name if there is no such file
func Embedded(name string) (string, error) {
	data, err := embedded.ReadFile("assets/" + name)
	if err != nil {
		return "", fmt.Errorf("embedded shader %q: %w", name, fs.ErrNotExist)
	}
	return string(data), nil
}

// EmbeddedNames lists every embedded WGSL file, sorted.
func EmbeddedNames() []string {
	entries, _ := embedded.ReadDir("assets")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}
