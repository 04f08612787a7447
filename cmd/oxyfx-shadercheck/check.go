package main

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga/ir"
)

type source struct {
	name string
	ref  shader.Ref
}

// read returns the WGSL text behind a Ref.
func (s source) read() (string, error) {
	if s.ref.Embedded != "" {
		return shader.Embedded(s.ref.Embedded)
	}
	data, err := os.ReadFile(s.ref.Path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// check validates one source and writes a summary line per entry point. With reflect set,
// each vertex and fragment entry point is also loaded the way the renderer loads it and its
// layouts are printed.
func check(w io.Writer, src source, reflect bool) error {
	text, err := src.read()
	if err != nil {
		return err
	}
	module, err := shader.Validate(text)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "%s: ok\n", src.name)
	for _, ep := range module.EntryPoints {
		fmt.Fprintf(w, "  @%s fn %s\n", stageName(ep.Stage), ep.Name)
		if !reflect {
			continue
		}

		var shaderType shader.ShaderType
		switch ep.Stage {
		case ir.StageVertex:
			shaderType = shader.ShaderTypeVertex
		case ir.StageFragment:
			shaderType = shader.ShaderTypeFragment
		default:
			continue
		}
		s, err := src.ref.Load(shaderType, shader.WithEntryPoint(ep.Name))
		if err != nil {
			return fmt.Errorf("entry point %s: %w", ep.Name, err)
		}
		writeLayouts(w, s)
	}
	return nil
}

func writeLayouts(w io.Writer, s shader.Shader) {
	descs := s.BindGroupLayoutDescriptors()
	groups := make([]int, 0, len(descs))
	for g := range descs {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	for _, g := range groups {
		for _, e := range descs[g].Entries {
			fmt.Fprintf(w, "    @group(%d) @binding(%d) %s %s\n", g, e.Binding, s.BindGroupVarName(g, int(e.Binding)), bindingKind(e))
		}
	}
	for _, l := range s.VertexLayouts() {
		fmt.Fprintf(w, "    vertex buffer stride %d:", l.ArrayStride)
		for _, a := range l.Attributes {
			fmt.Fprintf(w, " @location(%d) %s+%d", a.ShaderLocation, a.Format, a.Offset)
		}
		fmt.Fprintln(w)
	}
}

func bindingKind(e gputypes.BindGroupLayoutEntry) string {
	switch {
	case e.Buffer != nil:
		return fmt.Sprintf("buffer(%s)", e.Buffer.Type)
	case e.Sampler != nil:
		return fmt.Sprintf("sampler(%s)", e.Sampler.Type)
	case e.Texture != nil:
		return fmt.Sprintf("texture(%s, %s)", e.Texture.ViewDimension, e.Texture.SampleType)
	case e.StorageTexture != nil:
		return "storage_texture"
	default:
		return "unknown"
	}
}

func stageName(s ir.ShaderStage) string {
	switch s {
	case ir.StageVertex:
		return "vertex"
	case ir.StageFragment:
		return "fragment"
	case ir.StageCompute:
		return "compute"
	default:
		return fmt.Sprintf("stage(%d)", s)
	}
}
