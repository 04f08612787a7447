package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// Validate parses, lowers and validates WGSL source.
//
// Parameters:
//   - source: the WGSL source code
//
// Returns:
//   - *ir.Module: the validated module, ready for reflection
//   - error: ErrInvalidShader wrapping the first failing stage's error
func Validate(source string) (*ir.Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidShader, err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Error()
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidShader, strings.Join(msgs, "; "))
	}
	return module, nil
}

// reflect validates the source and fills the entry point, bind group layouts and vertex layouts.
func (s *shader) reflect() error {
	module, err := Validate(s.source)
	if err != nil {
		return err
	}

	var stage ir.ShaderStage
	var visibility gputypes.ShaderStage
	switch s.shaderType {
	case ShaderTypeVertex:
		stage, visibility = ir.StageVertex, gputypes.ShaderStageVertex
	case ShaderTypeFragment:
		stage, visibility = ir.StageFragment, gputypes.ShaderStageFragment
	default:
		return fmt.Errorf("unsupported shader type %s", s.shaderType)
	}

	var entry *ir.EntryPoint
	for i := range module.EntryPoints {
		ep := &module.EntryPoints[i]
		if ep.Stage != stage {
			continue
		}
		if s.entryPoint == "" || s.entryPoint == ep.Name {
			entry = ep
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("%w: no %s entry point %q", ErrEntryPointNotFound, s.shaderType, s.entryPoint)
	}
	s.entryPoint = entry.Name

	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		layoutEntry, ok := classifyResource(module, gv, visibility)
		if !ok {
			continue
		}
		group := int(gv.Binding.Group)
		desc := s.bindGroupLayoutDescriptors[group]
		desc.Label = fmt.Sprintf("%s Group %d", s.key, group)
		desc.Entries = append(desc.Entries, layoutEntry)
		s.bindGroupLayoutDescriptors[group] = desc

		if s.bindingVarNames[group] == nil {
			s.bindingVarNames[group] = make(map[int]string)
		}
		s.bindingVarNames[group][int(gv.Binding.Binding)] = gv.Name
	}
	for group, desc := range s.bindGroupLayoutDescriptors {
		slices.SortFunc(desc.Entries, func(a, b gputypes.BindGroupLayoutEntry) int {
			return int(a.Binding) - int(b.Binding)
		})
		s.bindGroupLayoutDescriptors[group] = desc
	}

	if s.shaderType == ShaderTypeVertex {
		if layout, ok := vertexLayout(module, entry); ok {
			s.vertexLayouts = []gputypes.VertexBufferLayout{layout}
		}
	}
	return nil
}

// classifyResource maps a bound global variable to a bind group layout entry.
func classifyResource(module *ir.Module, gv ir.GlobalVariable, visibility gputypes.ShaderStage) (gputypes.BindGroupLayoutEntry, bool) {
	entry := gputypes.BindGroupLayoutEntry{
		Binding:    gv.Binding.Binding,
		Visibility: visibility,
	}
	if int(gv.Type) >= len(module.Types) {
		return entry, false
	}
	inner := module.Types[gv.Type].Inner

	switch t := inner.(type) {
	case ir.SamplerType:
		kind := gputypes.SamplerBindingTypeFiltering
		if t.Comparison {
			kind = gputypes.SamplerBindingTypeComparison
		}
		entry.Sampler = &gputypes.SamplerBindingLayout{Type: kind}
		return entry, true
	case ir.ImageType:
		entry.Texture = &gputypes.TextureBindingLayout{
			SampleType:    sampleType(t),
			ViewDimension: viewDimension(t),
			Multisampled:  t.Multisampled,
		}
		return entry, true
	}

	switch gv.Space {
	case ir.SpaceUniform:
		entry.Buffer = &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: uint64(typeSpan(module, gv.Type)),
		}
		return entry, true
	case ir.SpaceStorage:
		kind := gputypes.BufferBindingTypeStorage
		if gv.Access == ir.StorageRead {
			kind = gputypes.BufferBindingTypeReadOnlyStorage
		}
		entry.Buffer = &gputypes.BufferBindingLayout{Type: kind}
		return entry, true
	}
	return entry, false
}

func sampleType(t ir.ImageType) gputypes.TextureSampleType {
	if t.Class == ir.ImageClassDepth {
		return gputypes.TextureSampleTypeDepth
	}
	switch t.SampledKind {
	case ir.ScalarSint:
		return gputypes.TextureSampleTypeSint
	case ir.ScalarUint:
		return gputypes.TextureSampleTypeUint
	default:
		return gputypes.TextureSampleTypeFloat
	}
}

func viewDimension(t ir.ImageType) gputypes.TextureViewDimension {
	switch t.Dim {
	case ir.Dim1D:
		return gputypes.TextureViewDimension1D
	case ir.Dim3D:
		return gputypes.TextureViewDimension3D
	case ir.DimCube:
		if t.Arrayed {
			return gputypes.TextureViewDimensionCubeArray
		}
		return gputypes.TextureViewDimensionCube
	default:
		if t.Arrayed {
			return gputypes.TextureViewDimension2DArray
		}
		return gputypes.TextureViewDimension2D
	}
}

// typeSpan returns the byte size of struct types, and 0 (no minimum) for anything else.
func typeSpan(module *ir.Module, h ir.TypeHandle) uint32 {
	if st, ok := module.Types[h].Inner.(ir.StructType); ok {
		return st.Span
	}
	return 0
}

type vertexInput struct {
	location uint32
	format   gputypes.VertexFormat
}

// vertexLayout builds a single interleaved vertex buffer layout from the entry point's
// @location inputs, packed in location order.
func vertexLayout(module *ir.Module, entry *ir.EntryPoint) (gputypes.VertexBufferLayout, bool) {
	var inputs []vertexInput
	collect := func(b *ir.Binding, th ir.TypeHandle) {
		if b == nil {
			return
		}
		loc, ok := (*b).(ir.LocationBinding)
		if !ok {
			return
		}
		if format, ok := vertexFormat(module.Types[th].Inner); ok {
			inputs = append(inputs, vertexInput{location: loc.Location, format: format})
		}
	}

	for _, arg := range entry.Function.Arguments {
		if arg.Binding != nil {
			collect(arg.Binding, arg.Type)
			continue
		}
		if st, ok := module.Types[arg.Type].Inner.(ir.StructType); ok {
			for _, m := range st.Members {
				collect(m.Binding, m.Type)
			}
		}
	}
	if len(inputs) == 0 {
		return gputypes.VertexBufferLayout{}, false
	}

	slices.SortFunc(inputs, func(a, b vertexInput) int {
		return int(a.location) - int(b.location)
	})
	layout := gputypes.VertexBufferLayout{StepMode: gputypes.VertexStepModeVertex}
	var offset uint64
	for _, in := range inputs {
		layout.Attributes = append(layout.Attributes, gputypes.VertexAttribute{
			Format:         in.format,
			Offset:         offset,
			ShaderLocation: in.location,
		})
		offset += in.format.Size()
	}
	layout.ArrayStride = offset
	return layout, true
}

func vertexFormat(inner ir.TypeInner) (gputypes.VertexFormat, bool) {
	var kind ir.ScalarKind
	size := 1
	switch t := inner.(type) {
	case ir.ScalarType:
		if t.Width != 4 {
			return gputypes.VertexFormatUndefined, false
		}
		kind = t.Kind
	case ir.VectorType:
		if t.Scalar.Width != 4 {
			return gputypes.VertexFormatUndefined, false
		}
		kind = t.Scalar.Kind
		size = int(t.Size)
	default:
		return gputypes.VertexFormatUndefined, false
	}

	formats := map[ir.ScalarKind][4]gputypes.VertexFormat{
		ir.ScalarFloat: {gputypes.VertexFormatFloat32, gputypes.VertexFormatFloat32x2, gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x4},
		ir.ScalarUint:  {gputypes.VertexFormatUint32, gputypes.VertexFormatUint32x2, gputypes.VertexFormatUint32x3, gputypes.VertexFormatUint32x4},
		ir.ScalarSint:  {gputypes.VertexFormatSint32, gputypes.VertexFormatSint32x2, gputypes.VertexFormatSint32x3, gputypes.VertexFormatSint32x4},
	}
	row, ok := formats[kind]
	if !ok {
		return gputypes.VertexFormatUndefined, false
	}
	return row[size-1], true
}
