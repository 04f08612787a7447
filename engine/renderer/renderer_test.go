package renderer

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/camera"
	"github.com/Carmen-Shannon/oxy-fx/engine/game_object"
	"github.com/Carmen-Shannon/oxy-fx/engine/model"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/scene"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

type fakeDraw struct {
	pipeline string
	groups   []bind_group_provider.BindGroupProvider
}

type fakePass struct {
	target *wgpu.TextureView
	clear  gputypes.Color
	draws  []fakeDraw
}

// fakeBackend records what the renderer asks of the GPU. Texture views are distinct
// sentinels so tests can tell which image a pass or material was bound to.
type fakeBackend struct {
	passes   []*fakePass
	writes   []bind_group_provider.BufferWrite
	created  []*texture.Image
	views    map[*wgpu.TextureView]*texture.Image
	released int
	groups   int
	frames   int
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{views: make(map[*wgpu.TextureView]*texture.Image)}
}

func (f *fakeBackend) ConfigureSurface(width, height int) error { return nil }
func (f *fakeBackend) SetPresentMode(mode PresentMode)          {}
func (f *fakeBackend) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8UnormSrgb
}
func (f *fakeBackend) SampleCount() uint32 { return uint32(MSAA4x) }

func (f *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	layouts := mergeBindGroupLayouts(
		p.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptors(),
		p.Shader(shader.ShaderTypeFragment).BindGroupLayoutDescriptors(),
	)
	maxGroup := -1
	for g := range layouts {
		maxGroup = max(maxGroup, g)
	}
	p.SetRenderPipeline(nil, make([]*wgpu.BindGroupLayout, maxGroup+1))
	return nil
}

func (f *fakeBackend) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, vertexCount, indexCount int) error {
	provider.SetMesh(nil, nil, vertexCount, indexCount)
	return nil
}

func (f *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor gputypes.BindGroupLayoutDescriptor, bufferSizes map[int]uint64) error {
	f.groups++
	return nil
}

func (f *fakeBackend) InitSampler(provider bind_group_provider.BindGroupProvider, binding int, sampler common.SamplerStagingData) error {
	return nil
}

func (f *fakeBackend) CreateImageTexture(img *texture.Image) (*wgpu.Texture, *wgpu.TextureView, error) {
	view := &wgpu.TextureView{}
	f.views[view] = img
	f.created = append(f.created, img)
	return nil, view, nil
}

func (f *fakeBackend) ReleaseTexture(tex *wgpu.Texture, view *wgpu.TextureView) {
	f.released++
}

func (f *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	f.writes = append(f.writes, writes...)
	return nil
}

func (f *fakeBackend) BeginFrame() error {
	f.frames++
	return nil
}

func (f *fakeBackend) BeginPass(target *wgpu.TextureView, clear gputypes.Color) error {
	f.passes = append(f.passes, &fakePass{target: target, clear: clear})
	return nil
}

func (f *fakeBackend) DrawCall(p pipeline.Pipeline, mesh bind_group_provider.BindGroupProvider, bindGroups []bind_group_provider.BindGroupProvider) error {
	pass := f.passes[len(f.passes)-1]
	pass.draws = append(pass.draws, fakeDraw{pipeline: p.PipelineKey(), groups: bindGroups})
	return nil
}

func (f *fakeBackend) EndPass() error  { return nil }
func (f *fakeBackend) EndFrame() error { return nil }
func (f *fakeBackend) Present()        {}
func (f *fakeBackend) Release()        {}

// materialWrites counts the uniform uploads queued for provider.
func (f *fakeBackend) materialWrites(provider bind_group_provider.BindGroupProvider) int {
	n := 0
	for _, w := range f.writes {
		if w.Provider == provider && w.Binding == material.UniformBinding {
			n++
		}
	}
	return n
}

func newTestRenderer() (*renderer, *fakeBackend) {
	r := newRenderer(BackendTypeWGPU)
	fake := newFakeBackend()
	r.backend = fake
	return r, fake
}

func newObject(id uint64, options ...game_object.GameObjectBuilderOption) game_object.GameObject {
	obj := game_object.NewGameObject(options...)
	obj.SetID(id)
	return obj
}

func TestRenderOffscreenThenComposite(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	target, err := texture.NewImage(64, 32, gputypes.TextureFormatRGBA8UnormSrgb, nil,
		texture.WithLabel("Offscreen"),
		texture.WithUsage(gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageTextureBinding))
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	targetHandle := images.Add(target)

	sprite := materials.Add(material.NewCustom2DMaterial(material.WithColor([4]float32{1, 0, 0, 1})))
	composite := materials.Add(material.NewCompositeMaterial(
		material.WithTexture(targetHandle),
		material.WithScalar("intensity", 0.02),
	))

	offscreen := camera.NewCamera(camera.WithName("Offscreen"), camera.WithOrder(0),
		camera.WithTarget(camera.ImageTarget(targetHandle)),
		camera.WithClearColor(gputypes.Color{R: 1, A: 1}))
	screen := camera.NewCamera(camera.WithName("Screen"), camera.WithOrder(1))

	passes := []scene.Pass{
		{Camera: offscreen, Objects: []game_object.GameObject{newObject(1, game_object.WithMaterial(sprite))}},
		{Camera: screen, Objects: []game_object.GameObject{newObject(2,
			game_object.WithModel(model.Fullscreen()), game_object.WithMaterial(composite))}},
	}
	if err := r.Render(passes, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(fake.passes) != 2 {
		t.Fatalf("passes = %d, want 2", len(fake.passes))
	}
	first, second := fake.passes[0], fake.passes[1]
	if first.target == nil || fake.views[first.target] != target {
		t.Fatal("first pass should render into the offscreen image")
	}
	if first.clear.R != 1 {
		t.Errorf("first pass clear = %+v", first.clear)
	}
	if second.target != nil {
		t.Error("second pass should render to the screen")
	}

	if len(first.draws) != 1 || len(second.draws) != 1 {
		t.Fatalf("draws = %d, %d, want 1 each", len(first.draws), len(second.draws))
	}
	if !strings.HasSuffix(first.draws[0].pipeline, "/x1") || !strings.Contains(first.draws[0].pipeline, "RGBA8UnormSrgb") {
		t.Errorf("offscreen pipeline = %s, want target format with 1 sample", first.draws[0].pipeline)
	}
	if !strings.HasSuffix(second.draws[0].pipeline, "/x4") {
		t.Errorf("screen pipeline = %s, want 4 samples", second.draws[0].pipeline)
	}

	groups := second.draws[0].groups
	if len(groups) != 3 || groups[ViewGroup] != nil || groups[ModelGroup] != nil {
		t.Fatalf("fullscreen draw should only bind the material group, got %v", groups)
	}
	if groups[material.Group].TextureView(1) != first.target {
		t.Error("composite should sample the offscreen target")
	}

	quadGroups := first.draws[0].groups
	if quadGroups[ViewGroup] == nil || quadGroups[ModelGroup] == nil || quadGroups[material.Group] == nil {
		t.Error("quad draw should bind view, model and material groups")
	}
	if len(r.Pipelines()) != 2 {
		t.Errorf("pipelines = %v, want 2", r.Pipelines())
	}
}

func TestRenderMissingTextureUsesFallback(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	h := materials.Add(material.NewCustom2DMaterial())
	passes := []scene.Pass{{Camera: camera.NewCamera(), Objects: []game_object.GameObject{newObject(1, game_object.WithMaterial(h))}}}
	if err := r.Render(passes, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}

	view := fake.passes[0].draws[0].groups[material.Group].TextureView(1)
	img := fake.views[view]
	if img == nil || img.Width != 1 || img.Height != 1 || img.ViewDimension != gputypes.TextureViewDimension2D {
		t.Fatalf("bound %+v, want the 1x1 2D fallback", img)
	}
	if string(img.Data) != "\xff\xff\xff\xff" {
		t.Errorf("fallback pixel = %v, want opaque white", img.Data)
	}
}

func TestRenderArrayTextureAfterReinterpret(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	img, err := texture.NewImage(4, 16, gputypes.TextureFormatRGBA8UnormSrgb, nil)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	ih := images.Add(img)
	mh := materials.Add(material.NewArrayTextureMaterial(ih, 4))
	passes := []scene.Pass{{Camera: camera.NewCamera(), Objects: []game_object.GameObject{newObject(1, game_object.WithMaterial(mh))}}}

	// still a flat 2D image: the array binding gets the array fallback
	if err := r.Render(passes, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}
	bound := fake.views[fake.passes[0].draws[0].groups[material.Group].TextureView(1)]
	if bound == img || bound.ViewDimension != gputypes.TextureViewDimension2DArray {
		t.Fatalf("bound %+v, want the 2DArray fallback", bound)
	}

	if err := img.ReinterpretStackedArray(4); err != nil {
		t.Fatalf("ReinterpretStackedArray: %v", err)
	}
	groupsBefore := fake.groups
	if err := r.Render(passes, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}
	bound = fake.views[fake.passes[1].draws[0].groups[material.Group].TextureView(1)]
	if bound != img {
		t.Fatal("reinterpreted image should be bound")
	}
	if fake.groups == groupsBefore {
		t.Error("material bind group should be rebuilt after the image changed")
	}
}

func TestRenderReuploadsOnGeneration(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	img, err := texture.NewImage(2, 2, gputypes.TextureFormatRGBA8UnormSrgb, nil)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	ih := images.Add(img)
	mh := materials.Add(material.NewCustom2DMaterial(material.WithColorTexture(ih)))
	passes := []scene.Pass{{Camera: camera.NewCamera(), Objects: []game_object.GameObject{newObject(1, game_object.WithMaterial(mh))}}}

	for range 2 {
		if err := r.Render(passes, images, materials); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if len(fake.created) != 1 {
		t.Fatalf("uploads = %d, want 1 for an unchanged image", len(fake.created))
	}

	img.Touch()
	if err := r.Render(passes, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fake.created) != 2 {
		t.Errorf("uploads = %d, want 2 after Touch", len(fake.created))
	}
	if fake.released != 1 {
		t.Errorf("released = %d, want the stale texture released", fake.released)
	}
}

func TestRenderUploadsUniformsOnVersion(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	mat := material.NewCustom2DMaterial()
	mh := materials.Add(mat)
	passes := []scene.Pass{{Camera: camera.NewCamera(), Objects: []game_object.GameObject{newObject(1, game_object.WithMaterial(mh))}}}

	render := func() bind_group_provider.BindGroupProvider {
		t.Helper()
		if err := r.Render(passes, images, materials); err != nil {
			t.Fatalf("Render: %v", err)
		}
		return fake.passes[len(fake.passes)-1].draws[0].groups[material.Group]
	}

	provider := render()
	if n := fake.materialWrites(provider); n != 1 {
		t.Fatalf("writes after first frame = %d, want 1", n)
	}
	render()
	if n := fake.materialWrites(provider); n != 1 {
		t.Errorf("writes after unchanged frame = %d, want 1", n)
	}
	mat.SetColor([4]float32{0, 1, 0, 1})
	render()
	if n := fake.materialWrites(provider); n != 2 {
		t.Errorf("writes after SetColor = %d, want 2", n)
	}
}

func TestRenderSkipsUnresolvedMaterial(t *testing.T) {
	var buf bytes.Buffer
	common.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer common.SetLogger(nil)

	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	h := materials.Add(material.NewCustom2DMaterial())
	if err := materials.Remove(h); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	passes := []scene.Pass{{Camera: camera.NewCamera(), Objects: []game_object.GameObject{
		newObject(1, game_object.WithMaterial(h)),
		newObject(2),
	}}}
	if err := r.Render(passes, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(fake.passes) != 1 || len(fake.passes[0].draws) != 0 {
		t.Errorf("objects without a material should not be drawn")
	}

	// one report per handle: the removed one and the zero handle
	reported := strings.Count(buf.String(), "unresolved material")
	if reported != 2 {
		t.Errorf("reported %d times, want 2:\n%s", reported, buf.String())
	}
	for range 3 {
		if err := r.Render(passes, images, materials); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if n := strings.Count(buf.String(), "unresolved material"); n != reported {
		t.Errorf("later frames reported again: %d lines, want %d", n, reported)
	}
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Errorf("unresolved material should be logged as an error: %s", buf.String())
	}
}

func TestRenderRejectsNonAttachmentTarget(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()

	img, err := texture.NewImage(8, 8, gputypes.TextureFormatRGBA8UnormSrgb, nil)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	cam := camera.NewCamera(camera.WithTarget(camera.ImageTarget(images.Add(img))))
	err = r.Render([]scene.Pass{{Camera: cam}}, images, material.NewMaterials())
	if !errors.Is(err, ErrNotRenderTarget) {
		t.Errorf("err = %v, want ErrNotRenderTarget", err)
	}
	if fake.frames != 1 {
		t.Errorf("frames = %d, want the frame still submitted", fake.frames)
	}
}

func TestRenderPrunesStaleResources(t *testing.T) {
	r, fake := newTestRenderer()
	images := asset.NewAssets[*texture.Image]()
	materials := material.NewMaterials()

	img, err := texture.NewImage(2, 2, gputypes.TextureFormatRGBA8UnormSrgb, nil)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	ih := images.Add(img)
	mh := materials.Add(material.NewCustom2DMaterial(material.WithColorTexture(ih)))
	cam := camera.NewCamera()

	if err := r.Render([]scene.Pass{{Camera: cam, Objects: []game_object.GameObject{newObject(7, game_object.WithMaterial(mh))}}}, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.objects) != 1 || len(r.materials) != 1 || len(r.images) != 1 {
		t.Fatalf("cached objects=%d materials=%d images=%d, want 1 each", len(r.objects), len(r.materials), len(r.images))
	}

	images.Remove(ih)
	if err := r.Render([]scene.Pass{{Camera: cam}}, images, materials); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(r.objects) != 0 || len(r.materials) != 0 || len(r.images) != 0 {
		t.Errorf("cached objects=%d materials=%d images=%d, want all pruned", len(r.objects), len(r.materials), len(r.images))
	}
	if fake.released != 1 {
		t.Errorf("released = %d, want 1", fake.released)
	}
}

func TestMergeBindGroupLayouts(t *testing.T) {
	vertex := map[int]gputypes.BindGroupLayoutDescriptor{
		0: {Label: "view", Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageVertex, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		}},
	}
	fragment := map[int]gputypes.BindGroupLayoutDescriptor{
		0: {Label: "frag", Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 1, Visibility: gputypes.ShaderStageFragment, Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}},
			{Binding: 0, Visibility: gputypes.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
		}},
		2: {Label: "material"},
	}

	merged := mergeBindGroupLayouts(vertex, fragment)
	if len(merged) != 2 {
		t.Fatalf("groups = %d, want 2", len(merged))
	}
	g0 := merged[0]
	if g0.Label != "view" || len(g0.Entries) != 2 {
		t.Fatalf("group 0 = %+v", g0)
	}
	if g0.Entries[0].Binding != 0 || g0.Entries[1].Binding != 1 {
		t.Error("entries should be sorted by binding")
	}
	if g0.Entries[0].Visibility != gputypes.ShaderStageVertex|gputypes.ShaderStageFragment {
		t.Errorf("visibility = %v, want vertex|fragment", g0.Entries[0].Visibility)
	}
}

func TestLayoutKeyIgnoresLabel(t *testing.T) {
	entries := []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageVertex, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
	}
	a := layoutKey(gputypes.BindGroupLayoutDescriptor{Label: "a", Entries: entries})
	b := layoutKey(gputypes.BindGroupLayoutDescriptor{Label: "b", Entries: entries})
	if a != b {
		t.Errorf("keys differ by label: %q vs %q", a, b)
	}

	other := layoutKey(gputypes.BindGroupLayoutDescriptor{Entries: []gputypes.BindGroupLayoutEntry{
		{Binding: 0, Visibility: gputypes.ShaderStageFragment, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
	}})
	if a == other {
		t.Error("visibility should be part of the key")
	}
}
