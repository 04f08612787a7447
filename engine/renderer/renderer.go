package renderer

import (
	"errors"
	"fmt"
	"sync"

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
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/gputypes"
)

// Bind group indices shared by every quad pipeline. Materials bind to material.Group.
const (
	ViewGroup  = 0
	ModelGroup = 1
)

// ErrNotRenderTarget is returned when a camera targets an image that cannot be rendered into.
var ErrNotRenderTarget = errors.New("renderer: image is not a render attachment")

// gpuImage is the GPU copy of one image, rebuilt whenever the image's generation moves.
type gpuImage struct {
	generation uint64
	dimension  gputypes.TextureViewDimension
	texture    *wgpu.Texture
	view       *wgpu.TextureView
}

// boundTexture records which image and generation a material bind group was built against.
type boundTexture struct {
	handle     asset.ImageHandle
	generation uint64
	dimension  gputypes.TextureViewDimension
}

type materialEntry struct {
	provider  bind_group_provider.BindGroupProvider
	layoutKey string
	bound     []boundTexture
}

type pipelineEntry struct {
	pipeline pipeline.Pipeline
	layouts  map[int]gputypes.BindGroupLayoutDescriptor
}

type providerKey struct {
	id     uint64
	layout string
}

type cameraKey struct {
	camera camera.Camera
	layout string
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend

	pipelineCache map[string]*pipelineEntry
	shaders       map[string]shader.Shader

	cameras   map[cameraKey]bind_group_provider.BindGroupProvider
	objects   map[providerKey]bind_group_provider.BindGroupProvider
	meshes    map[model.Model]bind_group_provider.BindGroupProvider
	materials map[material.Handle]*materialEntry
	images    map[asset.ImageHandle]*gpuImage
	fallbacks map[gputypes.TextureViewDimension]*gpuImage

	// material handles already reported as unresolved
	unresolved map[material.Handle]struct{}

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer draws the passes a scene plans each frame.
//
// Each camera becomes one render pass, in camera order: cameras that target an image render into
// that image's texture so a later pass can sample it, and screen cameras render into the
// swapchain. GPU resources are created lazily from the CPU-side objects and refreshed when those
// objects change: images by generation, materials by version.
type Renderer interface {
	// Resize reconfigures the swapchain after the window size changed.
	//
	// Parameters:
	//   - width, height: the new framebuffer size in pixels
	//
	// Returns:
	//   - error: any surface configuration error
	Resize(width, height int) error

	// SetPresentMode changes the present mode. It takes effect on the next Resize.
	SetPresentMode(mode PresentMode)

	// SurfaceFormat returns the swapchain format.
	SurfaceFormat() gputypes.TextureFormat

	// Pipeline retrieves the cached Pipeline associated with the given key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key, see pipeline.Key
	//
	// Returns:
	//   - pipeline.Pipeline: the cached pipeline or nil
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns the keys of every cached pipeline.
	Pipelines() []string

	// Render draws one frame and presents it.
	//
	// Objects whose material handle does not resolve are skipped with a warning. Textures whose
	// image is missing or not yet loaded bind a 1x1 white fallback of the expected dimension.
	//
	// Parameters:
	//   - passes: the frame's passes in camera order, see scene.Scene.Plan
	//   - images: the table image handles resolve against
	//   - materials: the table material handles resolve against
	//
	// Returns:
	//   - error: the first GPU or shader error; the frame is still submitted and presented
	Render(passes []scene.Pass, images asset.Images, materials material.Materials) error

	// Release frees every GPU resource the renderer created.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type, drawing into the
// given window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - w: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: if no adapter or device could be acquired or the surface cannot be configured
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) (Renderer, error) {
	r := newRenderer(backendType)

	// options first so config flags are available before the backend requests an adapter
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		backend, err := newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
		if err != nil {
			return nil, err
		}
		r.backend = backend
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	if err := r.backend.ConfigureSurface(w.Width(), w.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	common.Logger().Info("renderer ready", "format", r.backend.SurfaceFormat(), "msaa", r.backend.SampleCount())
	return r, nil
}

func newRenderer(backendType RendererBackendType) *renderer {
	return &renderer{
		mu:            &sync.Mutex{},
		backendType:   backendType,
		pipelineCache: make(map[string]*pipelineEntry),
		shaders:       make(map[string]shader.Shader),
		cameras:       make(map[cameraKey]bind_group_provider.BindGroupProvider),
		objects:       make(map[providerKey]bind_group_provider.BindGroupProvider),
		meshes:        make(map[model.Model]bind_group_provider.BindGroupProvider),
		materials:     make(map[material.Handle]*materialEntry),
		images:        make(map[asset.ImageHandle]*gpuImage),
		fallbacks:     make(map[gputypes.TextureViewDimension]*gpuImage),
		unresolved:    make(map[material.Handle]struct{}),
	}
}

func (r *renderer) Resize(width, height int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SurfaceFormat() gputypes.TextureFormat {
	return r.backend.SurfaceFormat()
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.pipelineCache[key]; ok {
		return e.pipeline
	}
	return nil
}

func (r *renderer) Pipelines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]string, 0, len(r.pipelineCache))
	for k := range r.pipelineCache {
		keys = append(keys, k)
	}
	return keys
}

// frameState tracks what a frame touched so stale GPU objects can be released afterwards.
type frameState struct {
	writes    []bind_group_provider.BufferWrite
	cameras   map[cameraKey]bool
	objects   map[providerKey]bool
	materials map[material.Handle]bool
}

func (r *renderer) Render(passes []scene.Pass, images asset.Images, materials material.Materials) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.BeginFrame(); err != nil {
		return err
	}

	fs := &frameState{
		cameras:   make(map[cameraKey]bool),
		objects:   make(map[providerKey]bool),
		materials: make(map[material.Handle]bool),
	}

	var errs []error
	for _, pass := range passes {
		if err := r.renderPass(pass, images, materials, fs); err != nil {
			errs = append(errs, fmt.Errorf("camera %s: %w", pass.Camera.Name(), err))
			break
		}
	}

	if err := r.backend.WriteBuffers(fs.writes); err != nil {
		errs = append(errs, err)
	}
	if err := r.backend.EndFrame(); err != nil {
		errs = append(errs, err)
	}
	r.backend.Present()

	r.prune(images, fs)
	return errors.Join(errs...)
}

func (r *renderer) renderPass(pass scene.Pass, images asset.Images, materials material.Materials, fs *frameState) error {
	cam := pass.Camera

	var targetView *wgpu.TextureView
	format := r.backend.SurfaceFormat()
	samples := r.backend.SampleCount()
	if h, ok := cam.Target().Image(); ok {
		img, found := images.Get(h)
		if !found || img == nil {
			return fmt.Errorf("target %s: %w", cam.Target(), asset.ErrAssetNotFound)
		}
		if img.Usage&gputypes.TextureUsageRenderAttachment == 0 {
			return fmt.Errorf("target %s: %w", cam.Target(), ErrNotRenderTarget)
		}
		gi, err := r.image(h, img)
		if err != nil {
			return err
		}
		targetView = gi.view
		format = img.Format
		samples = 1
	}

	if err := r.backend.BeginPass(targetView, cam.ClearColor()); err != nil {
		return err
	}

	for _, obj := range pass.Objects {
		if err := r.draw(cam, obj, format, samples, images, materials, fs); err != nil {
			_ = r.backend.EndPass()
			return err
		}
	}
	return r.backend.EndPass()
}

func (r *renderer) draw(cam camera.Camera, obj game_object.GameObject, format gputypes.TextureFormat, samples uint32, images asset.Images, materials material.Materials, fs *frameState) error {
	mat, err := materials.Get(obj.Material())
	if err != nil {
		if _, seen := r.unresolved[obj.Material()]; !seen {
			r.unresolved[obj.Material()] = struct{}{}
			common.Logger().Error("skipping objects with unresolved material", "object", obj.ID(), "material", obj.Material(), "err", err)
		}
		return nil
	}

	mdl := obj.Model()
	entry, err := r.pipeline(mdl.VertexShader(), mat.Shader(), format, samples)
	if err != nil {
		return err
	}
	mesh, err := r.mesh(mdl)
	if err != nil {
		return err
	}

	groups := make([]bind_group_provider.BindGroupProvider, len(entry.pipeline.BindGroupLayouts()))
	for g := range groups {
		desc, ok := entry.layouts[g]
		if !ok || len(desc.Entries) == 0 {
			continue
		}
		switch g {
		case ViewGroup:
			groups[g], err = r.cameraGroup(cam, desc, fs)
		case ModelGroup:
			groups[g], err = r.objectGroup(obj, desc, fs)
		case material.Group:
			groups[g], err = r.materialGroup(obj.Material(), mat, desc, images, fs)
		default:
			err = fmt.Errorf("%w: bind group %d of %s", ErrUnsupported, g, entry.pipeline.PipelineKey())
		}
		if err != nil {
			return err
		}
	}

	return r.backend.DrawCall(entry.pipeline, mesh, groups)
}

// pipeline returns the cached pipeline for the shader pair and target, creating it on first use.
func (r *renderer) pipeline(vertex, fragment shader.Ref, format gputypes.TextureFormat, samples uint32) (*pipelineEntry, error) {
	key := pipeline.Key(vertex, fragment, format, samples)
	if e, ok := r.pipelineCache[key]; ok {
		return e, nil
	}

	vs, err := r.shader(vertex, shader.ShaderTypeVertex)
	if err != nil {
		return nil, err
	}
	fs, err := r.shader(fragment, shader.ShaderTypeFragment)
	if err != nil {
		return nil, err
	}

	p := pipeline.NewPipeline(key,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
		pipeline.WithTarget(format, samples),
	)
	if err := r.backend.RegisterRenderPipeline(p); err != nil {
		return nil, fmt.Errorf("register pipeline %s: %w", key, err)
	}

	e := &pipelineEntry{
		pipeline: p,
		layouts:  mergeBindGroupLayouts(vs.BindGroupLayoutDescriptors(), fs.BindGroupLayoutDescriptors()),
	}
	r.pipelineCache[key] = e
	common.Logger().Debug("pipeline created", "key", key)
	return e, nil
}

func (r *renderer) shader(ref shader.Ref, shaderType shader.ShaderType) (shader.Shader, error) {
	key := shaderType.String() + ":" + ref.Key()
	if s, ok := r.shaders[key]; ok {
		return s, nil
	}
	s, err := ref.Load(shaderType)
	if err != nil {
		return nil, err
	}
	r.shaders[key] = s
	return s, nil
}

func (r *renderer) mesh(mdl model.Model) (bind_group_provider.BindGroupProvider, error) {
	if p, ok := r.meshes[mdl]; ok {
		return p, nil
	}
	p := bind_group_provider.NewBindGroupProvider(mdl.Name() + " Mesh")
	if err := r.backend.InitMeshBuffers(p, mdl.VertexData(), mdl.IndexData(), mdl.VertexCount(), mdl.IndexCount()); err != nil {
		return nil, fmt.Errorf("mesh %s: %w", mdl.Name(), err)
	}
	r.meshes[mdl] = p
	return p, nil
}

func (r *renderer) cameraGroup(cam camera.Camera, desc gputypes.BindGroupLayoutDescriptor, fs *frameState) (bind_group_provider.BindGroupProvider, error) {
	key := cameraKey{camera: cam, layout: layoutKey(desc)}
	p, ok := r.cameras[key]
	if !ok {
		uniform := cam.Uniform()
		p = bind_group_provider.NewBindGroupProvider(cam.Name() + " View")
		if err := r.backend.InitBindGroup(p, desc, map[int]uint64{0: uint64(uniform.Size())}); err != nil {
			return nil, fmt.Errorf("view bind group: %w", err)
		}
		r.cameras[key] = p
	}
	if !fs.cameras[key] {
		fs.cameras[key] = true
		uniform := cam.Uniform()
		fs.writes = append(fs.writes, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: uniform.Marshal()})
	}
	return p, nil
}

func (r *renderer) objectGroup(obj game_object.GameObject, desc gputypes.BindGroupLayoutDescriptor, fs *frameState) (bind_group_provider.BindGroupProvider, error) {
	key := providerKey{id: obj.ID(), layout: layoutKey(desc)}
	p, ok := r.objects[key]
	if !ok {
		uniform := obj.Uniform()
		p = bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Object %d", obj.ID()))
		if err := r.backend.InitBindGroup(p, desc, map[int]uint64{0: uint64(uniform.Size())}); err != nil {
			return nil, fmt.Errorf("object %d bind group: %w", obj.ID(), err)
		}
		r.objects[key] = p
	}
	if !fs.objects[key] {
		fs.objects[key] = true
		uniform := obj.Uniform()
		fs.writes = append(fs.writes, bind_group_provider.BufferWrite{Provider: p, Binding: 0, Data: uniform.Marshal()})
	}
	return p, nil
}

// materialGroup returns the material's bind group, rebuilding it when the bound images changed
// and queueing a uniform upload when the material version moved.
func (r *renderer) materialGroup(h material.Handle, mat material.Material, desc gputypes.BindGroupLayoutDescriptor, images asset.Images, fs *frameState) (bind_group_provider.BindGroupProvider, error) {
	fs.materials[h] = true

	e, ok := r.materials[h]
	if !ok {
		e = &materialEntry{provider: bind_group_provider.NewBindGroupProvider("Material " + mat.Name())}
		r.materials[h] = e
	}

	dims := textureDimensions(desc)
	bindings := mat.Textures()
	bound := make([]boundTexture, len(bindings))
	views := make([]*gpuImage, len(bindings))
	for i, tb := range bindings {
		want := dims[tb.Binding]
		gi, gen, err := r.resolveTexture(tb.Image, want, images)
		if err != nil {
			return nil, err
		}
		views[i] = gi
		bound[i] = boundTexture{handle: tb.Image, generation: gen, dimension: want}
	}

	lk := layoutKey(desc)
	rebuild := e.layoutKey != lk || !sameBound(e.bound, bound)
	if rebuild {
		for i, tb := range bindings {
			e.provider.SetTextureView(int(tb.Binding), views[i].view)
			sampler := tb.Sampler
			if sampler == (common.SamplerStagingData{}) {
				if img, ok := images.Get(tb.Image); ok && img != nil {
					sampler = img.Sampler
				}
			}
			if err := r.backend.InitSampler(e.provider, int(tb.Binding)+1, sampler); err != nil {
				return nil, fmt.Errorf("material %s sampler: %w", mat.Name(), err)
			}
		}
		uniforms := mat.Uniforms()
		if err := r.backend.InitBindGroup(e.provider, desc, map[int]uint64{material.UniformBinding: uint64(len(uniforms))}); err != nil {
			return nil, fmt.Errorf("material %s bind group: %w", mat.Name(), err)
		}
		e.layoutKey = lk
		e.bound = bound
		// force a uniform upload into the possibly new buffer
		e.provider.SetVersion(0)
		common.Logger().Debug("material bind group built", "material", mat.Name(), "handle", h)
	}

	// the provider stamp is version+1 so a reset stamp of 0 always triggers an upload
	if stamp := mat.Version() + 1; e.provider.Version() != stamp {
		fs.writes = append(fs.writes, bind_group_provider.BufferWrite{
			Provider: e.provider,
			Binding:  material.UniformBinding,
			Data:     mat.Uniforms(),
		})
		e.provider.SetVersion(stamp)
	}
	return e.provider, nil
}

// resolveTexture returns the GPU image for h, or the white fallback when the handle is invalid,
// the image is not loaded, or its view dimension does not match what the shader declares.
func (r *renderer) resolveTexture(h asset.ImageHandle, want gputypes.TextureViewDimension, images asset.Images) (*gpuImage, uint64, error) {
	if h.IsValid() {
		if img, ok := images.Get(h); ok && img != nil && img.ViewDimension == want {
			gi, err := r.image(h, img)
			if err != nil {
				return nil, 0, err
			}
			return gi, gi.generation, nil
		}
	}
	gi, err := r.fallback(want)
	if err != nil {
		return nil, 0, err
	}
	return gi, 0, nil
}

// image returns the GPU copy of img, recreating it when the generation changed.
func (r *renderer) image(h asset.ImageHandle, img *texture.Image) (*gpuImage, error) {
	gi, ok := r.images[h]
	if ok && gi.generation == img.Generation() {
		return gi, nil
	}
	tex, view, err := r.backend.CreateImageTexture(img)
	if err != nil {
		return nil, fmt.Errorf("image %s: %w", h, err)
	}
	if ok {
		r.backend.ReleaseTexture(gi.texture, gi.view)
	}
	gi = &gpuImage{generation: img.Generation(), dimension: img.ViewDimension, texture: tex, view: view}
	r.images[h] = gi
	common.Logger().Debug("image uploaded", "image", h, "label", img.Label, "layers", img.Layers, "generation", gi.generation)
	return gi, nil
}

func (r *renderer) fallback(dim gputypes.TextureViewDimension) (*gpuImage, error) {
	if gi, ok := r.fallbacks[dim]; ok {
		return gi, nil
	}
	img, err := texture.NewImage(1, 1, gputypes.TextureFormatRGBA8UnormSrgb, []byte{255, 255, 255, 255}, texture.WithLabel("Fallback White"))
	if err != nil {
		return nil, err
	}
	img.ViewDimension = dim
	tex, view, err := r.backend.CreateImageTexture(img)
	if err != nil {
		return nil, fmt.Errorf("fallback texture: %w", err)
	}
	gi := &gpuImage{dimension: dim, texture: tex, view: view}
	r.fallbacks[dim] = gi
	return gi, nil
}

// prune releases GPU objects whose CPU-side owner was not drawn this frame or no longer exists.
func (r *renderer) prune(images asset.Images, fs *frameState) {
	for k, p := range r.cameras {
		if !fs.cameras[k] {
			p.Release()
			delete(r.cameras, k)
		}
	}
	for k, p := range r.objects {
		if !fs.objects[k] {
			p.Release()
			delete(r.objects, k)
		}
	}
	for h, e := range r.materials {
		if !fs.materials[h] {
			e.provider.Release()
			delete(r.materials, h)
		}
	}
	for h, gi := range r.images {
		if !images.Contains(h) {
			r.backend.ReleaseTexture(gi.texture, gi.view)
			delete(r.images, h)
		}
	}
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.cameras {
		p.Release()
	}
	for _, p := range r.objects {
		p.Release()
	}
	for _, p := range r.meshes {
		p.Release()
	}
	for _, e := range r.materials {
		e.provider.Release()
	}
	for _, gi := range r.images {
		r.backend.ReleaseTexture(gi.texture, gi.view)
	}
	for _, gi := range r.fallbacks {
		r.backend.ReleaseTexture(gi.texture, gi.view)
	}
	for _, e := range r.pipelineCache {
		e.pipeline.Release()
	}
	clear(r.cameras)
	clear(r.objects)
	clear(r.meshes)
	clear(r.materials)
	clear(r.images)
	clear(r.fallbacks)
	clear(r.unresolved)
	clear(r.pipelineCache)
	r.backend.Release()
}

// textureDimensions maps each texture binding of a layout to its declared view dimension.
func textureDimensions(desc gputypes.BindGroupLayoutDescriptor) map[uint32]gputypes.TextureViewDimension {
	dims := make(map[uint32]gputypes.TextureViewDimension)
	for _, e := range desc.Entries {
		if e.Texture != nil {
			dims[e.Binding] = common.Coalesce(e.Texture.ViewDimension, gputypes.TextureViewDimension2D)
		}
	}
	return dims
}

func sameBound(a, b []boundTexture) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
