package bind_group_provider

import "testing"

func TestNewBindGroupProvider(t *testing.T) {
	p := NewBindGroupProvider("camera", WithVersion(3), WithMeshCounts(3, 0))
	if p.Label() != "camera" {
		t.Errorf("label = %q", p.Label())
	}
	if p.Version() != 3 {
		t.Errorf("version = %d, want 3", p.Version())
	}
	if p.VertexCount() != 3 || p.IndexCount() != 0 {
		t.Errorf("counts = %d/%d", p.VertexCount(), p.IndexCount())
	}
	if p.BindGroup() != nil || p.Buffer(0) != nil || p.TextureView(1) != nil || p.Sampler(2) != nil {
		t.Error("new provider should hold no GPU objects")
	}
}

func TestBindGroupProviderEmptyRelease(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetVersion(7)
	p.SetMesh(nil, nil, 6, 6)
	p.SetBuffer(0, nil)
	p.SetTextureView(1, nil)
	p.SetSampler(2, nil)

	p.Release()
	if p.Version() != 0 {
		t.Errorf("version after release = %d, want 0", p.Version())
	}
	if len(p.Buffers()) != 0 {
		t.Errorf("buffers after release = %d", len(p.Buffers()))
	}
	p.Release()
}

func TestBufferWriteTargetsProvider(t *testing.T) {
	p := NewBindGroupProvider("object")
	w := BufferWrite{Provider: p, Binding: 0, Data: make([]byte, 64)}
	if w.Provider.Buffer(w.Binding) != nil {
		t.Error("write should target an uninitialized buffer")
	}
}
