package bind_group_provider

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithVersion sets the initial content stamp of the provider.
//
// Parameters:
//   - v: the stamp
//
// Returns:
//   - BindGroupProviderOption: a function that sets the stamp for this provider
func WithVersion(v uint64) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.version = v
	}
}

// WithMeshCounts sets the draw counts of a mesh provider before its buffers exist.
//
// Parameters:
//   - vertexCount: the vertex count
//   - indexCount: the index count
//
// Returns:
//   - BindGroupProviderOption: a function that sets the draw counts for this provider
func WithMeshCounts(vertexCount, indexCount int) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.vertexCount = vertexCount
		p.indexCount = indexCount
	}
}
