package camera

import "math/bits"

// Layers is a bitmask of render layers. A camera draws an entity when their masks intersect.
type Layers uint32

// DefaultLayers contains only layer 0, the layer entities and cameras use unless told otherwise.
const DefaultLayers Layers = 1

// MaxLayer is the highest usable layer index.
const MaxLayer = 31

// Layer returns a mask containing only layer n. Indices past MaxLayer are clamped to it.
//
// Parameters:
//   - n: the layer index
//
// Returns:
//   - Layers: the single-layer mask
func Layer(n uint) Layers {
	return Layers(1) << min(n, MaxLayer)
}

// With returns the mask with layer n added.
func (l Layers) With(n uint) Layers {
	return l | Layer(n)
}

// Without returns the mask with layer n removed.
func (l Layers) Without(n uint) Layers {
	return l &^ Layer(n)
}

// Contains reports whether layer n is set.
func (l Layers) Contains(n uint) bool {
	return l&Layer(n) != 0
}

// Intersects reports whether the two masks share at least one layer.
func (l Layers) Intersects(other Layers) bool {
	return l&other != 0
}

// Count returns the number of layers set.
func (l Layers) Count() int {
	return bits.OnesCount32(uint32(l))
}
