package material

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCustom2DParams is the GPU-aligned uniform for the custom 2D material fragment shader.
// Matches the WGSL Custom2DMaterial struct layout exactly.
// Size: 16 bytes (one vec4<f32>).
type GPUCustom2DParams struct {
	Color [4]float32 // offset 0: RGBA color multiplied with the sampled texture (16 bytes)
}

// Size returns the size of the GPUCustom2DParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUCustom2DParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCustom2DParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUCustom2DParams) Marshal() []byte {
	buf := make([]byte, 16)
	for i, c := range g.Color {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(c))
	}
	return buf
}

// GPUArrayTextureParams is the GPU-aligned uniform for the array texture fragment shader.
// Matches the WGSL ArrayTextureMaterial struct layout exactly.
// Size: 16 bytes (f32 + 12 bytes padding).
type GPUArrayTextureParams struct {
	LayerCount float32    // offset 0: number of layers spread across the quad (4 bytes)
	_          [3]float32 // offset 4: padding to 16 bytes
}

// Size returns the size of the GPUArrayTextureParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUArrayTextureParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUArrayTextureParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUArrayTextureParams) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.LayerCount))
	return buf
}
