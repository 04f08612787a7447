package common

import (
	"encoding/binary"
	"math"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// PackFloat32s writes values as little-endian float32s into a new buffer whose length
// is rounded up to a multiple of 16 bytes, the uniform buffer alignment used by WGSL.
//
// Parameters:
//   - values: the floats to pack in order
//
// Returns:
//   - []byte: the packed, zero-padded buffer (at least 16 bytes)
func PackFloat32s(values ...float32) []byte {
	size := len(values) * 4
	if rem := size % 16; rem != 0 || size == 0 {
		size += 16 - rem
	}
	buf := make([]byte, size)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (OpenGL/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// Ortho creates an orthographic projection matrix mapping the box
// [left, right] x [bottom, top] x [near, far] to WebGPU clip space (z in [0, 1]).
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - left, right: horizontal extents
//   - bottom, top: vertical extents
//   - near, far: depth extents (far != near)
func Ortho(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
}

// BuildTransform2D constructs a 4x4 model matrix for a quad in the XY plane from a
// translation, a rotation around Z, and a scale. The result is T * Rz * S, column-major.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - posX, posY, posZ: translation; posZ orders overlapping quads
//   - rot: rotation around the Z axis in radians
//   - scaleX, scaleY: scale factors along X and Y
func BuildTransform2D(out []float32, posX, posY, posZ, rot, scaleX, scaleY float32) {
	c := float32(math.Cos(float64(rot)))
	s := float32(math.Sin(float64(rot)))

	Identity(out)
	out[0] = c * scaleX
	out[1] = s * scaleX
	out[4] = -s * scaleY
	out[5] = c * scaleY
	out[12] = posX
	out[13] = posY
	out[14] = posZ
}
