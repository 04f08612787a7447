// package common contains common types and helpers used throughout the engine. They are not interface-wrapped
// structs, just plain structs and functions that express commonly used data.
package common

import "github.com/gogpu/gputypes"

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero-valued fields are replaced by the renderer with linear filtering and clamp-to-edge addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW gputypes.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter gputypes.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter gputypes.MipmapFilterMode
}

