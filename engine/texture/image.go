// Package texture holds the CPU-side description of a GPU image: its size, pixel format,
// usage flags, view dimension and pixel bytes. The renderer turns an Image into a GPU
// texture and view; everything in this package is plain data and runs without a device.
package texture

import (
	"errors"
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"
)

var (
	// ErrSizeMismatch is returned when a pixel buffer does not match the dimensions it is
	// described with, or when a stacked image cannot be split into the requested layers.
	ErrSizeMismatch = errors.New("texture: size mismatch")

	// ErrUnsupportedFormat is returned for formats that have no fixed bytes-per-pixel.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")

	// ErrNotSingleLayer is returned when a stacked-layer reinterpretation is requested on an
	// image that is already an array.
	ErrNotSingleLayer = errors.New("texture: image already has multiple layers")

	// ErrLayerOutOfRange is returned by Layer for an index past the last layer.
	ErrLayerOutOfRange = errors.New("texture: layer out of range")
)

// DefaultUsage is the usage of images loaded from disk: sampled by shaders and written by uploads.
const DefaultUsage = gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst

// Image is a 2D (or 2D array) image pending or resident on the GPU.
//
// Width and Height are per layer. Data holds Layers consecutive layers of
// Width*Height*BytesPerPixel bytes each, rows tightly packed.
type Image struct {
	Label         string
	Width         uint32
	Height        uint32
	Layers        uint32
	Format        gputypes.TextureFormat
	Usage         gputypes.TextureUsage
	ViewDimension gputypes.TextureViewDimension
	Sampler       common.SamplerStagingData
	Data          []byte

	// generation changes whenever the image's layout or contents are replaced so the
	// renderer knows to recreate the GPU texture.
	generation uint64
}

// ImageOption configures an Image during NewImage.
type ImageOption func(*Image)

// WithLabel sets the debug label of the image.
//
// Parameters:
//   - label: the label used for GPU resources created from the image
//
// Returns:
//   - ImageOption: option function to apply
func WithLabel(label string) ImageOption {
	return func(img *Image) {
		img.Label = label
	}
}

// WithUsage replaces the default usage flags of the image.
//
// Parameters:
//   - usage: the GPU usage flags
//
// Returns:
//   - ImageOption: option function to apply
func WithUsage(usage gputypes.TextureUsage) ImageOption {
	return func(img *Image) {
		img.Usage = usage
	}
}

// WithSampler sets the sampler configuration used when the image is bound to a material.
//
// Parameters:
//   - sampler: the sampler staging data
//
// Returns:
//   - ImageOption: option function to apply
func WithSampler(sampler common.SamplerStagingData) ImageOption {
	return func(img *Image) {
		img.Sampler = sampler
	}
}

// NewImage creates a single-layer 2D image. If data is nil a zero-filled buffer of the
// right size is allocated; otherwise its length must match width*height*bpp.
//
// Parameters:
//   - width, height: the image size in pixels
//   - format: the pixel format
//   - data: the pixel bytes, or nil
//   - options: functional options
//
// Returns:
//   - *Image: the new image
//   - error: ErrUnsupportedFormat or ErrSizeMismatch
func NewImage(width, height uint32, format gputypes.TextureFormat, data []byte, options ...ImageOption) (*Image, error) {
	bpp, err := BytesPerPixel(format)
	if err != nil {
		return nil, err
	}
	want := int(width) * int(height) * int(bpp)
	if data == nil {
		data = make([]byte, want)
	} else if len(data) != want {
		return nil, fmt.Errorf("%w: %dx%d %s needs %d bytes, got %d", ErrSizeMismatch, width, height, format, want, len(data))
	}

	img := &Image{
		Width:         width,
		Height:        height,
		Layers:        1,
		Format:        format,
		Usage:         DefaultUsage,
		ViewDimension: gputypes.TextureViewDimension2D,
		Data:          data,
		generation:    1,
	}
	for _, opt := range options {
		opt(img)
	}
	return img, nil
}

// FromImage converts any decoded image into an RGBA8 sRGB Image.
//
// Parameters:
//   - src: the decoded image
//   - options: functional options
//
// Returns:
//   - *Image: the converted image
func FromImage(src image.Image, options ...ImageOption) *Image {
	bounds := src.Bounds()
	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || len(rgba.Pix) != bounds.Dx()*bounds.Dy()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		xdraw.Draw(rgba, rgba.Bounds(), src, bounds.Min, xdraw.Src)
	}

	img := &Image{
		Width:         uint32(bounds.Dx()),
		Height:        uint32(bounds.Dy()),
		Layers:        1,
		Format:        gputypes.TextureFormatRGBA8UnormSrgb,
		Usage:         DefaultUsage,
		ViewDimension: gputypes.TextureViewDimension2D,
		Data:          rgba.Pix,
		generation:    1,
	}
	for _, opt := range options {
		opt(img)
	}
	return img
}

// BytesPerPixel returns the texel size of the image's format, or 0 if unsupported.
func (img *Image) BytesPerPixel() uint32 {
	bpp, _ := BytesPerPixel(img.Format)
	return bpp
}

// LayerSize returns the size in bytes of one layer.
func (img *Image) LayerSize() int {
	return int(img.Width) * int(img.Height) * int(img.BytesPerPixel())
}

// Generation reports the current content generation. It starts at 1 and increases on
// every Touch, Resize or reinterpretation.
func (img *Image) Generation() uint64 {
	return img.generation
}

// Touch marks the image contents as changed so the renderer uploads them again.
func (img *Image) Touch() {
	img.generation++
}

// Resize replaces the pixel buffer with a zero-filled one of the new size.
// The format, usage, view dimension and layer count are kept.
//
// Parameters:
//   - width, height: the new size in pixels per layer
func (img *Image) Resize(width, height uint32) {
	img.Width = width
	img.Height = height
	img.Data = make([]byte, img.LayerSize()*int(max(img.Layers, 1)))
	img.generation++
}

// ReinterpretStackedArray turns a single 2D image whose rows hold layers images stacked
// vertically into a 2D array of layers images. Only the metadata changes: the pixel
// buffer is neither copied nor moved, because consecutive layers are already consecutive
// in row-major order.
//
// On error the image is left unmodified.
//
// Parameters:
//   - layers: the number of stacked layers
//
// Returns:
//   - error: ErrNotSingleLayer, or ErrSizeMismatch if the image is empty, layers is 0, does
//     not evenly divide the height, or the buffer does not match the image dimensions
func (img *Image) ReinterpretStackedArray(layers uint32) error {
	if img.Layers > 1 {
		return fmt.Errorf("%w: %q has %d layers", ErrNotSingleLayer, img.Label, img.Layers)
	}
	if layers == 0 {
		return fmt.Errorf("%w: layer count must be positive", ErrSizeMismatch)
	}
	if img.Width == 0 || img.Height == 0 {
		return fmt.Errorf("%w: %q is empty (%dx%d)", ErrSizeMismatch, img.Label, img.Width, img.Height)
	}
	if len(img.Data) != img.LayerSize() {
		return fmt.Errorf("%w: buffer of %d bytes does not match %dx%d %s", ErrSizeMismatch, len(img.Data), img.Width, img.Height, img.Format)
	}
	if img.Height%layers != 0 {
		return fmt.Errorf("%w: height %d is not divisible into %d layers", ErrSizeMismatch, img.Height, layers)
	}

	img.Height /= layers
	img.Layers = layers
	img.ViewDimension = gputypes.TextureViewDimension2DArray
	img.generation++
	return nil
}

// FlattenArray undoes ReinterpretStackedArray, presenting all layers as one tall 2D image.
// The pixel buffer is untouched.
func (img *Image) FlattenArray() {
	if img.Layers <= 1 {
		return
	}
	img.Height *= img.Layers
	img.Layers = 1
	img.ViewDimension = gputypes.TextureViewDimension2D
	img.generation++
}

// Layer returns a view of the bytes of layer i. The slice aliases Data.
//
// Parameters:
//   - i: the layer index
//
// Returns:
//   - []byte: the layer's bytes
//   - error: ErrLayerOutOfRange if i >= Layers
func (img *Image) Layer(i uint32) ([]byte, error) {
	if i >= img.Layers {
		return nil, fmt.Errorf("%w: %d of %d", ErrLayerOutOfRange, i, img.Layers)
	}
	size := img.LayerSize()
	start := int(i) * size
	return img.Data[start : start+size : start+size], nil
}

// Descriptor returns the GPU texture descriptor for the image.
func (img *Image) Descriptor() gputypes.TextureDescriptor {
	return gputypes.TextureDescriptor{
		Label:         img.Label,
		Size:          gputypes.NewExtent3D(img.Width, img.Height, max(img.Layers, 1)),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        img.Format,
		Usage:         img.Usage,
	}
}

// ViewDescriptor returns the GPU texture view descriptor for the image, covering every layer.
func (img *Image) ViewDescriptor() gputypes.TextureViewDescriptor {
	return gputypes.TextureViewDescriptor{
		Label:           img.Label + " View",
		Format:          img.Format,
		Dimension:       img.ViewDimension,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: max(img.Layers, 1),
	}
}
