package target

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/engine/asset"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/gogpu/gputypes"
)

func TestAllocateCreatesRenderableTarget(t *testing.T) {
	a := NewAllocator(WithLabel("Scene Target"))
	h, err := a.Allocate(512, 256, DefaultFormat)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	img, ok := a.Images().Get(h)
	if !ok {
		t.Fatal("target not stored")
	}
	if img.Width != 512 || img.Height != 256 || img.Layers != 1 {
		t.Fatalf("target %dx%d x%d", img.Width, img.Height, img.Layers)
	}
	if len(img.Data) != 512*256*4 {
		t.Fatalf("buffer len = %d", len(img.Data))
	}
	for _, u := range []gputypes.TextureUsage{
		gputypes.TextureUsageTextureBinding,
		gputypes.TextureUsageCopyDst,
		gputypes.TextureUsageRenderAttachment,
	} {
		if !img.Usage.Contains(u) {
			t.Errorf("usage %v missing %v", img.Usage, u)
		}
	}
	if img.ViewDimension != gputypes.TextureViewDimension2D {
		t.Fatalf("view dimension = %v", img.ViewDimension)
	}
	if img.Label != "Scene Target" {
		t.Fatalf("label = %q", img.Label)
	}
}

func TestAllocateRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		format        gputypes.TextureFormat
		want          error
	}{
		{"zero width", 0, 64, DefaultFormat, ErrInvalidTargetSize},
		{"zero height", 64, 0, DefaultFormat, ErrInvalidTargetSize},
		{"both zero", 0, 0, DefaultFormat, ErrInvalidTargetSize},
		{"depth format", 64, 64, gputypes.TextureFormatDepth32Float, texture.ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator()
			_, err := a.Allocate(tt.width, tt.height, tt.format)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if a.Images().Len() != 0 {
				t.Fatal("failed allocation stored an image")
			}
		})
	}
}

func TestResizeKeepsHandle(t *testing.T) {
	images := asset.NewAssets[*texture.Image]()
	a := NewAllocator(WithImages(images))
	h, err := a.Allocate(64, 64, gputypes.TextureFormatRGBA8Unorm)
	if err != nil {
		t.Fatal(err)
	}
	img, _ := images.Get(h)
	gen := img.Generation()

	if err := a.Resize(h, 128, 32); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	img, _ = images.Get(h)
	if img.Width != 128 || img.Height != 32 || len(img.Data) != 128*32*4 {
		t.Fatalf("resized to %dx%d (%d bytes)", img.Width, img.Height, len(img.Data))
	}
	if img.Generation() == gen {
		t.Fatal("generation not bumped")
	}
	if !img.Usage.Contains(gputypes.TextureUsageRenderAttachment) {
		t.Fatal("usage lost on resize")
	}

	gen = img.Generation()
	if err := a.Resize(h, 128, 32); err != nil || img.Generation() != gen {
		t.Fatalf("same-size resize: %v, generation %d -> %d", err, gen, img.Generation())
	}
	if err := a.Resize(h, 0, 32); !errors.Is(err, ErrInvalidTargetSize) {
		t.Fatalf("err = %v, want ErrInvalidTargetSize", err)
	}
}

func TestReleaseInvalidatesHandle(t *testing.T) {
	a := NewAllocator()
	h, err := a.Allocate(8, 8, DefaultFormat)
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Release(h); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if a.Images().Contains(h) {
		t.Fatal("released target still resolves")
	}
	if err := a.Release(h); !errors.Is(err, asset.ErrAssetNotFound) {
		t.Fatalf("second release: %v", err)
	}
	if err := a.Resize(h, 4, 4); !errors.Is(err, asset.ErrAssetNotFound) {
		t.Fatalf("resize after release: %v", err)
	}
}
