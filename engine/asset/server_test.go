package asset

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/bmp"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

func waitLoaded(t *testing.T, s Server, h ImageHandle) LoadState {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	state, _ := s.WaitLoaded(ctx, h)
	return state
}

func TestServerLoadsPNGFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"textures/stack.png": {Data: encodePNG(t, 4, 16)},
	}
	s := NewServer(WithFS(fsys), WithWorkers(2))
	defer s.Close()

	h := s.Load("textures/stack.png", texture.WithSampler(common.SamplerStagingData{
		MagFilter: gputypes.FilterModeNearest,
	}))
	if again := s.Load("textures/../textures/stack.png"); again != h {
		t.Fatalf("second load returned %s, want %s", again, h)
	}

	if state := waitLoaded(t, s, h); state != Loaded {
		t.Fatalf("state = %v, err = %v", state, s.Err(h))
	}
	img, ok := s.Images().Get(h)
	if !ok {
		t.Fatal("loaded image not published")
	}
	if img.Width != 4 || img.Height != 16 || len(img.Data) != 4*16*4 {
		t.Fatalf("image %dx%d with %d bytes", img.Width, img.Height, len(img.Data))
	}
	if img.Label != "textures/stack.png" {
		t.Fatalf("label = %q", img.Label)
	}
	if img.Sampler.MagFilter != gputypes.FilterModeNearest {
		t.Fatal("load options not applied")
	}
	// Pixel (1, 2) carries R=1, G=2.
	off := (2*4 + 1) * 4
	if img.Data[off] != 1 || img.Data[off+1] != 2 {
		t.Fatalf("pixel (1,2) = %v", img.Data[off:off+4])
	}
}

func TestServerLoadBytesDecodesBMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 3))
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	src.Set(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, src); err != nil {
		t.Fatalf("bmp.Encode: %v", err)
	}

	s := NewServer(WithFS(fstest.MapFS{}))
	defer s.Close()

	h := s.LoadBytes("embedded.bmp", buf.Bytes())
	if state := waitLoaded(t, s, h); state != Loaded {
		t.Fatalf("state = %v, err = %v", state, s.Err(h))
	}
	img, _ := s.Images().Get(h)
	if img.Data[0] != 10 || img.Data[1] != 20 || img.Data[2] != 30 {
		t.Fatalf("pixel = %v", img.Data[:4])
	}
}

func TestServerReportsFailures(t *testing.T) {
	fsys := fstest.MapFS{
		"broken.png": {Data: []byte("not an image")},
	}
	s := NewServer(WithFS(fsys))
	defer s.Close()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", "missing.png"},
		{"undecodable", "broken.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := s.Load(tt.path)
			if state := waitLoaded(t, s, h); state != Failed {
				t.Fatalf("state = %v, want Failed", state)
			}
			if s.Err(h) == nil {
				t.Fatal("Err = nil for failed load")
			}
			if s.Images().Contains(h) {
				t.Fatal("failed load published an image")
			}
		})
	}
}

func TestServerSharesImageTable(t *testing.T) {
	images := NewAssets[*texture.Image]()
	existing := images.Add(&texture.Image{Label: "target"})

	s := NewServer(WithFS(fstest.MapFS{"a.png": {Data: encodePNG(t, 1, 1)}}), WithImages(images))
	defer s.Close()

	h := s.Load("a.png")
	waitLoaded(t, s, h)
	if s.Images() != images || images.Len() != 2 || !images.Contains(existing) {
		t.Fatalf("shared table has %d entries", images.Len())
	}
	if s.LoadState(existing) != NotLoaded {
		t.Fatal("handle not created by Load reported a load state")
	}
}

func TestLoadStateString(t *testing.T) {
	if Loaded.String() != "Loaded" || LoadState(9).String() != "LoadState(9)" {
		t.Fatal("unexpected LoadState names")
	}
}
