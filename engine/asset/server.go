package asset

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"path"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/texture"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Images is the table of CPU-side images shared by the asset server, render targets and the renderer.
type Images = Assets[*texture.Image]

// ImageHandle addresses an image in an Images table.
type ImageHandle = Handle[*texture.Image]

// LoadState is the progress of an asynchronous load.
type LoadState int

const (
	// NotLoaded means the handle was not produced by this server's Load.
	NotLoaded LoadState = iota
	// Loading means the file is queued or being decoded.
	Loading
	// Loaded means the image is available from Images().
	Loaded
	// Failed means reading or decoding failed; see Server.Err.
	Failed
)

// String returns the state name.
func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "NotLoaded"
	case Loading:
		return "Loading"
	case Loaded:
		return "Loaded"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

// Server loads images asynchronously. Load returns immediately with a handle; the image becomes
// visible in Images() once a worker has decoded it. Callers poll LoadState each frame and defer
// work that needs the pixels until it reports Loaded.
type Server interface {
	// Load queues path for decoding. Loading the same path again returns the same handle.
	//
	// Parameters:
	//   - p: path relative to the server root
	//   - options: applied to the decoded image before it is published
	//
	// Returns:
	//   - ImageHandle: handle that resolves once loaded
	Load(p string, options ...texture.ImageOption) ImageHandle

	// LoadBytes queues an in-memory encoded image for decoding under the given name.
	//
	// Parameters:
	//   - name: the cache key and label
	//   - data: the encoded image
	//   - options: applied to the decoded image before it is published
	//
	// Returns:
	//   - ImageHandle: handle that resolves once loaded
	LoadBytes(name string, data []byte, options ...texture.ImageOption) ImageHandle

	// LoadState reports load progress for a handle.
	LoadState(h ImageHandle) LoadState

	// Err returns the failure for a Failed handle, nil otherwise.
	Err(h ImageHandle) error

	// WaitLoaded blocks until the handle leaves the Loading state or ctx is done.
	//
	// Parameters:
	//   - ctx: cancellation context
	//   - h: the handle to wait on
	//
	// Returns:
	//   - LoadState: the state after waiting
	//   - error: the load error, or ctx.Err()
	WaitLoaded(ctx context.Context, h ImageHandle) (LoadState, error)

	// Images returns the table decoded images are published into.
	Images() Images

	// Close stops the decode workers. Pending loads never complete.
	Close()
}

type loadEntry struct {
	state atomic.Int32
	err   error
	done  chan struct{}
}

type server struct {
	mu      sync.Mutex
	root    string
	fsys    fs.FS
	workers int
	images  Images
	pool    worker.DynamicWorkerPool
	byPath  map[string]ImageHandle
	entries map[ImageHandle]*loadEntry
	taskID  int
}

var _ Server = &server{}

// NewServer creates an asset server. Assets are read from ./assets unless WithRoot or WithFS is given.
//
// Parameters:
//   - options: variadic list of ServerBuilderOption functions
//
// Returns:
//   - Server: the new asset server
func NewServer(options ...ServerBuilderOption) Server {
	s := &server{
		workers: runtime.NumCPU(),
		byPath:  make(map[string]ImageHandle),
		entries: make(map[ImageHandle]*loadEntry),
	}
	for _, opt := range options {
		opt(s)
	}
	if s.fsys == nil {
		s.fsys = defaultFS(s.root)
	}
	if s.images == nil {
		s.images = NewAssets[*texture.Image]()
	}
	s.pool = worker.NewDynamicWorkerPool(s.workers, 64, time.Second)
	return s
}

func (s *server) Load(p string, options ...texture.ImageOption) ImageHandle {
	key := path.Clean(p)
	h, entry, fresh := s.begin(key)
	if !fresh {
		return h
	}
	s.submit(h, entry, key, func() ([]byte, error) {
		return fs.ReadFile(s.fsys, key)
	}, options)
	return h
}

func (s *server) LoadBytes(name string, data []byte, options ...texture.ImageOption) ImageHandle {
	h, entry, fresh := s.begin("bytes:" + name)
	if !fresh {
		return h
	}
	s.submit(h, entry, name, func() ([]byte, error) {
		return data, nil
	}, options)
	return h
}

func (s *server) LoadState(h ImageHandle) LoadState {
	s.mu.Lock()
	entry, ok := s.entries[h]
	s.mu.Unlock()
	if !ok {
		return NotLoaded
	}
	return LoadState(entry.state.Load())
}

func (s *server) Err(h ImageHandle) error {
	s.mu.Lock()
	entry, ok := s.entries[h]
	s.mu.Unlock()
	if !ok || LoadState(entry.state.Load()) != Failed {
		return nil
	}
	return entry.err
}

func (s *server) WaitLoaded(ctx context.Context, h ImageHandle) (LoadState, error) {
	s.mu.Lock()
	entry, ok := s.entries[h]
	s.mu.Unlock()
	if !ok {
		return NotLoaded, fmt.Errorf("%w: handle %s was not loaded by this server", ErrAssetNotFound, h)
	}

	select {
	case <-entry.done:
	case <-ctx.Done():
		return s.LoadState(h), ctx.Err()
	}
	state := LoadState(entry.state.Load())
	if state == Failed {
		return state, entry.err
	}
	return state, nil
}

func (s *server) Images() Images {
	return s.images
}

func (s *server) Close() {
	s.pool.Stop()
}

// begin registers a load under key, returning the existing handle if the key was seen before.
func (s *server) begin(key string) (ImageHandle, *loadEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.byPath[key]; ok {
		return h, nil, false
	}
	h := s.images.Reserve()
	entry := &loadEntry{done: make(chan struct{})}
	entry.state.Store(int32(Loading))
	s.byPath[key] = h
	s.entries[h] = entry
	return h, entry, true
}

func (s *server) submit(h ImageHandle, entry *loadEntry, label string, read func() ([]byte, error), options []texture.ImageOption) {
	s.mu.Lock()
	id := s.taskID
	s.taskID++
	s.mu.Unlock()

	s.pool.SubmitTask(worker.Task{
		ID:      id,
		Payload: label,
		Do: func() (any, error) {
			defer close(entry.done)

			img, err := decode(label, read, options)
			if err == nil {
				err = s.images.Set(h, img)
			}
			if err != nil {
				entry.err = err
				entry.state.Store(int32(Failed))
				common.Logger().Warn("asset load failed", "path", label, "error", err)
				return nil, err
			}
			entry.state.Store(int32(Loaded))
			common.Logger().Info("asset loaded", "path", label, "handle", h.String(),
				"width", img.Width, "height", img.Height)
			return img, nil
		},
	})
}

func decode(label string, read func() ([]byte, error), options []texture.ImageOption) (*texture.Image, error) {
	data, err := read()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", label, err)
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", label, err)
	}
	common.Logger().Debug("asset decoded", "path", label, "format", format)

	opts := append([]texture.ImageOption{texture.WithLabel(label)}, options...)
	return texture.FromImage(src, opts...), nil
}
