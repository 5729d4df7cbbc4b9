package texture

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/resource"
)

// ErrInvalidUsage is wrapped by the ResourceError returned for unknown usages.
var ErrInvalidUsage = errors.New("invalid texture usage")

type cacheKey struct {
	path  string
	usage Usage
}

type loadedTexture struct {
	refs    int
	texture *Texture
}

// Manager loads textures through a resource.Loader and caches them by path
// and usage. Every Load of a cached texture returns the same *Texture and
// takes a reference; Unload drops one and destroys the texture at zero.
type Manager struct {
	loader  resource.Loader
	factory Factory
	log     *zap.Logger

	mu      sync.Mutex
	loaded  map[cacheKey]*loadedTexture
	byTex   map[*Texture]cacheKey
	blank   *Texture
	nextID  uint32
	decodes int
}

// NewManager creates a texture manager. A nil factory keeps textures CPU side.
func NewManager(loader resource.Loader, factory Factory, log *zap.Logger) *Manager {
	if factory == nil {
		factory = NopFactory{}
	}
	return &Manager{
		loader:  loader,
		factory: factory,
		log:     log.Named("texture"),
		loaded:  make(map[cacheKey]*loadedTexture),
		byTex:   make(map[*Texture]cacheKey),
	}
}

// Load returns the texture at path, loading and decoding it on first use.
func (m *Manager) Load(path string, usage Usage) (*Texture, error) {
	if !usage.Valid() {
		return nil, &fault.ResourceError{Op: "load", Resource: path, Err: fmt.Errorf("%w %s", ErrInvalidUsage, usage)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	key := cacheKey{path: path, usage: usage}
	if lt, ok := m.loaded[key]; ok {
		lt.refs++
		return lt.texture, nil
	}

	data, err := m.loader.Load(path)
	if err != nil {
		var re *fault.ResourceError
		if errors.As(err, &re) {
			return nil, err
		}
		return nil, &fault.ResourceError{Op: "load", Resource: path, Err: err}
	}

	img, err := Decode(path, data)
	if err != nil {
		return nil, &fault.ResourceError{Op: "decode", Resource: path, Err: err}
	}
	m.decodes++

	b := img.Bounds()
	tex, err := m.create(path, flipRows(img.Pix, b.Dx(), b.Dy()), b.Dx(), b.Dy(), usage)
	if err != nil {
		return nil, err
	}

	m.loaded[key] = &loadedTexture{refs: 1, texture: tex}
	m.byTex[tex] = key
	m.log.Debug("texture loaded",
		zap.String("path", path),
		zap.Stringer("usage", usage),
		zap.Int("width", tex.Width),
		zap.Int("height", tex.Height))
	return tex, nil
}

// FromData creates an uncached texture from raw RGBA pixels.
func (m *Manager) FromData(name string, data []byte, width, height int, usage Usage) (*Texture, error) {
	if !usage.Valid() {
		return nil, &fault.ResourceError{Op: "create", Resource: name, Err: fmt.Errorf("%w %s", ErrInvalidUsage, usage)}
	}
	if want := width * height * 4; len(data) != want {
		return nil, &fault.ResourceError{Op: "create", Resource: name, Err: fmt.Errorf("got %d bytes for %dx%d, want %d", len(data), width, height, want)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(name, data, width, height, usage)
}

// Target creates an uncached render target attachment with no pixel data.
// usage must be UsageRenderTarget or UsageDepth.
func (m *Manager) Target(name string, width, height int, usage Usage) (*Texture, error) {
	if usage != UsageRenderTarget && usage != UsageDepth {
		return nil, &fault.ResourceError{Op: "create", Resource: name, Err: fmt.Errorf("%w %s for a render target", ErrInvalidUsage, usage)}
	}
	if width <= 0 || height <= 0 {
		return nil, &fault.ResourceError{Op: "create", Resource: name, Err: fmt.Errorf("invalid size %dx%d", width, height)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.create(name, nil, width, height, usage)
}

// Blank returns a 1x1 opaque white texture. It is never unloaded.
func (m *Manager) Blank() *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.blank == nil {
		tex, err := m.create("blank", []byte{0xff, 0xff, 0xff, 0xff}, 1, 1, UsageImage)
		if err != nil {
			// the backend cannot create a single pixel, keep it CPU side
			m.log.Warn("blank texture creation failed", zap.Error(err))
			m.nextID++
			tex = &Texture{ID: m.nextID, Name: "blank", Data: []byte{0xff, 0xff, 0xff, 0xff}, Width: 1, Height: 1}
		}
		m.blank = tex
	}
	return m.blank
}

// Unload releases one reference to t. Cached textures are destroyed when
// their count reaches zero; uncached textures are destroyed immediately.
func (m *Manager) Unload(t *Texture) {
	if t == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t == m.blank {
		return
	}

	key, cached := m.byTex[t]
	if !cached {
		m.destroy(t)
		return
	}

	lt := m.loaded[key]
	lt.refs--
	if lt.refs > 0 {
		return
	}
	delete(m.loaded, key)
	delete(m.byTex, t)
	m.destroy(t)
	m.log.Debug("texture unloaded", zap.String("path", key.path))
}

// Loaded returns the number of cached textures.
func (m *Manager) Loaded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.loaded)
}

// Decodes returns how many images have been decoded.
func (m *Manager) Decodes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decodes
}

// Close destroys every cached texture and the blank texture.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, lt := range m.loaded {
		m.destroy(lt.texture)
		delete(m.loaded, key)
		delete(m.byTex, lt.texture)
	}
	if m.blank != nil {
		m.destroy(m.blank)
		m.blank = nil
	}
}

// destroy frees the backend storage of t. A texture used again afterwards is
// uploaded again by the next frame.
func (m *Manager) destroy(t *Texture) {
	m.factory.Destroy(t)
	t.Uploaded = false
}

func (m *Manager) create(name string, data []byte, width, height int, usage Usage) (*Texture, error) {
	m.nextID++
	tex := &Texture{
		ID:     m.nextID,
		Name:   name,
		Data:   data,
		Width:  width,
		Height: height,
		Usage:  usage,
	}
	if err := m.factory.Create(tex); err != nil {
		return nil, &fault.ResourceError{Op: "create", Resource: name, Err: err}
	}
	return tex, nil
}
