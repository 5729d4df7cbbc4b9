// Package headless provides a renderer backend that executes no graphics
// calls. It counts what it is asked to do, which makes it useful for servers,
// CI and replaying physics without a GPU.
package headless

import (
	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/renderer"
	"github.com/Faultbox/iris/internal/engine/texture"
)

// Stats counts executed commands.
type Stats struct {
	Frames    int
	Uploads   int
	Passes    int
	Offscreen int // passes drawn into a render target
	Draws     int
	Vertices  int
	Presents  int
	Textures  int // currently created textures
	Destroyed int
}

// Backend is a headless renderer.Backend and texture.Factory.
type Backend struct {
	renderer.NopBackend

	log   *zap.Logger
	stats Stats
	open  bool // inside a pass
}

var (
	_ renderer.Backend = (*Backend)(nil)
	_ texture.Factory  = (*Backend)(nil)
)

// New creates a headless backend.
func New(log *zap.Logger) *Backend {
	return &Backend{log: log.Named("headless")}
}

// Stats returns the counters so far.
func (b *Backend) Stats() Stats {
	return b.stats
}

func (b *Backend) UploadTexture(cmd *renderer.Command) error {
	b.stats.Uploads++
	return nil
}

func (b *Backend) PassStart(cmd *renderer.Command) error {
	b.stats.Passes++
	if cmd.Target != nil {
		b.stats.Offscreen++
	}
	b.open = true
	return nil
}

func (b *Backend) Draw(cmd *renderer.Command) error {
	if !b.open {
		b.log.Warn("draw outside pass", zap.String("entity", cmd.Entity.Name))
	}
	b.stats.Draws++
	for _, m := range cmd.Entity.Meshes() {
		b.stats.Vertices += len(m.Vertices)
	}
	return nil
}

func (b *Backend) PassEnd(*renderer.Command) error {
	b.open = false
	return nil
}

func (b *Backend) Present(*renderer.Command) error {
	b.stats.Presents++
	return nil
}

func (b *Backend) PostRender() error {
	b.stats.Frames++
	if b.stats.Frames%600 == 0 {
		b.log.Debug("frames rendered",
			zap.Int("frames", b.stats.Frames),
			zap.Int("draws", b.stats.Draws))
	}
	return nil
}

// Create implements texture.Factory.
func (b *Backend) Create(t *texture.Texture) error {
	b.stats.Textures++
	return nil
}

// Destroy implements texture.Factory.
func (b *Backend) Destroy(t *texture.Texture) {
	b.stats.Textures--
	b.stats.Destroyed++
}
