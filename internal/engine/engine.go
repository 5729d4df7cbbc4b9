// Package engine assembles the engine's subsystems into a Context.
//
// The providers below are bound together by wire; see wire.go for the
// injector and wire_gen.go for the generated constructor.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/config"
	"github.com/Faultbox/iris/internal/engine/debugdraw"
	"github.com/Faultbox/iris/internal/engine/physics"
	"github.com/Faultbox/iris/internal/engine/renderer"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/internal/engine/resource"
	"github.com/Faultbox/iris/internal/engine/scene"
	"github.com/Faultbox/iris/internal/engine/texture"
	"github.com/Faultbox/iris/pkg/math"
)

// GPU is a rendering backend that also owns texture memory.
type GPU interface {
	renderer.Backend
	texture.Factory
}

// Context holds the subsystems of a running engine. Components receive what
// they need from it explicitly; nothing is global.
type Context struct {
	Config    *config.Config
	Log       *zap.Logger
	Resources *resource.FS
	Textures  *texture.Manager
	Compiler  *rendergraph.Compiler
	Scene     *scene.Scene
	Debug     *debugdraw.Sink
	Physics   *physics.System
	Renderer  *renderer.Renderer

	cleanup func()
}

// New builds a Context for cfg drawing through gpu.
func New(cfg *config.Config, log *zap.Logger, gpu GPU) (*Context, error) {
	ctx, cleanup, err := Initialize(cfg, log, gpu)
	if err != nil {
		return nil, err
	}
	ctx.cleanup = cleanup
	log.Info("engine initialized",
		zap.String("backend", cfg.Graphics.Backend),
		zap.Int("tick_rate", cfg.Physics.TickRate),
	)
	return ctx, nil
}

// Close tears the subsystems down in reverse dependency order.
func (c *Context) Close() {
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
	_ = c.Log.Sync()
}

// ShaderBackend maps a configured graphics backend name to the shading
// language the compiler emits.
func ShaderBackend(name string) (rendergraph.Backend, error) {
	switch name {
	case config.BackendOpenGL:
		return rendergraph.OpenGL, nil
	case config.BackendD3D12:
		return rendergraph.D3D12, nil
	case config.BackendWGSL:
		return rendergraph.WebGPU, nil
	default:
		return 0, fmt.Errorf("unknown graphics backend %q", name)
	}
}

// ProvideResources opens the asset directory, watching it when configured.
func ProvideResources(cfg *config.Config, log *zap.Logger) (*resource.FS, func()) {
	fs := resource.NewFS(cfg.Assets.Root, log)
	if cfg.Assets.Watch {
		if err := fs.Watch(); err != nil {
			log.Warn("asset hot reload disabled", zap.Error(err))
		}
	}
	return fs, func() {
		if err := fs.Close(); err != nil {
			log.Warn("closing assets", zap.Error(err))
		}
	}
}

// ProvideLoader exposes the asset directory as a plain loader.
func ProvideLoader(fs *resource.FS) resource.Loader {
	return fs
}

// ProvideTextures creates the texture manager on top of the GPU.
func ProvideTextures(loader resource.Loader, gpu GPU, log *zap.Logger) (*texture.Manager, func()) {
	m := texture.NewManager(loader, gpu, log)
	return m, m.Close
}

// ProvideCompiler creates the shader compiler for the configured backend.
func ProvideCompiler(cfg *config.Config, textures *texture.Manager, log *zap.Logger) (*rendergraph.Compiler, error) {
	backend, err := ShaderBackend(cfg.Graphics.Backend)
	if err != nil {
		return nil, err
	}
	emitter, err := rendergraph.EmitterFor(backend)
	if err != nil {
		return nil, err
	}
	return rendergraph.NewCompiler(emitter, textures, log), nil
}

// ProvideSink creates the debug line sink drawing into s.
func ProvideSink(s *scene.Scene) *debugdraw.Sink {
	return debugdraw.NewSink(s)
}

// ProvidePhysics creates the physics system with the bundled world.
func ProvidePhysics(cfg *config.Config, sink *debugdraw.Sink, log *zap.Logger) (*physics.System, func()) {
	g := cfg.Physics.Gravity
	world := physics.NewDiscreteWorld(math.Vec3{X: g.X, Y: g.Y, Z: g.Z})
	s := physics.New(world, physics.Options{
		RayLength: cfg.Physics.RayLength,
		DebugDraw: cfg.Physics.DebugDraw,
		Sink:      sink,
	}, log)
	return s, s.Close
}

// ProvideRenderer creates the renderer for gpu.
func ProvideRenderer(gpu GPU, compiler *rendergraph.Compiler, log *zap.Logger) *renderer.Renderer {
	return renderer.New(gpu, compiler, log)
}
