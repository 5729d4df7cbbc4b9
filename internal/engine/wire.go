//go:build wireinject
// +build wireinject

package engine

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/config"
	"github.com/Faultbox/iris/internal/engine/scene"
)

var providers = wire.NewSet(
	ProvideResources,
	ProvideLoader,
	ProvideTextures,
	ProvideCompiler,
	scene.New,
	ProvideSink,
	ProvidePhysics,
	ProvideRenderer,
	wire.Struct(new(Context),
		"Config", "Log", "Resources", "Textures", "Compiler",
		"Scene", "Debug", "Physics", "Renderer"),
)

// Initialize wires a Context together. The returned function releases
// everything in reverse order.
func Initialize(cfg *config.Config, log *zap.Logger, gpu GPU) (*Context, func(), error) {
	panic(wire.Build(providers))
}
