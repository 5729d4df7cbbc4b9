// Package main runs the Iris demo scene, in a window or headless.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/app"
	"github.com/Faultbox/iris/internal/config"
	"github.com/Faultbox/iris/internal/engine"
	"github.com/Faultbox/iris/internal/engine/camera"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/renderer"
	"github.com/Faultbox/iris/internal/engine/renderer/headless"
	"github.com/Faultbox/iris/internal/engine/renderer/opengl"
	"github.com/Faultbox/iris/internal/engine/window"
	"github.com/Faultbox/iris/internal/logger"
	"github.com/Faultbox/iris/pkg/math"
)

var flagFrames = flag.Int("frames", 600, "Frames to run when headless, negative runs until interrupted")

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.FromSettings(cfg.Logging.Level, cfg.Logging.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync(log)

	log.Info("=== Iris ===", zap.String("backend", cfg.Graphics.Backend), zap.Bool("headless", cfg.Graphics.Headless))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Graphics.Headless {
		err = runHeadless(ctx, cfg, log, *flagFrames)
	} else {
		err = runWindowed(ctx, cfg, log)
	}
	if err != nil {
		log.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
	log.Info("demo closed normally")
}

func cameras(width, height int) renderer.Cameras {
	w, h := float32(width), float32(height)
	return renderer.Cameras{
		Perspective:  camera.NewPerspective(math.Vec3{Y: 8, Z: 18}, math.Vec3{Y: 1}, w, h),
		Orthographic: camera.NewOrthographic(w, h),
	}
}

func runHeadless(ctx context.Context, cfg *config.Config, log *zap.Logger, frames int) error {
	gpu := headless.New(log)
	e, err := engine.New(cfg, log, gpu)
	if err != nil {
		return err
	}
	defer e.Close()

	a := app.New(e, cameras(cfg.Graphics.Width, cfg.Graphics.Height))
	app.Populate(a)

	start := time.Now()
	if err := a.Run(ctx, frames); err != nil {
		return err
	}
	st := gpu.Stats()
	log.Info("headless run finished",
		zap.Int("frames", st.Frames),
		zap.Int("draws", st.Draws),
		zap.Duration("simulated", e.Physics.Time()),
		zap.Duration("wall", time.Since(start)))
	return nil
}

// windowedBackend reports whether the configured backend can draw into the
// demo window. Only OpenGL has a device; the others compile shaders only.
func windowedBackend(cfg *config.Config) error {
	if cfg.Graphics.Backend != config.BackendOpenGL {
		return fmt.Errorf("backend %q cannot render to a window, use %q or run headless",
			cfg.Graphics.Backend, config.BackendOpenGL)
	}
	return nil
}

func runWindowed(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := windowedBackend(cfg); err != nil {
		return err
	}
	win, err := window.New(window.Config{
		Title:      cfg.Graphics.Title,
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, log)
	if err != nil {
		return err
	}
	defer win.Close()

	gpu, err := opengl.New(win.SwapBuffers, log)
	if err != nil {
		return err
	}
	defer gpu.Close()

	e, err := engine.New(cfg, log, gpu)
	if err != nil {
		return err
	}
	defer e.Close()

	width, height := win.Size()
	a := app.New(e, cameras(width, height))
	demo := app.Populate(a)

	orbit := camera.NewOrbit(18)
	orbit.Apply(a.Cameras.Perspective)

	var (
		events []window.Event
		walk   math.Vec3
		last   = time.Now()
	)
	for {
		events = win.Poll(events[:0])
		for _, ev := range events {
			switch ev.Type {
			case window.EventQuit:
				return nil

			case window.EventResize:
				gpu.Resize(ev.Width, ev.Height)
				a.Cameras.Perspective.Resize(float32(ev.Width), float32(ev.Height))
				a.Cameras.Orthographic.Resize(float32(ev.Width), float32(ev.Height))

			case window.EventDrag:
				orbit.HandleDrag(ev.DX, ev.DY)
				orbit.Apply(a.Cameras.Perspective)

			case window.EventWheel:
				orbit.HandleZoom(ev.Y)
				orbit.Apply(a.Cameras.Perspective)

			case window.EventClick:
				picked, hit, ok := a.Pick(ev.X, ev.Y)
				if !ok || picked == a.Selected() {
					a.Select(nil)
					continue
				}
				a.Select(picked)
				log.Debug("picked", zap.String("entity", entityName(picked)), zap.Float32("distance", hit.Distance))

			case window.EventKeyDown:
				switch ev.Key {
				case sdl.SCANCODE_ESCAPE:
					return nil
				case sdl.SCANCODE_F1:
					e.Physics.SetDebugDraw(!e.Physics.DebugDraw())
				case sdl.SCANCODE_SPACE:
					demo.Character.Jump()
				default:
					walk = walk.Add(walkKey(ev.Key))
				}

			case window.EventKeyUp:
				walk = walk.Sub(walkKey(ev.Key))
			}
		}
		demo.Character.SetWalkDirection(walk)

		select {
		case <-ctx.Done():
			return nil
		default:
		}

		now := time.Now()
		if _, err := a.Tick(now.Sub(last)); err != nil {
			return err
		}
		last = now
	}
}

// walkKey maps WASD to a walk direction on the ground plane.
func walkKey(key sdl.Scancode) math.Vec3 {
	switch key {
	case sdl.SCANCODE_W:
		return math.Vec3{Z: -1}
	case sdl.SCANCODE_S:
		return math.Vec3{Z: 1}
	case sdl.SCANCODE_A:
		return math.Vec3{X: -1}
	case sdl.SCANCODE_D:
		return math.Vec3{X: 1}
	default:
		return math.Zero
	}
}

func entityName(e *graphics.RenderEntity) string {
	if e == nil || e.Name == "" {
		return "unnamed"
	}
	return e.Name
}
