package app

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/physics"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/pkg/math"
)

// Demo is the sample scene: a ground slab, a stack of crates, a pendulum, a
// trigger volume, a character and a HUD quad.
type Demo struct {
	Ground    *physics.RigidBody
	Crates    []*physics.RigidBody
	Anchor    *physics.RigidBody
	Bob       *physics.RigidBody
	Rope      *physics.Constraint
	Trigger   *physics.RigidBody
	Character *physics.CharacterController
	HUD       *graphics.RenderEntity
}

const crateCount = 5

// Populate fills the app's scene and physics world with the demo.
func Populate(a *App) *Demo {
	s := a.engine.Scene
	world := a.engine.Physics
	d := &Demo{}

	ground := s.AddGraph(rendergraph.New("ground"))
	ground.Colour = rendergraph.Arithmetic(rendergraph.Multiply,
		rendergraph.VertexColour(),
		rendergraph.Colour(math.RGB(0.6, 0.6, 0.55)))

	crate := s.AddGraph(rendergraph.New("crate"))
	crate.Colour = rendergraph.Mix(
		rendergraph.Colour(math.RGB(0.8, 0.5, 0.2)),
		rendergraph.TextureFrom(a.engine.Textures.Blank()),
		rendergraph.Colour(math.RGB(0.25, 0.25, 0.25)))

	hud := s.AddGraph(rendergraph.New("hud"))
	hud.Colour = rendergraph.Invert(rendergraph.Colour(math.RGB(0.9, 0.9, 0.8)))

	box := func(g *rendergraph.Graph, half math.Vec3, mass float32, pos math.Vec3, colour math.Colour) *physics.RigidBody {
		body := world.Add(physics.NewRigidBody(physics.BodyDesc{
			Shape:    physics.Box{HalfExtents: half},
			Mass:     mass,
			Position: pos,
			Friction: 0.8,
		}))
		e := graphics.NewRenderEntity([]graphics.Mesh{graphics.Cube(colour)}, pos, math.QuatIdentity(), half.Scale(2))
		a.Bind(body, s.Add(g, e))
		return body
	}

	d.Ground = box(ground, math.Vec3{X: 20, Y: 0.5, Z: 20}, 0, math.Vec3{Y: -0.5}, math.White)
	for i := 0; i < crateCount; i++ {
		pos := math.Vec3{X: -3, Y: 0.5 + float32(i)*1.05, Z: 0}
		d.Crates = append(d.Crates, box(crate, math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, 1, pos, math.White))
	}

	d.Anchor = box(crate, math.Vec3{X: 0.2, Y: 0.2, Z: 0.2}, 0, math.Vec3{X: 3, Y: 6}, math.Red)
	d.Bob = box(crate, math.Vec3{X: 0.4, Y: 0.4, Z: 0.4}, 2, math.Vec3{X: 6, Y: 6}, math.Blue)
	d.Rope = world.AddConstraint(physics.NewDistanceConstraint(d.Anchor, d.Bob, math.Zero, math.Zero))

	d.Trigger = world.Add(physics.NewRigidBody(physics.BodyDesc{
		Type:     physics.Ghost,
		Shape:    physics.Box{HalfExtents: math.Vec3{X: 2, Y: 1, Z: 2}},
		Position: math.Vec3{X: 3, Y: 1},
	}))
	world.IgnoreInRayCast(d.Trigger)

	d.Character = world.AddCharacter(physics.NewCharacterController(math.Vec3{Z: 4, Y: 1}, 0.4, 1.8, 70))
	body := d.Character.Body()
	avatar := graphics.NewRenderEntity([]graphics.Mesh{graphics.Cube(math.Green)}, body.Position(), math.QuatIdentity(), math.Vec3{X: 0.8, Y: 1.8, Z: 0.8})
	avatar.Name = "character"
	a.Bind(body, s.Add(crate, avatar))

	if ortho := a.Cameras.Orthographic; ortho != nil {
		// top left corner, facing the camera
		pos := math.Vec3{X: -ortho.Width/2 + 60, Y: ortho.Height/2 - 30}
		d.HUD = graphics.NewRenderEntity([]graphics.Mesh{graphics.Plane(math.White)},
			pos, math.QuatFromAxisAngle(math.UnitX, math32.Pi/2), math.Vec3{X: 100, Y: 1, Z: 40})
		d.HUD.Name = "hud"
		d.HUD.SetCameraType(graphics.Orthographic)
		s.Add(hud, d.HUD)
	}

	s.SetAmbientLight(math.RGB(0.2, 0.2, 0.25))
	s.AddDirectionalLight(lighting.NewDirectionalLight(lighting.FromAngles(45, 60).Neg(), math.RGB(1, 0.95, 0.85)))
	s.AddPointLight(lighting.NewPointLight(math.Vec3{X: 3, Y: 4, Z: 3}, math.RGB(0.9, 0.6, 0.3)))

	return d
}
