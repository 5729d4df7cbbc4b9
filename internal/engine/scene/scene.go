// Package scene holds the render entities, render graphs and lights that make
// up what is drawn each frame.
package scene

import (
	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/pkg/math"
)

// Entry pairs an entity with the graph it is drawn with.
type Entry struct {
	Graph  *rendergraph.Graph
	Entity *graphics.RenderEntity
}

// Scene owns entities, render graphs and a lighting rig.
//
// Pointers returned by the Add methods stay valid until the matching Remove.
// Scene is not safe for concurrent use.
type Scene struct {
	entries      []Entry
	graphs       []*rendergraph.Graph
	defaultGraph *rendergraph.Graph
	rig          *lighting.Rig
}

// New creates an empty scene with a white ambient light.
func New() *Scene {
	return &Scene{
		defaultGraph: rendergraph.New("default"),
		rig:          lighting.NewRig(),
	}
}

// AddGraph takes ownership of g and returns it for use with Add.
func (s *Scene) AddGraph(g *rendergraph.Graph) *rendergraph.Graph {
	s.graphs = append(s.graphs, g)
	return g
}

// Graphs returns the graphs added with AddGraph.
func (s *Scene) Graphs() []*rendergraph.Graph {
	return s.graphs
}

// DefaultGraph returns the graph used by entities added without one. It
// renders vertex colours.
func (s *Scene) DefaultGraph() *rendergraph.Graph {
	return s.defaultGraph
}

// Add takes ownership of e and binds it to g. A nil g binds the default graph
// and turns off shadow receiving for e.
func (s *Scene) Add(g *rendergraph.Graph, e *graphics.RenderEntity) *graphics.RenderEntity {
	if g == nil {
		g = s.defaultGraph
		e.SetReceiveShadow(false)
	}
	s.entries = append(s.entries, Entry{Graph: g, Entity: e})
	return e
}

// Remove deletes e from the scene. Removing an entity that is not present is a
// no-op.
func (s *Scene) Remove(e *graphics.RenderEntity) {
	for i, entry := range s.entries {
		if entry.Entity == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// RenderGraph returns the graph e is drawn with. Asking for an entity that is
// not in the scene is a programmer error and raises a fault.
func (s *Scene) RenderGraph(e *graphics.RenderEntity) *rendergraph.Graph {
	for _, entry := range s.entries {
		if entry.Entity == e {
			return entry.Graph
		}
	}
	fault.Raise("entity %q not in scene", e.Name)
	return nil
}

// Entities returns the scene contents in insertion order. The slice must not
// be modified.
func (s *Scene) Entities() []Entry {
	return s.entries
}

// AddPointLight takes ownership of l.
func (s *Scene) AddPointLight(l *lighting.PointLight) *lighting.PointLight {
	return s.rig.AddPoint(l)
}

// AddDirectionalLight takes ownership of l.
func (s *Scene) AddDirectionalLight(l *lighting.DirectionalLight) *lighting.DirectionalLight {
	return s.rig.AddDirectional(l)
}

// RemovePointLight removes l by identity.
func (s *Scene) RemovePointLight(l *lighting.PointLight) {
	s.rig.RemovePoint(l)
}

// RemoveDirectionalLight removes l by identity.
func (s *Scene) RemoveDirectionalLight(l *lighting.DirectionalLight) {
	s.rig.RemoveDirectional(l)
}

// AmbientLight returns the ambient light colour.
func (s *Scene) AmbientLight() math.Colour {
	return s.rig.Ambient.Colour
}

// SetAmbientLight sets the ambient light colour.
func (s *Scene) SetAmbientLight(c math.Colour) {
	s.rig.Ambient.Colour = c
}

// LightingRig returns the scene's lights.
func (s *Scene) LightingRig() *lighting.Rig {
	return s.rig
}
