package rendergraph

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/texture"
)

// TextureSource resolves texture node paths. texture.Manager implements it.
// Unload gives back a reference taken by Load.
type TextureSource interface {
	Load(path string, usage texture.Usage) (*texture.Texture, error)
	Unload(t *texture.Texture)
}

// Compiler turns graphs into materials for one backend.
type Compiler struct {
	emitter  Emitter
	textures TextureSource
	log      *zap.Logger
}

// NewCompiler creates a compiler. textures may be nil if no graph uses
// unresolved texture nodes.
func NewCompiler(emitter Emitter, textures TextureSource, log *zap.Logger) *Compiler {
	return &Compiler{
		emitter:  emitter,
		textures: textures,
		log:      log.Named("rendergraph"),
	}
}

// Backend returns the backend the compiler emits for.
func (c *Compiler) Backend() Backend {
	return c.emitter.Backend()
}

// EmitterFor returns the emitter for backend.
func EmitterFor(backend Backend) (Emitter, error) {
	switch backend {
	case OpenGL:
		return GLSL{}, nil
	case D3D12:
		return HLSL{}, nil
	case WebGPU:
		return WGSL{}, nil
	default:
		return nil, fmt.Errorf("no emitter for backend %s", backend)
	}
}

// Compile returns the graph's material, compiling it on first use.
//
// A graph with a cycle or a missing input fails with a *fault.CompilationError
// before any texture is loaded. Texture failures return a *fault.ResourceError.
// When a compile fails after loading textures, the references it took are
// released and its texture nodes are left unresolved.
// Compiling an unchanged graph always produces the same source.
func (c *Compiler) Compile(g *Graph) (*Material, error) {
	backend := c.emitter.Backend()
	if m := g.Material(backend); m != nil {
		return m, nil
	}

	colour := g.Colour
	if colour == nil {
		colour = VertexColour()
	}
	roots := []input{{"colour", colour}}
	if g.Normal != nil {
		roots = append(roots, input{"normal", g.Normal})
	}

	order, err := sortNodes(g.Name, roots)
	if err != nil {
		return nil, err
	}

	bindings, loaded, err := c.bindTextures(order)
	if err != nil {
		c.release(loaded)
		return nil, err
	}

	p := newProgram()
	p.Textures = bindings
	names := make(map[Node]string, len(order))
	slots := make(map[*texture.Texture]Binding, len(bindings))
	for _, b := range bindings {
		slots[b.Texture] = b
	}

	for i, n := range order {
		name := fmt.Sprintf("n%d", i)
		names[n] = name
		p.Statements = append(p.Statements, Statement{Name: name, Expr: c.emit(n, names, slots)})
	}
	p.Colour = names[colour]
	if g.Normal != nil {
		p.Normal = names[g.Normal]
	}

	vertex, fragment, err := c.emitter.Program(p)
	if err != nil {
		c.release(loaded)
		return nil, &fault.CompilationError{Graph: g.Name, Reason: err.Error()}
	}

	m := &Material{
		GraphID:        g.ID,
		Backend:        backend,
		VertexSource:   vertex,
		FragmentSource: fragment,
		Textures:       bindings,
		Uniforms:       Uniforms,
		Hash:           sourceHash(vertex, fragment),
	}
	if err := c.emitter.Finalize(m); err != nil {
		c.release(loaded)
		return nil, err
	}

	g.store(m)
	c.log.Debug("graph compiled",
		zap.String("graph", g.Name),
		zap.Stringer("backend", backend),
		zap.Int("nodes", len(order)),
		zap.Int("textures", len(bindings)),
		zap.Uint64("hash", m.Hash))
	return m, nil
}

// sortNodes returns every node reachable from roots with inputs before the
// nodes that use them. Shared nodes appear once.
func sortNodes(graph string, roots []input) ([]Node, error) {
	var (
		order    []Node
		visiting = make(map[Node]bool)
		visited  = make(map[Node]bool)
	)

	var visit func(n Node, path string) error
	visit = func(n Node, path string) error {
		if isNil(n) {
			return &fault.CompilationError{Graph: graph, Node: path, Reason: "missing input"}
		}
		if visited[n] {
			return nil
		}
		if visiting[n] {
			return &fault.CompilationError{Graph: graph, Node: path, Reason: "cycle"}
		}
		visiting[n] = true

		for _, in := range inputs(n) {
			if err := visit(in.node, path+"."+in.name); err != nil {
				return err
			}
		}

		visiting[n] = false
		visited[n] = true
		order = append(order, n)
		return nil
	}

	for _, root := range roots {
		if err := visit(root.node, root.name); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// bindTextures resolves texture nodes and assigns one slot per distinct
// texture in first-seen order. It also returns the nodes it resolved through
// the texture source, including on error.
func (c *Compiler) bindTextures(order []Node) ([]Binding, []*TextureNode, error) {
	var (
		bindings []Binding
		loaded   []*TextureNode
	)
	seen := make(map[*texture.Texture]bool)

	for _, n := range order {
		tn, ok := n.(*TextureNode)
		if !ok {
			continue
		}
		if tn.Texture == nil {
			if c.textures == nil {
				return nil, loaded, &fault.ResourceError{Op: "load", Resource: tn.Path, Err: errors.New("no texture source")}
			}
			tex, err := c.textures.Load(tn.Path, tn.Usage)
			if err != nil {
				var re *fault.ResourceError
				if errors.As(err, &re) {
					return nil, loaded, err
				}
				return nil, loaded, &fault.ResourceError{Op: "load", Resource: tn.Path, Err: err}
			}
			tn.Texture = tex
			loaded = append(loaded, tn)
		}
		if seen[tn.Texture] {
			continue
		}
		seen[tn.Texture] = true
		slot := len(bindings)
		bindings = append(bindings, Binding{Slot: slot, Name: fmt.Sprintf("texture%d", slot), Texture: tn.Texture})
	}
	return bindings, loaded, nil
}

// release unloads the textures of nodes and clears them so the next compile
// loads them again.
func (c *Compiler) release(nodes []*TextureNode) {
	for _, tn := range nodes {
		c.textures.Unload(tn.Texture)
		tn.Texture = nil
	}
	if len(nodes) > 0 {
		c.log.Debug("released textures of failed compile", zap.Int("textures", len(nodes)))
	}
}

// emit returns the expression for n. Its inputs are already named.
func (c *Compiler) emit(n Node, names map[Node]string, slots map[*texture.Texture]Binding) string {
	e := c.emitter
	switch n := n.(type) {
	case *ColourNode:
		return e.Colour(n.Colour)
	case *TextureNode:
		return e.Texture(slots[n.Texture])
	case *ArithmeticNode:
		return e.Arithmetic(n.Op, names[n.A], names[n.B])
	case *InvertNode:
		return e.Invert(names[n.Input])
	case *MixNode:
		return e.Mix(names[n.A], names[n.B], names[n.Factor])
	case *VertexColourNode:
		return e.VertexColour()
	default:
		fault.Raise("rendergraph: unknown node %T", n)
		return ""
	}
}
