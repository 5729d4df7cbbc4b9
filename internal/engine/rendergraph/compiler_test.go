package rendergraph

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/resource"
	"github.com/Faultbox/iris/internal/engine/texture"
	"github.com/Faultbox/iris/pkg/math"
)

// countingSource hands out one texture per path and counts lookups and
// references.
type countingSource struct {
	calls    map[string]int
	refs     map[string]int
	textures map[string]*texture.Texture
	fail     error
	failPath string
}

func newCountingSource() *countingSource {
	return &countingSource{
		calls:    make(map[string]int),
		refs:     make(map[string]int),
		textures: make(map[string]*texture.Texture),
	}
}

func (s *countingSource) Load(path string, usage texture.Usage) (*texture.Texture, error) {
	s.calls[path]++
	if s.fail != nil && (s.failPath == "" || s.failPath == path) {
		return nil, s.fail
	}
	s.refs[path]++
	if t, ok := s.textures[path]; ok {
		return t, nil
	}
	t := &texture.Texture{ID: uint32(len(s.textures) + 1), Name: path, Usage: usage, Width: 1, Height: 1}
	s.textures[path] = t
	return t, nil
}

func (s *countingSource) Unload(t *texture.Texture) {
	s.refs[t.Name]--
}

func newGLSLCompiler(src TextureSource) *Compiler {
	return NewCompiler(GLSL{}, src, zap.NewNop())
}

func TestCompileIsIdempotent(t *testing.T) {
	src := newCountingSource()
	c := newGLSLCompiler(src)

	g := New("brick")
	g.Colour = Mix(Texture("brick.png"), Colour(math.Red), Colour(math.Colour{R: 0.25, G: 0.25, B: 0.25, A: 1}))
	g.Normal = TextureData("brick_n.png")

	first, err := c.Compile(g)
	require.NoError(t, err)

	again, err := c.Compile(g)
	require.NoError(t, err)
	assert.Same(t, first, again, "compiled material is cached on the graph")

	g.Invalidate()
	assert.Nil(t, g.Material(OpenGL))

	second, err := c.Compile(g)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.VertexSource, second.VertexSource)
	assert.Equal(t, first.FragmentSource, second.FragmentSource)
	assert.Equal(t, first.Hash, second.Hash)

	// texture nodes keep their resolved texture across recompiles
	assert.Equal(t, 1, src.calls["brick.png"])
	assert.Equal(t, 1, src.calls["brick_n.png"])
}

func TestCompileTextureLoadedOnceFromManager(t *testing.T) {
	mem := resource.NewMemory()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	require.NoError(t, png.Encode(&buf, img))
	mem.Set("foo.png", buf.Bytes())

	manager := texture.NewManager(mem, nil, zap.NewNop())
	c := newGLSLCompiler(manager)

	// two graphs, each with its own node for the same path
	a := New("a")
	a.Colour = Texture("foo.png")
	b := New("b")
	b.Colour = Texture("foo.png")

	ma, err := c.Compile(a)
	require.NoError(t, err)
	a.Invalidate()
	_, err = c.Compile(a)
	require.NoError(t, err)
	mb, err := c.Compile(b)
	require.NoError(t, err)

	assert.Equal(t, 1, mem.Loads("foo.png"))
	assert.Same(t, ma.Textures[0].Texture, mb.Textures[0].Texture)
}

func TestCompileSharedNodesEmittedOnce(t *testing.T) {
	src := newCountingSource()
	c := newGLSLCompiler(src)

	tex := Texture("foo.png")
	other := Texture("foo.png") // same path, resolves to the same texture
	g := New("shared")
	g.Colour = Mix(tex, Invert(tex), Arithmetic(Multiply, other, Colour(math.White)))

	m, err := c.Compile(g)
	require.NoError(t, err)

	// tex is used twice but sampled once; other is a separate node
	assert.Equal(t, 2, strings.Count(m.FragmentSource, "= texture(texture0, frag_uv);"))
	assert.Equal(t, 2, src.calls["foo.png"], "one lookup per unresolved node")
	require.Len(t, m.Textures, 1)
	assert.Equal(t, 0, m.Textures[0].Slot)
	assert.Equal(t, "texture0", m.Textures[0].Name)
	assert.Equal(t, 1, strings.Count(m.FragmentSource, "uniform sampler2D"))

	// tex, invert, other, colour, multiply, mix
	assert.Equal(t, 6, strings.Count(m.FragmentSource, "    vec4 n"))
}

func TestCompileOrdersInputsFirst(t *testing.T) {
	src := newCountingSource()
	c := newGLSLCompiler(src)

	red := Colour(math.Red)
	sum := Arithmetic(Add, red, VertexColour())
	g := New("ordered")
	g.Colour = Invert(sum)

	m, err := c.Compile(g)
	require.NoError(t, err)

	want := []string{
		"vec4 n0 = vec4(1.0, 0.0, 0.0, 1.0);",
		"vec4 n1 = frag_colour;",
		"vec4 n2 = (n0 + n1);",
		"vec4 n3 = vec4(vec3(1.0) - n2.rgb, n2.a);",
		"vec4 base = n3;",
	}
	last := -1
	for _, line := range want {
		idx := strings.Index(m.FragmentSource, line)
		require.GreaterOrEqual(t, idx, 0, "missing %q in\n%s", line, m.FragmentSource)
		assert.Greater(t, idx, last, "%q out of order", line)
		last = idx
	}
}

func TestCompileDefaultsToVertexColour(t *testing.T) {
	c := newGLSLCompiler(nil)

	m, err := c.Compile(New("default"))
	require.NoError(t, err)

	assert.Contains(t, m.FragmentSource, "vec4 n0 = frag_colour;")
	assert.Empty(t, m.Textures)
	assert.Equal(t, Uniforms, m.Uniforms)
}

func TestCompileMalformedGraphs(t *testing.T) {
	cyclic := func() *Graph {
		a := Arithmetic(Add, Colour(math.Red), nil)
		b := Invert(a)
		a.B = Mix(b, Texture("never.png"), Colour(math.Black))
		g := New("cyclic")
		g.Colour = b
		return g
	}
	missing := func() *Graph {
		g := New("missing")
		g.Colour = Arithmetic(Subtract, Texture("never.png"), nil)
		return g
	}
	typedNil := func() *Graph {
		var n *ColourNode
		g := New("typed-nil")
		g.Colour = Mix(Colour(math.Red), n, Colour(math.Red))
		return g
	}

	tests := []struct {
		name   string
		graph  *Graph
		node   string
		reason string
	}{
		{"cycle", cyclic(), "colour.input.b.a", "cycle"},
		{"missing input", missing(), "colour.b", "missing input"},
		{"typed nil input", typedNil(), "colour.b", "missing input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newCountingSource()
			c := newGLSLCompiler(src)

			m, err := c.Compile(tt.graph)
			assert.Nil(t, m)

			var ce *fault.CompilationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.reason, ce.Reason)
			assert.Equal(t, tt.node, ce.Node)
			assert.Equal(t, tt.graph.Name, ce.Graph)

			// fails before any texture is touched
			assert.Empty(t, src.calls)
			assert.Nil(t, tt.graph.Material(OpenGL))
		})
	}
}

func TestCompileTextureErrors(t *testing.T) {
	g := New("broken")
	g.Colour = Texture("missing.png")

	src := newCountingSource()
	src.fail = errors.New("disk on fire")
	_, err := newGLSLCompiler(src).Compile(g)
	var re *fault.ResourceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "missing.png", re.Resource)

	_, err = newGLSLCompiler(nil).Compile(g)
	require.ErrorAs(t, err, &re)

	manager := texture.NewManager(resource.NewMemory(), nil, zap.NewNop())
	_, err = newGLSLCompiler(manager).Compile(g)
	require.ErrorAs(t, err, &re)
	assert.Nil(t, g.Material(OpenGL))
}

func TestCompileReleasesTexturesOnFailure(t *testing.T) {
	first := Texture("first.png")
	g := New("half loaded")
	g.Colour = Mix(first, Texture("second.png"), Colour(math.White))

	src := newCountingSource()
	src.fail = errors.New("corrupt")
	src.failPath = "second.png"
	c := newGLSLCompiler(src)

	_, err := c.Compile(g)
	var re *fault.ResourceError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, "second.png", re.Resource)
	assert.Equal(t, 1, src.calls["first.png"])
	assert.Zero(t, src.refs["first.png"], "the reference taken before the failure is given back")
	assert.Nil(t, first.Texture)

	src.fail = nil
	m, err := c.Compile(g)
	require.NoError(t, err)
	assert.Len(t, m.Textures, 2)
	assert.Equal(t, 1, src.refs["first.png"])
	assert.Equal(t, 1, src.refs["second.png"])
}

func TestCompileTextureFrom(t *testing.T) {
	tex := &texture.Texture{ID: 9, Name: "preloaded"}
	g := New("preloaded")
	g.Colour = TextureFrom(tex)

	m, err := newGLSLCompiler(nil).Compile(g)
	require.NoError(t, err)
	require.Len(t, m.Textures, 1)
	assert.Same(t, tex, m.Textures[0].Texture)
}

func TestCompilePerBackendCache(t *testing.T) {
	g := New("multi")
	g.Colour = Colour(math.Blue)

	gl, err := newGLSLCompiler(nil).Compile(g)
	require.NoError(t, err)
	dx, err := NewCompiler(HLSL{}, nil, zap.NewNop()).Compile(g)
	require.NoError(t, err)

	assert.Same(t, gl, g.Material(OpenGL))
	assert.Same(t, dx, g.Material(D3D12))
	assert.NotEqual(t, gl.Hash, dx.Hash)
	assert.Equal(t, g.ID, dx.GraphID)
}

func TestEmitterFor(t *testing.T) {
	for _, b := range []Backend{OpenGL, D3D12, WebGPU} {
		e, err := EmitterFor(b)
		require.NoError(t, err)
		assert.Equal(t, b, e.Backend())
	}
	_, err := EmitterFor(Backend(99))
	assert.Error(t, err)
}
