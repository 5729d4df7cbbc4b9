// Package opengl implements the renderer backend on OpenGL 4.1 core.
//
// Every call must be made on the thread that owns the GL context.
package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/iris/internal/engine/fault"
	"github.com/Faultbox/iris/internal/engine/graphics"
	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/internal/engine/renderer"
	"github.com/Faultbox/iris/internal/engine/shader"
	"github.com/Faultbox/iris/internal/engine/texture"
	"github.com/Faultbox/iris/pkg/math"
)

// program is a linked material.
type program struct {
	id       uint32
	uniforms map[string]int32
	samplers []int32 // by binding slot
}

// meshBuffers are the GL objects for one mesh.
type meshBuffers struct {
	vao, vbo, ebo uint32
	count         int32
	vertices      *graphics.Vertex // identity of the uploaded slice
	length        int
}

// Backend draws render queues with OpenGL. It also serves as the texture
// factory so that textures unloaded by the manager free their GL storage.
type Backend struct {
	renderer.NopBackend

	log  *zap.Logger
	swap func()

	clearColour math.Colour
	projection  math.Mat4
	view        math.Mat4
	lights      *lighting.Buffer
	wireframe   bool

	meshes   map[*graphics.RenderEntity][]meshBuffers
	seen     map[*graphics.RenderEntity]struct{}
	programs []uint32

	framebuffers []uint32
	restore      func() // undoes the bind of the current pass's target
}

var (
	_ renderer.Backend = (*Backend)(nil)
	_ texture.Factory  = (*Backend)(nil)
)

// New initialises OpenGL and creates a backend. It must be called after the
// GL context is current. swap presents the back buffer.
func New(swap func(), log *zap.Logger) (*Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	log = log.Named("opengl")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	return &Backend{
		log:         log,
		swap:        swap,
		clearColour: math.Colour{R: 0.1, G: 0.1, B: 0.15, A: 1},
		meshes:      make(map[*graphics.RenderEntity][]meshBuffers),
		seen:        make(map[*graphics.RenderEntity]struct{}),
	}, nil
}

// SetClearColour sets the colour the frame is cleared to.
func (b *Backend) SetClearColour(c math.Colour) {
	b.clearColour = c
}

// Resize updates the viewport.
func (b *Backend) Resize(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
	b.log.Debug("viewport resized", zap.Int("width", width), zap.Int("height", height))
}

func (b *Backend) PreRender() error {
	// a frame aborted inside a target pass left its framebuffer bound
	if b.restore != nil {
		b.restore()
		b.restore = nil
	}
	gl.ClearColor(b.clearColour.R, b.clearColour.G, b.clearColour.B, b.clearColour.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	clear(b.seen)
	return nil
}

func (b *Backend) UploadTexture(cmd *renderer.Command) error {
	t := cmd.Texture
	if _, ok := t.Handle.(uint32); ok {
		return nil
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	var pixels unsafe.Pointer
	if len(t.Data) > 0 {
		pixels = unsafe.Pointer(&t.Data[0])
	}
	switch t.Usage {
	case texture.UsageDepth:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, int32(t.Width), int32(t.Height), 0, gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	case texture.UsageData, texture.UsageRenderTarget:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(t.Width), int32(t.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, pixels)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	default:
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.SRGB8_ALPHA8, int32(t.Width), int32(t.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, pixels)
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	t.Handle = id
	b.log.Debug("texture uploaded",
		zap.String("texture", t.Name),
		zap.Uint32("id", id),
		zap.Stringer("usage", t.Usage))
	return nil
}

func (b *Backend) PassStart(cmd *renderer.Command) error {
	b.projection = cmd.Camera.Projection()
	b.view = cmd.Camera.View()
	b.lights = cmd.Lights
	switch {
	case cmd.Target != nil:
		restore, err := b.bindTarget(cmd.Target)
		if err != nil {
			return err
		}
		b.restore = restore
		gl.ClearColor(b.clearColour.R, b.clearColour.G, b.clearColour.B, b.clearColour.A)
		gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	case cmd.Camera.Type == graphics.Orthographic:
		// overlays draw over the world
		gl.Clear(gl.DEPTH_BUFFER_BIT)
	}
	return nil
}

func (b *Backend) PassEnd(*renderer.Command) error {
	if b.restore != nil {
		b.restore()
		b.restore = nil
	}
	return nil
}

// bindTarget binds the framebuffer of rt, creating it on first use, and
// returns a function restoring the previous framebuffer and viewport.
// Attachments are attached on every bind because the texture manager may
// have recreated their storage.
func (b *Backend) bindTarget(rt *renderer.RenderTarget) (func(), error) {
	colour, ok := rt.Colour.Handle.(uint32)
	if !ok {
		return nil, &fault.ResourceError{Op: "bind", Resource: rt.Name, Log: "colour attachment was never uploaded"}
	}
	var depth uint32
	if rt.Depth != nil {
		if depth, ok = rt.Depth.Handle.(uint32); !ok {
			return nil, &fault.ResourceError{Op: "bind", Resource: rt.Name, Log: "depth attachment was never uploaded"}
		}
	}

	var prevFBO int32
	var prevViewport [4]int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prevFBO)
	gl.GetIntegerv(gl.VIEWPORT, &prevViewport[0])
	restore := func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prevFBO))
		gl.Viewport(prevViewport[0], prevViewport[1], prevViewport[2], prevViewport[3])
	}

	fbo, ok := rt.Handle.(uint32)
	if !ok {
		gl.GenFramebuffers(1, &fbo)
		rt.Handle = fbo
		b.framebuffers = append(b.framebuffers, fbo)
		b.log.Debug("render target created", zap.String("target", rt.Name), zap.Uint32("fbo", fbo))
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, colour, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, depth, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		restore()
		return nil, &fault.ResourceError{Op: "bind", Resource: rt.Name, Log: fmt.Sprintf("framebuffer incomplete: 0x%x", status)}
	}

	w, h := rt.Size()
	gl.Viewport(0, 0, int32(w), int32(h))
	return restore, nil
}

func (b *Backend) Draw(cmd *renderer.Command) error {
	p, err := b.link(cmd.Material)
	if err != nil {
		return err
	}

	e := cmd.Entity
	b.seen[e] = struct{}{}
	buffers := b.upload(e)

	gl.UseProgram(p.id)
	b.setMatrix(p, rendergraph.UniformProjection, b.projection)
	b.setMatrix(p, rendergraph.UniformView, b.view)
	b.setMatrix(p, rendergraph.UniformModel, e.Transform())
	b.setMatrix(p, rendergraph.UniformNormalMatrix, e.NormalTransform())
	if b.lights != nil {
		b.setLights(p, b.lights)
	}

	for _, binding := range cmd.Material.Textures {
		id, ok := binding.Texture.Handle.(uint32)
		if !ok {
			return &fault.ResourceError{Op: "bind", Resource: binding.Texture.Name, Log: "texture was never uploaded"}
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(binding.Slot))
		gl.BindTexture(gl.TEXTURE_2D, id)
		gl.Uniform1i(p.samplers[binding.Slot], int32(binding.Slot))
	}

	if e.Wireframe() != b.wireframe {
		b.wireframe = e.Wireframe()
		mode := uint32(gl.FILL)
		if b.wireframe {
			mode = gl.LINE
		}
		gl.PolygonMode(gl.FRONT_AND_BACK, mode)
	}

	mode := uint32(gl.TRIANGLES)
	if e.PrimitiveType() == graphics.LinesPrimitive {
		mode = gl.LINES
	}
	for _, mb := range buffers {
		if mb.count == 0 {
			continue
		}
		gl.BindVertexArray(mb.vao)
		gl.DrawElementsWithOffset(mode, mb.count, gl.UNSIGNED_INT, 0)
	}
	gl.BindVertexArray(0)
	return nil
}

func (b *Backend) Present(*renderer.Command) error {
	if b.swap != nil {
		b.swap()
	}
	return nil
}

// PostRender frees the buffers of entities that were not drawn this frame.
func (b *Backend) PostRender() error {
	for e, buffers := range b.meshes {
		if _, ok := b.seen[e]; ok {
			continue
		}
		for i := range buffers {
			deleteMesh(&buffers[i])
		}
		delete(b.meshes, e)
	}
	return nil
}

// Create implements texture.Factory. Storage is allocated when the texture
// is first uploaded by the render queue.
func (b *Backend) Create(*texture.Texture) error {
	return nil
}

// Destroy implements texture.Factory.
func (b *Backend) Destroy(t *texture.Texture) {
	if id, ok := t.Handle.(uint32); ok {
		gl.DeleteTextures(1, &id)
		t.Handle = nil
	}
}

// Close releases every GL object the backend created.
func (b *Backend) Close() {
	b.log.Info("closing OpenGL backend")
	for e, buffers := range b.meshes {
		for i := range buffers {
			deleteMesh(&buffers[i])
		}
		delete(b.meshes, e)
	}
	for _, id := range b.programs {
		gl.DeleteProgram(id)
	}
	b.programs = nil
	if len(b.framebuffers) > 0 {
		gl.DeleteFramebuffers(int32(len(b.framebuffers)), &b.framebuffers[0])
		b.framebuffers = nil
	}
}

// link returns the program for m, linking it on first use.
func (b *Backend) link(m *rendergraph.Material) (*program, error) {
	if p, ok := m.Handle.(*program); ok {
		return p, nil
	}
	if m.Backend != rendergraph.OpenGL {
		fault.Raise("material for %s drawn by the OpenGL backend", m.Backend)
	}

	id, err := shader.CompileProgram(m.GraphID.String(), m.VertexSource, m.FragmentSource)
	if err != nil {
		return nil, err
	}

	p := &program{
		id:       id,
		uniforms: shader.Uniforms(id, m.Uniforms),
		samplers: make([]int32, len(m.Textures)),
	}
	for _, binding := range m.Textures {
		p.samplers[binding.Slot] = shader.GetUniform(id, binding.Name)
	}
	m.Handle = p
	b.programs = append(b.programs, id)
	b.log.Debug("material linked", zap.Uint32("program", id), zap.Uint64("hash", m.Hash))
	return p, nil
}

func (b *Backend) setMatrix(p *program, name string, m math.Mat4) {
	gl.UniformMatrix4fv(p.uniforms[name], 1, false, m.Ptr())
}

func (b *Backend) setLights(p *program, l *lighting.Buffer) {
	u := p.uniforms
	gl.Uniform4fv(u[rendergraph.UniformAmbient], 1, &l.Ambient[0])
	gl.Uniform1i(u[rendergraph.UniformPointCount], int32(l.PointCount))
	gl.Uniform3fv(u[rendergraph.UniformPointPositions], lighting.MaxPointLights, &l.PointPositions[0])
	gl.Uniform3fv(u[rendergraph.UniformPointColours], lighting.MaxPointLights, &l.PointColours[0])
	gl.Uniform4fv(u[rendergraph.UniformPointFalloff], lighting.MaxPointLights, &l.PointFalloff[0])
	gl.Uniform1i(u[rendergraph.UniformDirectionalCount], int32(l.DirectionalCount))
	gl.Uniform3fv(u[rendergraph.UniformDirectionalDirections], lighting.MaxDirectionalLights, &l.DirectionalDirections[0])
	gl.Uniform3fv(u[rendergraph.UniformDirectionalColours], lighting.MaxDirectionalLights, &l.DirectionalColours[0])
}

// upload returns the buffers for e's meshes, re-uploading any mesh whose
// vertex slice changed since the last frame.
func (b *Backend) upload(e *graphics.RenderEntity) []meshBuffers {
	meshes := e.Meshes()
	buffers := b.meshes[e]
	for len(buffers) > len(meshes) {
		deleteMesh(&buffers[len(buffers)-1])
		buffers = buffers[:len(buffers)-1]
	}
	for len(buffers) < len(meshes) {
		buffers = append(buffers, meshBuffers{})
	}

	for i, m := range meshes {
		mb := &buffers[i]
		if len(m.Vertices) == 0 {
			mb.count = 0
			continue
		}
		if mb.vertices == &m.Vertices[0] && mb.length == len(m.Vertices) {
			continue
		}
		uploadMesh(mb, m)
	}
	b.meshes[e] = buffers
	return buffers
}

func uploadMesh(mb *meshBuffers, m graphics.Mesh) {
	if mb.vao == 0 {
		gl.GenVertexArrays(1, &mb.vao)
		gl.GenBuffers(1, &mb.vbo)
		gl.GenBuffers(1, &mb.ebo)
	}
	gl.BindVertexArray(mb.vao)

	stride := int32(unsafe.Sizeof(graphics.Vertex{}))
	gl.BindBuffer(gl.ARRAY_BUFFER, mb.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(stride), unsafe.Pointer(&m.Vertices[0]), gl.DYNAMIC_DRAW)

	var v graphics.Vertex
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, unsafe.Offsetof(v.Position))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(v.Normal))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 4, gl.FLOAT, false, stride, unsafe.Offsetof(v.Colour))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 2, gl.FLOAT, false, stride, unsafe.Offsetof(v.TexCoord))
	gl.EnableVertexAttribArray(3)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, mb.ebo)
	if len(m.Indices) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, unsafe.Pointer(&m.Indices[0]), gl.DYNAMIC_DRAW)
	}
	gl.BindVertexArray(0)

	mb.count = int32(len(m.Indices))
	mb.vertices = &m.Vertices[0]
	mb.length = len(m.Vertices)
}

func deleteMesh(mb *meshBuffers) {
	if mb.vao != 0 {
		gl.DeleteVertexArrays(1, &mb.vao)
		gl.DeleteBuffers(1, &mb.vbo)
		gl.DeleteBuffers(1, &mb.ebo)
	}
	*mb = meshBuffers{}
}
