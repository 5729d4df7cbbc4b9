package graphics

import (
	"github.com/Faultbox/iris/internal/engine/rendergraph"
	"github.com/Faultbox/iris/pkg/math"
)

// CameraType selects the camera an entity is drawn with.
type CameraType uint8

const (
	Perspective CameraType = iota
	Orthographic
)

func (c CameraType) String() string {
	switch c {
	case Perspective:
		return "perspective"
	case Orthographic:
		return "orthographic"
	default:
		return "unknown"
	}
}

// PrimitiveType selects how mesh indices are assembled.
type PrimitiveType uint8

const (
	Triangles PrimitiveType = iota
	LinesPrimitive
)

// RenderEntity is a renderable instance of one or more meshes.
//
// The model and normal matrices are recomputed by every transform setter, so
// they always reflect the current position, orientation and scale.
type RenderEntity struct {
	Name string

	meshes      []Mesh
	position    math.Vec3
	orientation math.Quat
	scale       math.Vec3
	model       math.Mat4
	normal      math.Mat4

	material      *rendergraph.Material
	wireframe     bool
	cameraType    CameraType
	primitiveType PrimitiveType
	receiveShadow bool
	skeleton      *Skeleton
}

// NewRenderEntity creates an entity drawn with the perspective camera.
func NewRenderEntity(meshes []Mesh, position math.Vec3, orientation math.Quat, scale math.Vec3) *RenderEntity {
	e := &RenderEntity{
		meshes:        meshes,
		position:      position,
		orientation:   orientation,
		scale:         scale,
		cameraType:    Perspective,
		primitiveType: Triangles,
		receiveShadow: true,
	}
	e.update()
	return e
}

// update recomputes the model and normal matrices.
func (e *RenderEntity) update() {
	e.model = math.TRS(e.position, e.orientation, e.scale)
	e.normal = math.NormalMatrix(e.model)
}

func (e *RenderEntity) Position() math.Vec3    { return e.position }
func (e *RenderEntity) Orientation() math.Quat { return e.orientation }
func (e *RenderEntity) Scale() math.Vec3       { return e.scale }

// SetPosition moves the entity.
func (e *RenderEntity) SetPosition(p math.Vec3) {
	e.position = p
	e.update()
}

// SetOrientation rotates the entity.
func (e *RenderEntity) SetOrientation(q math.Quat) {
	e.orientation = q
	e.update()
}

// SetScale scales the entity.
func (e *RenderEntity) SetScale(s math.Vec3) {
	e.scale = s
	e.update()
}

// Transform returns the model matrix.
func (e *RenderEntity) Transform() math.Mat4 {
	return e.model
}

// SetTransform replaces the model matrix directly. Position, orientation and
// scale are left as they were; the next component setter rebuilds the model
// matrix from them.
func (e *RenderEntity) SetTransform(m math.Mat4) {
	e.model = m
	e.normal = math.NormalMatrix(m)
}

// NormalTransform returns the matrix used to transform normals.
func (e *RenderEntity) NormalTransform() math.Mat4 {
	return e.normal
}

func (e *RenderEntity) Meshes() []Mesh { return e.meshes }

// SetMeshes replaces the entity's meshes.
func (e *RenderEntity) SetMeshes(meshes []Mesh) {
	e.meshes = meshes
}

// Material returns the compiled material the entity is drawn with, if any.
func (e *RenderEntity) Material() *rendergraph.Material { return e.material }

func (e *RenderEntity) SetMaterial(m *rendergraph.Material) { e.material = m }

func (e *RenderEntity) Wireframe() bool            { return e.wireframe }
func (e *RenderEntity) SetWireframe(on bool)       { e.wireframe = on }
func (e *RenderEntity) CameraType() CameraType     { return e.cameraType }
func (e *RenderEntity) SetCameraType(c CameraType) { e.cameraType = c }

func (e *RenderEntity) PrimitiveType() PrimitiveType     { return e.primitiveType }
func (e *RenderEntity) SetPrimitiveType(p PrimitiveType) { e.primitiveType = p }

func (e *RenderEntity) ReceivesShadow() bool     { return e.receiveShadow }
func (e *RenderEntity) SetReceiveShadow(on bool) { e.receiveShadow = on }

// Skeleton returns the entity's skeleton, or nil for static meshes.
func (e *RenderEntity) Skeleton() *Skeleton { return e.skeleton }

func (e *RenderEntity) SetSkeleton(s *Skeleton) { e.skeleton = s }
