package rendergraph

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"github.com/Faultbox/iris/internal/engine/lighting"
	"github.com/Faultbox/iris/pkg/math"
)

// Emitter generates shader code for one backend. The compiler calls one
// method per node kind with the expressions of the node's already emitted
// inputs, then Program to assemble the final sources, then Finalize.
type Emitter interface {
	Backend() Backend

	Colour(c math.Colour) string
	Texture(b Binding) string
	Arithmetic(op ArithmeticOp, a, b string) string
	Invert(in string) string
	Mix(a, b, factor string) string
	VertexColour() string

	Program(p Program) (vertex, fragment string, err error)
	Finalize(m *Material) error
}

// Statement assigns the value of one node to a local.
type Statement struct {
	Name string
	Expr string
}

// Program is the compiled body of a graph, handed to Emitter.Program.
type Program struct {
	Statements []Statement
	Colour     string // Local holding the surface colour
	Normal     string // Local holding the normal, empty when unset
	Textures   []Binding

	MaxPointLights       int
	MaxDirectionalLights int
}

//go:embed templates
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	// WGSL binds each texture and its sampler to consecutive slots
	"twice":        func(i int) int { return i * 2 },
	"twicePlusOne": func(i int) int { return i*2 + 1 },
}

// shaderTemplates holds the vertex and fragment templates of one language.
type shaderTemplates struct {
	vertex   *template.Template
	fragment *template.Template
}

func loadTemplates(lang string) shaderTemplates {
	parse := func(stage string) *template.Template {
		name := fmt.Sprintf("%s.%s.tmpl", lang, stage)
		return template.Must(template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/"+name))
	}
	return shaderTemplates{vertex: parse("vertex"), fragment: parse("fragment")}
}

func (t shaderTemplates) execute(p Program) (vertex, fragment string, err error) {
	var vs, fs bytes.Buffer
	if err := t.vertex.Execute(&vs, p); err != nil {
		return "", "", fmt.Errorf("vertex template: %w", err)
	}
	if err := t.fragment.Execute(&fs, p); err != nil {
		return "", "", fmt.Errorf("fragment template: %w", err)
	}
	return vs.String(), fs.String(), nil
}

func newProgram() Program {
	return Program{
		MaxPointLights:       lighting.MaxPointLights,
		MaxDirectionalLights: lighting.MaxDirectionalLights,
	}
}

// literal formats v as a shader float literal, always with a decimal point.
func literal(v float32) string {
	s := strconv.FormatFloat(float64(v), 'f', -1, 32)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

func operator(op ArithmeticOp) string {
	switch op {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	default:
		return "/"
	}
}

func arithmetic(op ArithmeticOp, a, b string) string {
	return fmt.Sprintf("(%s %s %s)", a, operator(op), b)
}
