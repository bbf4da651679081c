package synthesizer

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/mimicgo/mimic/internal/errors"
	"github.com/mimicgo/mimic/internal/models"
)

// TemplateRegistry provides a centralized way to access all generation templates
type TemplateRegistry struct {
	templates map[string]*template.Template
}

// NewTemplateRegistry creates a new template registry with all templates parsed
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]*template.Template),
	}

	registry.register("double", doubleTemplate)
	registry.register("method", methodTemplate)
	registry.register("proxy-method", proxyMethodTemplate)
	registry.register("forbidden-method", forbiddenMethodTemplate)
	registry.register("metadata", metadataTemplate)
	registry.register("registration", registrationTemplate)
	registry.register("placeholder", placeholderTemplate)
	registry.register("marker", markerTemplate)

	return registry
}

func (tr *TemplateRegistry) register(name, text string) {
	tr.templates[name] = template.Must(template.New(name).Parse(text))
}

// Render executes a named template against data
func (tr *TemplateRegistry) Render(name string, data interface{}) (string, error) {
	tmpl, exists := tr.templates[name]
	if !exists {
		return "", errors.Newf(errors.TemplateErrorCode, "template not found: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrapf(errors.TemplateErrorCode, err, "failed to execute template %s", name)
	}
	return buf.String(), nil
}

// doubleData feeds the double declaration and constructor templates
type doubleData struct {
	DoubleName         string
	TargetName         string
	Qualified          string
	KindConst          string
	MetadataVar        string
	IsStructTarget     bool
	Constructor        string
	NoReturns          bool
	EmbedErrorCore     bool
	EmbedTraversalCore bool
	AssertTarget       bool
	AssertError        bool
	AssertIterator     bool
}

// returnData describes one result slot of a generated method body
type returnData struct {
	Index int
	Type  string
	IsAny bool
}

// methodData feeds the per-method body templates
type methodData struct {
	DoubleName  string
	TargetName  string
	Name        string
	ParamDecl   string
	ArgList     string
	ForwardArgs string
	ReturnDecl  string
	Returns     []returnData
	ReturnNames string
	HasReturns  bool
}

// metadataData feeds the ConfigurableMethod slice template
type metadataData struct {
	MetadataVar string
	Methods     []models.ConfigurableMethod
}

// markerData feeds the intersection marker interface template
type markerData struct {
	MarkerName string
	Interfaces []string
}

const doubleTemplate = `// {{.DoubleName}} is a generated test double for {{.TargetName}}.
type {{.DoubleName}} struct {
{{- if .IsStructTarget}}
	*{{.TargetName}}
{{- end}}
{{- if .EmbedErrorCore}}
	mimic.ErrorCore
{{- end}}
{{- if .EmbedTraversalCore}}
	mimic.TraversalCore
{{- end}}
	control *mimic.Double
}

{{if .AssertTarget}}var _ {{.TargetName}} = (*{{.DoubleName}})(nil)
{{end -}}
{{if .AssertError}}var _ error = (*{{.DoubleName}})(nil)
{{end -}}
{{if .AssertIterator}}var _ mimic.Iterator = (*{{.DoubleName}})(nil)
{{end}}
// New{{.DoubleName}} creates the double and attaches its control plane.
func New{{.DoubleName}}(t mimic.TestingT, opts ...mimic.Option) *{{.DoubleName}} {
	d := &{{.DoubleName}}{}
{{- if .NoReturns}}
	opts = append([]mimic.Option{mimic.WithReturnGeneration(false)}, opts...)
{{- end}}
	d.control = mimic.NewDouble(t, "{{.DoubleName}}", {{.MetadataVar}}, opts...)
{{- if .IsStructTarget}}
	d.{{.TargetName}}, _ = d.control.Target().(*{{.TargetName}})
{{- end}}
{{- if .EmbedErrorCore}}
	d.ErrorCore = mimic.NewErrorCore("{{.DoubleName}}")
{{- end}}
	return d
}

// Mimic exposes the double's control plane for configuration and verification.
func (d *{{.DoubleName}}) Mimic() *mimic.Double { return d.control }
`

const methodTemplate = `func (d *{{.DoubleName}}) {{.Name}}({{.ParamDecl}}) {{.ReturnDecl}} {
{{- if .HasReturns}}
	rets := d.control.Invoke("{{.Name}}"{{if .ArgList}}, {{.ArgList}}{{end}})
{{- range .Returns}}
{{- if .IsAny}}
	r{{.Index}} := rets[{{.Index}}]
{{- else}}
	r{{.Index}}, _ := rets[{{.Index}}].({{.Type}})
{{- end}}
{{- end}}
	return {{.ReturnNames}}
{{- else}}
	d.control.Invoke("{{.Name}}"{{if .ArgList}}, {{.ArgList}}{{end}})
{{- end}}
}
`

const proxyMethodTemplate = `// {{.Name}} forwards to the embedded target's real implementation.
func (d *{{.DoubleName}}) {{.Name}}({{.ParamDecl}}) {{.ReturnDecl}} {
	if d.{{.TargetName}} == nil {
		d.control.MissingTarget("{{.Name}}")
{{- range .Returns}}
		var r{{.Index}} {{.Type}}
{{- end}}
{{- if .HasReturns}}
		return {{.ReturnNames}}
{{- else}}
		return
{{- end}}
	}
	{{if .HasReturns}}return {{end}}d.{{.TargetName}}.{{.Name}}({{.ForwardArgs}})
}
`

const forbiddenMethodTemplate = `// {{.Name}} fails the test: this double's state cannot be copied.
func (d *{{.DoubleName}}) {{.Name}}({{.ParamDecl}}) {{.ReturnDecl}} {
	d.control.Forbidden("{{.Name}}")
{{- range .Returns}}
	var r{{.Index}} {{.Type}}
{{- end}}
{{- if .HasReturns}}
	return {{.ReturnNames}}
{{- end}}
}
`

const metadataTemplate = `var {{.MetadataVar}} = []mimic.ConfigurableMethod{
{{- range .Methods}}
	{Name: "{{.Name}}", ParamCount: {{.ParamCount}}, Variadic: {{.Variadic}}, ParamTypes: []string{ {{- range $i, $p := .ParamTypes}}{{if $i}}, {{end}}"{{$p}}"{{end -}} }, Returns: []string{ {{- range $i, $r := .Returns}}{{if $i}}, {{end}}"{{$r}}"{{end -}} }},
{{- end}}
}
`

const registrationTemplate = `func init() {
	mimic.DefaultDoubleRegistry.Register(mimic.DoubleFactory{
		Name:    "{{.DoubleName}}",
		Target:  "{{.Qualified}}",
		Kind:    mimic.{{.KindConst}},
		Methods: {{.MetadataVar}},
		New: func(t mimic.TestingT, opts ...mimic.Option) mimic.Configurable {
			return New{{.DoubleName}}(t, opts...)
		},
{{- if .Constructor}}
		Construct: func(args []any) (any, error) {
			return mimic.CallConstructor({{.Constructor}}, args)
		},
{{- end}}
	})
}
`

const placeholderTemplate = `// {{.TargetName}} is a placeholder for an ad hoc doubled type.
type {{.TargetName}} interface{}
`

const markerTemplate = `// {{.MarkerName}} is a generated marker interface combining its embeds.
type {{.MarkerName}} interface {
{{- range .Interfaces}}
	{{.}}
{{- end}}
}
`

// newMethodData builds the template payload for one descriptor
func newMethodData(doubleName, targetName string, desc models.MethodDescriptor) methodData {
	data := methodData{
		DoubleName: doubleName,
		TargetName: targetName,
		Name:       desc.Name,
		ParamDecl:  desc.ParamDecl(),
		ArgList:    desc.ArgList(),
		ReturnDecl: desc.ReturnDecl(),
		HasReturns: len(desc.Returns) > 0,
	}

	forward := make([]string, 0, len(desc.Params))
	for _, p := range desc.Params {
		if p.Variadic {
			forward = append(forward, p.Name+"...")
		} else {
			forward = append(forward, p.Name)
		}
	}
	data.ForwardArgs = strings.Join(forward, ", ")

	names := make([]string, 0, len(desc.Returns))
	for i, ret := range desc.Returns {
		data.Returns = append(data.Returns, returnData{
			Index: i,
			Type:  ret,
			IsAny: ret == "any" || ret == "interface{}",
		})
		names = append(names, "r"+strconv.Itoa(i))
	}
	data.ReturnNames = strings.Join(names, ", ")

	return data
}

// metadataVarName derives the unexported metadata variable name for a double
func metadataVarName(doubleName string) string {
	cleaned := strings.ReplaceAll(doubleName, "_", "")
	return strings.ToLower(cleaned[:1]) + cleaned[1:] + "Methods"
}
