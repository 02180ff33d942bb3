package backend

import (
	"bytes"
	"strings"
	"text/template"
)

// Param is one wrapper-method parameter.
type Param struct {
	Name string
	Type string
}

// Method describes one neutral wrapper method: one per input bind,
// operation, output bind, or residual method call found in a class.
// Body is filled in per back-end by internal/backend's callers
// (renderscript/cppruntime), never by this package.
type Method struct {
	Name       string
	Params     []Param
	ReturnType string
	Body       string // back-end-specific; empty in the interface rendering
}

var funcs = template.FuncMap{
	"join": func(params []Param) string {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = p.Type + " " + p.Name
		}
		return strings.Join(parts, ", ")
	},
}

const interfaceTemplate = `public interface {{.Name}} {
{{- range .Methods}}
  {{.ReturnType}} {{.Name}}({{join .Params}});
{{- end}}
}
`

const implTemplate = `public class {{.Name}} implements {{.Interface}} {
{{- range .Methods}}
  public {{.ReturnType}} {{.Name}}({{join .Params}}) {
{{.Body}}
  }
{{- end}}
}
`

const selectorTemplate = `{{.WrapperInterface}} {{.FieldName}} = {{.Preferred}}.isAvailable()
    ? new {{.PreferredImpl}}()
    : new {{.SecondaryImpl}}();
`

var (
	ifaceTmpl    = template.Must(template.New("iface").Funcs(funcs).Parse(interfaceTemplate))
	implTmpl     = template.Must(template.New("impl").Funcs(funcs).Parse(implTemplate))
	selectorTmpl = template.Must(template.New("selector").Parse(selectorTemplate))
)

// WrapperInterfaceSource renders the neutral wrapper interface skeleton for
// class, one method per entry in methods.
func WrapperInterfaceSource(class string, methods []Method) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name    string
		Methods []Method
	}{Name: WrapperInterfaceName(class), Methods: methods}
	if err := ifaceTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WrapperImplSource renders one back-end's wrapper implementation
// skeleton, with each Method.Body already filled in by the caller's
// per-operation-kind translator.
func WrapperImplSource(class string, t Target, methods []Method) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Name      string
		Interface string
		Methods   []Method
	}{
		Name:      WrapperImplName(class, t),
		Interface: WrapperInterfaceName(class),
		Methods:   methods,
	}
	if err := implTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// SelectorSource renders the runtime back-end-selection snippet inserted
// into the rewritten host class's field/constructor code: instantiate the
// preferred back-end, falling back to the secondary one if it reports
// itself unavailable.
func SelectorSource(class string, fieldName string, preferred, secondary Target) (string, error) {
	var buf bytes.Buffer
	data := struct {
		WrapperInterface string
		FieldName        string
		Preferred        string
		PreferredImpl    string
		SecondaryImpl    string
	}{
		WrapperInterface: WrapperInterfaceName(class),
		FieldName:        fieldName,
		Preferred:        preferred.String(),
		PreferredImpl:    WrapperImplName(class, preferred),
		SecondaryImpl:    WrapperImplName(class, secondary),
	}
	if err := selectorTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
