package forms

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"

	"gopkg.in/yaml.v3"
)

// Renderer writes a model to some display surface.
type Renderer interface {
	Render(w io.Writer, m Model) error
}

const formsTemplate = `{{define "forms"}}
{{- if .Empty}}<p class="text-danger">{{.Message}}</p>
{{- else}}{{range .Groups}}
<section class="forms-group group-{{.Kind}}">
  <h5>{{.Title}}</h5>
  {{- range .Forms}}
  <details class="card fn-card" id="fn-{{.Name}}"{{if .Panel.Busy}} open{{end}}>
    <summary>{{.Title}}</summary>
    <form method="post" action="{{.Action}}" data-function-name="{{.Name}}" data-function-type="{{.Kind}}">
      {{- $form := .Name}}
      {{- range .Fields}}
      <div class="mb-3">
        <label for="{{$form}}-{{.Name}}">{{.Label}}:</label>
        {{- if eq .Input "checkbox"}}
        <input id="{{$form}}-{{.Name}}" type="checkbox" name="{{.Name}}" value="true">
        <input type="hidden" name="{{.Name}}" value="{{.Default}}">
        {{- else}}
        <input id="{{$form}}-{{.Name}}" type="{{.Input}}" name="{{.Name}}" placeholder="{{.Placeholder}}"{{if eq .Input "number"}}{{if .Unsigned}} min="0"{{end}} step="1"{{end}}{{if .Required}} required{{end}}>
        {{- end}}
        {{- if .Hint}}<small>{{.Hint}}</small>{{end}}
      </div>
      {{- end}}
      {{- if .Notice}}
      <p class="text-warning small">{{.Notice}}</p>
      {{- end}}
      {{- with .Value}}
      <div class="mb-3">
        <label for="{{$form}}-{{.Name}}">{{.Label}}:</label>
        <input id="{{$form}}-{{.Name}}" type="text" name="{{.Name}}" placeholder="{{.Placeholder}}">
        <small>{{.Hint}}</small>
      </div>
      {{- end}}
      <button type="submit"{{if .Panel.Busy}} disabled{{end}}>{{.Label}}</button>
      <div class="result result-{{.Panel.Tone}}" id="result-{{.Name}}">
        {{- if .Panel.Title}}<strong>{{.Panel.Title}}</strong> {{end}}{{.Panel.Text}}
        {{- if .Panel.Detail}}<pre>{{.Panel.Detail}}</pre>{{end}}
      </div>
    </form>
  </details>
  {{- end}}
</section>
{{- end}}{{end}}
{{- end}}`

// Templates returns a template set holding the "forms" fragment so page
// templates can embed it with {{template "forms" .}}.
func Templates() *template.Template {
	return template.Must(template.New("forms").Parse(formsTemplate))
}

// HTMLRenderer renders the model as an HTML fragment.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{tmpl: Templates()}
}

func (r *HTMLRenderer) Render(w io.Writer, m Model) error {
	return r.tmpl.ExecuteTemplate(w, "forms", m)
}

// JSONRenderer renders the model as indented JSON.
type JSONRenderer struct{}

func (JSONRenderer) Render(w io.Writer, m Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// YAMLRenderer renders the model as block style YAML with the JSON field names.
type YAMLRenderer struct{}

func (YAMLRenderer) Render(w io.Writer, m Model) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	plainStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// plainStyle drops the flow and quoting styles the JSON source carries.
// Scalars that would change meaning unquoted stay quoted by the encoder.
func plainStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		plainStyle(c)
	}
}
