package forms

import (
	"strings"

	"contract-admin/internal/contract"
)

// InputKind is the HTML input type of a field.
type InputKind string

const (
	InputNumber   InputKind = "number"
	InputCheckbox InputKind = "checkbox"
	InputText     InputKind = "text"
)

// ValueField is the name of the payable amount field.
const ValueField = "_value"

// Field is one input of a form, in declared parameter order.
type Field struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        string    `json:"type"`
	Input       InputKind `json:"input"`
	Placeholder string    `json:"placeholder"`
	Hint        string    `json:"hint,omitempty"`
	Default     string    `json:"default,omitempty"`
	Required    bool      `json:"required"`
	List        bool      `json:"list,omitempty"`
}

// Unsigned reports whether the field holds a uint value.
func (f Field) Unsigned() bool {
	return strings.HasPrefix(f.Type, "uint")
}

// Tone classifies a result panel for display.
type Tone string

const (
	ToneIdle    Tone = "idle"
	TonePending Tone = "pending"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Panel is the inline result area of one form.
type Panel struct {
	Tone   Tone   `json:"tone"`
	Title  string `json:"title,omitempty"`
	Text   string `json:"text"`
	Detail string `json:"detail,omitempty"`
	Busy   bool   `json:"busy,omitempty"`
}

// Form is the invocation form of one function.
type Form struct {
	Name        string        `json:"name"`
	Kind        contract.Kind `json:"kind"`
	Title       string        `json:"title"`
	Action      string        `json:"action"`
	Fields      []Field       `json:"fields"`
	Value       *Field        `json:"value,omitempty"`
	Notice      string        `json:"notice,omitempty"`
	SubmitLabel string        `json:"submitLabel"`
	BusyLabel   string        `json:"busyLabel"`
	Panel       Panel         `json:"panel"`
}

// Label is the submit control text for the current panel state.
func (f Form) Label() string {
	if f.Panel.Busy {
		return f.BusyLabel
	}
	return f.SubmitLabel
}

// Group is the visual group of read or write forms.
type Group struct {
	Kind  contract.Kind `json:"kind"`
	Title string        `json:"title"`
	Forms []Form        `json:"forms"`
}

// Form returns the form for a function name.
func (g Group) Form(name string) (Form, bool) {
	for _, f := range g.Forms {
		if f.Name == name {
			return f, true
		}
	}
	return Form{}, false
}

// Model describes the generated forms independently of any display surface.
type Model struct {
	Empty   bool   `json:"empty"`
	Message string `json:"message,omitempty"`
	Write   Group  `json:"write"`
	Read    Group  `json:"read"`
}

// Groups returns the groups in display order, write first.
func (m Model) Groups() []Group {
	if m.Empty {
		return nil
	}
	return []Group{m.Write, m.Read}
}

// Form looks a form up in either group.
func (m Model) Form(name string) (Form, bool) {
	if f, ok := m.Write.Form(name); ok {
		return f, true
	}
	return m.Read.Form(name)
}

// WithPanels returns a copy of the model with stored panels in place of the
// initial ones. Forms without a stored panel keep their initial panel.
func (m Model) WithPanels(panels map[string]Panel) Model {
	overlay := func(g Group) Group {
		forms := make([]Form, len(g.Forms))
		for i, f := range g.Forms {
			if p, ok := panels[f.Name]; ok {
				f.Panel = p
			}
			forms[i] = f
		}
		g.Forms = forms
		return g
	}
	m.Write = overlay(m.Write)
	m.Read = overlay(m.Read)
	return m
}
