// Package forms turns a contract interface into a render model of invocation
// forms and renders that model.
package forms

import (
	"fmt"
	"path"
	"strings"

	"contract-admin/internal/contract"
)

const (
	WriteGroupTitle = "Write Functions (Admin TX)"
	ReadGroupTitle  = "Read Functions (Admin View)"
	EmptyMessage    = "No valid admin functions found in the ABI."
	NoInputsNotice  = "This function takes no input arguments."

	ReadSubmitLabel  = "Query (CALL)"
	WriteSubmitLabel = "Execute (SEND TX)"
	ReadBusyLabel    = "Querying..."
	WriteBusyLabel   = "Confirming TX..."

	ReadIdleText  = "Query result: --"
	WriteIdleText = "Waiting for wallet interaction..."
)

// Options tune the synthesized model.
type Options struct {
	// ActionPrefix is the path forms post to, the function name is appended.
	ActionPrefix string
	// CurrencySymbol labels the payable value field.
	CurrencySymbol string
}

func (o Options) withDefaults() Options {
	if o.ActionPrefix == "" {
		o.ActionPrefix = "/functions"
	}
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = "ETH"
	}
	return o
}

// Synthesize builds the render model for the selected functions of iface.
func Synthesize(iface *contract.Interface, selection []string, opts Options) Model {
	return Build(iface.Select(selection), opts)
}

// Build builds the render model for an already filtered function list.
func Build(fns []contract.FunctionDescriptor, opts Options) Model {
	opts = opts.withDefaults()
	if len(fns) == 0 {
		return Model{Empty: true, Message: EmptyMessage}
	}

	m := Model{
		Write: Group{Kind: contract.Write, Title: WriteGroupTitle, Forms: []Form{}},
		Read:  Group{Kind: contract.Read, Title: ReadGroupTitle, Forms: []Form{}},
	}
	for _, fn := range fns {
		form := buildForm(fn, opts)
		if fn.IsRead() {
			m.Read.Forms = append(m.Read.Forms, form)
		} else {
			m.Write.Forms = append(m.Write.Forms, form)
		}
	}
	return m
}

func buildForm(fn contract.FunctionDescriptor, opts Options) Form {
	form := Form{
		Name:   fn.Name,
		Kind:   fn.Kind,
		Action: path.Join(opts.ActionPrefix, fn.Name),
		Fields: make([]Field, 0, len(fn.Inputs)),
	}
	if fn.IsRead() {
		form.Title = fn.Name + " (READ)"
		form.SubmitLabel, form.BusyLabel = ReadSubmitLabel, ReadBusyLabel
		form.Panel = Panel{Tone: ToneIdle, Text: ReadIdleText}
	} else {
		form.Title = fn.Name + " (WRITE)"
		form.SubmitLabel, form.BusyLabel = WriteSubmitLabel, WriteBusyLabel
		form.Panel = Panel{Tone: ToneIdle, Text: WriteIdleText}
	}

	for _, in := range fn.Inputs {
		form.Fields = append(form.Fields, buildField(in))
	}
	if len(fn.Inputs) == 0 && !fn.IsRead() {
		form.Notice = NoInputsNotice
	}
	if fn.IsPayable() {
		form.Value = &Field{
			Name:        ValueField,
			Label:       fmt.Sprintf("Value to send (%s)", opts.CurrencySymbol),
			Type:        "decimal",
			Input:       InputText,
			Placeholder: fmt.Sprintf("Amount in %s (e.g. 0.5)", opts.CurrencySymbol),
			Hint:        "Defaults to 0 when left blank.",
		}
	}
	return form
}

func buildField(in contract.Param) Field {
	f := Field{
		Name:        in.Name,
		Type:        in.Type,
		Input:       InputKindOf(in.Type),
		Placeholder: in.Type,
		Required:    true,
	}
	if in.IsList() {
		f.List = true
		f.Label = in.Name + " (array)"
		f.Placeholder = in.Type + " (e.g. value1, value2, ...)"
		f.Hint = "Comma separated. Values cannot contain commas."
		return f
	}
	f.Label = in.Name + " (" + in.Type + ")"
	if f.Input == InputCheckbox {
		// an unchecked box posts nothing, the hidden default keeps the argument present
		f.Required = false
		f.Default = "false"
	}
	return f
}

// InputKindOf maps an ABI type to the HTML input used to enter it.
func InputKindOf(abiType string) InputKind {
	switch {
	case contract.IsList(abiType):
		return InputText
	case strings.HasPrefix(abiType, "uint"), strings.HasPrefix(abiType, "int"):
		return InputNumber
	case abiType == "bool":
		return InputCheckbox
	}
	return InputText
}
