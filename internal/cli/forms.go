package cli

import (
	"fmt"

	"contract-admin/internal/contract"
	"contract-admin/internal/forms"

	"github.com/spf13/cobra"
)

// ValidFormats are the renderers the forms command can use.
var ValidFormats = []string{"json", "yaml", "html"}

type FormsOptions struct {
	*RootOptions
	Format string
}

// NewFormsCommand prints the render model of the configured contract.
func NewFormsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FormsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "forms",
		Short: "Print the generated invocation forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return printForms(opts, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.Format, "format", "json", "output format (json|yaml|html)")
	return cmd
}

func printForms(opts *FormsOptions, cmd *cobra.Command) error {
	r, err := renderer(opts.Format)
	if err != nil {
		return err
	}
	iface, err := contract.LoadFile(opts.conf.Contract.AbiPath)
	if err != nil {
		return err
	}
	model := forms.Synthesize(iface, opts.conf.Contract.Functions, formOptions(opts.conf))
	if err := r.Render(cmd.OutOrStdout(), model); err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout())
	return err
}

func renderer(format string) (forms.Renderer, error) {
	switch format {
	case "json":
		return forms.JSONRenderer{}, nil
	case "yaml":
		return forms.YAMLRenderer{}, nil
	case "html":
		return forms.NewHTMLRenderer(), nil
	}
	return nil, fmt.Errorf("invalid format %q: must be one of %v", format, ValidFormats)
}
