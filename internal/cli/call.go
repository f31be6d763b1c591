package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"contract-admin/internal/contract"
	"contract-admin/internal/dispatch"
	"contract-admin/internal/forms"

	"github.com/spf13/cobra"
)

type CallOptions struct {
	*RootOptions
	Value string
	JSON  bool
}

// NewCallCommand dispatches one invocation and waits for its result.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <function> [args...]",
		Short: "Call one contract function through the configured wallet",
		Long: `Call one contract function through the configured wallet.

Arguments follow the declared input order. List inputs take one
comma separated argument.

Example:
  contract-admin call setPrice 100
  contract-admin call setWhitelist "0xabc..., 0xdef..." true
  contract-admin call deposit --value 0.5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return call(opts, cmd, args[0], args[1:])
		},
	}
	cmd.Flags().StringVar(&opts.Value, "value", "", "amount to send to payable functions, in display units")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the result as JSON")
	return cmd
}

func call(opts *CallOptions, cmd *cobra.Command, function string, raw []string) error {
	ctx := cmd.Context()
	c, err := openChain(ctx, opts.conf, false)
	if err != nil {
		return err
	}
	defer c.Close()

	fn, ok := c.Interface.Lookup(function)
	if !ok {
		return fmt.Errorf("unknown function %q", function)
	}
	inputs, err := positional(fn, raw)
	if err != nil {
		return err
	}
	if !fn.IsRead() {
		if err := c.Tracker.Connect(ctx); err != nil {
			return err
		}
	}

	d := dispatch.New(c.Interface, c.Wallet, c.Wallet, c.Tracker, dispatch.Options{
		Selection: opts.conf.Contract.Functions,
		Decimals:  opts.conf.Contract.CurrencyDecimal,
	})
	if !opts.JSON {
		d.OnPanel(func(_ string, p forms.Panel) {
			if p.Busy {
				printPanel(cmd.ErrOrStderr(), p)
			}
		})
	}

	res := d.Dispatch(ctx, dispatch.Request{Function: function, Inputs: inputs, Value: opts.Value})
	if opts.JSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printPanel(cmd.OutOrStdout(), res.Panel())
	}
	if res.Outcome == dispatch.OutcomeFailure || res.Outcome == dispatch.OutcomeBlocked {
		return fmt.Errorf("%s: %s", res.Category, res.Message)
	}
	return nil
}

// positional maps command line arguments onto the declared inputs of fn.
func positional(fn contract.FunctionDescriptor, raw []string) (map[string]string, error) {
	if len(raw) != len(fn.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", fn.Signature(), len(fn.Inputs), len(raw))
	}
	inputs := make(map[string]string, len(raw))
	for i, in := range fn.Inputs {
		inputs[in.Name] = raw[i]
	}
	return inputs, nil
}

func printPanel(w io.Writer, p forms.Panel) {
	if p.Title != "" {
		fmt.Fprintln(w, p.Title)
	}
	fmt.Fprintln(w, p.Text)
	if p.Detail != "" {
		fmt.Fprintln(w, p.Detail)
	}
}
