// Package dispatch turns a form submission into exactly one call against the
// wallet capability and one terminal result.
package dispatch

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"contract-admin/internal/connection"
	"contract-admin/internal/contract"
	"contract-admin/internal/forms"
	"contract-admin/internal/wallet"
	"contract-admin/log"
	"contract-admin/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is one raw submission: field values keyed by input name plus the
// payable amount in display units.
type Request struct {
	Function string            `json:"function"`
	Inputs   map[string]string `json:"args"`
	Value    string            `json:"value"`
}

// Invocation is a validated request holding the submit lock of its function.
type Invocation struct {
	ID        string
	Function  contract.FunctionDescriptor
	Args      wallet.Args
	Value     *big.Int
	Account   common.Address
	ChainID   uint64
	StartedAt time.Time
}

// Hook observes finished invocations. Blocked and refused submissions are
// reported too, with a partially filled Invocation.
type Hook interface {
	Finished(ctx context.Context, inv *Invocation, res Result)
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, inv *Invocation, res Result)

func (f HookFunc) Finished(ctx context.Context, inv *Invocation, res Result) { f(ctx, inv, res) }

// Options configure a Dispatcher.
type Options struct {
	Selection []string // functions that may be dispatched, see contract.Select
	Decimals  int32    // native currency decimals, default 18
	Panels    PanelStore
	Hooks     []Hook
}

// Dispatcher resolves, gates and executes invocations.
type Dispatcher struct {
	functions map[string]contract.FunctionDescriptor
	names     []string
	reader    wallet.Reader
	signer    wallet.Signer
	conn      connection.Reader
	decimals  int32
	panels    PanelStore
	hooks     []Hook
	locks     utils.Map[string, string]

	listeners []func(function string, p forms.Panel)
}

// New builds a dispatcher over the functions of iface. Reads go to reader,
// writes to signer after conn allows them.
func New(iface *contract.Interface, reader wallet.Reader, signer wallet.Signer, conn connection.Reader, opts Options) *Dispatcher {
	if opts.Decimals == 0 {
		opts.Decimals = 18
	}
	if opts.Panels == nil {
		opts.Panels = NewMemoryPanels()
	}
	d := &Dispatcher{
		functions: map[string]contract.FunctionDescriptor{},
		reader:    reader,
		signer:    signer,
		conn:      conn,
		decimals:  opts.Decimals,
		panels:    opts.Panels,
		hooks:     opts.Hooks,
	}
	for _, fn := range iface.Select(opts.Selection) {
		d.functions[fn.Name] = fn
		d.names = append(d.names, fn.Name)
	}
	return d
}

// AddHook registers h for every later invocation. Not safe while dispatching.
func (d *Dispatcher) AddHook(h Hook) {
	d.hooks = append(d.hooks, h)
}

// OnPanel registers fn to receive every published panel. Not safe while dispatching.
func (d *Dispatcher) OnPanel(fn func(function string, p forms.Panel)) {
	d.listeners = append(d.listeners, fn)
}

// Functions returns the dispatchable function names in ABI order.
func (d *Dispatcher) Functions() []string {
	return d.names
}

// Panels returns the stored panels of every dispatchable function.
func (d *Dispatcher) Panels(ctx context.Context) (map[string]forms.Panel, error) {
	return d.panels.All(ctx, d.names)
}

// Busy reports whether function holds its submit lock.
func (d *Dispatcher) Busy(function string) bool {
	_, ok := d.locks.Get(function)
	return ok
}

// Dispatch runs a submission to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	inv, err := d.Begin(ctx, req)
	if err != nil {
		return ResultOf(err)
	}
	return d.Run(ctx, inv)
}

// Begin validates req, resolves its descriptor, applies the connection gate
// to writes and takes the submit lock. On success the caller must pass the
// invocation to Run, which releases the lock. The returned error is an *Error.
func (d *Dispatcher) Begin(ctx context.Context, req Request) (*Invocation, error) {
	fn, ok := d.functions[req.Function]
	if !ok {
		return nil, invalidInput("Unknown function %q.", req.Function)
	}
	inv := &Invocation{
		ID:        uuid.NewString(),
		Function:  fn,
		Args:      CollectArgs(fn, req.Inputs),
		StartedAt: time.Now(),
	}

	if fn.IsPayable() {
		value, err := ParseValue(req.Value, d.decimals)
		if err != nil {
			return nil, d.refuse(ctx, inv, err)
		}
		inv.Value = value
	}

	if !fn.IsRead() {
		state := d.conn.State()
		if err := gate(state); err != nil {
			return nil, d.refuse(ctx, inv, err)
		}
		inv.Account = *state.Account
		inv.ChainID = *state.ChainID
	}

	if _, ok := d.locks.TestAndSet(fn.Name, inv.ID); !ok {
		err := newError(CategoryBusy, fmt.Sprintf("A call to %s is already in progress.", fn.Name))
		d.finish(ctx, inv, ResultOf(err))
		return nil, err
	}
	d.publish(ctx, fn.Name, ProcessingPanel(fn.Name))
	return inv, nil
}

// gate refuses writes without an account or off the required network. A
// resync in progress keeps the account but not the network check.
func gate(s connection.State) *Error {
	if s.Account == nil {
		return newError(CategoryConnectionMissing, msgConnectionMissing)
	}
	if s.Status == connection.StatusConnecting {
		return newError(CategoryConnectionMissing, msgConnectionRefresh)
	}
	if !s.OnRequiredNetwork || s.ChainID == nil {
		msg := "Wrong network. Switch to the required network to execute transactions."
		if s.Message != "" && s.Status == connection.StatusWrongNetwork {
			msg = s.Message
		}
		return newError(CategoryWrongNetwork, msg)
	}
	return nil
}

func (d *Dispatcher) refuse(ctx context.Context, inv *Invocation, err error) error {
	e := Classify(err)
	res := ResultOf(e)
	d.publish(ctx, inv.Function.Name, res.Panel())
	d.finish(ctx, inv, res)
	return e
}

// Run executes inv and publishes its terminal result. The submit lock is
// released when Run returns, whatever the outcome.
func (d *Dispatcher) Run(ctx context.Context, inv *Invocation) (res Result) {
	name := inv.Function.Name
	defer utils.DelIf(&d.locks, name, inv.ID)
	defer func() {
		if r := recover(); r != nil {
			log.Logger.Error("dispatch panic", zap.String("function", name), zap.Any("panic", r))
			res = Failure(CategoryUnknownTransport, msgUnknownFailure)
		}
		d.publish(ctx, name, res.Panel())
		d.finish(ctx, inv, res)
	}()

	if inv.Function.IsRead() {
		return d.read(ctx, inv)
	}
	return d.write(ctx, inv)
}

func (d *Dispatcher) read(ctx context.Context, inv *Invocation) Result {
	outputs, err := d.reader.Call(ctx, inv.Function.Name, inv.Args)
	if err != nil {
		return ResultOf(err)
	}
	return Success(Collapse(outputs))
}

func (d *Dispatcher) write(ctx context.Context, inv *Invocation) Result {
	tx, err := d.signer.Transact(ctx, inv.Account, inv.Function.Name, inv.Args, inv.Value)
	if err != nil {
		return ResultOf(err)
	}
	hash := tx.Hash().Hex()
	log.Logger.Info("transaction sent",
		zap.String("invocation", inv.ID),
		zap.String("function", inv.Function.Name),
		zap.String("hash", hash))
	d.publish(ctx, inv.Function.Name, TransactionAccepted(hash).Panel())

	receipt, err := tx.Wait(ctx)
	if err != nil {
		return ResultOf(err)
	}
	if !receipt.Success {
		return Failure(CategoryContractReverted, "Contract error: "+msgTxReverted)
	}
	return TransactionConfirmed(receipt.BlockNumber, receipt.Hash.Hex())
}

func (d *Dispatcher) publish(ctx context.Context, function string, p forms.Panel) {
	if err := d.panels.Put(ctx, function, p); err != nil {
		log.Logger.Error("store panel failed", zap.String("function", function), zap.Error(err))
	}
	for _, fn := range d.listeners {
		fn(function, p)
	}
}

func (d *Dispatcher) finish(ctx context.Context, inv *Invocation, res Result) {
	fields := []zap.Field{
		zap.String("invocation", inv.ID),
		zap.String("function", inv.Function.Name),
		zap.String("outcome", string(res.Outcome)),
	}
	if res.Category != "" {
		fields = append(fields, zap.String("category", string(res.Category)), zap.String("message", res.Message))
		log.Logger.Warn("invocation finished", fields...)
	} else {
		log.Logger.Info("invocation finished", fields...)
	}
	for _, h := range d.hooks {
		h.Finished(ctx, inv, res)
	}
}

// ResyncOnConfirm returns a hook that refreshes the connection state after a
// confirmed write.
func ResyncOnConfirm(resync func() error) Hook {
	return HookFunc(func(_ context.Context, _ *Invocation, res Result) {
		if res.Outcome != OutcomeConfirmed {
			return
		}
		if err := resync(); err != nil {
			log.Logger.Error("resync after transaction failed", zap.Error(err))
		}
	})
}
