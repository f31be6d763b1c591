package dispatch

import (
	"fmt"

	"contract-admin/internal/forms"
)

// Outcome tags a Result.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeAccepted  Outcome = "accepted"
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailure   Outcome = "failure"
	OutcomeBlocked   Outcome = "blocked"
)

// Result is what one invocation produced. Accepted is the in-flight state of
// a write; every other outcome is terminal.
type Result struct {
	Outcome     Outcome  `json:"outcome"`
	Value       *Value   `json:"value,omitempty"`
	Hash        string   `json:"hash,omitempty"`
	BlockNumber uint64   `json:"blockNumber,omitempty"`
	Category    Category `json:"category,omitempty"`
	Message     string   `json:"message,omitempty"`
}

func Success(v Value) Result {
	return Result{Outcome: OutcomeSuccess, Value: &v}
}

func TransactionAccepted(hash string) Result {
	return Result{Outcome: OutcomeAccepted, Hash: hash}
}

func TransactionConfirmed(block uint64, hash string) Result {
	return Result{Outcome: OutcomeConfirmed, BlockNumber: block, Hash: hash}
}

func Failure(category Category, message string) Result {
	return Result{Outcome: OutcomeFailure, Category: category, Message: message}
}

func Blocked(category Category, reason string) Result {
	return Result{Outcome: OutcomeBlocked, Category: category, Message: reason}
}

// ResultOf converts an error into its terminal Result.
func ResultOf(err error) Result {
	e := Classify(err)
	if e.Blocking() {
		return Blocked(e.Category, e.Message)
	}
	return Failure(e.Category, e.Message)
}

// Terminal reports whether no further result follows r.
func (r Result) Terminal() bool {
	return r.Outcome != OutcomeAccepted
}

// Panel renders r into the form's result area.
func (r Result) Panel() forms.Panel {
	switch r.Outcome {
	case OutcomeSuccess:
		text := ""
		if r.Value != nil {
			text = r.Value.Pretty()
		}
		return forms.Panel{Tone: forms.ToneSuccess, Title: "Query result:", Text: text}
	case OutcomeAccepted:
		return forms.Panel{
			Tone: forms.ToneInfo,
			Text: fmt.Sprintf("Transaction sent. Hash: %s, awaiting confirmation...", shortHash(r.Hash)),
			Busy: true,
		}
	case OutcomeConfirmed:
		return forms.Panel{
			Tone:   forms.ToneSuccess,
			Title:  "Transaction successful:",
			Text:   fmt.Sprintf("Block: %d\nHash: %s", r.BlockNumber, r.Hash),
			Detail: "The transaction has been confirmed on the blockchain.",
		}
	case OutcomeBlocked:
		return forms.Panel{Tone: forms.ToneDanger, Text: r.Message}
	}
	return forms.Panel{Tone: forms.ToneDanger, Title: "Execution failed:", Text: r.Message}
}

// ProcessingPanel is shown while a call is in flight.
func ProcessingPanel(function string) forms.Panel {
	return forms.Panel{Tone: forms.TonePending, Text: fmt.Sprintf("Processing call to %s...", function), Busy: true}
}

func shortHash(h string) string {
	if len(h) <= 10 {
		return h
	}
	return h[:10] + "..."
}
