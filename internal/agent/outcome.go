package agent

import (
	"context"
	"fmt"

	"github.com/rahul/agentloop/internal/observability"
)

// OutcomeKind tags how a run ended.
type OutcomeKind int

const (
	FinalAnswer OutcomeKind = iota
	TurnsExhausted
	RetriesExhausted
)

func (k OutcomeKind) String() string {
	switch k {
	case FinalAnswer:
		return "final_answer"
	case TurnsExhausted:
		return "turns_exhausted"
	case RetriesExhausted:
		return "retries_exhausted"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Outcome is the result of a completed run. Exhaustion is an outcome, not
// an error. A TurnsExhausted outcome with an Answer renders that text.
type Outcome struct {
	Kind   OutcomeKind
	Answer string
	// Turns counts completion turns spent in tool loops.
	Turns int
	// Attempts counts supervisor attempts; 1 for runners without retries.
	Attempts int
}

// String renders the text shown to the user.
func (o Outcome) String() string {
	switch o.Kind {
	case TurnsExhausted:
		if o.Answer != "" {
			return o.Answer
		}
		return fmt.Sprintf("Agent stopped due to max turns (%d) without finding a final answer.", o.Turns)
	case RetriesExhausted:
		return fmt.Sprintf("Final Answer (after %d retries): %s", o.Attempts, o.Answer)
	default:
		return o.Answer
	}
}

// Runner answers one question.
type Runner interface {
	Run(ctx context.Context, question string) (Outcome, error)
}

type runIDKey struct{}

// WithRunID tags ctx so nested runners log under the same run.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run identifier carried by ctx, if any.
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func ensureRunID(ctx context.Context) (context.Context, string) {
	if id := RunID(ctx); id != "" {
		return ctx, id
	}
	id := observability.NewRunID()
	return WithRunID(ctx, id), id
}
