package agent

import (
	"context"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
	"github.com/rahul/agentloop/internal/tools"
)

const defaultMaxTurns = 5

// ReActAgent answers a question with a single bounded
// Thought / Action / Observation loop.
type ReActAgent struct {
	LLM      llm.Completer
	Registry *tools.Registry
	Prompts  *PromptManager
	Logger   *observability.Logger

	MaxTurns int
	// MaxServiceFailures aborts the run after this many consecutive
	// completion failures. Zero means never.
	MaxServiceFailures int
}

func NewReActAgent(completer llm.Completer, registry *tools.Registry, prompts *PromptManager, logger *observability.Logger) *ReActAgent {
	return &ReActAgent{
		LLM:      completer,
		Registry: registry,
		Prompts:  prompts,
		Logger:   logger,
		MaxTurns: defaultMaxTurns,
	}
}

func (a *ReActAgent) Run(ctx context.Context, question string) (Outcome, error) {
	ctx, runID := ensureRunID(ctx)

	descriptions, names := describeTools(a.Registry)
	base, err := a.Prompts.Render(PromptReAct, reactPromptData{
		ToolDescriptions: descriptions,
		ToolNames:        names,
		Question:         question,
	})
	if err != nil {
		return Outcome{}, err
	}

	maxTurns := a.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}

	loop := &toolLoop{
		caller: caller{
			llm:    a.LLM,
			logger: a.Logger,
			runID:  runID,
			guard:  failureGuard{max: a.MaxServiceFailures},
		},
		registry: a.Registry,
	}
	res, err := loop.run(ctx, loopOptions{
		phase:    "react",
		system:   systemReAct,
		base:     base,
		maxTurns: maxTurns,
	})
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Kind: FinalAnswer, Answer: res.answer, Turns: res.turns, Attempts: 1}
	if !res.found {
		out = Outcome{Kind: TurnsExhausted, Turns: maxTurns, Attempts: 1}
	}
	a.Logger.LogOutcome(runID, "react", out.Kind.String(), out.String())
	return out, nil
}
