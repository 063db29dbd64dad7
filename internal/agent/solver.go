package agent

import (
	"context"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
	"github.com/rahul/agentloop/internal/tools"
)

const defaultSolverTurns = 3

// Solver executes one plan step with a short tool loop. On its last turn
// it asks the model to wrap up.
type Solver struct {
	LLM      llm.Completer
	Registry *tools.Registry
	Prompts  *PromptManager
	Logger   *observability.Logger

	MaxTurns           int
	MaxServiceFailures int
}

func NewSolver(completer llm.Completer, registry *tools.Registry, prompts *PromptManager, logger *observability.Logger) *Solver {
	return &Solver{
		LLM:      completer,
		Registry: registry,
		Prompts:  prompts,
		Logger:   logger,
		MaxTurns: defaultSolverTurns,
	}
}

// Solve returns the step result and the number of turns spent. Running out
// of turns yields a best-effort result, not an error.
func (s *Solver) Solve(ctx context.Context, step, previous string) (string, int, error) {
	ctx, runID := ensureRunID(ctx)

	descriptions, names := describeTools(s.Registry)
	base, err := s.Prompts.Render(PromptSolver, solverPromptData{
		ToolDescriptions: descriptions,
		ToolNames:        names,
		Step:             step,
		Context:          previous,
	})
	if err != nil {
		return "", 0, err
	}

	maxTurns := s.MaxTurns
	if maxTurns <= 0 {
		maxTurns = defaultSolverTurns
	}

	loop := &toolLoop{
		caller: caller{
			llm:    s.LLM,
			logger: s.Logger,
			runID:  runID,
			guard:  failureGuard{max: s.MaxServiceFailures},
		},
		registry: s.Registry,
	}
	res, err := loop.run(ctx, loopOptions{
		phase:    "solver",
		system:   systemSolver,
		base:     base,
		maxTurns: maxTurns,
		wrapUp:   true,
	})
	if err != nil {
		return "", res.turns, err
	}

	switch {
	case res.found:
		return res.answer, res.turns, nil
	case res.lastText != "":
		return "Step execution incomplete. Last progress: " + res.lastText, res.turns, nil
	default:
		return "Step execution failed or incomplete.", res.turns, nil
	}
}
