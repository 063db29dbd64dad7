package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
)

// StepResult pairs a plan step with what the solver produced for it.
type StepResult struct {
	Step   string
	Result string
}

// PlanAndSolveAgent plans first, solves each step in order carrying the
// results forward, then synthesises one answer.
type PlanAndSolveAgent struct {
	Planner *Planner
	Solver  *Solver
	LLM     llm.Completer
	Prompts *PromptManager
	Logger  *observability.Logger

	MaxServiceFailures int
}

func NewPlanAndSolveAgent(completer llm.Completer, planner *Planner, solver *Solver, prompts *PromptManager, logger *observability.Logger) *PlanAndSolveAgent {
	return &PlanAndSolveAgent{
		Planner: planner,
		Solver:  solver,
		LLM:     completer,
		Prompts: prompts,
		Logger:  logger,
	}
}

func (a *PlanAndSolveAgent) Run(ctx context.Context, question string) (Outcome, error) {
	ctx, runID := ensureRunID(ctx)

	steps, err := a.Planner.Plan(ctx, question)
	if err != nil {
		return Outcome{}, err
	}

	var (
		previous strings.Builder
		results  []StepResult
		turns    int
	)
	for i, step := range steps {
		a.Logger.LogStep(runID, i+1, step, "", false)

		result, used, err := a.Solver.Solve(ctx, step, previous.String())
		turns += used
		if err != nil {
			return Outcome{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		a.Logger.LogStep(runID, i+1, step, result, true)

		fmt.Fprintf(&previous, "Step %d: %s\nResult: %s\n\n", i+1, step, result)
		results = append(results, StepResult{Step: step, Result: result})
	}

	answer, err := a.synthesize(ctx, runID, question, results)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Kind: FinalAnswer, Answer: answer, Turns: turns, Attempts: 1}
	a.Logger.LogOutcome(runID, "plan", out.Kind.String(), out.String())
	return out, nil
}

func (a *PlanAndSolveAgent) synthesize(ctx context.Context, runID, question string, results []StepResult) (string, error) {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("Step %d: %s\nResult: %s", i+1, r.Step, r.Result)
	}

	prompt, err := a.Prompts.Render(PromptSynthesis, synthesisPromptData{
		Question: question,
		Results:  strings.Join(lines, "\n"),
	})
	if err != nil {
		return "", err
	}

	c := caller{llm: a.LLM, logger: a.Logger, runID: runID, guard: failureGuard{max: a.MaxServiceFailures}}
	text, _, err := c.complete(ctx, "synthesis", llm.Request{Prompt: prompt, System: systemSynthesis})
	if err != nil {
		return "", err
	}

	if p := Parse(text); p.Kind == KindFinalAnswer {
		return p.Answer, nil
	}
	return strings.TrimSpace(text), nil
}
