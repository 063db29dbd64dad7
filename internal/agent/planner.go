package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
)

var planLine = regexp.MustCompile(`^\s*\d+\.\s*(.+?)\s*$`)

// ParsePlan keeps every "<n>. <text>" line in order and ignores the rest.
func ParsePlan(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if m := planLine.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
			steps = append(steps, strings.TrimSpace(m[1]))
		}
	}
	return steps
}

// Planner turns a question into ordered step instructions.
type Planner struct {
	LLM     llm.Completer
	Prompts *PromptManager
	Logger  *observability.Logger
}

func NewPlanner(completer llm.Completer, prompts *PromptManager, logger *observability.Logger) *Planner {
	return &Planner{LLM: completer, Prompts: prompts, Logger: logger}
}

// Plan fails with ErrNoPlan when the response holds no numbered steps.
func (p *Planner) Plan(ctx context.Context, question string) ([]string, error) {
	ctx, runID := ensureRunID(ctx)

	prompt, err := p.Prompts.Render(PromptPlanner, planPromptData{Question: question})
	if err != nil {
		return nil, err
	}

	c := caller{llm: p.LLM, logger: p.Logger, runID: runID}
	text, ok, err := c.complete(ctx, "planner", llm.Request{Prompt: prompt, System: systemPlanner})
	if err != nil {
		return nil, err
	}

	steps := ParsePlan(text)
	p.Logger.LogPlan(runID, steps)
	if len(steps) == 0 {
		if !ok {
			return nil, fmt.Errorf("%w: the model call failed", ErrNoPlan)
		}
		return nil, ErrNoPlan
	}
	return steps, nil
}
