package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
)

const (
	defaultMaxRetries = 3
	satisfiedToken    = "SATISFACTORY"
)

// ReflectAgent reruns an inner agent until a critique pass accepts its
// answer or the retry bound is reached.
type ReflectAgent struct {
	Inner   Runner
	LLM     llm.Completer
	Prompts *PromptManager
	Logger  *observability.Logger

	MaxRetries         int
	MaxServiceFailures int
}

func NewReflectAgent(inner Runner, completer llm.Completer, prompts *PromptManager, logger *observability.Logger) *ReflectAgent {
	return &ReflectAgent{
		Inner:      inner,
		LLM:        completer,
		Prompts:    prompts,
		Logger:     logger,
		MaxRetries: defaultMaxRetries,
	}
}

// IsSatisfactory reports whether a critique accepts the answer.
func IsSatisfactory(critique string) bool {
	return strings.Contains(strings.ToUpper(critique), satisfiedToken)
}

// RetryInput renders the question for a later attempt.
func RetryInput(question, history string) string {
	return fmt.Sprintf("%s\n\nPrevious Attempts and Critiques:\n%s\n\nPlease try again, addressing the critiques.", question, history)
}

func (a *ReflectAgent) Run(ctx context.Context, question string) (Outcome, error) {
	ctx, runID := ensureRunID(ctx)

	maxRetries := a.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	judge := caller{llm: a.LLM, logger: a.Logger, runID: runID, guard: failureGuard{max: a.MaxServiceFailures}}

	var (
		history strings.Builder
		answer  string
		turns   int
	)
	for attempt := 1; attempt <= maxRetries; attempt++ {
		input := question
		if attempt > 1 {
			input = RetryInput(question, history.String())
		}

		inner, err := a.Inner.Run(ctx, input)
		if err != nil {
			return Outcome{}, fmt.Errorf("attempt %d: %w", attempt, err)
		}
		turns += inner.Turns
		answer = inner.String()

		critique, err := a.critique(ctx, &judge, question, answer)
		if err != nil {
			return Outcome{}, err
		}
		satisfied := IsSatisfactory(critique)
		a.Logger.LogCritique(runID, attempt, answer, critique, satisfied)

		if satisfied {
			// an accepted answer keeps the inner turn-exhaustion tag
			kind := FinalAnswer
			if inner.Kind == TurnsExhausted {
				kind = TurnsExhausted
			}
			out := Outcome{Kind: kind, Answer: answer, Turns: turns, Attempts: attempt}
			a.Logger.LogOutcome(runID, "reflect", out.Kind.String(), out.String())
			return out, nil
		}

		fmt.Fprintf(&history, "Attempt %d Answer: %s\nCritique: %s\n\n", attempt, answer, critique)
	}

	out := Outcome{Kind: RetriesExhausted, Answer: answer, Turns: turns, Attempts: maxRetries}
	a.Logger.LogOutcome(runID, "reflect", out.Kind.String(), out.String())
	return out, nil
}

// critique is a read-only judgement; it never touches the inner agent.
func (a *ReflectAgent) critique(ctx context.Context, judge *caller, question, answer string) (string, error) {
	prompt, err := a.Prompts.Render(PromptCritique, critiquePromptData{Question: question, Answer: answer})
	if err != nil {
		return "", err
	}
	text, _, err := judge.complete(ctx, "critique", llm.Request{Prompt: prompt, System: systemCritique})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
