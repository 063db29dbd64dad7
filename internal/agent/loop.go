package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
	"github.com/rahul/agentloop/internal/tools"
)

// failureGuard counts consecutive completion failures. A zero max never
// trips.
type failureGuard struct {
	max         int
	consecutive int
}

func (g *failureGuard) record(err error) error {
	if err == nil {
		g.consecutive = 0
		return nil
	}
	g.consecutive++
	if g.max > 0 && g.consecutive >= g.max {
		return fmt.Errorf("%w: %d consecutive failures: %w", ErrServiceUnavailable, g.consecutive, err)
	}
	return nil
}

// caller performs completion calls for one run, logging each and turning
// failures into DegradedText.
type caller struct {
	llm    llm.Completer
	logger *observability.Logger
	runID  string
	guard  failureGuard
}

// complete reports ok=false when the call failed and DegradedText was
// substituted.
func (c *caller) complete(ctx context.Context, phase string, req llm.Request) (text string, ok bool, err error) {
	text, callErr := c.llm.Complete(ctx, req)
	c.logger.LogLLM(c.runID, phase, req.Prompt, text, callErr)
	if gerr := c.guard.record(callErr); gerr != nil {
		return "", false, gerr
	}
	if callErr != nil {
		return DegradedText, false, nil
	}
	return text, true, nil
}

type loopOptions struct {
	phase    string
	system   string
	base     string
	maxTurns int
	// wrapUp asks for a final answer on the last turn.
	wrapUp bool
}

type loopResult struct {
	answer string
	found  bool
	turns  int
	// lastText is the most recent successful model output.
	lastText   string
	transcript *Transcript
}

// toolLoop is the bounded think/act/observe cycle shared by the ReAct agent
// and the plan solver.
type toolLoop struct {
	caller
	registry *tools.Registry
}

func (l *toolLoop) run(ctx context.Context, opts loopOptions) (loopResult, error) {
	res := loopResult{transcript: NewTranscript(opts.base)}

	for turn := 1; turn <= opts.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.turns = turn
		l.logger.LogTurn(l.runID, opts.phase, turn, opts.maxTurns)

		prompt := res.transcript.Render()
		if opts.wrapUp && turn == opts.maxTurns {
			prompt += "\n" + wrapUpObservation + "\n"
		}

		raw, ok, err := l.complete(ctx, opts.phase, llm.Request{
			Prompt: prompt,
			System: opts.system,
			Stop:   []string{ObservationMarker},
		})
		if err != nil {
			return res, err
		}

		text := strings.TrimSpace(Truncate(raw))
		if ok && text != "" {
			res.lastText = text
		}

		parsed := Parse(text)
		res.transcript.Append(TurnRecord{Output: text, Action: parsed.Action, Input: parsed.Input})

		var observation string
		switch parsed.Kind {
		case KindFinalAnswer:
			res.answer = parsed.Answer
			res.found = true
			return res, nil
		case KindAction:
			l.logger.LogAction(l.runID, opts.phase, parsed.Action, parsed.Input)
			observation = l.dispatch(ctx, opts.phase, parsed)
		case KindActionMissingInput:
			observation = fmt.Sprintf("%s Action '%s' is missing an 'Action Input:' line. Provide both 'Action:' and 'Action Input:'.", ObservationMarker, parsed.Action)
		default:
			observation = malformedObservation
		}

		res.transcript.Observe(observation)
		l.logger.LogObservation(l.runID, opts.phase, observation)
	}

	return res, nil
}

// dispatch runs the parsed action and formats the result as an observation
// line. Tool failures never escape the loop.
func (l *toolLoop) dispatch(ctx context.Context, phase string, p Parsed) string {
	if l.registry == nil {
		return fmt.Sprintf("%s Tool '%s' not found. Available tools: ", ObservationMarker, p.Action)
	}

	args := tools.ParseArgs(p.Input, l.registry.Get(p.Action))
	out, err := l.registry.Execute(ctx, p.Action, args)
	if err == nil {
		return ObservationMarker + " " + out
	}

	if errors.Is(err, tools.ErrUnknownTool) {
		return fmt.Sprintf("%s Tool '%s' not found. Available tools: %s", ObservationMarker, p.Action, strings.Join(l.registry.Names(), ", "))
	}

	cause := err
	var execErr *tools.ExecutionError
	if errors.As(err, &execErr) {
		cause = execErr.Err
	}
	if errors.Is(err, tools.ErrPolicyDenied) {
		l.logger.LogPolicyCheck(l.runID, phase, p.Action, cause.Error())
	}
	return fmt.Sprintf("%s Error: %v", ObservationMarker, cause)
}

func describeTools(r *tools.Registry) (descriptions, names string) {
	if r == nil {
		return "", ""
	}
	return r.Describe(), strings.Join(r.Names(), ", ")
}
