package agent

import (
	"context"
	"errors"

	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/tools"
)

// scriptedLLM replays responses in order and records every request. Once
// the script runs out it keeps returning fallback.
type scriptedLLM struct {
	responses []string
	errs      []error
	fallback  string
	requests  []llm.Request
}

func (s *scriptedLLM) Complete(_ context.Context, req llm.Request) (string, error) {
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return s.fallback, nil
}

func (s *scriptedLLM) prompts() []string {
	out := make([]string, len(s.requests))
	for i, r := range s.requests {
		out[i] = r.Prompt
	}
	return out
}

var errBoom = errors.New("boom")

func testRegistry() *tools.Registry {
	r := tools.NewRegistry()
	_ = r.Add(tools.Func("echo", "Returns its input unchanged.", []string{"input"},
		func(_ context.Context, args map[string]string) (string, error) {
			return args["input"], nil
		}))
	_ = r.Add(tools.Func("fail", "Always fails.", []string{"input"},
		func(context.Context, map[string]string) (string, error) {
			return "", errBoom
		}))
	return r
}
