package tools

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/rahul/agentloop/internal/governance"
)

var (
	ErrDuplicateName = errors.New("tool already registered")
	ErrInvalidTool   = errors.New("invalid tool")
	ErrUnknownTool   = errors.New("unknown tool")
	ErrPolicyDenied  = errors.New("denied by policy")
)

// ExecutionError carries the name of the tool that failed and the cause.
type ExecutionError struct {
	Tool string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Registry manages the set of available tools. It is not safe for
// concurrent registration; agents only read from it.
type Registry struct {
	tools  map[string]Tool
	order  []string
	policy governance.PolicyEngine
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
	}
}

// WithPolicy makes Execute consult engine before every dispatch.
func (r *Registry) WithPolicy(engine governance.PolicyEngine) *Registry {
	r.policy = engine
	return r
}

// Register adds t under name.
func (r *Registry) Register(name string, t Tool) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidTool)
	}
	if !invocable(t) {
		return fmt.Errorf("%w: %s is not invocable", ErrInvalidTool, name)
	}
	if _, ok := r.tools[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// invocable rejects nil tools, typed nil pointers included, and tools that
// report they have nothing to call.
func invocable(t Tool) bool {
	if t == nil {
		return false
	}
	switch v := reflect.ValueOf(t); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		if v.IsNil() {
			return false
		}
	}
	if c, ok := t.(interface{ invocable() bool }); ok {
		return c.invocable()
	}
	return true
}

// Add registers t under its own name.
func (r *Registry) Add(t Tool) error {
	if !invocable(t) {
		return fmt.Errorf("%w: tool is not invocable", ErrInvalidTool)
	}
	return r.Register(t.Name(), t)
}

func (r *Registry) Unregister(name string) {
	if _, ok := r.tools[name]; !ok {
		return
	}
	delete(r.tools, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

func (r *Registry) Get(name string) Tool {
	return r.tools[name]
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Describe renders one "name(params): description" line per tool.
func (r *Registry) Describe() string {
	lines := make([]string, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		desc := strings.TrimSpace(t.Description())
		if desc == "" {
			desc = "No description available"
		}
		lines = append(lines, fmt.Sprintf("%s(%s): %s", name, strings.Join(ParamNames(t), ", "), desc))
	}
	return strings.Join(lines, "\n")
}

// Execute invokes the named tool. Tool failures, panics and policy denials
// are returned as *ExecutionError.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]string) (out string, err error) {
	t, ok := r.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	if r.policy != nil {
		res, err := r.policy.Evaluate(ctx, governance.Request{Tool: name, Args: args})
		if err != nil {
			return "", &ExecutionError{Tool: name, Err: fmt.Errorf("policy evaluation: %w", err)}
		}
		if res.Effect == governance.EffectDeny {
			return "", &ExecutionError{Tool: name, Err: fmt.Errorf("%w: %s", ErrPolicyDenied, res.Reason)}
		}
	}

	defer func() {
		if p := recover(); p != nil {
			out, err = "", &ExecutionError{Tool: name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()

	out, err = t.Invoke(ctx, args)
	if err != nil {
		return "", &ExecutionError{Tool: name, Err: err}
	}
	return out, nil
}
