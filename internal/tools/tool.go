package tools

import (
	"context"
)

// Tool defines the interface for all agent capabilities.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any // JSON Schema for the tool's inputs
	Invoke(ctx context.Context, args map[string]string) (string, error)
}

// FuncTool adapts a plain function into a Tool.
type FuncTool struct {
	name        string
	description string
	params      map[string]any
	fn          func(ctx context.Context, args map[string]string) (string, error)
}

// Func creates a Tool whose named string parameters are listed in params.
// The first entry is the primary parameter that receives plain-text input.
// A nil fn yields a tool the registry refuses.
func Func(name, description string, params []string, fn func(ctx context.Context, args map[string]string) (string, error)) *FuncTool {
	return &FuncTool{
		name:        name,
		description: description,
		params:      stringSchema(params...),
		fn:          fn,
	}
}

func (f *FuncTool) Name() string {
	return f.name
}

func (f *FuncTool) Description() string {
	return f.description
}

func (f *FuncTool) Parameters() map[string]any {
	return f.params
}

func (f *FuncTool) invocable() bool {
	return f != nil && f.fn != nil
}

func (f *FuncTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	return f.fn(ctx, args)
}

// stringSchema builds an object schema where every named property is a
// required string.
func stringSchema(names ...string) map[string]any {
	props := make(map[string]any, len(names))
	for _, n := range names {
		props[n] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   names,
	}
}
