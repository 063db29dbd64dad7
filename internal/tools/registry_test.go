package tools

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahul/agentloop/internal/governance"
)

func echoTool() *FuncTool {
	return Func("echo", "Returns its input unchanged.", []string{"input"},
		func(_ context.Context, args map[string]string) (string, error) {
			return args["input"], nil
		})
}

func TestRegistry_Register(t *testing.T) {
	tests := []struct {
		name    string
		regName string
		tool    Tool
		wantErr error
	}{
		{name: "ok", regName: "echo", tool: echoTool()},
		{name: "empty name", regName: "  ", tool: echoTool(), wantErr: ErrInvalidTool},
		{name: "nil tool", regName: "nothing", tool: nil, wantErr: ErrInvalidTool},
		{name: "duplicate", regName: "dup", tool: echoTool(), wantErr: ErrDuplicateName},
		{name: "nil func", regName: "noop", tool: Func("noop", "", nil, nil), wantErr: ErrInvalidTool},
		{name: "typed nil pointer", regName: "x", tool: (*FuncTool)(nil), wantErr: ErrInvalidTool},
		{name: "cached nil func", regName: "cached", tool: Cached(Func("cached", "", nil, nil), &memoryCache{entries: map[string]string{}}, time.Minute), wantErr: ErrInvalidTool},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Register("dup", echoTool()))

			err := r.Register(tt.regName, tt.tool)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, r.Has(tt.regName))
				return
			}
			require.NoError(t, err)
			assert.True(t, r.Has(tt.regName))
		})
	}
}

func TestRegistry_UnknownToolLeavesStateUntouched(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(echoTool()))

	assert.False(t, r.Has("missing"))
	_, err := r.Execute(context.Background(), "missing", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
	assert.False(t, r.Has("missing"))
	assert.Equal(t, []string{"echo"}, r.Names())
}

func TestRegistry_Execute(t *testing.T) {
	boom := errors.New("boom")
	r := NewRegistry()
	require.NoError(t, r.Add(echoTool()))
	require.NoError(t, r.Add(Func("fail", "Always fails.", nil,
		func(context.Context, map[string]string) (string, error) { return "", boom })))

	out, err := r.Execute(context.Background(), "echo", map[string]string{"input": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	_, err = r.Execute(context.Background(), "fail", nil)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "fail", execErr.Tool)
	assert.ErrorIs(t, err, boom)
}

func TestRegistry_AddRejectsNotInvocable(t *testing.T) {
	r := NewRegistry()
	assert.ErrorIs(t, r.Add((*FuncTool)(nil)), ErrInvalidTool)
	assert.ErrorIs(t, r.Add(Func("noop", "", nil, nil)), ErrInvalidTool)
	assert.Empty(t, r.Names())
}

func TestRegistry_ExecuteRecoversPanic(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(Func("crash", "", nil,
		func(context.Context, map[string]string) (string, error) {
			var m map[string]string
			m["boom"] = "x"
			return "", nil
		})))

	var out string
	var err error
	require.NotPanics(t, func() {
		out, err = r.Execute(context.Background(), "crash", nil)
	})
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "crash", execErr.Tool)
	assert.Contains(t, err.Error(), "panic")
	assert.Empty(t, out)
}

func TestRegistry_Policy(t *testing.T) {
	engine := governance.NewDefaultPolicyEngine()
	engine.DenyTool("echo")

	called := false
	r := NewRegistry().WithPolicy(engine)
	require.NoError(t, r.Add(Func("echo", "", []string{"input"},
		func(context.Context, map[string]string) (string, error) {
			called = true
			return "", nil
		})))

	_, err := r.Execute(context.Background(), "echo", map[string]string{"input": "x"})
	assert.ErrorIs(t, err, ErrPolicyDenied)
	assert.False(t, called)
}

func TestRegistry_UnregisterAndDescribe(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(echoTool()))
	nop := func(context.Context, map[string]string) (string, error) { return "", nil }
	require.NoError(t, r.Add(Func("get_attraction", "Recommends sights.", []string{"city", "weather"}, nop)))
	require.NoError(t, r.Add(Func("noop", "", nil, nop)))

	assert.Equal(t,
		"echo(input): Returns its input unchanged.\n"+
			"get_attraction(city, weather): Recommends sights.\n"+
			"noop(): No description available",
		r.Describe())

	r.Unregister("echo")
	r.Unregister("echo")
	assert.Equal(t, []string{"get_attraction", "noop"}, r.Names())
	assert.Nil(t, r.Get("echo"))
}
