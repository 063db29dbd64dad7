package llm

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// fakeModel records the last call and replays chunks through the streaming
// callback when one is set.
type fakeModel struct {
	chunks   []string
	err      error
	messages []llms.MessageContent
	opts     llms.CallOptions
}

func (m *fakeModel) GenerateContent(ctx context.Context, msgs []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.messages = msgs
	m.opts = llms.CallOptions{}
	for _, o := range options {
		o(&m.opts)
	}
	if m.err != nil {
		return nil, m.err
	}

	var full string
	for _, c := range m.chunks {
		if m.opts.StreamingFunc != nil {
			if err := m.opts.StreamingFunc(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
		full += c
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: full}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestClient_Complete(t *testing.T) {
	model := &fakeModel{chunks: []string{"Thought: ", "done"}}
	c := NewClient(model)

	out, err := c.Complete(context.Background(), Request{
		Prompt: "question",
		System: "be brief",
		Stop:   []string{"Observation:"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Thought: done", out)
	assert.Equal(t, []string{"Observation:"}, model.opts.StopWords)
	assert.Nil(t, model.opts.StreamingFunc)

	require.Len(t, model.messages, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.messages[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.messages[1].Role)
	assert.Equal(t, llms.TextContent{Text: "question"}, model.messages[1].Parts[0])
}

func TestClient_CompleteWithoutSystem(t *testing.T) {
	model := &fakeModel{chunks: []string{"ok"}}
	_, err := NewClient(model).Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Len(t, model.messages, 1)
	assert.Empty(t, model.opts.StopWords)
}

func TestClient_CompleteError(t *testing.T) {
	boom := errors.New("unavailable")
	_, err := NewClient(&fakeModel{err: boom}).Complete(context.Background(), Request{Prompt: "p"})
	assert.ErrorIs(t, err, boom)
}

func TestClient_Stream(t *testing.T) {
	model := &fakeModel{chunks: []string{"Final", " Answer:", " 42"}}
	seq, errf := NewClient(model).Stream(context.Background(), Request{Prompt: "p"})

	fragments := slices.Collect(seq)
	require.NoError(t, errf())
	assert.Equal(t, []string{"Final", " Answer:", " 42"}, fragments)

	// the sequence is not restartable
	assert.Empty(t, slices.Collect(seq))
}

func TestClient_StreamEarlyStop(t *testing.T) {
	model := &fakeModel{chunks: []string{"a", "b", "c"}}
	seq, errf := NewClient(model).Stream(context.Background(), Request{Prompt: "p"})

	for f := range seq {
		assert.Equal(t, "a", f)
		break
	}
	assert.ErrorIs(t, errf(), context.Canceled)
}

func TestCollecting(t *testing.T) {
	model := &fakeModel{chunks: []string{"Action: echo\n", "Action Input: hi"}}
	var seen []string
	c := Collecting(NewClient(model), func(f string) { seen = append(seen, f) })

	out, err := c.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Action: echo\nAction Input: hi", out)
	assert.Equal(t, []string{"Action: echo\n", "Action Input: hi"}, seen)
}

func TestCollect_Error(t *testing.T) {
	boom := errors.New("stream broke")
	seq := func(yield func(string) bool) {
		yield("partial")
	}
	out, err := Collect(seq, func() error { return boom })
	assert.Equal(t, "partial", out)
	assert.ErrorIs(t, err, boom)
}
