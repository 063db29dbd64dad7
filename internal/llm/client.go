package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rahul/agentloop/pkg/config"
)

// ErrEmptyResponse is returned when the model answers with no choices.
var ErrEmptyResponse = errors.New("model returned no choices")

// Client talks to a langchaingo model. It implements Completer and Streamer.
type Client struct {
	Model llms.Model
}

func NewClient(model llms.Model) *Client {
	return &Client{Model: model}
}

// NewOpenAI builds a client for an OpenAI-compatible endpoint.
func NewOpenAI(cfg config.LLMConfig) (*Client, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return NewClient(model), nil
}

func messages(req Request) []llms.MessageContent {
	var msgs []llms.MessageContent
	if req.System != "" {
		msgs = append(msgs, llms.TextParts(llms.ChatMessageTypeSystem, req.System))
	}
	return append(msgs, llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt))
}

func options(req Request) []llms.CallOption {
	var opts []llms.CallOption
	if len(req.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(req.Stop))
	}
	return opts
}

func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.Model.GenerateContent(ctx, messages(req), options(req)...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Content, nil
}

func (c *Client) Stream(ctx context.Context, req Request) (iter.Seq[string], func() error) {
	var (
		err     error
		started bool
	)

	seq := func(yield func(string) bool) {
		if started {
			return
		}
		started = true

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		chunks := make(chan string)
		go func() {
			defer close(chunks)
			opts := append(options(req), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if err := ctx.Err(); err != nil {
					return err
				}
				select {
				case chunks <- string(chunk):
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}))
			resp, genErr := c.Model.GenerateContent(ctx, messages(req), opts...)
			if genErr == nil && (resp == nil || len(resp.Choices) == 0) {
				genErr = ErrEmptyResponse
			}
			err = genErr
		}()

		for chunk := range chunks {
			if !yield(chunk) {
				cancel()
				for range chunks {
				}
				return
			}
		}
	}

	return seq, func() error { return err }
}
