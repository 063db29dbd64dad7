package llm

import (
	"context"
	"iter"
	"strings"
)

// Request is one completion call.
type Request struct {
	Prompt string
	System string
	// Stop lists literal sequences at which generation halts.
	Stop []string
}

// Completer produces a whole response for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Streamer produces a response incrementally. The returned sequence can be
// ranged over once; the error func reports the outcome after it is drained.
type Streamer interface {
	Stream(ctx context.Context, req Request) (iter.Seq[string], func() error)
}

// Collect drains seq and returns the concatenated text.
func Collect(seq iter.Seq[string], errf func() error) (string, error) {
	var sb strings.Builder
	for fragment := range seq {
		sb.WriteString(fragment)
	}
	if errf != nil {
		if err := errf(); err != nil {
			return sb.String(), err
		}
	}
	return sb.String(), nil
}

// CompleterFunc adapts a function into a Completer.
type CompleterFunc func(ctx context.Context, req Request) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Collecting turns a Streamer into a Completer. onFragment, if set, sees each
// fragment as it arrives.
func Collecting(s Streamer, onFragment func(string)) Completer {
	return CompleterFunc(func(ctx context.Context, req Request) (string, error) {
		seq, errf := s.Stream(ctx, req)
		if onFragment != nil {
			inner := seq
			seq = func(yield func(string) bool) {
				for f := range inner {
					onFragment(f)
					if !yield(f) {
						return
					}
				}
			}
		}
		return Collect(seq, errf)
	})
}
