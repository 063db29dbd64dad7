package agent

import (
	"regexp"
	"strings"
)

const (
	FinalAnswerMarker = "Final Answer:"
	ObservationMarker = "Observation:"
)

var (
	// Markers only count at the start of a line.
	actionLine      = regexp.MustCompile(`^\s*Action:[ \t]*(.*)`)
	actionInputLine = regexp.MustCompile(`^\s*Action Input:[ \t]*(.*)`)
)

// ParseKind classifies one turn of model output.
type ParseKind int

const (
	// KindNone means neither a final answer nor an action was found.
	KindNone ParseKind = iota
	KindFinalAnswer
	KindAction
	// KindActionMissingInput means an Action line had no Action Input line
	// after it.
	KindActionMissingInput
)

func (k ParseKind) String() string {
	switch k {
	case KindFinalAnswer:
		return "final_answer"
	case KindAction:
		return "action"
	case KindActionMissingInput:
		return "action_missing_input"
	default:
		return "none"
	}
}

// Parsed is the structured reading of one turn.
type Parsed struct {
	Kind   ParseKind
	Answer string
	Action string
	Input  string
}

// Truncate drops everything from the first Observation marker on.
// Observations are supplied by the loop, never by the model.
func Truncate(text string) string {
	if i := strings.Index(text, ObservationMarker); i >= 0 {
		return text[:i]
	}
	return text
}

// Parse reads a final answer or the first Action / Action Input pair from
// text. A final answer wins over any action in the same text.
func Parse(text string) Parsed {
	visible := Truncate(text)

	if i := strings.LastIndex(visible, FinalAnswerMarker); i >= 0 {
		answer := strings.TrimSpace(visible[i+len(FinalAnswerMarker):])
		if answer == "" {
			return Parsed{Kind: KindNone}
		}
		return Parsed{Kind: KindFinalAnswer, Answer: answer}
	}

	lines := strings.Split(visible, "\n")
	for i, line := range lines {
		m := actionLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" {
			return Parsed{Kind: KindNone}
		}
		for _, next := range lines[i+1:] {
			if in := actionInputLine.FindStringSubmatch(next); in != nil {
				return Parsed{Kind: KindAction, Action: name, Input: strings.TrimSpace(in[1])}
			}
		}
		return Parsed{Kind: KindActionMissingInput, Action: name}
	}

	return Parsed{Kind: KindNone}
}
