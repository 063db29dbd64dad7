package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypeTurn        EventType = "turn"
	EventTypeLLM         EventType = "llm"
	EventTypeAction      EventType = "action"
	EventTypeObservation EventType = "observation"
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypeCritique    EventType = "critique"
	EventTypeOutcome     EventType = "outcome"
	EventTypePolicyCheck EventType = "policy_check"
)

// Format selects how events are written to the main output.
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	Phase     string         `json:"phase,omitempty"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Logger handles structured logging. A nil *Logger discards everything.
type Logger struct {
	out        io.Writer
	format     Format
	llmLogPath string
	maxSize    int64

	mu sync.Mutex
}

// NewLogger writes events to out in the given format. Completion prompts and
// responses are also appended to llmLogPath unless it is empty.
func NewLogger(format Format, out io.Writer, llmLogPath string) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if format != FormatConsole {
		format = FormatJSON
	}
	return &Logger{
		out:        out,
		format:     format,
		llmLogPath: llmLogPath,
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

var runSeq atomic.Uint32

// NewRunID returns a short time-based identifier for one top-level run.
func NewRunID() string {
	n := uint64(time.Now().UnixNano())<<8 | uint64(runSeq.Add(1)&0xff)
	return strconv.FormatUint(n, 16)
}

// Log emits a structured event.
func (l *Logger) Log(evt Event) {
	if l == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.format == FormatConsole {
		writeConsole(l.out, evt)
	} else {
		data, err := json.Marshal(evt)
		if err != nil {
			fmt.Fprintf(l.out, "{\"error\": \"failed to marshal event: %v\"}\n", err)
			return
		}
		fmt.Fprintln(l.out, string(data))
	}

	if evt.Type == EventTypeLLM && l.llmLogPath != "" {
		data, err := json.Marshal(evt)
		if err == nil {
			l.writeToFile(data)
		}
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogTurn(runID, phase string, turn, maxTurns int) {
	l.Log(Event{
		Type:  EventTypeTurn,
		RunID: runID,
		Phase: phase,
		Data:  map[string]any{"turn": turn, "max_turns": maxTurns},
	})
}

func (l *Logger) LogLLM(runID, phase, prompt, response string, callErr error) {
	data := map[string]any{
		"prompt":   prompt,
		"response": response,
	}
	if callErr != nil {
		data["error"] = callErr.Error()
	}
	l.Log(Event{Type: EventTypeLLM, RunID: runID, Phase: phase, Data: data})
}

func (l *Logger) LogAction(runID, phase, tool, input string) {
	l.Log(Event{
		Type:  EventTypeAction,
		RunID: runID,
		Phase: phase,
		Data:  map[string]any{"tool": tool, "input": input},
	})
}

func (l *Logger) LogObservation(runID, phase, observation string) {
	l.Log(Event{
		Type:  EventTypeObservation,
		RunID: runID,
		Phase: phase,
		Data:  map[string]any{"observation": observation},
	})
}

func (l *Logger) LogPlan(runID string, steps []string) {
	l.Log(Event{
		Type:  EventTypePlan,
		RunID: runID,
		Phase: "planner",
		Data:  map[string]any{"steps": steps},
	})
}

// LogStep records a plan step starting (result empty) or finishing.
func (l *Logger) LogStep(runID string, index int, step, result string, done bool) {
	data := map[string]any{"index": index, "step": step, "done": done}
	if done {
		data["result"] = result
	}
	l.Log(Event{Type: EventTypeStep, RunID: runID, Phase: "solver", Data: data})
}

func (l *Logger) LogCritique(runID string, attempt int, answer, critique string, satisfied bool) {
	l.Log(Event{
		Type:  EventTypeCritique,
		RunID: runID,
		Phase: "reflect",
		Data: map[string]any{
			"attempt":   attempt,
			"answer":    answer,
			"critique":  critique,
			"satisfied": satisfied,
		},
	})
}

func (l *Logger) LogOutcome(runID, phase, kind, text string) {
	l.Log(Event{
		Type:  EventTypeOutcome,
		RunID: runID,
		Phase: phase,
		Data:  map[string]any{"kind": kind, "text": text},
	})
}

func (l *Logger) LogPolicyCheck(runID, phase, tool, reason string) {
	l.Log(Event{
		Type:  EventTypePolicyCheck,
		RunID: runID,
		Phase: phase,
		Data:  map[string]any{"tool": tool, "allowed": false, "reason": reason},
	})
}
