package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorBold     = "\033[1m"
	colorPurple   = "\033[35m"
	colorNeonCyan = "\033[96m"
	colorNeonMag  = "\033[95m"
	colorYellow   = "\033[93m"
	colorRed      = "\033[91m"
)

// termMu serialises console events with other log output.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// colorize is a no-op unless stdout is a terminal.
func colorize(color, s string) string {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return s
	}
	return color + s + colorReset
}

// rule renders a centred section heading padded with dashes.
func rule(title string) string {
	width := clamp(termWidth(), 40, 120)
	title = " " + title + " "
	pad := width - len([]rune(title))
	if pad < 6 {
		return "---" + title + "---"
	}
	left := pad / 2
	return strings.Repeat("-", left) + title + strings.Repeat("-", pad-left)
}

type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput().
func NewTermWriter() io.Writer {
	return termWriter{}
}

func PrintBanner(w io.Writer, mode string) {
	lines := []string{
		`   __ _  __ _  ___ _ __ | |_| | ___   ___  _ __  `,
		`  / _' |/ _' |/ _ \ '_ \| __| |/ _ \ / _ \| '_ \ `,
		` | (_| | (_| |  __/ | | | |_| | (_) | (_) | |_) |`,
		`  \__,_|\__, |\___|_| |_|\__|_|\___/ \___/| .__/ `,
		`        |___/                             |_|    `,
	}

	width := termWidth()
	for _, l := range lines {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Fprintf(w, "%s%s\n", strings.Repeat(" ", padding), colorize(colorNeonCyan, l))
	}
	tag := fmt.Sprintf(">> %s mode <<", strings.ToUpper(mode))
	fmt.Fprintf(w, "%s%s\n\n", strings.Repeat(" ", clamp((width-len(tag))/2, 0, width)), colorize(colorBold, tag))
}

func writeConsole(w io.Writer, evt Event) {
	termMu.Lock()
	defer termMu.Unlock()

	d := evt.Data
	switch evt.Type {
	case EventTypeTurn:
		label := "Turn"
		if evt.Phase == "solver" {
			label = "Solver Turn"
		}
		fmt.Fprintf(w, "\n%s\n", colorize(colorPurple, rule(fmt.Sprintf("%s %v/%v", label, d["turn"], d["max_turns"]))))
	case EventTypeLLM:
		if e, ok := d["error"]; ok {
			fmt.Fprintf(w, "%s %v\n", colorize(colorRed, "[LLM ERROR]"), e)
			return
		}
		switch evt.Phase {
		case "planner", "synthesis", "critique":
			return // rendered by the plan/outcome/critique events
		}
		fmt.Fprintf(w, "%s\n%v\n", colorize(colorBold, "LLM Output:"), d["response"])
	case EventTypeAction:
		fmt.Fprintf(w, "%s %v\n%s %v\n", colorize(colorNeonCyan, "Parsed Action:"), d["tool"], colorize(colorNeonCyan, "Parsed Input:"), d["input"])
	case EventTypeObservation:
		fmt.Fprintf(w, "%v\n", d["observation"])
	case EventTypePlan:
		fmt.Fprintf(w, "\n%s\n", colorize(colorBold, "[Planner Output]"))
		if steps, ok := d["steps"].([]string); ok {
			for i, s := range steps {
				fmt.Fprintf(w, "%d. %s\n", i+1, s)
			}
		}
	case EventTypeStep:
		if done, _ := d["done"].(bool); done {
			fmt.Fprintf(w, "%s %v\n", colorize(colorNeonMag, "Step Result:"), d["result"])
			return
		}
		fmt.Fprintf(w, "\n%s\n", colorize(colorNeonMag, rule(fmt.Sprintf("Executing Step %v: %v", d["index"], d["step"]))))
	case EventTypeCritique:
		fmt.Fprintf(w, "\n%s\n%v\n", colorize(colorBold, fmt.Sprintf("[Critique %v]", d["attempt"])), d["critique"])
		if ok, _ := d["satisfied"].(bool); ok {
			fmt.Fprintln(w, colorize(colorNeonCyan, "Answer deemed satisfactory."))
		}
	case EventTypeOutcome:
		fmt.Fprintf(w, "\n%s\n%v\n", colorize(colorNeonCyan, fmt.Sprintf("[%s result]", evt.Phase)), d["text"])
	case EventTypePolicyCheck:
		fmt.Fprintf(w, "%s %v: %v\n", colorize(colorYellow, "[POLICY] denied"), d["tool"], d["reason"])
	default:
		fmt.Fprintf(w, "[%s] %v\n", evt.Type, d)
	}
}
