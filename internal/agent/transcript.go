package agent

import "strings"

// TurnRecord is one turn's model output and what the loop did with it.
type TurnRecord struct {
	Output      string
	Action      string
	Input       string
	Observation string
}

// Transcript is the append-only history replayed into every prompt.
type Transcript struct {
	base    string
	records []TurnRecord
}

func NewTranscript(base string) *Transcript {
	return &Transcript{base: base}
}

func (t *Transcript) Append(r TurnRecord) {
	t.records = append(t.records, r)
}

// Observe attaches an observation line to the latest record.
func (t *Transcript) Observe(observation string) {
	if len(t.records) == 0 {
		return
	}
	t.records[len(t.records)-1].Observation = observation
}

func (t *Transcript) Records() []TurnRecord {
	out := make([]TurnRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Render concatenates the base instructions and every record so far.
func (t *Transcript) Render() string {
	var sb strings.Builder
	sb.WriteString(t.base)
	for _, r := range t.records {
		sb.WriteString(r.Output)
		sb.WriteString("\n")
		if r.Observation != "" {
			sb.WriteString(r.Observation)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}
