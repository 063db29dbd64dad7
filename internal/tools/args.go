package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// defaultParam names the argument that receives plain-text input when a
// tool declares no parameters.
const defaultParam = "input"

// ParseArgs turns a raw Action Input line into named arguments for t.
// A JSON object (repaired if needed) maps key by key; anything else is bound
// to the tool's primary parameter.
func ParseArgs(input string, t Tool) map[string]string {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "{") {
		if args, err := parseObject(trimmed); err == nil {
			return args
		}
	}

	return map[string]string{primaryParam(t): unquote(trimmed)}
}

func parseObject(s string) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(s)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to repair JSON: unmarshal error: %w, repair error: %v", err, repairErr)
		}
		raw = nil
		if err := json.Unmarshal([]byte(repaired), &raw); err != nil {
			return nil, fmt.Errorf("failed to unmarshal repaired JSON: %w", err)
		}
	}

	args := make(map[string]string, len(raw))
	for k, v := range raw {
		args[k] = stringify(v)
	}
	return args, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	default:
		return fmt.Sprint(val)
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func primaryParam(t Tool) string {
	if names := ParamNames(t); len(names) > 0 {
		return names[0]
	}
	return defaultParam
}

// ParamNames lists a tool's parameters: required ones in declared order,
// then the remaining properties sorted by name.
func ParamNames(t Tool) []string {
	if t == nil {
		return nil
	}
	schema := t.Parameters()
	if schema == nil {
		return nil
	}

	var names []string
	seen := make(map[string]bool)

	switch req := schema["required"].(type) {
	case []string:
		for _, n := range req {
			if !seen[n] {
				names = append(names, n)
				seen[n] = true
			}
		}
	case []any:
		for _, v := range req {
			if n, ok := v.(string); ok && !seen[n] {
				names = append(names, n)
				seen[n] = true
			}
		}
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		var rest []string
		for n := range props {
			if !seen[n] {
				rest = append(rest, n)
			}
		}
		sort.Strings(rest)
		names = append(names, rest...)
	}

	return names
}
