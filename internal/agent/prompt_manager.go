package agent

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
)

// PromptManager renders prompt templates, preferring files in Directory
// over the built-in text. A nil or empty-directory manager uses built-ins.
type PromptManager struct {
	Directory string

	mu     sync.Mutex
	parsed map[string]*template.Template
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// Source returns the raw template text for name and whether it came from
// the prompt directory.
func (pm *PromptManager) Source(name string) (string, bool, error) {
	if pm != nil && pm.Directory != "" {
		data, err := os.ReadFile(filepath.Join(pm.Directory, name))
		switch {
		case err == nil:
			return string(data), true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("failed to read prompt %s: %w", name, err)
		}
	}

	text, ok := builtinPrompts[name]
	if !ok {
		return "", false, fmt.Errorf("unknown prompt %s", name)
	}
	return text, false, nil
}

func (pm *PromptManager) template(name string) (*template.Template, error) {
	if pm != nil {
		pm.mu.Lock()
		defer pm.mu.Unlock()
		if t, ok := pm.parsed[name]; ok {
			return t, nil
		}
	}

	text, _, err := pm.Source(name)
	if err != nil {
		return nil, err
	}
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
	}

	if pm != nil {
		if pm.parsed == nil {
			pm.parsed = make(map[string]*template.Template)
		}
		pm.parsed[name] = t
	}
	return t, nil
}

// Render executes the named template with data.
func (pm *PromptManager) Render(name string, data any) (string, error) {
	t, err := pm.template(name)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return sb.String(), nil
}
