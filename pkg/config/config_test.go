package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Agent.MaxTurns)
	assert.Equal(t, 3, cfg.Agent.SolverTurns)
	assert.Equal(t, 3, cfg.Agent.MaxRetries)
	assert.Equal(t, 0, cfg.Agent.MaxServiceFailures)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_Files(t *testing.T) {
	type expected struct {
		model    string
		maxTurns int
		ttl      time.Duration
		deny     []string
	}

	tests := []struct {
		name     string
		file     string
		content  string
		expected expected
	}{
		{
			name: "yaml file",
			file: "config.yaml",
			content: `
llm:
  model: qwen
agent:
  max_turns: 8
cache:
  ttl: 10m
policy:
  deny_tools: [fetch_page]
`,
			expected: expected{model: "qwen", maxTurns: 8, ttl: 10 * time.Minute, deny: []string{"fetch_page"}},
		},
		{
			name:     "json file",
			file:     "config.json",
			content:  `{"llm": {"model": "glm"}, "agent": {"max_turns": 2}}`,
			expected: expected{model: "glm", maxTurns: 2, ttl: time.Hour},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)

			assert.Equal(t, tt.expected.model, cfg.LLM.Model)
			assert.Equal(t, tt.expected.maxTurns, cfg.Agent.MaxTurns)
			assert.Equal(t, tt.expected.ttl, cfg.Cache.TTL)
			assert.Equal(t, tt.expected.deny, cfg.Policy.DenyTools)
			// untouched sections keep defaults
			assert.Equal(t, 3, cfg.Agent.SolverTurns)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SILICONFLOW_API_KEY": "sk-test",
		"MODEL_ID":            "custom-model",
		"SERPAPI_KEY":         "serp-fallback",
		"TAVILY_API_KEY":      "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	cfg.Tools.TavilyAPIKey = "from-file"
	cfg.applyEnv(lookup)

	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, "custom-model", cfg.LLM.Model)
	assert.Equal(t, DefaultBaseURL, cfg.LLM.BaseURL)
	assert.Equal(t, "serp-fallback", cfg.Tools.SerpAPIKey)
	assert.Equal(t, "from-file", cfg.Tools.TavilyAPIKey, "empty env values do not override")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) { c.LLM.APIKey = "k" },
		},
		{
			name:    "missing key",
			mutate:  func(c *Config) {},
			wantErr: "api key",
		},
		{
			name: "zero turns",
			mutate: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Agent.MaxTurns = 0
			},
			wantErr: "max_turns",
		},
		{
			name: "negative failure cap",
			mutate: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Agent.MaxServiceFailures = -1
			},
			wantErr: "max_service_failures",
		},
		{
			name: "telegram without token",
			mutate: func(c *Config) {
				c.LLM.APIKey = "k"
				c.Telegram.Enabled = true
			},
			wantErr: "telegram",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
