package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://api.siliconflow.cn/v1"
	DefaultModel   = "deepseek-ai/DeepSeek-R1-0528-Qwen3-8B"
)

type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Agent    AgentConfig    `yaml:"agent"`
	Tools    ToolsConfig    `yaml:"tools"`
	Cache    CacheConfig    `yaml:"cache"`
	Policy   PolicyConfig   `yaml:"policy"`
	Log      LogConfig      `yaml:"log"`
	Telegram TelegramConfig `yaml:"telegram"`
	Prompts  string         `yaml:"prompts"`
}

type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	Stream  bool   `yaml:"stream"`
}

type AgentConfig struct {
	MaxTurns           int `yaml:"max_turns"`
	SolverTurns        int `yaml:"solver_turns"`
	MaxRetries         int `yaml:"max_retries"`
	MaxServiceFailures int `yaml:"max_service_failures"`
}

type ToolsConfig struct {
	TavilyAPIKey   string        `yaml:"tavily_api_key"`
	TavilyBaseURL  string        `yaml:"tavily_base_url"`
	SerpAPIKey     string        `yaml:"serpapi_api_key"`
	WeatherBaseURL string        `yaml:"weather_base_url"`
	SearchResults  int           `yaml:"search_results"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`
	RenderPages    bool          `yaml:"render_pages"`
}

type CacheConfig struct {
	Path string        `yaml:"path"`
	TTL  time.Duration `yaml:"ttl"`
}

type PolicyConfig struct {
	DenyTools     []string `yaml:"deny_tools"`
	DenyArguments []string `yaml:"deny_arguments"`
}

type LogConfig struct {
	Format  string `yaml:"format"`
	LLMFile string `yaml:"llm_file"`
}

type TelegramConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		LLM: LLMConfig{
			BaseURL: DefaultBaseURL,
			Model:   DefaultModel,
		},
		Agent: AgentConfig{
			MaxTurns:    5,
			SolverTurns: 3,
			MaxRetries:  3,
		},
		Tools: ToolsConfig{
			TavilyBaseURL:  "https://api.tavily.com",
			WeatherBaseURL: "https://wttr.in",
			SearchResults:  5,
			HTTPTimeout:    30 * time.Second,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Log: LogConfig{
			Format:  "console",
			LLMFile: "logs/llm.jsonl",
		},
	}
}

// Load builds a Config from defaults, the optional file at path and the
// environment, in that order. A missing file is not an error when path is
// empty. JSON files are accepted since they are valid YAML.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.applyEnv(os.LookupEnv)
	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.LLM.APIKey, "SILICONFLOW_API_KEY")
	set(&c.LLM.BaseURL, "SILICONFLOW_BASE_URL")
	set(&c.LLM.Model, "MODEL_ID")
	set(&c.Tools.TavilyAPIKey, "TAVILY_API_KEY")
	set(&c.Tools.SerpAPIKey, "SERPAPI_API_KEY", "SERPAPI_KEY")
	set(&c.Telegram.Token, "TELEGRAM_BOT_TOKEN")
}

// Validate reports settings the agents cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm api key is missing (set SILICONFLOW_API_KEY)"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm model is missing"))
	}
	if c.Agent.MaxTurns <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_turns must be positive, got %d", c.Agent.MaxTurns))
	}
	if c.Agent.SolverTurns <= 0 {
		errs = append(errs, fmt.Errorf("agent.solver_turns must be positive, got %d", c.Agent.SolverTurns))
	}
	if c.Agent.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_retries must be positive, got %d", c.Agent.MaxRetries))
	}
	if c.Agent.MaxServiceFailures < 0 {
		errs = append(errs, fmt.Errorf("agent.max_service_failures must not be negative, got %d", c.Agent.MaxServiceFailures))
	}
	if c.Telegram.Enabled && c.Telegram.Token == "" {
		errs = append(errs, errors.New("telegram is enabled but no token is set"))
	}
	return errors.Join(errs...)
}

// GetTelegramConfig returns telegram config if enabled
func (c *Config) GetTelegramConfig() (TelegramConfig, bool) {
	if c.Telegram.Enabled && c.Telegram.Token != "" {
		return c.Telegram, true
	}
	return TelegramConfig{}, false
}
