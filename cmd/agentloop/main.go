package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rahul/agentloop/internal/agent"
	"github.com/rahul/agentloop/internal/gateway"
	"github.com/rahul/agentloop/internal/governance"
	"github.com/rahul/agentloop/internal/llm"
	"github.com/rahul/agentloop/internal/observability"
	"github.com/rahul/agentloop/internal/store"
	"github.com/rahul/agentloop/internal/tools"
	"github.com/rahul/agentloop/pkg/config"
)

var defaultQuestions = map[string]string{
	"react":   "2025年销量最高新能源汽车是哪款?现在已经是2026年了。",
	"plan":    "一个水果店周一卖出了15个苹果。周二卖出的苹果数量是周一的两倍。周三卖出的数量比周二少了5个。请问这三天总共卖出了多少个苹果？",
	"reflect": "2024年图灵奖得主是谁？",
}

func main() {
	mode := flag.String("mode", "react", "orchestration pattern: react, plan or reflect")
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	logFormat := flag.String("log", "", "log format: console or json (overrides config)")
	telegram := flag.Bool("telegram", false, "serve questions from Telegram instead of the command line")
	flag.Parse()

	os.Exit(run(*mode, *configPath, *logFormat, *telegram, flag.Args()))
}

func run(mode, configPath, logFormat string, telegram bool, args []string) int {
	// a missing .env is fine; real environment variables still apply
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}
	if telegram {
		cfg.Telegram.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if _, ok := defaultQuestions[mode]; !ok {
		log.Printf("unknown mode %q (want react, plan or reflect)", mode)
		return 1
	}

	log.SetOutput(observability.NewTermWriter())
	format := observability.Format(cfg.Log.Format)
	logger := observability.NewLogger(format, os.Stdout, cfg.Log.LLMFile)
	if format == observability.FormatConsole {
		observability.PrintBanner(os.Stdout, mode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := llm.NewOpenAI(cfg.LLM)
	if err != nil {
		log.Printf("llm: %v", err)
		return 1
	}
	var completer llm.Completer = client
	if cfg.LLM.Stream {
		completer = llm.Collecting(client, nil)
	}

	registry, cleanup, err := buildRegistry(ctx, cfg)
	if err != nil {
		log.Printf("tools: %v", err)
		return 1
	}
	defer cleanup()

	prompts := agent.NewPromptManager(cfg.Prompts)
	runner := newRunner(mode, cfg, completer, registry, prompts, logger)

	if tgCfg, ok := cfg.GetTelegramConfig(); ok {
		return serveTelegram(ctx, tgCfg, runner)
	}

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		question = defaultQuestions[mode]
	}
	fmt.Printf("Question: %s\n", question)

	outcome, err := runner.Run(ctx, question)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrNoPlan):
			fmt.Println("Failed to generate a plan.")
		case errors.Is(err, agent.ErrServiceUnavailable):
			fmt.Println("The model service is unavailable.")
		}
		log.Printf("run: %v", err)
		return 1
	}

	fmt.Printf("\nFinal Result:\n%s\n", outcome.String())
	return 0
}

func newRunner(mode string, cfg *config.Config, completer llm.Completer, registry *tools.Registry, prompts *agent.PromptManager, logger *observability.Logger) agent.Runner {
	react := agent.NewReActAgent(completer, registry, prompts, logger)
	react.MaxTurns = cfg.Agent.MaxTurns
	react.MaxServiceFailures = cfg.Agent.MaxServiceFailures

	switch mode {
	case "plan":
		solver := agent.NewSolver(completer, registry, prompts, logger)
		solver.MaxTurns = cfg.Agent.SolverTurns
		solver.MaxServiceFailures = cfg.Agent.MaxServiceFailures
		ps := agent.NewPlanAndSolveAgent(completer, agent.NewPlanner(completer, prompts, logger), solver, prompts, logger)
		ps.MaxServiceFailures = cfg.Agent.MaxServiceFailures
		return ps
	case "reflect":
		reflect := agent.NewReflectAgent(react, completer, prompts, logger)
		reflect.MaxRetries = cfg.Agent.MaxRetries
		reflect.MaxServiceFailures = cfg.Agent.MaxServiceFailures
		return reflect
	default:
		return react
	}
}

func buildRegistry(ctx context.Context, cfg *config.Config) (*tools.Registry, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	engine, err := governance.NewPolicyEngine(cfg.Policy.DenyTools, cfg.Policy.DenyArguments)
	if err != nil {
		return nil, cleanup, err
	}
	registry := tools.NewRegistry().WithPolicy(engine)

	var cache tools.ResultCache
	if cfg.Cache.Path != "" {
		c, err := store.NewToolCache(cfg.Cache.Path)
		if err != nil {
			return nil, cleanup, fmt.Errorf("failed to open tool cache: %w", err)
		}
		closers = append(closers, func() { c.Close() })
		if n, err := c.Prune(ctx); err == nil && n > 0 {
			log.Printf("pruned %d expired cache entries", n)
		}
		cache = c
	}

	httpClient := &http.Client{Timeout: cfg.Tools.HTTPTimeout}
	var all []tools.Tool

	all = append(all, tools.NewWeatherTool(cfg.Tools.WeatherBaseURL, httpClient))
	if cfg.Tools.TavilyAPIKey != "" {
		all = append(all, tools.NewAttractionTool(cfg.Tools.TavilyAPIKey, cfg.Tools.TavilyBaseURL, httpClient))
	}

	searchTool, err := tools.NewSearchTool(cfg.Tools.SerpAPIKey, cfg.Tools.SearchResults)
	if err != nil {
		log.Printf("Warning: Failed to initialize search tool: %v", err)
	} else {
		all = append(all, searchTool)
	}

	var renderer tools.PageRenderer
	if cfg.Tools.RenderPages {
		chrome := tools.NewChromeRenderer(cfg.Tools.HTTPTimeout)
		closers = append(closers, chrome.Close)
		renderer = chrome
	}
	all = append(all, tools.NewFetchTool(httpClient, renderer))

	for _, t := range all {
		if err := registry.Add(tools.Cached(t, cache, cfg.Cache.TTL)); err != nil {
			return nil, cleanup, err
		}
	}
	return registry, cleanup, nil
}

func serveTelegram(ctx context.Context, tgCfg config.TelegramConfig, runner agent.Runner) int {
	gw, err := gateway.NewTelegramGateway(tgCfg.Token, runner)
	if err != nil {
		log.Printf("telegram: %v", err)
		return 1
	}
	var tg gateway.Messenger = gw
	defer tg.Stop()

	if err := tg.Start(ctx); err != nil {
		log.Printf("\033[91m[ FAIL ] GATEWAY CRITICAL ERROR: %v\033[0m", err)
		return 1
	}
	log.Println("gateway stopped")
	return 0
}
