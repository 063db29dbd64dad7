package tools

import (
	"context"
	"fmt"
	"strings"

	lctools "github.com/tmc/langchaingo/tools"
	"github.com/tmc/langchaingo/tools/duckduckgo"
	"github.com/tmc/langchaingo/tools/serpapi"
)

// SearchTool answers free-text web queries. It uses SerpApi when a key is
// configured and DuckDuckGo otherwise.
type SearchTool struct {
	client   lctools.Tool
	provider string
}

func NewSearchTool(serpAPIKey string, maxResults int) (*SearchTool, error) {
	if serpAPIKey != "" {
		serp, err := serpapi.New(serpapi.WithAPIKey(serpAPIKey))
		if err != nil {
			return nil, fmt.Errorf("failed to create serpapi client: %w", err)
		}
		return &SearchTool{client: serp, provider: "serpapi"}, nil
	}

	if maxResults <= 0 {
		maxResults = 5
	}
	ddg, err := duckduckgo.New(maxResults, duckduckgo.DefaultUserAgent)
	if err != nil {
		return nil, err
	}
	return &SearchTool{client: ddg, provider: "duckduckgo"}, nil
}

// NewSearchToolWith wraps any langchaingo tool as the search backend.
func NewSearchToolWith(client lctools.Tool) *SearchTool {
	return &SearchTool{client: client, provider: client.Name()}
}

func (s *SearchTool) Name() string {
	return "search"
}

func (s *SearchTool) Description() string {
	return "Search the web for the given query and return the most relevant snippets."
}

func (s *SearchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The search query to look up",
			},
		},
		"required": []string{"query"},
	}
}

// Provider names the backend in use.
func (s *SearchTool) Provider() string {
	return s.provider
}

func (s *SearchTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	query := strings.TrimSpace(args["query"])
	if query == "" {
		return "", fmt.Errorf("query is required")
	}

	res, err := s.client.Call(ctx, query)
	if err != nil {
		return "", fmt.Errorf("search failed: %w", err)
	}
	if strings.TrimSpace(res) == "" {
		return fmt.Sprintf("Sorry, no information was found about '%s'.", query), nil
	}
	return res, nil
}
