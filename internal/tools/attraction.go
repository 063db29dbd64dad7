package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// AttractionTool recommends sights for a city under given weather using the
// Tavily search API.
type AttractionTool struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	policy  *bluemonday.Policy
}

func NewAttractionTool(apiKey, baseURL string, client *http.Client) *AttractionTool {
	if client == nil {
		client = http.DefaultClient
	}
	return &AttractionTool{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		policy:  bluemonday.StrictPolicy(),
	}
}

func (a *AttractionTool) Name() string {
	return "get_attraction"
}

func (a *AttractionTool) Description() string {
	return "Recommend tourist attractions for a city given its current weather. Input is a JSON object with city and weather."
}

func (a *AttractionTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "City to visit",
			},
			"weather": map[string]any{
				"type":        "string",
				"description": "Current weather, e.g. sunny or light rain",
			},
		},
		"required": []string{"city", "weather"},
	}
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

func (a *AttractionTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	if a.APIKey == "" {
		return "", fmt.Errorf("TAVILY_API_KEY is not configured")
	}
	city := strings.TrimSpace(args["city"])
	if city == "" {
		return "", fmt.Errorf("city is required")
	}
	weather := strings.TrimSpace(args["weather"])

	query := fmt.Sprintf("Best tourist attractions to visit in '%s' during '%s' weather, with reasons", city, weather)
	body, err := json.Marshal(map[string]any{
		"api_key":        a.APIKey,
		"query":          query,
		"search_depth":   "basic",
		"include_answer": true,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("tavily search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tavily returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("error decoding tavily response: %w", err)
	}

	if answer := strings.TrimSpace(plainText(a.policy, out.Answer)); answer != "" {
		return answer, nil
	}

	var lines []string
	for _, r := range out.Results {
		lines = append(lines, fmt.Sprintf("- %s: %s", plainText(a.policy, r.Title), plainText(a.policy, r.Content)))
	}
	if len(lines) == 0 {
		return "Sorry, no attraction recommendations were found.", nil
	}
	return "Based on the search, here is what I found:\n" + strings.Join(lines, "\n"), nil
}

// plainText strips markup and undoes the entity escaping bluemonday applies
// to text nodes.
func plainText(p *bluemonday.Policy, s string) string {
	return html.UnescapeString(p.Sanitize(s))
}
