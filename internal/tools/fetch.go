package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultMaxChars  = 20000
	maxPageBytes     = 5 << 20
)

// FetchTool downloads a page and returns its main content as text.
type FetchTool struct {
	UserAgent string
	Client    *http.Client
	Renderer  PageRenderer // optional; used instead of a plain GET when set
	MaxChars  int
}

func NewFetchTool(client *http.Client, renderer PageRenderer) *FetchTool {
	if client == nil {
		client = http.DefaultClient
	}
	return &FetchTool{
		UserAgent: defaultUserAgent,
		Client:    client,
		Renderer:  renderer,
		MaxChars:  defaultMaxChars,
	}
}

func (s *FetchTool) Name() string {
	return "fetch_page"
}

func (s *FetchTool) Description() string {
	return "Fetch a webpage URL and extract the main content as clean, sanitized text."
}

func (s *FetchTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "The full URL of the webpage (e.g., https://example.com/article)",
			},
		},
		"required": []string{"url"},
	}
}

func (s *FetchTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	raw := strings.TrimSpace(args["url"])
	parsedURL, err := url.Parse(raw)
	if err != nil || (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid url: %q", raw)
	}

	page, err := s.load(ctx, raw)
	if err != nil {
		return "", err
	}

	title, excerpt, content := extract(page, parsedURL)

	var sb strings.Builder
	fmt.Fprintf(&sb, "TITLE: %s\n", title)
	if excerpt != "" {
		fmt.Fprintf(&sb, "EXCERPT: %s\n", excerpt)
	}
	sb.WriteString("\n-- CONTENT --\n")

	limit := s.MaxChars
	if limit <= 0 {
		limit = defaultMaxChars
	}
	if runes := []rune(content); len(runes) > limit {
		content = string(runes[:limit]) + "\n... (content truncated) ..."
	}
	sb.WriteString(content)
	return sb.String(), nil
}

func (s *FetchTool) load(ctx context.Context, target string) (string, error) {
	if s.Renderer != nil {
		return s.Renderer.Render(ctx, target)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.UserAgent)

	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL: status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read page: %w", err)
	}
	return string(body), nil
}

// extract prefers readability's article text and falls back to a sanitized
// Markdown rendering of the whole page.
func extract(page string, pageURL *url.URL) (title, excerpt, content string) {
	strict := bluemonday.StrictPolicy()

	article, err := readability.FromReader(strings.NewReader(page), pageURL)
	if err == nil {
		title = strings.TrimSpace(article.Title)
		excerpt = strings.TrimSpace(plainText(strict, article.Excerpt))
		content = strings.TrimSpace(plainText(strict, article.TextContent))
	}
	if content != "" {
		return title, excerpt, content
	}

	cleaned := bluemonday.UGCPolicy().Sanitize(page)
	md, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		return title, excerpt, strings.TrimSpace(plainText(strict, page))
	}
	return title, excerpt, strings.TrimSpace(md)
}
