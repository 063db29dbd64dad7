package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// WeatherTool looks up current conditions from a wttr.in compatible service.
type WeatherTool struct {
	BaseURL string
	Client  *http.Client
}

func NewWeatherTool(baseURL string, client *http.Client) *WeatherTool {
	if client == nil {
		client = http.DefaultClient
	}
	return &WeatherTool{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

func (w *WeatherTool) Name() string {
	return "get_weather"
}

func (w *WeatherTool) Description() string {
	return "Look up the current weather for a city."
}

func (w *WeatherTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"city": map[string]any{
				"type":        "string",
				"description": "City name, e.g. Beijing",
			},
		},
		"required": []string{"city"},
	}
}

type wttrResponse struct {
	CurrentCondition []struct {
		TempC       string `json:"temp_C"`
		WeatherDesc []struct {
			Value string `json:"value"`
		} `json:"weatherDesc"`
	} `json:"current_condition"`
}

func (w *WeatherTool) Invoke(ctx context.Context, args map[string]string) (string, error) {
	city := strings.TrimSpace(args["city"])
	if city == "" {
		return "", fmt.Errorf("city is required")
	}

	endpoint := fmt.Sprintf("%s/%s?format=j1", w.BaseURL, url.PathEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network problem while querying weather: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}

	var data wttrResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("failed to decode weather data: %w", err)
	}
	if len(data.CurrentCondition) == 0 || len(data.CurrentCondition[0].WeatherDesc) == 0 {
		return "", fmt.Errorf("failed to parse weather data, the city name may be invalid")
	}

	current := data.CurrentCondition[0]
	return fmt.Sprintf("%s current weather: %s, %s °C", city, current.WeatherDesc[0].Value, current.TempC), nil
}
