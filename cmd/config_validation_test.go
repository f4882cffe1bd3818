package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Laisky/icebreaker/library/config"
)

// TestValidateStartupConfigWithGetterEmpty verifies empty configuration passes validation.
func TestValidateStartupConfigWithGetterEmpty(t *testing.T) {
	err := validateStartupConfigWithGetter(config.NewMapGetter(map[string]any{}))
	require.NoError(t, err)
}

func TestValidateStartupConfigWithGetterNil(t *testing.T) {
	require.Error(t, validateStartupConfigWithGetter(nil))
}

// TestValidateStartupConfigWithGetterValidConfig verifies valid explicit configuration passes validation.
func TestValidateStartupConfigWithGetterValidConfig(t *testing.T) {
	cfg := map[string]any{
		"settings": map[string]any{
			"openai": map[string]any{
				"api_key":         "sk-test",
				"model":           "gpt-4o-mini",
				"temperature":     0.7,
				"base_url":        "https://api.openai.com/v1",
				"timeout_seconds": 60,
			},
			"serpapi": map[string]any{
				"api_key":         "serp-test",
				"endpoint":        "https://serpapi.com/search.json",
				"timeout_seconds": "10",
			},
			"web": map[string]any{
				"allowed_origins": []any{".example.com", "localhost"},
				"enable_metrics":  true,
			},
		},
	}

	err := validateStartupConfigWithGetter(config.NewMapGetter(cfg))
	require.NoError(t, err)
}

func TestValidateStartupConfigWithGetterTemperatureBounds(t *testing.T) {
	for _, temperature := range []any{0, 2, "1.5"} {
		cfg := map[string]any{"settings": map[string]any{"openai": map[string]any{"temperature": temperature}}}
		require.NoError(t, validateStartupConfigWithGetter(config.NewMapGetter(cfg)), "temperature %v", temperature)
	}

	for _, temperature := range []any{-0.1, 2.5, "hot"} {
		cfg := map[string]any{"settings": map[string]any{"openai": map[string]any{"temperature": temperature}}}
		err := validateStartupConfigWithGetter(config.NewMapGetter(cfg))
		require.Error(t, err, "temperature %v", temperature)
		require.Contains(t, err.Error(), "settings.openai.temperature")
	}
}

// TestValidateStartupConfigWithGetterAggregatesErrors verifies every violation is reported at once.
func TestValidateStartupConfigWithGetterAggregatesErrors(t *testing.T) {
	cfg := map[string]any{
		"settings": map[string]any{
			"openai": map[string]any{
				"model":           "  ",
				"base_url":        "api.openai.com/v1",
				"timeout_seconds": 0,
			},
			"serpapi": map[string]any{
				"endpoint":        "not a url",
				"timeout_seconds": 1.5,
			},
			"web": map[string]any{
				"allowed_origins": []any{"https://example.com"},
				"enable_metrics":  "sometimes",
			},
		},
	}

	err := validateStartupConfigWithGetter(config.NewMapGetter(cfg))
	require.Error(t, err)

	msg := err.Error()
	require.True(t, strings.HasPrefix(msg, "invalid configuration:\n - "))
	for _, key := range []string{
		"settings.openai.model",
		"settings.openai.base_url",
		"settings.openai.timeout_seconds",
		"settings.serpapi.endpoint",
		"settings.serpapi.timeout_seconds",
		"settings.web.allowed_origins[0]",
		"settings.web.enable_metrics",
	} {
		require.Contains(t, msg, key)
	}
}

func TestValidateStartupConfigWithGetterAllowedOriginsType(t *testing.T) {
	cfg := map[string]any{"settings": map[string]any{"web": map[string]any{"allowed_origins": "example.com"}}}

	err := validateStartupConfigWithGetter(config.NewMapGetter(cfg))
	require.Error(t, err)
	require.Contains(t, err.Error(), "settings.web.allowed_origins must be a list of hosts")
}
