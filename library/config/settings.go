package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
)

const (
	// EnvOpenAIAPIKey names the environment variable holding the language model key.
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	// EnvSerpAPIKey names the environment variable holding the SerpApi key.
	EnvSerpAPIKey = "SERPAPI_API_KEY"

	KeyOpenAIAPIKey         = "settings.openai.api_key"
	KeyOpenAIModel          = "settings.openai.model"
	KeyOpenAITemperature    = "settings.openai.temperature"
	KeyOpenAIBaseURL        = "settings.openai.base_url"
	KeyOpenAITimeoutSeconds = "settings.openai.timeout_seconds"
	KeySerpAPIKey           = "settings.serpapi.api_key"
	KeySerpAPIEndpoint      = "settings.serpapi.endpoint"
	KeySerpTimeoutSeconds   = "settings.serpapi.timeout_seconds"

	DefaultModel           = "gpt-4o"
	DefaultTemperature     = 0.7
	DefaultOpenAIBaseURL   = "https://api.openai.com/v1"
	DefaultOpenAITimeout   = 60 * time.Second
	DefaultSerpAPIEndpoint = "https://serpapi.com/search.json"
	DefaultSerpAPITimeout  = 10 * time.Second
)

// MissingKeyError reports a required secret that is absent or blank.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing %s", e.Key)
}

// Settings is the resolved runtime configuration of the pipeline.
type Settings struct {
	OpenAIAPIKey    string
	SerpAPIKey      string
	Model           string
	Temperature     float64
	OpenAIBaseURL   string
	OpenAITimeout   time.Duration
	SerpAPIEndpoint string
	SerpAPITimeout  time.Duration
}

// LookupEnv matches the signature of os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// NewSettings resolves settings from the environment and the config getter.
//
// Secrets are read from the environment first and fall back to the YAML keys.
// It returns a *MissingKeyError when either secret is blank, checking the
// SerpApi key first. Unknown config keys are ignored.
func NewSettings(lookupEnv LookupEnv, get Getter) (*Settings, error) {
	if lookupEnv == nil {
		lookupEnv = func(string) (string, bool) { return "", false }
	}
	if get == nil {
		get = func(string) any { return nil }
	}

	s := &Settings{
		SerpAPIKey:      secret(lookupEnv, get, EnvSerpAPIKey, KeySerpAPIKey),
		OpenAIAPIKey:    secret(lookupEnv, get, EnvOpenAIAPIKey, KeyOpenAIAPIKey),
		Model:           DefaultModel,
		Temperature:     DefaultTemperature,
		OpenAIBaseURL:   DefaultOpenAIBaseURL,
		OpenAITimeout:   DefaultOpenAITimeout,
		SerpAPIEndpoint: DefaultSerpAPIEndpoint,
		SerpAPITimeout:  DefaultSerpAPITimeout,
	}

	if s.SerpAPIKey == "" {
		return nil, &MissingKeyError{Key: EnvSerpAPIKey}
	}
	if s.OpenAIAPIKey == "" {
		return nil, &MissingKeyError{Key: EnvOpenAIAPIKey}
	}

	if v := optionalString(get, KeyOpenAIModel); v != "" {
		s.Model = v
	}
	if v := optionalString(get, KeyOpenAIBaseURL); v != "" {
		s.OpenAIBaseURL = strings.TrimRight(v, "/")
	}
	if v := optionalString(get, KeySerpAPIEndpoint); v != "" {
		s.SerpAPIEndpoint = v
	}
	if raw := get(KeyOpenAITemperature); raw != nil {
		v, err := ParseStrictFloat(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", KeyOpenAITemperature)
		}
		s.Temperature = v
	}
	if raw := get(KeyOpenAITimeoutSeconds); raw != nil {
		v, err := ParseStrictInt(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", KeyOpenAITimeoutSeconds)
		}
		if v > 0 {
			s.OpenAITimeout = time.Duration(v) * time.Second
		}
	}
	if raw := get(KeySerpTimeoutSeconds); raw != nil {
		v, err := ParseStrictInt(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "parse %s", KeySerpTimeoutSeconds)
		}
		if v > 0 {
			s.SerpAPITimeout = time.Duration(v) * time.Second
		}
	}

	return s, nil
}

func secret(lookupEnv LookupEnv, get Getter, envKey, cfgKey string) string {
	if v, ok := lookupEnv(envKey); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return optionalString(get, cfgKey)
}

func optionalString(get Getter, key string) string {
	raw := get(key)
	if raw == nil {
		return ""
	}
	v, err := ParseStrictString(raw)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(v)
}

var (
	settingsOnce sync.Once
	settings     *Settings
	settingsErr  error
)

// Get returns the process-wide settings, resolving them on first use from
// the process environment and the shared config. The result, including a
// resolution error, is reused for the lifetime of the process.
func Get() (*Settings, error) {
	settingsOnce.Do(func() {
		settings, settingsErr = NewSettings(os.LookupEnv, func(key string) any {
			return gconfig.Shared.Get(key)
		})
	})
	return settings, settingsErr
}

// Reset drops the cached settings so the next Get resolves them again.
func Reset() {
	settingsOnce = sync.Once{}
	settings, settingsErr = nil, nil
}

// NewMapGetter adapts a nested map to a Getter using dotted key paths.
func NewMapGetter(root map[string]any) Getter {
	return func(key string) any {
		if key == "" {
			return nil
		}

		var current any = root
		for _, part := range strings.Split(key, ".") {
			nextMap, ok := current.(map[string]any)
			if !ok {
				return nil
			}
			next, exists := nextMap[part]
			if !exists {
				return nil
			}
			current = next
		}

		return current
	}
}
