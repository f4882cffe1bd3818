package cmd

import (
	"fmt"
	"net/url"
	"strings"

	errors "github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"

	"github.com/Laisky/icebreaker/library/config"
)

const (
	keyWebAllowedOrigins = "settings.web.allowed_origins"
	keyWebEnableMetrics  = "settings.web.enable_metrics"
)

// validateStartupConfig validates startup configuration from the shared config source.
// It returns an error when any configured value is malformed or violates constraints.
func validateStartupConfig() error {
	return validateStartupConfigWithGetter(func(key string) any {
		return gconfig.S.Get(key)
	})
}

// validateStartupConfigWithGetter validates startup configuration via a key-value getter.
// Every violation is collected so one run reports all of them.
func validateStartupConfigWithGetter(get config.Getter) error {
	if get == nil {
		return errors.New("config getter is nil")
	}

	validationErrs := make([]string, 0)

	validateOpenAIConfig(get, &validationErrs)
	validateSerpAPIConfig(get, &validationErrs)
	validateWebConfig(get, &validationErrs)

	if len(validationErrs) == 0 {
		return nil
	}

	return errors.Errorf("invalid configuration:\n - %s", strings.Join(validationErrs, "\n - "))
}

func validateOpenAIConfig(get config.Getter, errs *[]string) {
	validateOptionalStringNonEmpty(get, config.KeyOpenAIAPIKey, errs)
	validateOptionalStringNonEmpty(get, config.KeyOpenAIModel, errs)
	validateOptionalFloatRange(get, config.KeyOpenAITemperature, 0, 2, errs)
	validateOptionalURL(get, config.KeyOpenAIBaseURL, errs)
	validateOptionalIntMin(get, config.KeyOpenAITimeoutSeconds, 1, errs)
}

func validateSerpAPIConfig(get config.Getter, errs *[]string) {
	validateOptionalStringNonEmpty(get, config.KeySerpAPIKey, errs)
	validateOptionalURL(get, config.KeySerpAPIEndpoint, errs)
	validateOptionalIntMin(get, config.KeySerpTimeoutSeconds, 1, errs)
}

func validateWebConfig(get config.Getter, errs *[]string) {
	validateOptionalBool(get, keyWebEnableMetrics, errs)

	raw := get(keyWebAllowedOrigins)
	if raw == nil {
		return
	}
	hosts, ok := toStringSlice(raw)
	if !ok {
		appendValidationError(errs, "%s must be a list of hosts", keyWebAllowedOrigins)
		return
	}
	for i, host := range hosts {
		trimmed := strings.TrimPrefix(strings.TrimSpace(host), ".")
		if trimmed == "" || strings.ContainsAny(trimmed, "/: ") {
			appendValidationError(errs, "%s[%d] must be a bare host, got %q", keyWebAllowedOrigins, i, host)
		}
	}
}

// validateOptionalBool validates an optionally configured boolean key.
func validateOptionalBool(get config.Getter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	if _, ok := config.ParseStrictBool(raw); !ok {
		appendValidationError(errs, "%s must be a boolean", key)
	}
}

// validateOptionalIntMin validates an optionally configured integer key with a minimum bound.
func validateOptionalIntMin(get config.Getter, key string, min int, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, err := config.ParseStrictInt(raw)
	if err != nil {
		appendValidationError(errs, "%s must be an integer >= %d", key, min)
		return
	}
	if value < min {
		appendValidationError(errs, "%s must be >= %d", key, min)
	}
}

// validateOptionalFloatRange validates an optionally configured float key in the closed range [min, max].
func validateOptionalFloatRange(get config.Getter, key string, min, max float64, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, err := config.ParseStrictFloat(raw)
	if err != nil {
		appendValidationError(errs, "%s must be a number", key)
		return
	}
	if value < min || value > max {
		appendValidationError(errs, "%s must be within [%g, %g]", key, min, max)
	}
}

// validateOptionalURL validates an optionally configured absolute URL.
func validateOptionalURL(get config.Getter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, parseErr := config.ParseStrictString(raw)
	if parseErr != nil {
		appendValidationError(errs, "%s must be a string URL", key)
		return
	}

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		appendValidationError(errs, "%s must not be empty", key)
		return
	}

	parsed, err := url.Parse(trimmed)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		appendValidationError(errs, "%s must be a valid absolute URL", key)
	}
}

// validateOptionalStringNonEmpty validates an optionally configured non-empty string key.
func validateOptionalStringNonEmpty(get config.Getter, key string, errs *[]string) {
	raw := get(key)
	if raw == nil {
		return
	}

	value, err := config.ParseStrictString(raw)
	if err != nil {
		appendValidationError(errs, "%s must be a string", key)
		return
	}
	if strings.TrimSpace(value) == "" {
		appendValidationError(errs, "%s must not be empty", key)
	}
}

func toStringSlice(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, err := config.ParseStrictString(item)
			if err != nil {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// appendValidationError appends a formatted validation error to the collector.
func appendValidationError(errs *[]string, format string, args ...any) {
	if errs == nil {
		return
	}
	*errs = append(*errs, fmt.Sprintf(format, args...))
}
