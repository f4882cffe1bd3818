// Package serpgoogle queries Google through SerpApi.
package serpgoogle

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/icebreaker/library/log"
	"github.com/Laisky/icebreaker/library/search"
)

const (
	// DefaultEndpoint is the SerpApi JSON search endpoint.
	DefaultEndpoint = "https://serpapi.com/search.json"
	// DefaultTimeout bounds a single SerpApi round trip.
	DefaultTimeout = 10 * time.Second
	// logBodyLimit caps the number of response bytes logged for debugging.
	logBodyLimit         = 4096
	serpGoogleEngineName = "serp_google"
)

// Option configures the SearchEngine instance.
type Option func(*SearchEngine)

// WithHTTPClient overrides the HTTP client used to communicate with SerpApi.
func WithHTTPClient(client *http.Client) Option {
	return func(engine *SearchEngine) {
		if client != nil {
			engine.client = client
		}
	}
}

// WithTimeout replaces the HTTP client with one bounded by the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(engine *SearchEngine) {
		if timeout > 0 {
			engine.client = &http.Client{Timeout: timeout}
		}
	}
}

// WithLogger overrides the default logger used for requests when no contextual logger is present.
func WithLogger(logger logSDK.Logger) Option {
	return func(engine *SearchEngine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}

// WithDefaultParameters supplies key-value pairs that are added to every request.
// They are merged over the built-in defaults.
func WithDefaultParameters(parameters map[string]string) Option {
	return func(engine *SearchEngine) {
		for key, value := range parameters {
			engine.defaultParams[key] = value
		}
	}
}

// WithEndpoint points the engine at another SerpApi-compatible URL; query parameters already on it are kept.
func WithEndpoint(endpoint string) Option {
	return func(engine *SearchEngine) {
		trimmed := strings.TrimSpace(endpoint)
		if trimmed != "" {
			engine.endpoint = trimmed
		}
	}
}

// SearchEngine queries SerpApi's Google Search endpoint and converts the response into search items.
type SearchEngine struct {
	apiKey        string
	client        *http.Client
	endpoint      string
	defaultParams map[string]string
	logger        logSDK.Logger
}

// NewSearchEngine constructs a SerpApi-backed search engine using the provided API key.
// Every request asks for up to 10 English organic results from the google engine.
func NewSearchEngine(apiKey string, opts ...Option) *SearchEngine {
	engine := &SearchEngine{
		apiKey:   strings.TrimSpace(apiKey),
		client:   &http.Client{Timeout: DefaultTimeout},
		endpoint: DefaultEndpoint,
		defaultParams: map[string]string{
			"engine": "google",
			"hl":     "en",
			"num":    "10",
		},
		logger: log.Logger.Named("serp_google"),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}

	return engine
}

// Name returns the identifier of the engine.
func (e *SearchEngine) Name() string {
	return serpGoogleEngineName
}

// Search performs the SerpApi request and returns the organic results in provider order.
// Returned errors never carry the api key.
func (e *SearchEngine) Search(ctx context.Context, query string) ([]search.SearchResultItem, error) {
	trimmedQuery := strings.TrimSpace(query)
	if trimmedQuery == "" {
		return nil, errors.New("search query cannot be empty")
	}
	if e.apiKey == "" {
		return nil, errors.New("serp google api key is not configured")
	}

	req, target, err := e.newRequest(ctx, trimmedQuery)
	if err != nil {
		return nil, err
	}

	logger := e.logger
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			logger = ctxLogger.Named("serp_google")
		}
	}
	logger = logger.With(zap.String("endpoint", target), zap.String("query", trimmedQuery))
	logger.Debug("outgoing http request")

	startAt := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		// *url.Error embeds the full request URL, api_key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, errors.Wrapf(err, "send serp google request to %s", target)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read serp google response body")
	}

	truncatedBody, truncated := truncateForLog(body, logBodyLimit)
	logger.Debug("incoming http response",
		zap.Int("status", resp.StatusCode),
		zap.String("body", truncatedBody),
		zap.Bool("body_truncated", truncated),
		zap.Duration("cost", time.Since(startAt)),
	)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("serp google returned status %d: %s", resp.StatusCode, truncatedBody)
	}

	return decodeOrganicResults(body)
}

// newRequest builds the GET request and returns it with the key-free
// host+path used in logs and errors.
func (e *SearchEngine) newRequest(ctx context.Context, query string) (*http.Request, string, error) {
	endpoint, err := url.Parse(e.endpoint)
	if err != nil {
		return nil, "", errors.Wrapf(err, "invalid serp google endpoint %q", e.endpoint)
	}
	target := endpoint.Host + endpoint.Path

	params := endpoint.Query()
	for key, value := range e.defaultParams {
		if _, exists := params[key]; !exists {
			params.Set(key, value)
		}
	}
	params.Set("q", query)
	params.Set("api_key", e.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, "", errors.Wrapf(err, "create serp google request to %s", target)
	}
	req.Header.Set("Accept", "application/json")

	return req, target, nil
}

func decodeOrganicResults(body []byte) ([]search.SearchResultItem, error) {
	var payload serpResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "unmarshal serp google response")
	}
	if payload.Error != "" {
		return nil, errors.Errorf("serp google reported error: %s", payload.Error)
	}

	items := make([]search.SearchResultItem, 0, len(payload.OrganicResults))
	for _, result := range payload.OrganicResults {
		items = append(items, search.SearchResultItem{
			URL:     result.Link,
			Name:    result.Title,
			Snippet: result.Snippet,
		})
	}
	return items, nil
}

// serpResponse models the subset of fields required from the SerpApi response.
type serpResponse struct {
	OrganicResults []serpOrganicResult `json:"organic_results"`
	Error          string              `json:"error"`
}

type serpOrganicResult struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// truncateForLog limits the payload logged for debugging and reports whether truncation occurred.
func truncateForLog(body []byte, limit int) (string, bool) {
	if len(body) <= limit {
		return string(body), false
	}
	return string(body[:limit]), true
}
