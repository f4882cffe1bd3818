// Package icebreaker turns a person's name into a short personalized
// connection message: one web search, then an extraction prompt and a
// drafting prompt against a chat model.
package icebreaker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"

	"github.com/Laisky/icebreaker/internal/library/llm"
	"github.com/Laisky/icebreaker/library/config"
	"github.com/Laisky/icebreaker/library/log"
	"github.com/Laisky/icebreaker/library/search/serpgoogle"
)

// MaxMessageChars is the length the drafting prompt asks the model to stay under.
// It is not enforced on the returned message.
const MaxMessageChars = 300

// ErrEmptyName is returned when the target name is blank.
var ErrEmptyName = errors.New("name is required")

// SearchRetriever produces the retrieval text for a query.
type SearchRetriever interface {
	Retrieve(ctx context.Context, query string) string
}

// MessageGenerator runs the extraction and drafting stages.
type MessageGenerator interface {
	Summarize(ctx context.Context, personContext, retrievalText string) (string, error)
	Draft(ctx context.Context, summary string) (string, error)
}

// Result is the full record of one pipeline run.
type Result struct {
	RunID         string `json:"run_id"`
	Query         string `json:"query"`
	RetrievalText string `json:"retrieval_text"`
	Summary       string `json:"summary"`
	Message       string `json:"message"`
}

// Service runs the search and generation pipeline. It holds no per-run
// state and is safe for concurrent use.
type Service struct {
	retriever SearchRetriever
	generator MessageGenerator
	logger    logSDK.Logger
}

// ServiceOption customises a Service during construction.
type ServiceOption func(*Service)

// WithLogger overrides the fallback logger used when no contextual logger is available.
func WithLogger(logger logSDK.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires a retriever and a generator.
func NewService(retriever SearchRetriever, generator MessageGenerator, opts ...ServiceOption) (*Service, error) {
	if retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if generator == nil {
		return nil, errors.New("generator is required")
	}

	s := &Service{
		retriever: retriever,
		generator: generator,
		logger:    log.Logger.Named("icebreaker"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	return s, nil
}

// NewServiceFromSettings builds the SerpApi retriever and the chat model
// generator described by settings. No network call is made.
func NewServiceFromSettings(settings *config.Settings, opts ...ServiceOption) (*Service, error) {
	if settings == nil {
		return nil, errors.New("settings is required")
	}
	if strings.TrimSpace(settings.SerpAPIKey) == "" {
		return nil, &config.MissingKeyError{Key: config.EnvSerpAPIKey}
	}
	if strings.TrimSpace(settings.OpenAIAPIKey) == "" {
		return nil, &config.MissingKeyError{Key: config.EnvOpenAIAPIKey}
	}

	engine := serpgoogle.NewSearchEngine(settings.SerpAPIKey,
		serpgoogle.WithEndpoint(settings.SerpAPIEndpoint),
		serpgoogle.WithTimeout(settings.SerpAPITimeout),
	)
	retriever, err := NewRetriever(engine, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new retriever")
	}

	log.Logger.Debug("initializing llm",
		zap.String("model", settings.Model),
		zap.Float64("temperature", settings.Temperature))
	chat := llm.NewChatHelper(settings.OpenAIBaseURL, settings.OpenAITimeout, nil)
	generator, err := NewGenerator(chat, GeneratorConfig{
		APIKey:      settings.OpenAIAPIKey,
		Model:       settings.Model,
		Temperature: settings.Temperature,
	})
	if err != nil {
		return nil, errors.Wrap(err, "new generator")
	}

	return NewService(retriever, generator, opts...)
}

// Generate returns the icebreaker message for name and the optional company.
func (s *Service) Generate(ctx context.Context, name, company string) (string, error) {
	result, err := s.GenerateDetailed(ctx, name, company)
	if err != nil {
		return "", err
	}
	return result.Message, nil
}

// GenerateDetailed runs the pipeline and returns every intermediate value.
//
// A blank name fails with ErrEmptyName before any external call. Search
// failures are folded into the retrieval text, model failures are returned.
func (s *Service) GenerateDetailed(ctx context.Context, name, company string) (*Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	result := &Result{
		RunID: uuid.NewString(),
		Query: BuildQuery(name, company),
	}
	personContext := BuildContext(name, company)

	logger := s.logger
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			logger = ctxLogger.Named("icebreaker")
		}
	}
	logger = logger.With(zap.String("run_id", result.RunID))

	result.RetrievalText = s.retriever.Retrieve(ctx, result.Query)

	summary, err := s.generator.Summarize(ctx, personContext, result.RetrievalText)
	if err != nil {
		return nil, errors.Wrapf(err, "generate icebreaker for %q", personContext)
	}
	result.Summary = summary
	logger.Debug("summary extracted", zap.Int("summary_len", len(summary)))

	message, err := s.generator.Draft(ctx, summary)
	if err != nil {
		return nil, errors.Wrapf(err, "generate icebreaker for %q", personContext)
	}
	result.Message = message

	if n := utf8.RuneCountInString(message); n >= MaxMessageChars {
		logger.Warn("icebreaker exceeds requested length",
			zap.Int("chars", n), zap.Int("limit", MaxMessageChars))
	}
	logger.Info("icebreaker generated", zap.Int("chars", utf8.RuneCountInString(message)))

	return result, nil
}
