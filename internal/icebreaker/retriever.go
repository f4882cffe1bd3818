package icebreaker

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/icebreaker/library/log"
	"github.com/Laisky/icebreaker/library/search"
)

const (
	// NoResultsText is returned when the provider has no organic results.
	NoResultsText = "No relevant results found."
	// NoProfileText is returned when results exist but none is a profile page.
	// The other results are not forwarded.
	NoProfileText = "No LinkedIn found. Using other results."
	// MatchMarker heads the retrieval text of a matched profile.
	MatchMarker = "*** MATCH FOUND (LINKEDIN) ***"
	// ProfilePathPattern identifies personal profile links.
	ProfilePathPattern = "linkedin.com/in/"

	searchErrorPrefix = "Error retrieving search results: "
)

// Retriever turns one search into the retrieval text handed to the model.
type Retriever struct {
	engine search.Engine
	logger logSDK.Logger
}

// NewRetriever wraps a search engine.
func NewRetriever(engine search.Engine, logger logSDK.Logger) (*Retriever, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if logger == nil {
		logger = log.Logger.Named("retriever")
	}

	return &Retriever{engine: engine, logger: logger}, nil
}

// Retrieve searches for query and describes the outcome as text.
//
// Search failures never surface as errors, they become an
// "Error retrieving search results" text so the pipeline can go on.
func (r *Retriever) Retrieve(ctx context.Context, query string) string {
	logger := r.logger
	if ctx != nil {
		if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
			logger = ctxLogger.Named("retriever")
		}
	}

	logger.Info("searching google", zap.String("query", query), zap.String("engine", r.engine.Name()))
	items, err := r.engine.Search(ctx, query)
	if err != nil {
		logger.Error("search failed", zap.Error(err), zap.String("query", query))
		return searchErrorPrefix + err.Error()
	}

	return FormatResults(items, logger)
}

// FormatResults renders search items as retrieval text. Only the first
// profile match in provider order is kept.
func FormatResults(items []search.SearchResultItem, logger logSDK.Logger) string {
	if len(items) == 0 {
		return NoResultsText
	}

	match, ok := FirstProfileMatch(items)
	if !ok {
		return NoProfileText
	}

	if logger != nil {
		logger.Info("profile found, using only this source", zap.String("link", match.URL))
	}

	return fmt.Sprintf("%s\n- Title: %s\n- Snippet: %s\n- Link: %s",
		MatchMarker, match.Name, match.Snippet, match.URL)
}

// FirstProfileMatch returns the first item whose link contains the profile path.
func FirstProfileMatch(items []search.SearchResultItem) (search.SearchResultItem, bool) {
	for _, item := range items {
		if strings.Contains(item.URL, ProfilePathPattern) {
			return item, true
		}
	}
	return search.SearchResultItem{}, false
}
