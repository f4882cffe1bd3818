package icebreaker

import (
	"context"
	"sync"

	"github.com/Laisky/icebreaker/internal/library/llm"
	"github.com/Laisky/icebreaker/library/search"
)

type fakeEngine struct {
	items   []search.SearchResultItem
	err     error
	queries []string
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Search(_ context.Context, query string) ([]search.SearchResultItem, error) {
	e.queries = append(e.queries, query)
	if e.err != nil {
		return nil, e.err
	}
	return e.items, nil
}

// recorder collects the calls of every fake in the order they happen.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(call string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call)
}

type fakeRetriever struct {
	rec     *recorder
	text    string
	queries []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string) string {
	f.rec.add("retrieve")
	f.queries = append(f.queries, query)
	return f.text
}

type fakeGenerator struct {
	rec *recorder

	summary    string
	summaryErr error
	message    string
	draftErr   error

	gotContext    string
	gotRetrieval  string
	gotDraftInput string
}

func (f *fakeGenerator) Summarize(_ context.Context, personContext, retrievalText string) (string, error) {
	f.rec.add("summarize")
	f.gotContext = personContext
	f.gotRetrieval = retrievalText
	return f.summary, f.summaryErr
}

func (f *fakeGenerator) Draft(_ context.Context, summary string) (string, error) {
	f.rec.add("draft")
	f.gotDraftInput = summary
	return f.message, f.draftErr
}

type fakeChat struct {
	rec       *recorder
	responses []string
	err       error
	requests  []llm.ChatRequest
	apiKeys   []string
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, apiKey string, req llm.ChatRequest) (string, error) {
	if f.rec != nil {
		f.rec.add("chat")
	}
	f.apiKeys = append(f.apiKeys, apiKey)
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		return "", nil
	}
	return f.responses[idx], nil
}
