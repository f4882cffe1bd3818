package icebreaker

import (
	"context"
	"strings"

	"github.com/Laisky/errors/v2"

	"github.com/Laisky/icebreaker/internal/library/llm"
)

// ChatCompleter is the language model capability the generator needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, apiKey string, req llm.ChatRequest) (string, error)
}

// GeneratorConfig fixes the model parameters used for both stages.
type GeneratorConfig struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Generator runs the two prompt stages against a chat model.
type Generator struct {
	chat ChatCompleter
	cfg  GeneratorConfig
}

// NewGenerator validates the config and wraps the chat model.
func NewGenerator(chat ChatCompleter, cfg GeneratorConfig) (*Generator, error) {
	if chat == nil {
		return nil, errors.New("chat completer is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("generator api key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("generator model is required")
	}

	return &Generator{chat: chat, cfg: cfg}, nil
}

// Summarize asks the model for the Role_Context and Summary lines of the
// target person. The output is returned as-is.
func (g *Generator) Summarize(ctx context.Context, personContext, retrievalText string) (string, error) {
	prompt, err := RenderExtractPrompt(personContext, retrievalText)
	if err != nil {
		return "", errors.WithStack(err)
	}

	summary, err := g.complete(ctx, prompt)
	if err != nil {
		return "", errors.Wrap(err, "summarize")
	}
	return summary, nil
}

// Draft asks the model for the final message built from the stage-one output.
func (g *Generator) Draft(ctx context.Context, summary string) (string, error) {
	prompt, err := RenderDraftPrompt(summary)
	if err != nil {
		return "", errors.WithStack(err)
	}

	message, err := g.complete(ctx, prompt)
	if err != nil {
		return "", errors.Wrap(err, "draft")
	}
	return message, nil
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	return g.chat.CreateChatCompletion(ctx, g.cfg.APIKey, llm.ChatRequest{
		Model:       g.cfg.Model,
		Messages:    []llm.Message{{Role: "user", Content: prompt}},
		Temperature: g.cfg.Temperature,
	})
}
