package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/icebreaker/library/config"
)

type stubGenerator struct {
	calls   [][2]string
	message string
	err     error
}

func (s *stubGenerator) Generate(_ context.Context, name, company string) (string, error) {
	s.calls = append(s.calls, [2]string{name, company})
	return s.message, s.err
}

func factoryOf(gen textGenerator) serviceFactory {
	return func() (textGenerator, error) { return gen, nil }
}

func TestRunGeneratePromptsAndPrints(t *testing.T) {
	gen := &stubGenerator{message: "Hi Jensen, loved the GTC keynote."}
	out := &bytes.Buffer{}

	err := runGenerate(context.Background(), generateIO{
		in:         strings.NewReader("  Jensen Huang \nNVIDIA\n"),
		out:        out,
		askName:    true,
		askCompany: true,
	}, factoryOf(gen))
	require.NoError(t, err)

	require.Equal(t, [][2]string{{"Jensen Huang", "NVIDIA"}}, gen.calls)
	text := out.String()
	require.Contains(t, text, "Target Name (e.g., Jensen Huang): ")
	require.Contains(t, text, "Target Company (optional): ")
	banner := strings.Repeat("=", 50)
	require.Contains(t, text, "\n"+banner+"\nGenerated Icebreaker:\n"+banner+"\nHi Jensen, loved the GTC keynote.\n"+banner+"\n")
}

func TestRunGenerateFlagsSkipPrompts(t *testing.T) {
	gen := &stubGenerator{message: "Hi Ada!"}
	out := &bytes.Buffer{}

	err := runGenerate(context.Background(), generateIO{
		in:      strings.NewReader(""),
		out:     out,
		name:    "Ada Lovelace",
		company: "",
	}, factoryOf(gen))
	require.NoError(t, err)

	require.Equal(t, [][2]string{{"Ada Lovelace", ""}}, gen.calls)
	require.NotContains(t, out.String(), "Target Name")
	require.NotContains(t, out.String(), "Target Company")
}

func TestRunGenerateEmptyName(t *testing.T) {
	gen := &stubGenerator{}
	out := &bytes.Buffer{}

	err := runGenerate(context.Background(), generateIO{
		in:         strings.NewReader("\n\n"),
		out:        out,
		askName:    true,
		askCompany: true,
	}, factoryOf(gen))
	require.NoError(t, err)

	require.Empty(t, gen.calls)
	require.Contains(t, out.String(), "Error: Name is required.")
}

func TestRunGenerateApplicationError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("summarize: upstream down")}
	out := &bytes.Buffer{}

	err := runGenerate(context.Background(), generateIO{
		in:   strings.NewReader(""),
		out:  out,
		name: "Ada Lovelace",
	}, factoryOf(gen))
	require.NoError(t, err)
	require.Contains(t, out.String(), "Application Error: summarize: upstream down")
}

func TestRunGenerateConfigurationError(t *testing.T) {
	out := &bytes.Buffer{}
	failing := func() (textGenerator, error) {
		return nil, &config.MissingKeyError{Key: config.EnvOpenAIAPIKey}
	}

	err := runGenerate(context.Background(), generateIO{
		in:      strings.NewReader("Jensen Huang\n\n"),
		out:     out,
		askName: true,
	}, failing)
	require.Error(t, err)
	require.Equal(t, "Configuration Error: missing OPENAI_API_KEY", err.Error())
	require.Empty(t, out.String(), "nothing is prompted before configuration succeeds")
}
