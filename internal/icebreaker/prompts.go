package icebreaker

import (
	"strings"
	"text/template"

	"github.com/Laisky/errors/v2"
)

const extractPromptText = `You are a research assistant.
Target Person: {{.Context}}
Search Results:
{{.SearchResults}}

Instructions:
1. Identify their **Primary Current Job Title** and **Current Company Name**.
2. Combine them into a single string format if applicable: "[Job Title] at [Company Name]" (e.g., "Senior AI Engineer at OpenAI").
3. Summarize their key expertise, specific projects, or recent news.

Output Format:
Role_Context: <Job Title> at <Company Name>
Summary: <concise summary of expertise and news>
`

const draftPromptText = `You are an expert networker. Write a personalized LinkedIn connection message.

Input Data:
{{.Summary}}

Rules:
- STRICT limit: less than 300 characters.
- Tone: Professional, warm, authentic.
- Start with a friendly greeting using the person's first name.

Content Requirements:
- **Integrate the 'Role_Context' naturally.** (e.g., "Your work as [Role_Context] caught my eye..." or "I've been following [Company Name]...").
- Reference a specific achievement or skill mentioned in the summary.

Restrictions (Strictly Avoid):
- NO generic openers: "I hope you are well", "I came across your profile".
- NO generic closings: "Best regards", "Sincerely", and similar phrases.
- Do NOT leave incomplete sentence at the end
- Do NOT sign off with your name at the end.

Draft Message:
`

var (
	extractPrompt = template.Must(template.New("extract").Option("missingkey=error").Parse(extractPromptText))
	draftPrompt   = template.Must(template.New("draft").Option("missingkey=error").Parse(draftPromptText))
)

type extractInput struct {
	Context       string
	SearchResults string
}

type draftInput struct {
	Summary string
}

// RenderExtractPrompt fills the stage-one template with the target person
// and the retrieval text.
func RenderExtractPrompt(context, searchResults string) (string, error) {
	var sb strings.Builder
	if err := extractPrompt.Execute(&sb, extractInput{Context: context, SearchResults: searchResults}); err != nil {
		return "", errors.Wrap(err, "render extract prompt")
	}
	return sb.String(), nil
}

// RenderDraftPrompt fills the stage-two template with the raw stage-one output.
func RenderDraftPrompt(summary string) (string, error) {
	var sb strings.Builder
	if err := draftPrompt.Execute(&sb, draftInput{Summary: summary}); err != nil {
		return "", errors.Wrap(err, "render draft prompt")
	}
	return sb.String(), nil
}
