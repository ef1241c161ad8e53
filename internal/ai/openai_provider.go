package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/amishk599/jobhunter/internal/model"
)

// tailoredOutput is the JSON shape the LLM must return. Its generated schema
// is enforced server-side via OpenAI structured outputs.
type tailoredOutput struct {
	ResumeMarkdown string   `json:"resume_markdown" jsonschema_description:"The full tailored resume in Markdown"`
	Changes        []string `json:"changes" jsonschema_description:"Short sentences describing the most important edits"`
	MatchScore     int      `json:"match_score" jsonschema_description:"Candidate fit for the job from 0 to 100"`
}

var tailoredResumeSchema = mustSchema[tailoredOutput]()

func mustSchema[T any]() *jsonschema.Definition {
	var v T
	schema, err := jsonschema.GenerateSchemaForType(v)
	if err != nil {
		panic(fmt.Sprintf("generating schema for %T: %v", v, err))
	}
	return schema
}

// OpenAIProvider calls the chat completions endpoint with structured outputs.
// Any OpenAI-compatible server works via baseURL.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates a provider targeting the OpenAI API.
func NewOpenAIProvider(baseURL, apiKey, model string, httpClient *http.Client) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Complete sends prompt and returns a JSON string conforming to
// tailoredResumeSchema. HTTP failures are returned as *model.HTTPError.
func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You tailor resumes to job postings without inventing facts."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
		MaxTokens:   4096,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "tailored_resume",
				Schema: tailoredResumeSchema,
				Strict: true,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("llm request: %w", asHTTPError(err))
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// asHTTPError maps go-openai error types onto model.HTTPError so retry logic
// can see the status code.
func asHTTPError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &model.HTTPError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &model.HTTPError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
