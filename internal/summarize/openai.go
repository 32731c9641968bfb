package summarize

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEndpoint sends each prompt as a single-message chat completion.
type OpenAIEndpoint struct {
	Client *openai.Client
	Model  string
}

// NewOpenAIEndpoint builds a client; an empty baseURL uses the public API.
func NewOpenAIEndpoint(apiKey, baseURL, model string) *OpenAIEndpoint {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEndpoint{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (o *OpenAIEndpoint) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &EndpointFault{Status: apiErr.HTTPStatusCode, Detail: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &EndpointFault{Status: reqErr.HTTPStatusCode, Detail: string(reqErr.Body)}
		}
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &FormatFault{Body: "no choices in completion"}
	}
	return resp.Choices[0].Message.Content, nil
}
