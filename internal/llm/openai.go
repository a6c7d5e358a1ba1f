package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIClient is an alternate provider over the Chat Completions API.
// Since the key arrives per request, the SDK client is built per call.
type OpenAIClient struct {
	model openai.ChatModel
}

// NewOpenAIClient builds a client against api.openai.com.
func NewOpenAIClient(model openai.ChatModel) *OpenAIClient {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAIClient{model: model}
}

func (c *OpenAIClient) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("api key required")
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))

	reqCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	resp, err := cli.Chat.Completions.New(reqCtx, openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature:         openai.Float(defaultTemperature),
		TopP:                openai.Float(defaultTopP),
		MaxCompletionTokens: openai.Int(defaultMaxOutputTokens),
	})
	if err != nil {
		if isTimeout(err) {
			return "", ErrTimeout
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Status: apiErr.StatusCode, Body: apiErr.Message}
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoCandidates
	}
	return resp.Choices[0].Message.Content, nil
}
