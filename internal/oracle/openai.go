package oracle

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const DefaultOpenAIModel = "gpt-4o-mini"

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
}

// OpenAI talks to any OpenAI-compatible chat completion endpoint
// (OpenAI, OpenRouter) using a strict JSON schema response format.
type OpenAI struct {
	cli   *openai.Client
	model string
	temp  float32
}

func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errors.New("openai api key is required")
	}
	oc := openai.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		oc.BaseURL = strings.TrimRight(base, "/")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOpenAIModel
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.7
	}
	return &OpenAI{cli: openai.NewClientWithConfig(oc), model: model, temp: temp}, nil
}

func (p *OpenAI) Name() string  { return "openai" }
func (p *OpenAI) Model() string { return p.model }

func (p *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: req.System},
		{Role: openai.ChatMessageRoleUser, Content: req.User},
	}
	creq := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    msgs,
		Temperature: p.temp,
		MaxTokens:   400,
	}
	if req.Schema != nil {
		schema, err := req.Schema.openAIJSON()
		if err != nil {
			return "", err
		}
		creq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "rps_prediction",
				Schema: schema,
				Strict: true,
			},
		}
	}

	resp, err := p.cli.CreateChatCompletion(ctx, creq)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
