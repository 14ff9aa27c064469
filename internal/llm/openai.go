package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
	defaultOpenAIBaseURL   = "https://api.openai.com/v1"
	defaultOpenAIModel     = "gpt-4o-mini"
)

// OpenAIClient implements the Client interface against an OpenAI-compatible
// chat completions API, either OpenAI itself or a local LM Studio server.
type OpenAIClient struct {
	client   openai.Client
	provider string
	model    string
	baseURL  string
}

// NewOpenAIClient creates a client for provider ProviderOpenAI or
// ProviderLMStudio. OpenAI needs OPENAI_API_KEY; LM Studio accepts any key.
func NewOpenAIClient(provider, model, baseURL string) (*OpenAIClient, error) {
	model = strings.TrimSpace(model)

	var apiKey string
	switch provider {
	case ProviderLMStudio:
		if model == "" {
			return nil, errors.New("lm studio model is required")
		}
		if baseURL == "" {
			baseURL = defaultLMStudioBaseURL
		}
		apiKey = os.Getenv("LMSTUDIO_API_KEY")
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			apiKey = "lm-studio"
		}
	case ProviderOpenAI:
		if model == "" {
			model = defaultOpenAIModel
		}
		if baseURL == "" {
			baseURL = defaultOpenAIBaseURL
		}
		apiKey = os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("OPENAI_API_KEY is not set")
		}
	default:
		return nil, fmt.Errorf("unsupported OpenAI-compatible provider: %s", provider)
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &OpenAIClient{
		client:   client,
		provider: provider,
		model:    model,
		baseURL:  baseURL,
	}, nil
}

// Chat sends messages to the LLM and returns the response.
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message) (string, error) {
	params := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			params[i] = openai.SystemMessage(msg.Content)
		case RoleAssistant:
			params[i] = openai.AssistantMessage(msg.Content)
		default:
			params[i] = openai.UserMessage(msg.Content)
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: params,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion: %w", c.provider, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: %w", c.provider, ErrNoChoices)
	}

	return resp.Choices[0].Message.Content, nil
}

// ChatJSON sends messages and parses the response as JSON into the provided type.
func (c *OpenAIClient) ChatJSON(ctx context.Context, messages []Message, result any) error {
	content, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}

	return decodeJSON(content, result)
}
