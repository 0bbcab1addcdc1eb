package agent

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"vizchat/config"
)

// NewChatModel builds the chat model from configuration. All supported
// providers speak the OpenAI wire format; Claude-style proxies are reached
// through their OpenAI-compatible endpoints.
func NewChatModel(ctx context.Context, cfg config.Config) (model.ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured")
	}

	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.ModelName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %v", err)
	}
	return chatModel, nil
}
