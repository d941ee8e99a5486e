package aiagents

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ErrAssistantDisabled is returned when no LLM key is configured
var ErrAssistantDisabled = errors.New("script assistant is not configured")

// ScriptAssistant rewrites call scripts with an LLM
type ScriptAssistant interface {
	ImproveScript(ctx context.Context, script, goal string) (string, error)
}

var _ ScriptAssistant = (*OpenAIAssistant)(nil)
var _ ScriptAssistant = (*DisabledAssistant)(nil)

const scriptSystemPrompt = "You are a sales coach. Rewrite the given outbound call script " +
	"to be concise, conversational and compliant. Keep the {{name}} and {{company}} " +
	"placeholders intact. Return only the rewritten script."

// OpenAIAssistant improves scripts via the OpenAI chat API
type OpenAIAssistant struct {
	client *openai.Client
	model  string
}

// NewOpenAIAssistant creates an assistant backed by OpenAI
func NewOpenAIAssistant(apiKey, model string) *OpenAIAssistant {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIAssistant{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (a *OpenAIAssistant) ImproveScript(ctx context.Context, script, goal string) (string, error) {
	prompt := script
	if goal != "" {
		prompt = fmt.Sprintf("Goal: %s\n\nScript:\n%s", goal, script)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: scriptSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("script completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("script completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// DisabledAssistant rejects every request. Used when OPENAI_API_KEY
// is unset.
type DisabledAssistant struct{}

// NewDisabledAssistant creates the no-op assistant
func NewDisabledAssistant() *DisabledAssistant {
	return &DisabledAssistant{}
}

func (a *DisabledAssistant) ImproveScript(ctx context.Context, script, goal string) (string, error) {
	return "", ErrAssistantDisabled
}
