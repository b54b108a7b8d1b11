package summarizer

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Completer is a text-generation backend: system instruction plus user
// content in, generated text out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// chatClient is the slice of the OpenAI client the completer needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type openaiCompleter struct {
	client      chatClient
	model       string
	temperature float32
}

// NewOpenAICompleter generates text through the OpenAI chat completions API.
func NewOpenAICompleter(client *openai.Client, model string, temperature float32) Completer {
	return &openaiCompleter{client: client, model: model, temperature: temperature}
}

func (c *openaiCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from %s", c.model)
	}
	return resp.Choices[0].Message.Content, nil
}

type geminiCompleter struct {
	apiKey      string
	model       string
	temperature float32
}

// NewGeminiCompleter generates text through the Gemini API.
func NewGeminiCompleter(apiKey, model string, temperature float32) Completer {
	return &geminiCompleter{apiKey: apiKey, model: model, temperature: temperature}
}

func (c *geminiCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	prompt := system + "\n\n---\n\n" + user
	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from %s", c.model)
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text, nil
}
