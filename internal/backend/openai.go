package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/omaradly/transmem/internal/translation"
)

// OpenAIBackend translates batches through the OpenAI Chat Completions
// API, one completion per batch, correlating segments by id via JSON mode.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend creates an OpenAI-backed endpoint.
func NewOpenAIBackend(apiKey, model string) *OpenAIBackend {
	return &OpenAIBackend{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (b *OpenAIBackend) Name() string { return "openai" }

const systemPrompt = `You are a translation engine. Translate every segment into the target language.
Respond with JSON only: {"segments":[{"id":"<same id>","text":"<translation>","alternatives":["<optional variants>"]}]}.
Keep ids exactly as given. Do not add or drop segments.`

func (b *OpenAIBackend) Translate(ctx context.Context, batch Batch) (*BatchResult, error) {
	model := b.model
	for _, s := range batch.Segments {
		if s.Model != "" {
			model = s.Model
			break
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Target language: %s\n", batch.Target)
	if batch.Source != "" && batch.Source != "auto" {
		fmt.Fprintf(&sb, "Source language: %s\n", batch.Source)
	}
	sb.WriteString("Segments:\n")
	for _, s := range batch.Segments {
		fmt.Fprintf(&sb, "%s: %s\n", s.ID, s.Text)
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, translation.WrapError(translation.KindTimeout, "completion exceeded deadline", err)
		}
		return nil, translation.WrapError(translation.KindNetworkError, "completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, translation.NewError(translation.KindNetworkError, "completion returned no choices")
	}

	var result BatchResult
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &result); err != nil {
		return nil, translation.WrapError(translation.KindNetworkError, "parsing completion JSON", err)
	}

	var parts []string
	for _, s := range result.Segments {
		parts = append(parts, s.Text)
	}
	result.Translated = strings.Join(parts, "\n")
	return &result, nil
}
