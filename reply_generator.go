package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrBackendUnavailable means no OpenAI credential is configured. The caller
// decides what degradation looks like; this layer only reports the condition.
var ErrBackendUnavailable = errors.New("OpenAI API key not configured")

// ReplyGenerator wraps a single chat-completion exchange. It assembles the
// system prompt from the bus data and returns the model's reply verbatim;
// it never substitutes fallback text of its own.
type ReplyGenerator struct {
	client *openai.Client
	model  string
}

// NewReplyGenerator creates a generator. An empty API key is allowed; calls
// to Generate then fail with ErrBackendUnavailable.
func NewReplyGenerator(apiKey, model string) *ReplyGenerator {
	if apiKey == "" {
		return &ReplyGenerator{model: model}
	}
	return &ReplyGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Generate produces a spoken reply to one caller utterance
func (g *ReplyGenerator) Generate(ctx context.Context, utterance string, busData BusData) (string, error) {
	if g.client == nil {
		return "", ErrBackendUnavailable
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0.3,
		MaxTokens:   220,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: buildSystemPrompt(busData),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildUserPrompt(utterance),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		reply = "I am sorry, I could not understand that clearly. Please ask again about bus schedules, ticket prices, or your booking."
	}
	return reply, nil
}

// buildSystemPrompt embeds the full bus data as structured JSON plus the
// fixed instruction set constraining topic, tone, length, and format
func buildSystemPrompt(busData BusData) string {
	data, _ := json.MarshalIndent(busData, "", "  ")

	return strings.TrimSpace(fmt.Sprintf(`
You are a professional voice assistant for Daewoo Express Pakistan, speaking to callers over the phone.
You only answer about:
- Bus schedules
- Ticket prices
- Route durations
- Booking process
- Ticket confirmation
- Terminal information

Rules:
- Keep responses under 4 sentences.
- Be clear, warm, and voice-friendly.
- Never answer unrelated questions.
- If a route is not found in the provided data, politely say that the schedule is currently unavailable.
- Do not mention that you are an AI model or language model.
- Do not read the data structure verbatim; convert it into natural speech.
- Do not use bullet points, lists, or any formatting — just natural spoken sentences.

Here is the structured Daewoo Express data you must rely on. Do not invent new routes or prices beyond this data:
%s
`, data))
}

func buildUserPrompt(utterance string) string {
	return strings.Join([]string{
		"Caller question or request:",
		fmt.Sprintf("%q", utterance),
		"",
		"Respond as if you are speaking directly to the caller on the phone.",
		"Use a friendly, concise tone and keep the reply under 4 sentences.",
	}, " ")
}
