package utils

import (
	"context"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

var (
	ErrNoAPIKey   = errors.New("gemini api key is not set")
	ErrEmptyReply = errors.New("model returned no text")
)

type AIConfig struct {
	APIKey          string
	GenModel        string
	Temperature     float32 // 0 keeps the model default
	MaxOutputTokens int32   // 0 keeps the model default
}

func NewAIClient(ctx context.Context, cfg AIConfig) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	return genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
}

// AssistantModel returns the chat model with system as its standing instruction.
func AssistantModel(client *genai.Client, cfg AIConfig, system string) *genai.GenerativeModel {
	m := client.GenerativeModel(cfg.GenModel)
	if system != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if cfg.Temperature > 0 {
		m.SetTemperature(cfg.Temperature)
	}
	if cfg.MaxOutputTokens > 0 {
		m.SetMaxOutputTokens(cfg.MaxOutputTokens)
	}
	return m
}

// ReplyText joins the text parts of every candidate.
func ReplyText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyReply
	}
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", ErrEmptyReply
	}
	return out, nil
}
