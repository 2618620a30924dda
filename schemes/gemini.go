package schemes

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"sahayakseva/backend/models"
	"sahayakseva/backend/utils"
)

// Gemini answers chat messages with a generative model and delegates scheme
// lookups to the wrapped Service.
type Gemini struct {
	Service
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGemini(ctx context.Context, base Service, cfg utils.AIConfig) (*Gemini, error) {
	client, err := utils.NewAIClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{Service: base, client: client, model: utils.AssistantModel(client, cfg, replyRules)}, nil
}

func (g *Gemini) Close() error { return g.client.Close() }

func (g *Gemini) SendSchemeMessage(ctx context.Context, text, schemeID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	var scheme *models.Scheme
	if schemeID != "" {
		s, err := g.Service.GetSchemeByID(ctx, schemeID)
		if err != nil {
			return "", err
		}
		scheme = s
	}
	return g.generate(ctx, SchemePrompt(scheme, text))
}

func (g *Gemini) SendComplaintMessage(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	return g.generate(ctx, ComplaintPrompt(text))
}

func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return utils.ReplyText(resp)
}

const replyRules = "Answer in the language the citizen wrote in. Keep it under 120 words. Ask for one piece of information at a time."

// SchemePrompt builds the application-assistant prompt. scheme may be nil for general questions.
func SchemePrompt(scheme *models.Scheme, message string) string {
	var b strings.Builder
	b.WriteString("You help Indian citizens apply for government welfare schemes.\n")
	if scheme != nil {
		fmt.Fprintf(&b, "Scheme: %s\nAbout: %s\nWhy the citizen qualifies: %s\n", scheme.Name, scheme.Description, scheme.EligibilityReason)
	} else {
		b.WriteString("No specific scheme is selected; help the citizen find a suitable one.\n")
	}
	fmt.Fprintf(&b, "Citizen: %s", message)
	return b.String()
}

func ComplaintPrompt(message string) string {
	return "You register complaints about government services such as ration distribution, pensions, gas subsidy and corruption. " +
		"Acknowledge the problem, ask for missing details (location, dates, office involved) and say which department handles it.\n" +
		"Citizen: " + message
}
