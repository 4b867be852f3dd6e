package services

import (
	"context"
	"fmt"
	"storefront/config"

	"google.golang.org/genai"
)

// suggestionSchema constrains the model output to {"suggestions": [string]}.
var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"suggestions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"suggestions"},
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, cfg config.GeminiConfig) (*GeminiGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{client: client, model: cfg.Model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema,
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
