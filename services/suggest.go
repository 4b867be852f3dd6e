package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront/dto"
	"strings"
	"text/template"
)

var suggestionPrompt = template.Must(template.New("suggestion").Parse(`You are a shopping assistant for an online store.
Suggest products the customer is likely to want next, based on their cart and stated requirements.
Reply with product names only.

Cart:
{{- if .CartItems}}
{{- range .CartItems}}
- {{.Name}}: {{.Description}}
{{- end}}
{{- else}}
No items in cart.
{{- end}}

Requirements:
{{.Requirements}}
`))

// RenderPrompt builds the model prompt. Requirements are inserted verbatim.
func RenderPrompt(req dto.SuggestionRequest) (string, error) {
	var buf bytes.Buffer
	if err := suggestionPrompt.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("render suggestion prompt: %w", err)
	}
	return buf.String(), nil
}

// Generator sends a prompt to a completion model that answers with a JSON object
// of the shape {"suggestions": [string]}.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

var ErrMalformedSuggestions = errors.New("model response does not match the suggestion schema")

type SuggestionService struct {
	generator Generator
}

func NewSuggestionService(generator Generator) *SuggestionService {
	return &SuggestionService{generator: generator}
}

// Suggest forwards the request unchanged; there is no retry or fallback list.
func (s *SuggestionService) Suggest(ctx context.Context, req dto.SuggestionRequest) (*dto.SuggestionResponse, error) {
	prompt, err := RenderPrompt(req)
	if err != nil {
		return nil, err
	}

	raw, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}
	return decodeSuggestions(raw)
}

func decodeSuggestions(raw string) (*dto.SuggestionResponse, error) {
	var out struct {
		Suggestions *[]string `json:"suggestions"`
	}
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSuggestions, err)
	}
	if out.Suggestions == nil {
		return nil, fmt.Errorf("%w: missing suggestions", ErrMalformedSuggestions)
	}
	return &dto.SuggestionResponse{Suggestions: *out.Suggestions}, nil
}
