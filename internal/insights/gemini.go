// Package insights produces a short natural-language recap of the rider's
// accumulated time savings. Entirely optional; the dashboard works without it.
package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"velotime/internal/compare"
)

// Generator wraps a Gemini model configured for short prose output.
type Generator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGenerator initializes a Gemini client. apiKey should come from
// environment configuration.
func NewGenerator(ctx context.Context, apiKey string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.0-flash")
	model.SetTemperature(0.4)

	return &Generator{client: client, model: model}, nil
}

// Close cleans up the Gemini client resources.
func (g *Generator) Close() {
	g.client.Close()
}

// Recap turns summary statistics into two or three encouraging sentences.
func (g *Generator) Recap(ctx context.Context, sum compare.Summary) (string, error) {
	prompt := buildPrompt(sum)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(text.String()), nil
}

func buildPrompt(sum compare.Summary) string {
	return fmt.Sprintf(`Role: You write short recaps for a cyclist's dashboard that compares
their bike commutes against estimated car travel times for the same routes.

Stats:
- Rides compared: %d
- Total time saved vs driving: %.1f minutes (negative means the car would have been faster)
- Average time saved per ride: %.1f minutes
- Total distance: %.1f km

Write 2-3 friendly, factual sentences summarizing how the rider is doing against
car traffic. Mention the totals. No emoji, no markdown, no headings.`,
		sum.Count,
		sum.TotalTimeSavedSeconds/60,
		sum.AvgTimeSavedSeconds/60,
		sum.TotalDistanceMeters/1000,
	)
}
