package insights

import (
	"context"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/cppla/gymcheckin/domain"
)

// Generator turns a prompt into text. Implementations make exactly one call and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// BedrockSettings selects the model and sampling for BedrockGenerator.
type BedrockSettings struct {
	Region      string
	ModelID     string
	MaxTokens   int64
	Temperature float64
}

// BedrockGenerator calls Claude through Amazon Bedrock.
type BedrockGenerator struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewBedrockGenerator resolves AWS credentials from the default chain for the given region.
func NewBedrockGenerator(ctx context.Context, s BedrockSettings) (*BedrockGenerator, error) {
	if s.Region == "" || s.ModelID == "" {
		return nil, fmt.Errorf("%w: Missing AWS env vars.", domain.ErrConfiguration)
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(s.Region))
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %v", domain.ErrConfiguration, err)
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = 250
	}
	return &BedrockGenerator{
		client:      anthropic.NewClient(bedrock.WithConfig(awsCfg)),
		model:       s.ModelID,
		maxTokens:   s.MaxTokens,
		temperature: s.Temperature,
	}, nil
}

func (g *BedrockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(g.model),
		MaxTokens:   g.maxTokens,
		Temperature: anthropic.Float(g.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &domain.GenerationError{Reason: "bedrock call failed", Err: err}
	}

	parts := make([]string, 0, len(msg.Content))
	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", &domain.GenerationError{Reason: "empty response"}
	}
	return text, nil
}
