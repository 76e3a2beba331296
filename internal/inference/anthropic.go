package inference

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/config"
)

// defaultMaxTokens caps responses when the caller does not set a limit.
const defaultMaxTokens = 4096

// AnthropicConfig contains configuration for creating an AnthropicClient.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. If empty, uses ANTHROPIC_API_KEY.
	APIKey string
	// UseAWSBedrock routes calls through AWS Bedrock instead of the
	// direct API.
	UseAWSBedrock bool
	// AWSRegion is the AWS region for Bedrock (e.g., "us-west-2").
	AWSRegion string
	// AWSProfile is the optional AWS profile name to use.
	AWSProfile string
	// Pricing maps model id to USD cost per million tokens, used to
	// compute the cost of each call.
	Pricing map[string]float64
}

// AnthropicClient is the Anthropic-backed implementation of Client.
type AnthropicClient struct {
	inner   anthropic.Client
	pricing map[string]float64
}

// NewAnthropicClient creates a new Anthropic-backed inference client.
func NewAnthropicClient(cfg AnthropicConfig) (*AnthropicClient, error) {
	var opts []option.RequestOption

	if cfg.UseAWSBedrock {
		ctx := context.Background()

		var loadOpts []func(*config.LoadOptions) error
		if cfg.AWSRegion != "" {
			loadOpts = append(loadOpts, config.WithRegion(cfg.AWSRegion))
		}
		if cfg.AWSProfile != "" {
			loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.AWSProfile))
		}

		opts = append(opts, bedrock.WithLoadDefaultConfig(ctx, loadOpts...))
	} else {
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set")
		}
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &AnthropicClient{
		inner:   anthropic.NewClient(opts...),
		pricing: cfg.Pricing,
	}, nil
}

// Invoke sends a single-turn prompt to the given model and returns the text
// response with token and cost accounting. Failures are classified into the
// router's error taxonomy.
func (c *AnthropicClient) Invoke(ctx context.Context, modelID, prompt string, maxTokens int) (Response, error) {
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	resp, err := c.inner.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return Response{}, classify(ctx, err)
	}

	var text string
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += variant.Text
		}
	}

	tokens := resp.Usage.InputTokens + resp.Usage.OutputTokens
	return Response{
		Text:         text,
		TokensUsed:   tokens,
		CostIncurred: float64(tokens) / 1_000_000 * c.pricing[modelID],
	}, nil
}

// classify maps SDK and transport errors onto the retry taxonomy.
func classify(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return NewError(KindTimeout, err)
	}

	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch {
		case apierr.StatusCode == 429:
			return NewError(KindRateLimited, err)
		case apierr.StatusCode == 404:
			return NewError(KindInvalidModel, err)
		case apierr.StatusCode >= 500:
			return NewError(KindProviderError, err)
		}
	}

	// Unclassified transport failures are treated as transient.
	return NewError(KindProviderError, err)
}
