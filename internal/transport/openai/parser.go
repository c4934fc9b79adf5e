package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/taimoorKVD/car-recommendation-apis/internal/domain"
	"github.com/taimoorKVD/car-recommendation-apis/internal/domain/intent"
	"github.com/taimoorKVD/car-recommendation-apis/internal/metrics"
)

// Parser extracts structured purchase intent via an OpenAI-compatible
// chat completion API in JSON mode.
type Parser struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// ParserConfig holds the intent parser provider settings.
type ParserConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Logger  *zap.Logger
}

// NewParser creates an OpenAI-compatible intent parser.
func NewParser(cfg *ParserConfig) *Parser {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Parser{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

const parserSystemPrompt = `You extract structured car purchase intent from a user query.
Respond with a single JSON object and nothing else:
{
  "vehicle_type": {"value": "<type>", "confidence": <0..1>} or null,
  "negated_types": [{"value": "<type>", "confidence": <0..1>}],
  "family_friendly": true/false/null,
  "mileage": "low"/"medium"/"high" or "",
  "objectives": [{"field": "price", "direction": "asc" or "desc"}]
}
Rules:
- vehicle_type is the type the user asks for; confidence reflects how explicit the request is.
- negated_types are types the user rejects ("no vans", "not a truck").
- family_friendly is true only when the query mentions family, kids or child seats; false when the user explicitly rules that out; otherwise null.
- mileage reflects expected usage ("daily commute" = high), empty when unknown.
- objectives capture optimization goals: "cheapest" = {"field":"price","direction":"asc"}, "premium"/"most expensive" = {"field":"price","direction":"desc"}.
- Prefer types from the known list when one clearly matches; never invent fields.`

// Parse implements domain.IntentParser. Returns the raw graded extraction;
// thresholds and vocabulary sanitation are applied by the caller.
func (p *Parser) Parse(ctx context.Context, query string, vehicleTypes []string) (intent.RawIntent, error) {
	system := parserSystemPrompt
	if len(vehicleTypes) > 0 {
		system += "\nKnown vehicle types: " + strings.Join(vehicleTypes, ", ") + "."
	}

	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: query},
		},
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ParserRequestsTotal.WithLabelValues(p.model, "error").Inc()
		return intent.RawIntent{}, parseParserAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ParserRequestsTotal.WithLabelValues(p.model, "error").Inc()
		return intent.RawIntent{}, fmt.Errorf("empty completion response: %w", domain.ErrParserProviderError)
	}

	content := resp.Choices[0].Message.Content

	var raw intent.RawIntent
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		metrics.ParserRequestsTotal.WithLabelValues(p.model, "error").Inc()
		p.logger.Warn("Failed to decode parser output",
			zap.String("content", content), zap.Error(err))
		return intent.RawIntent{}, fmt.Errorf("decode parser output: %w", domain.ErrParserOutputInvalid)
	}

	metrics.ParserRequestsTotal.WithLabelValues(p.model, "success").Inc()
	metrics.ParserRequestDuration.WithLabelValues(p.model).Observe(duration.Seconds())

	return raw, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Parser) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseParserAPIError wraps provider failures with domain.ErrParserProviderError
// for correct 502 mapping.
func parseParserAPIError(err error) error {
	wrap := domain.ErrParserProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("parser API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("parser API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("parser request failed: %w", wrap)
}
