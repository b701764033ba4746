// Package hooks meters provider calls at the call site: it extracts token
// counts from provider-native response shapes and forwards them to the
// usage monitor. Metering is observational and never alters the outcome of
// the call it wraps.
package hooks

import (
	"context"
	"encoding/json"

	log "github.com/sirupsen/logrus"

	"github.com/tokenscope-ai/tokenscope/pkg/models"
	"github.com/tokenscope-ai/tokenscope/pkg/monitor"
)

// Provider tags for the extraction dispatch. Adding a provider means adding
// a case to ExtractUsage, not relying on structural probing.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// UsageLogger is the slice of the monitor the hooks need.
type UsageLogger interface {
	LogUsage(ctx context.Context, ev monitor.Event) (monitor.LogResult, error)
}

// CallInfo identifies a metered call site.
type CallInfo struct {
	Provider  string
	Model     string
	Operation string
	APIKey    string
	Metadata  map[string]any
}

// ExtractUsage decodes token counts from a raw provider response body,
// dispatching on the provider tag. It returns false when the provider is
// unknown or the response carries no usage block.
func ExtractUsage(provider string, raw []byte) (models.TokenCounts, bool) {
	switch provider {
	case ProviderOpenAI:
		var body struct {
			Usage *models.OpenAIUsage `json:"usage"`
		}
		if err := json.Unmarshal(raw, &body); err != nil || body.Usage == nil {
			return models.TokenCounts{}, false
		}
		return body.Usage.ToCounts(), true
	case ProviderAnthropic:
		var body struct {
			Usage *models.AnthropicUsage `json:"usage"`
		}
		if err := json.Unmarshal(raw, &body); err != nil || body.Usage == nil {
			return models.TokenCounts{}, false
		}
		return body.Usage.ToCounts(), true
	case ProviderGemini:
		var body struct {
			UsageMetadata *models.GeminiUsageMetadata `json:"usage_metadata"`
		}
		if err := json.Unmarshal(raw, &body); err != nil || body.UsageMetadata == nil {
			return models.TokenCounts{}, false
		}
		return body.UsageMetadata.ToCounts(), true
	default:
		return models.TokenCounts{}, false
	}
}

// EstimateTokens approximates the token count of a text as one token per
// four characters, never less than one. Embedding responses carry no native
// counts, so this is the best available stand-in.
func EstimateTokens(text string) int64 {
	n := int64(len(text)) / 4
	if n < 1 {
		return 1
	}
	return n
}

// MeterLLM runs call, logs extracted token usage on success, and logs a
// zero-token error record on failure. The call's response body and error
// are returned unchanged either way.
func MeterLLM(ctx context.Context, m UsageLogger, info CallInfo, call func(context.Context) ([]byte, error)) ([]byte, error) {
	if info.Operation == "" {
		info.Operation = "inference"
	}

	raw, err := call(ctx)
	if err != nil {
		logFailure(ctx, m, info, models.ServiceLLM, err)
		return raw, err
	}

	counts, ok := ExtractUsage(info.Provider, raw)
	if !ok {
		return raw, nil
	}
	logSuccess(ctx, m, info, models.ServiceLLM, counts)
	return raw, nil
}

// MeterEmbedding runs call for an embedding request, estimating input
// tokens from the text since embedding responses carry no token counts.
func MeterEmbedding(ctx context.Context, m UsageLogger, info CallInfo, inputText string, call func(context.Context) error) error {
	if info.Operation == "" {
		info.Operation = "embed"
	}

	if err := call(ctx); err != nil {
		logFailure(ctx, m, info, models.ServiceEmbedding, err)
		return err
	}

	logSuccess(ctx, m, info, models.ServiceEmbedding, models.TokenCounts{
		InputTokens: EstimateTokens(inputText),
	})
	return nil
}

func logSuccess(ctx context.Context, m UsageLogger, info CallInfo, service models.ServiceType, counts models.TokenCounts) {
	_, err := m.LogUsage(ctx, monitor.Event{
		Provider:     info.Provider,
		ServiceType:  service,
		Model:        info.Model,
		Operation:    info.Operation,
		InputTokens:  counts.InputTokens,
		OutputTokens: counts.OutputTokens,
		APIKey:       info.APIKey,
		Metadata:     info.Metadata,
	})
	if err != nil {
		log.Warnf("meter %s %s call: %v", info.Provider, service, err)
	}
}

// logFailure records a zero-token error event so failed calls stay visible
// in reports. The original call error is never masked by a metering failure.
func logFailure(ctx context.Context, m UsageLogger, info CallInfo, service models.ServiceType, callErr error) {
	_, err := m.LogUsage(ctx, monitor.Event{
		Provider:     info.Provider,
		ServiceType:  service,
		Model:        info.Model,
		Operation:    info.Operation,
		APIKey:       info.APIKey,
		Metadata:     info.Metadata,
		Error:        true,
		ErrorMessage: callErr.Error(),
	})
	if err != nil {
		log.Warnf("meter failed %s %s call: %v", info.Provider, service, err)
	}
}
