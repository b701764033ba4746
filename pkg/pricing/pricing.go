// Package pricing maps models to per-million-token USD rates and computes
// per-call costs.
package pricing

import "math"

// Rate is the USD cost per one million input and output tokens.
type Rate struct {
	Input  float64 `yaml:"input_per_1m"`
	Output float64 `yaml:"output_per_1m"`
}

// ModelPricing is a single pricing override, keyed by model name.
type ModelPricing struct {
	Model  string  `json:"model" yaml:"model"`
	Input  float64 `json:"input_per_1m" yaml:"input_per_1m"`
	Output float64 `json:"output_per_1m" yaml:"output_per_1m"`
}

// Table maps a model name to its rate.
type Table map[string]Rate

// Default returns the built-in pricing table (per 1M tokens, Jan 2025).
func Default() Table {
	return Table{
		// OpenAI
		"gpt-4o":        {Input: 2.50, Output: 10.00},
		"gpt-4o-mini":   {Input: 0.15, Output: 0.60},
		"gpt-4-turbo":   {Input: 10.00, Output: 30.00},
		"gpt-3.5-turbo": {Input: 0.50, Output: 1.50},

		// Anthropic
		"claude-opus-4-20250514":     {Input: 15.00, Output: 75.00},
		"claude-sonnet-4-20250514":   {Input: 3.00, Output: 15.00},
		"claude-3-5-sonnet-20241022": {Input: 3.00, Output: 15.00},
		"claude-3-opus-20240229":     {Input: 15.00, Output: 75.00},
		"claude-3-sonnet-20240229":   {Input: 3.00, Output: 15.00},
		"claude-3-haiku-20240307":    {Input: 0.25, Output: 1.25},

		// Google Gemini
		"gemini-2.5-pro":       {Input: 1.25, Output: 10.00},
		"gemini-2.5-flash":     {Input: 0.30, Output: 2.50},
		"gemini-2.0-flash":     {Input: 0.10, Output: 0.40},
		"gemini-1.5-pro":       {Input: 1.25, Output: 5.00},
		"gemini-1.5-pro-002":   {Input: 1.25, Output: 5.00},
		"gemini-1.5-flash":     {Input: 0.075, Output: 0.30},
		"gemini-1.5-flash-002": {Input: 0.075, Output: 0.30},

		// Embedding models
		"text-embedding-3-small":          {Input: 0.02},
		"text-embedding-3-large":          {Input: 0.13},
		"text-embedding-ada-002":          {Input: 0.10},
		"text-embedding-004":              {Input: 0.05},
		"text-embedding-005":              {Input: 0.05},
		"text-multilingual-embedding-002": {Input: 0.05},
		"voyage-large-2":                  {Input: 0.12},
		"voyage-code-2":                   {Input: 0.12},
	}
}

// Apply overlays pricing overrides onto the table. Overrides with an empty
// model name are ignored.
func (t Table) Apply(overrides []ModelPricing) Table {
	for _, p := range overrides {
		if p.Model == "" {
			continue
		}
		t[p.Model] = Rate{Input: p.Input, Output: p.Output}
	}
	return t
}

// Cost returns the USD cost of a call, rounded to 6 decimal places.
// Unknown models cost 0; an incomplete table must never block metering.
func (t Table) Cost(model string, inputTokens, outputTokens int64) float64 {
	rate, ok := t[model]
	if !ok {
		return 0
	}
	cost := float64(inputTokens)/1e6*rate.Input + float64(outputTokens)/1e6*rate.Output
	return math.Round(cost*1e6) / 1e6
}

// Known reports whether the table has a rate for the model.
func (t Table) Known(model string) bool {
	_, ok := t[model]
	return ok
}
