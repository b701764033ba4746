package models

// OpenAIUsage holds token counts as they appear in an OpenAI-style response.
type OpenAIUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// AnthropicUsage holds token counts from an Anthropic messages response.
type AnthropicUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// GeminiUsageMetadata holds token counts from a Gemini generate response.
type GeminiUsageMetadata struct {
	PromptTokenCount     int64 `json:"prompt_token_count"`
	CandidatesTokenCount int64 `json:"candidates_token_count"`
	TotalTokenCount      int64 `json:"total_token_count"`
}

// ToCounts converts OpenAI usage to normalized token counts.
func (u *OpenAIUsage) ToCounts() TokenCounts {
	return TokenCounts{InputTokens: u.PromptTokens, OutputTokens: u.CompletionTokens}
}

// ToCounts converts Anthropic usage to normalized token counts.
func (u *AnthropicUsage) ToCounts() TokenCounts {
	return TokenCounts{InputTokens: u.InputTokens, OutputTokens: u.OutputTokens}
}

// ToCounts converts Gemini usage metadata to normalized token counts.
func (u *GeminiUsageMetadata) ToCounts() TokenCounts {
	return TokenCounts{InputTokens: u.PromptTokenCount, OutputTokens: u.CandidatesTokenCount}
}
