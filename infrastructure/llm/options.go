package llm

// RequestOptions holds the normalized per-request parameters extracted
// from the options map passed through ports.LLMClient.
type RequestOptions struct {
	// Model overrides the provider's configured model for this request.
	Model string
	// System is an optional system-role instruction.
	System string
	// Temperature controls sampling randomness; nil leaves the provider
	// default in place.
	Temperature *float64
	// MaxTokens limits the completion length; zero leaves the provider
	// default in place.
	MaxTokens int
}

// ParseRequestOptions extracts and validates request options with
// defaults. Unknown keys are ignored so callers can pass
// provider-specific extras without breaking other providers.
func ParseRequestOptions(opts map[string]any, defaultModel string) RequestOptions {
	options := RequestOptions{Model: defaultModel}
	if opts == nil {
		return options
	}

	if model, ok := opts["model"].(string); ok && model != "" {
		options.Model = model
	}
	if system, ok := opts["system"].(string); ok {
		options.System = system
	}
	if temp, ok := toFloat64(opts["temperature"]); ok {
		options.Temperature = &temp
	}
	if maxTokens, ok := toInt(opts["max_tokens"]); ok && maxTokens > 0 {
		options.MaxTokens = maxTokens
	}

	return options
}

// clamp limits v to the inclusive range [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	default:
		return 0, false
	}
}

func toInt(v any) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	default:
		return 0, false
	}
}
