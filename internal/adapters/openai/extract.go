package openai

import (
	"encoding/json"
	"strings"
)

const fallbackLimit = 2000

// ExtractText pulls the model's text out of an envelope
// lookups run in order: output items, output_text, choices, then the envelope itself
func ExtractText(env Envelope) (text string) {
	defer func() {
		if r := recover(); r != nil {
			text = fallbackText(env)
		}
	}()

	if items, ok := env["output"].([]any); ok {
		parts := make([]string, 0, len(items))
		for _, it := range items {
			parts = append(parts, outputItemText(it))
		}
		return strings.Join(parts, "\n")
	}
	if s, ok := env["output_text"].(string); ok && s != "" {
		return s
	}
	if choices, ok := env["choices"].([]any); ok {
		parts := make([]string, 0, len(choices))
		for _, ch := range choices {
			parts = append(parts, choiceText(ch))
		}
		return strings.Join(parts, "\n")
	}
	return fallbackText(env)
}

func outputItemText(it any) string {
	m, _ := it.(map[string]any)
	switch content := m["content"].(type) {
	case []any:
		var b strings.Builder
		for _, c := range content {
			cm, _ := c.(map[string]any)
			if s, ok := cm["text"].(string); ok {
				b.WriteString(s)
				continue
			}
			if s, ok := cm["plain_text"].(string); ok {
				b.WriteString(s)
			}
		}
		return b.String()
	case map[string]any:
		s, _ := content["text"].(string)
		return s
	default:
		return ""
	}
}

func choiceText(ch any) string {
	m, _ := ch.(map[string]any)
	if s, ok := m["text"].(string); ok {
		return s
	}
	msg, _ := m["message"].(map[string]any)
	s, _ := msg["content"].(string)
	return s
}

// fallbackText is the envelope as JSON, cut to fallbackLimit runes
func fallbackText(env Envelope) string {
	b, err := json.Marshal(env)
	if err != nil {
		return ""
	}
	r := []rune(string(b))
	if len(r) > fallbackLimit {
		r = r[:fallbackLimit]
	}
	return string(r)
}
