package model

// Message is one chat turn in the OpenAI wire shape.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GeneralOpenAIRequest is the standardized chat-completion request the
// gateway accepts, regardless of the upstream vendor it lands on.
// https://platform.openai.com/docs/api-reference/chat
type GeneralOpenAIRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	TopP        *float64  `json:"top_p,omitempty"`
	TopK        int       `json:"top_k,omitempty"`
	Stop        any       `json:"stop,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// StopSequences normalizes the stop field, which OpenAI allows as either a
// single string or an array of strings.
func (r *GeneralOpenAIRequest) StopSequences() []string {
	switch v := r.Stop.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// SystemPrompt concatenates all system-role messages and returns the
// remaining conversation turns.
func (r *GeneralOpenAIRequest) SystemPrompt() (string, []Message) {
	var system string
	rest := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role == "system" {
			if system != "" {
				system += "\n"
			}
			system += m.Content
			continue
		}
		rest = append(rest, m)
	}
	return system, rest
}
