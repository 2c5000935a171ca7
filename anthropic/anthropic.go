// Package anthropic implements [sous.Generator] for the Anthropic Messages API.
//
// It posts a single-turn prompt with streaming enabled and maps the SSE
// events of the reply onto records: text deltas become text records,
// message_stop becomes the done record and error events become error records.
package anthropic

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2048
	apiVersion       = "2023-06-01"
	messagesPath     = "/v1/messages"
)

// apiRequest is the JSON body sent to the Anthropic Messages API.
type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Stream    bool         `json:"stream"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SSE response types.

type sseMessageStart struct {
	Message struct {
		Model string   `json:"model"`
		Usage sseUsage `json:"usage"`
	} `json:"message"`
}

type sseUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type sseContentBlockDelta struct {
	Index int `json:"index"`
	Delta struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"delta"`
}

type sseMessageDelta struct {
	Delta struct {
		StopReason *string `json:"stop_reason"`
	} `json:"delta"`
	Usage sseUsage `json:"usage"`
}

type sseErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// sseError is the payload of an error event, and also the JSON body
// returned on non-200 HTTP responses.
type sseError struct {
	Error sseErrorDetail `json:"error"`
}
