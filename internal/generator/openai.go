package generator

import "time"

// NewOpenAI targets the OpenAI API, or any compatible server via endpoint.
func NewOpenAI(model, endpoint string, timeout time.Duration) *ChatCompletions {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return newChatCompletions("openai", model, endpoint, openAIEndpoint, timeout)
}
