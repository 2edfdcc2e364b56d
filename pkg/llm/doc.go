// Package llm defines the provider-neutral conversation model the template
// generation engine speaks, and its Anthropic implementation.
//
// Messages are ordered lists of typed parts (text or base64 image); text
// parts and the system instruction can carry cache hints that map to the
// provider's prompt caching. The Client interface returns the first text
// content part, the stop reason, and token usage:
//
//	client, err := llm.NewAnthropic(cfg)
//	resp, err := client.CreateMessage(ctx, llm.Request{
//		System:   systemPrompt,
//		Messages: []llm.Message{llm.UserMessage(llm.Text("a simple button"))},
//	})
//
// Transient provider overload surfaces as ErrOverloaded so callers can
// apply their own backoff; SDK retries are disabled.
package llm
