// Package llm provides an OpenRouter chat client used by the AI matcher.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.CompleteJSON: send system/user prompts, receive a JSON payload.
// Client.HealthCheck: verify API key and model availability.
// DecodeLLMJSON: decode a payload that may be wrapped in code fences or prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx and network timeouts with
// exponential backoff (base 1s, max 10s, 3 attempts by default), honouring
// Retry-After. Context cancellation aborts retries immediately. Requests are
// optionally paced by a token bucket.
//
// # Errors
//
// Failures carry services.ErrTransport or services.ErrMalformed, so callers
// can classify a failed batch with services.KindOf.
package llm
