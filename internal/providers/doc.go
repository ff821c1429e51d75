// Package providers implements LLM provider clients behind the
// Completer interface. Each provider is a plain HTTP client with
// exponential backoff on rate limits and transient server errors.
// Auth failures are never retried; IsAuthError lets callers surface
// them as fatal.
package providers
