// Package transport provides the shared outbound HTTP client used by every
// source connector.
//
// A Client applies one request timeout, a User-Agent, a response body limit
// and, optionally, a SOCKS5 proxy. It reports non-2xx responses as errors
// wrapping ErrUnexpectedStatus so connectors can turn them into failed
// outcomes without inspecting the response.
package transport
