// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// # Security Features
//
// The SecureHandler sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (bearer tokens, long API keys)
//   - Credential query parameters inside URLs and error messages, such as
//     the NewsData "apikey" parameter
//
// Even in verbose mode, sensitive values are masked so logs can be shared.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("fetching", "url", "https://newsdata.io/api/1/news?apikey=XYZ&q=acme")
//	// url="https://newsdata.io/api/1/news?apikey=***REDACTED***&q=acme"
package log
