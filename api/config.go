// Package api provides an HTTP API server for opening, querying, and
// managing conversations.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8090")
	ListenAddr string
}

// ErrorResponse is the JSON error body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}
