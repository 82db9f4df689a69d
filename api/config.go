// Package api provides a read-only HTTP API over the local transcript of
// chat turns.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// DisableMCP skips mounting the MCP endpoint at /mcp.
	DisableMCP bool
}
