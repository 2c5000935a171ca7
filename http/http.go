// Package http implements the chat transport over HTTP: a [Client] that
// satisfies [sous.Client], and a [Server] that answers chat requests with a
// newline-delimited JSON stream relayed from a [sous.Generator].
package http

const (
	chatPath    = "/chat"
	healthPath  = "/healthz"
	contentType = "application/json"
	ndjsonType  = "application/x-ndjson"

	// maxRequestBytes bounds the size of a chat request body.
	maxRequestBytes = 64 * 1024
	// maxErrorBodyBytes bounds how much of a refused response is kept.
	maxErrorBodyBytes = 4 * 1024
)
