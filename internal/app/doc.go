// Package app composes the server: configuration, logging, the ingested
// store, the comparison engine and the HTTP/websocket surfaces.
package app
