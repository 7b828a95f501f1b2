// Package http exposes the dashboard API over chi: the comparison engine,
// the ingested financial read models and the websocket event stream.
package http
