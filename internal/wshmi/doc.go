// Package wshmi implements the WebSocket link to the WebHMI server.
//
// The client dials the server, decodes JSON telemetry messages addressed to the
// configured server/network/device and delivers them in arrival order on a
// single channel. Operator messages are written back over the same connection.
// A read watchdog drops a silent link, and the client reconnects with capped
// exponential backoff while its context is alive.
package wshmi
