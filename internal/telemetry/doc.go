// Package telemetry fans HMI updates out to operator SSE clients.
//
// Every processed WebSocket message publishes a "tags" event, every chart
// redraw a "chart" event and every link state change a "link" event. The last
// N events of each topic are buffered so that a reconnecting client can resume
// with the Last-Event-ID header.
package telemetry
