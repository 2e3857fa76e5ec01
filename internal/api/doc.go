// Package api serves the pro1003 page to operators over HTTP.
//
// Read endpoints return JSON snapshots of the page, the trend chart and the
// event log, or the rendered chart frame. /telemetry streams updates as SSE.
// /settings forwards operator edits to the controller and requires the
// control scope when authentication is enabled.
package api
