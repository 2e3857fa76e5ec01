// Package chart implements the trend chart of the HMI page.
//
// A Buffer keeps up to Capacity (timestamp, value) samples per registered series
// and evicts the oldest sample first. A Linear chart takes snapshots of the buffer,
// hands them to an optional Renderer and keeps the time-axis label current using
// an optional DateFormatter. Neither dependency is looked up per call: a Linear
// built without one simply skips that step.
package chart
