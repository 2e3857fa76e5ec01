// Package tags binds telemetry tag values to HMI widget state.
//
// A Binding names the data key it listens to, how the raw value is processed
// (bit extraction, division, list lookup), which view node it drives and which
// handler runs afterwards. A Dispatcher applies one telemetry message to all
// bindings in declaration order, so handlers of earlier bindings observe the
// message before later ones.
package tags
