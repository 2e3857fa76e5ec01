// Package sim emulates the pro1003 heat-chamber controller behind a WebHMI
// server, for bench testing the operator client without a PLC.
//
// A Chamber owns the process state and applies settings and time steps in
// FIFO order on one worker goroutine. A Server publishes the chamber tags to
// WebSocket clients and feeds their settings messages back to the chamber.
//
// START select values: 0 stop, 1 start, 2 start with purge.
package sim
