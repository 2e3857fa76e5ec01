// Package app is the pro1003 page: it owns the application state built by
// Init and applies WebHMI messages and operator commands to it.
//
// The trend chart follows the TT001 measurement. SP and D only update the
// cached setpoint band; every TT001 value appends SP, SP_Lo, SP_Hi and TT001
// together, stamped with the message time, so all series share one time axis.
package app
