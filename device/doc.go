// Package device implements the responder-side station: the command
// handler that backs the link transport with an append-only log file (the
// SD card stand-in) and a settable real-time clock.
package device
