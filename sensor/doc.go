// Package sensor converts raw analog readings into temperatures.
//
// NTC thermistors sit in a pull-up divider; the B-parameter equation
// linearizes the measured divider voltage into degrees Celsius. A reading
// outside the channel's plausible voltage window latches a fault, the
// signal used to flag a disconnected or shorted probe.
package sensor
