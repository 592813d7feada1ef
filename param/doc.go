// Package param implements the typed runtime parameter store.
//
// Parameters are declared up front as Definitions and live in a concurrent
// store. Every parameter carries a secure level: mutation is refused when
// the store's active level is not privileged enough. Writes mark the
// parameter dirty; SaveDirty persists the current values to a JSON file and
// clears the dirty flags, and Load restores them, falling back to defaults
// for anything missing from the file.
//
// The string conversion methods exist for the console and transport layers,
// which exchange parameter values as ASCII payloads.
package param
