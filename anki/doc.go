// Package anki is a typed client for the AnkiConnect automation endpoint.
//
// Ownership boundary:
// - request/response envelope wire contract
// - HTTP transport and the Invoke dispatch chokepoint
// - process-wide default connection state
// - typed deck, note, and model operations
//
// Every operation is one synchronous round trip: build params, POST the
// envelope, interpret the reply. Failures always surface as *CallError
// tagged with the action that failed.
package anki
