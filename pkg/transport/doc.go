// Package transport serves the courier API over HTTP.
//
// It owns route wiring, request decoding, and the single point where
// internal errors become the JSON error envelope. Authorization decisions
// are not made here: handlers call the guard predicates from pkg/auth and
// this package only converts their typed failures into 401 responses,
// exactly once per request.
package transport
