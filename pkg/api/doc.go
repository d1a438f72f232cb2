// Package api defines the wire types for the courier messaging backend.
//
// This package provides the request and response bodies exchanged over HTTP
// (registration, login, user profiles, messages), the JSON error envelope,
// and request validation. It has zero external dependencies (Go standard
// library only) and performs no I/O.
//
// Core types:
//   - [User]: a registered account with profile fields and timestamps
//   - [Message]: a direct message between exactly one sender and one recipient
//   - [APIError]: structured error carrying a message and an HTTP status
//
// All error responses share the envelope {"error": {"message", "status"}},
// written exactly once at the transport boundary.
package api
