// Package storage defines the store interfaces consumed by the auth core and
// the HTTP handlers, plus sentinel errors shared by the adapter
// implementations (memory, postgres).
//
// Infrastructure faults (an unreachable database, a failed query) are ordinary
// wrapped errors, distinct from ErrNotFound. The transport layer maps them to
// 500 responses; they are never reinterpreted as authentication failures.
package storage
