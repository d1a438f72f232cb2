// Package auth implements the authentication and authorization core of
// courier: credential verification, stateless session tokens, per-request
// identity resolution, and the access-guard predicates applied by route
// handlers.
//
// The pieces compose in a fixed order. A client proves a password to the
// [Verifier], receives a signed token from the [TokenService], and replays
// it on every request. [Middleware] resolves the token into an [Identity]
// in the request context without ever rejecting a request itself; an
// invalid token is indistinguishable from a missing one at that stage.
// Route handlers then apply guard predicates (RequireAuthenticated,
// RequireSameUser, RequireMessageParticipant, RequireMessageRecipient)
// before touching a resource.
//
// The core holds no mutable cross-request state. The signing secret is
// injected at construction and only ever read.
package auth
