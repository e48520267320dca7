// Package auth provides authentication and authorization for bookingd.
//
// # Tokens
//
// Clients authenticate with JWT bearer tokens signed with HS256 using the
// configured jwt_secret. A token carries the account email as its subject
// together with issued-at and expiry claims. Tokens are fully stateless:
// there is no revocation list and no server-side session record, so the only
// way a token stops working is expiry (checked at verification time) or the
// backing account disappearing.
//
//	verifier, err := NewJWTVerifier(secret)
//	token, err := verifier.Generate("user@example.com", 24*time.Hour)
//	subject, err := verifier.Verify(token)
//
// # Request authentication
//
// Middleware makes exactly one authentication attempt per request and never
// blocks the handler chain. A valid token whose subject resolves to a stored
// user attaches an AuthContext to the request context; every failure mode
// (absent header, malformed or expired token, unknown subject, store fault)
// leaves the request anonymous. Rejecting anonymous requests is the job of
// the AccessPolicy evaluated after the middleware, not of the middleware
// itself.
//
// # Principal context
//
// Handlers read the authenticated identity with FromContext, which returns
// nil for anonymous requests. Handlers registered behind RequireAuth or a
// non-public AccessPolicy route may use MustFromContext.
package auth
