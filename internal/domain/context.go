package domain

import "context"

type principalKey struct{}

// ContextPrincipal is the authenticated identity attached to a request.
// It reflects who cleared the auth middleware, not a directory record:
// API-key and bootstrap callers have no principal entry at all.
type ContextPrincipal struct {
	Name    string
	IsAdmin bool
	Source  string // "jwt", "api_key", "cookie" or "system"
}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext reports the identity attached by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}

// CallerName returns the attached principal's name, or "" for
// unauthenticated contexts. Audit trails record it verbatim.
func CallerName(ctx context.Context) string {
	p, _ := PrincipalFromContext(ctx)
	return p.Name
}
