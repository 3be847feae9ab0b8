// Package middleware provides the HTTP layer wrapped around the posgate
// API: bearer-token and API-key authentication, the web UI session
// cookie, per-client rate limiting, and request IDs.
package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims holds the parsed claims from a validated JWT.
type JWTClaims struct {
	Subject  string
	Issuer   string
	Audience []string
	Email    *string
	Name     *string
	Raw      map[string]interface{}
}

// JWTValidator validates a JWT token and returns the parsed claims.
type JWTValidator interface {
	Validate(ctx context.Context, tokenString string) (*JWTClaims, error)
}

// HS256Validator verifies and issues JWTs signed with a shared HS256
// secret. Session tokens minted by the login endpoint and the web UI
// cookie both go through it.
type HS256Validator struct {
	secret []byte
	parser *jwt.Parser
}

// NewHS256Validator creates a validator for locally issued session tokens.
func NewHS256Validator(secret string) (*HS256Validator, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	return &HS256Validator{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}, nil
}

// Issue signs a session token for username, expiring after ttl.
func (v *HS256Validator) Issue(username string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks the signature and expiry and extracts claims. The
// parser already pins the signing method, so the keyfunc only supplies
// the secret.
func (v *HS256Validator) Validate(_ context.Context, tokenString string) (*JWTClaims, error) {
	tok, err := v.parser.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	raw, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse claims: unsupported claim type %T", tok.Claims)
	}

	claims := newJWTClaims(raw)
	claims.Subject = claimString(raw, "sub")
	claims.Issuer = claimString(raw, "iss")
	claims.Audience = audienceList(raw["aud"])
	return claims, nil
}

// OIDCValidator verifies JWTs issued by an external identity provider,
// via OIDC discovery or a fixed JWKS endpoint.
type OIDCValidator struct {
	verifier *oidc.IDTokenVerifier
	trusted  map[string]bool
}

// NewOIDCValidator discovers the provider configuration from issuerURL
// and verifies tokens against its JWKS.
func NewOIDCValidator(ctx context.Context, issuerURL, audience string, allowedIssuers []string) (*OIDCValidator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc provider discovery: %w", err)
	}
	return &OIDCValidator{
		verifier: provider.Verifier(&oidc.Config{ClientID: audience}),
		trusted:  issuerAllowlist(issuerURL, allowedIssuers),
	}, nil
}

// NewOIDCValidatorFromJWKS skips discovery and fetches keys straight from
// jwksURL, for providers whose discovery document is unreachable from
// inside the deployment network.
func NewOIDCValidatorFromJWKS(ctx context.Context, jwksURL, issuerURL, audience string, allowedIssuers []string) (*OIDCValidator, error) {
	keySet := oidc.NewRemoteKeySet(ctx, jwksURL)
	return &OIDCValidator{
		verifier: oidc.NewVerifier(issuerURL, keySet, &oidc.Config{ClientID: audience}),
		trusted:  issuerAllowlist(issuerURL, allowedIssuers),
	}, nil
}

// issuerAllowlist builds the trusted-issuer set, defaulting to the
// provider's own URL when no explicit list is given.
func issuerAllowlist(issuerURL string, allowed []string) map[string]bool {
	set := make(map[string]bool, len(allowed))
	for _, iss := range allowed {
		set[iss] = true
	}
	if len(set) == 0 && issuerURL != "" {
		set[issuerURL] = true
	}
	return set
}

// Validate verifies the token against the provider's JWKS and checks the
// issuer allowlist.
func (v *OIDCValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	idToken, err := v.verifier.Verify(ctx, tokenString)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}
	if len(v.trusted) > 0 && !v.trusted[idToken.Issuer] {
		return nil, fmt.Errorf("issuer %q not in allowed list", idToken.Issuer)
	}

	var raw map[string]interface{}
	if err := idToken.Claims(&raw); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	// Subject, issuer and audience come from the verifier, not the raw
	// map: those are the fields it actually checked.
	claims := newJWTClaims(raw)
	claims.Subject = idToken.Subject
	claims.Issuer = idToken.Issuer
	claims.Audience = idToken.Audience
	return claims, nil
}

// MultiValidator accepts a token when any of its validators does.
// Locally issued session tokens and external OIDC tokens use different
// signing schemes, so the auth middleware tries each in order.
type MultiValidator struct {
	validators []JWTValidator
}

// NewMultiValidator chains validators; earlier ones win.
func NewMultiValidator(validators ...JWTValidator) *MultiValidator {
	return &MultiValidator{validators: validators}
}

// Validate returns the first successful claims, or the last error.
func (v *MultiValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	var lastErr error
	for _, inner := range v.validators {
		claims, err := inner.Validate(ctx, tokenString)
		if err == nil {
			return claims, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no token validators configured")
	}
	return nil, lastErr
}

// UsernameClaimValidator overrides Subject with a named claim when it is
// present. OIDC subjects are opaque provider IDs; directory usernames
// usually ride the email claim.
type UsernameClaimValidator struct {
	Inner JWTValidator
	Claim string
}

func (v UsernameClaimValidator) Validate(ctx context.Context, tokenString string) (*JWTClaims, error) {
	claims, err := v.Inner.Validate(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if v.Claim != "" {
		if s, ok := claims.Raw[v.Claim].(string); ok && s != "" {
			claims.Subject = s
		}
	}
	return claims, nil
}

// newJWTClaims seeds a claim set from the raw claim map. The verified
// fields (subject, issuer, audience) are filled in by the caller, which
// knows whether to trust the map or the verifier output.
func newJWTClaims(raw map[string]interface{}) *JWTClaims {
	return &JWTClaims{
		Email: optionalClaim(raw, "email"),
		Name:  optionalClaim(raw, "name"),
		Raw:   raw,
	}
}

func claimString(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

// optionalClaim distinguishes an absent claim from an empty one.
func optionalClaim(raw map[string]interface{}, key string) *string {
	if s, ok := raw[key].(string); ok {
		return &s
	}
	return nil
}

// audienceList normalizes the aud claim, which RFC 7519 allows to be a
// single string or an array.
func audienceList(aud interface{}) []string {
	switch a := aud.(type) {
	case string:
		return []string{a}
	case []interface{}:
		var out []string
		for _, v := range a {
			if s, ok := v.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
