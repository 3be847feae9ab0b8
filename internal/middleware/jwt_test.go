package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signHS256 mints a token the way the login endpoint would.
func signHS256(secret string, claims jwt.MapClaims) string {
	signed, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	return signed
}

// signRS256 builds a token the HS256 validator must reject outright.
func signRS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestNewHS256Validator(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator("my-secret")
	require.NoError(t, err)
	assert.Equal(t, []byte("my-secret"), v.secret)
	assert.NotNil(t, v.parser)

	_, err = NewHS256Validator("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret is required")
}

func TestHS256Validator_Validate(t *testing.T) {
	t.Parallel()

	const secret = "posgate-session-secret-0123456789"

	tests := []struct {
		name    string
		token   string
		want    *JWTClaims
		wantErr string
	}{
		{
			name: "full claim set",
			token: signHS256(secret, jwt.MapClaims{
				"sub":   "cashier-7",
				"iss":   "https://sso.posgate.example",
				"email": "dana@store.example",
				"name":  "Dana Vega",
				"aud":   "posgate-api",
				"exp":   time.Now().Add(time.Hour).Unix(),
			}),
			want: &JWTClaims{
				Subject:  "cashier-7",
				Issuer:   "https://sso.posgate.example",
				Audience: []string{"posgate-api"},
				Email:    ptr("dana@store.example"),
				Name:     ptr("Dana Vega"),
			},
		},
		{
			name: "subject only",
			token: signHS256(secret, jwt.MapClaims{
				"sub": "svc-reporting",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			want: &JWTClaims{Subject: "svc-reporting"},
		},
		{
			name: "audience as array",
			token: signHS256(secret, jwt.MapClaims{
				"sub": "cashier-7",
				"aud": []string{"posgate-api", "posgate-ui"},
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			want: &JWTClaims{
				Subject:  "cashier-7",
				Audience: []string{"posgate-api", "posgate-ui"},
			},
		},
		{
			name: "expired",
			token: signHS256(secret, jwt.MapClaims{
				"sub": "cashier-7",
				"exp": time.Now().Add(-time.Minute).Unix(),
			}),
			wantErr: "token verification failed",
		},
		{
			name: "signed with a different secret",
			token: signHS256("not-the-server-secret", jwt.MapClaims{
				"sub": "cashier-7",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantErr: "token verification failed",
		},
		{
			name: "RS256 rejected by method pin",
			token: signRS256(t, jwt.MapClaims{
				"sub": "cashier-7",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantErr: "token verification failed",
		},
		{
			name:    "garbage input",
			token:   "not.a.token",
			wantErr: "token verification failed",
		},
		{
			name:    "empty string",
			wantErr: "token verification failed",
		},
	}

	v, err := NewHS256Validator(secret)
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims, err := v.Validate(context.Background(), tt.token)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)

			// Raw carries the full decoded claim map; drop it so the
			// rest compares as one literal.
			require.NotNil(t, claims.Raw)
			claims.Raw = nil
			assert.Equal(t, tt.want, claims)
		})
	}
}

func TestHS256Validator_Issue(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator("issue-secret")
	require.NoError(t, err)

	signed, err := v.Issue("alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	// The issued token must round-trip through the same validator.
	claims, err := v.Validate(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	exp, ok := claims.Raw["exp"].(float64)
	require.True(t, ok)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), int64(exp), 5)
}

func TestHS256Validator_IssueRejectedByOtherSecret(t *testing.T) {
	t.Parallel()

	issuer, err := NewHS256Validator("secret-a")
	require.NoError(t, err)
	verifier, err := NewHS256Validator("secret-b")
	require.NoError(t, err)

	signed, err := issuer.Issue("alice", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(context.Background(), signed)
	require.Error(t, err)
}

func TestNewOIDCValidatorFromJWKS(t *testing.T) {
	t.Parallel()

	const jwks = "https://sso.posgate.example/.well-known/jwks.json"

	t.Run("explicit allowlist wins", func(t *testing.T) {
		t.Parallel()
		v, err := NewOIDCValidatorFromJWKS(context.Background(), jwks,
			"https://sso.posgate.example", "posgate-api",
			[]string{"https://sso-a.example", "https://sso-b.example"})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{
			"https://sso-a.example": true,
			"https://sso-b.example": true,
		}, v.trusted)
		assert.NotNil(t, v.verifier)
	})

	t.Run("defaults to the issuer URL", func(t *testing.T) {
		t.Parallel()
		v, err := NewOIDCValidatorFromJWKS(context.Background(), jwks,
			"https://sso.posgate.example", "posgate-api", nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"https://sso.posgate.example": true}, v.trusted)
	})

	t.Run("no issuer and no allowlist leaves the set empty", func(t *testing.T) {
		t.Parallel()
		v, err := NewOIDCValidatorFromJWKS(context.Background(), jwks, "", "posgate-api", nil)
		require.NoError(t, err)
		assert.Empty(t, v.trusted)
	})
}

func TestMultiValidator(t *testing.T) {
	t.Parallel()

	good, err := NewHS256Validator("secret-good")
	require.NoError(t, err)
	other, err := NewHS256Validator("secret-other")
	require.NoError(t, err)

	token := signHS256("secret-good", jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	t.Run("first validator accepts", func(t *testing.T) {
		t.Parallel()
		claims, err := NewMultiValidator(good, other).Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("later validator accepts", func(t *testing.T) {
		t.Parallel()
		claims, err := NewMultiValidator(other, good).Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
	})

	t.Run("every validator rejects", func(t *testing.T) {
		t.Parallel()
		_, err := NewMultiValidator(other).Validate(context.Background(), token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "token verification failed")
	})

	t.Run("no validators configured", func(t *testing.T) {
		t.Parallel()
		_, err := NewMultiValidator().Validate(context.Background(), token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no token validators configured")
	})
}

func TestUsernameClaimValidator(t *testing.T) {
	t.Parallel()

	inner, err := NewHS256Validator("claim-secret")
	require.NoError(t, err)

	token := signHS256("claim-secret", jwt.MapClaims{
		"sub":   "auth0|8c2f91",
		"email": "alice@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	t.Run("rewrites subject from claim", func(t *testing.T) {
		t.Parallel()
		v := UsernameClaimValidator{Inner: inner, Claim: "email"}
		claims, err := v.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", claims.Subject)
	})

	t.Run("missing claim keeps subject", func(t *testing.T) {
		t.Parallel()
		v := UsernameClaimValidator{Inner: inner, Claim: "preferred_username"}
		claims, err := v.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "auth0|8c2f91", claims.Subject)
	})

	t.Run("empty claim name keeps subject", func(t *testing.T) {
		t.Parallel()
		v := UsernameClaimValidator{Inner: inner}
		claims, err := v.Validate(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, "auth0|8c2f91", claims.Subject)
	})

	t.Run("propagates inner error", func(t *testing.T) {
		t.Parallel()
		v := UsernameClaimValidator{Inner: inner, Claim: "email"}
		_, err := v.Validate(context.Background(), "garbage")
		require.Error(t, err)
	})
}

func ptr[T any](v T) *T {
	return &v
}
