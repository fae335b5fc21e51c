// internal/api/auth/auth.go

// Package auth turns the bearer token issued by the upstream identity provider
// into a Principal. The ledger trusts only the verified subject claim; an
// identity sent in a request body or query is never consulted.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"splitflow/internal/domain"
	"splitflow/internal/util"
)

// Claims is the token payload. The subject is the caller's identity.
type Claims struct {
	jwt.RegisteredClaims
	Admin bool `json:"admin,omitempty"` // Grants access to system statistics
}

// Principal is the authenticated caller.
type Principal struct {
	Identity domain.Identity
	Admin    bool
}

// ErrorWriter renders an authentication failure.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// Option customizes a Verifier.
type Option func(*Verifier)

// WithClock sets the time used for exp and nbf checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) { v.now = now }
}

// NewVerifier creates a Verifier. When issuer is non-empty, tokens must carry a matching iss claim.
func NewVerifier(secret, issuer string, opts ...Option) *Verifier {
	v := &Verifier{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify validates token and returns its principal. Every failure wraps util.ErrUnauthorized.
func (v *Verifier) Verify(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, fmt.Errorf("%w: missing bearer token", util.ErrUnauthorized)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return Principal{}, mapJWTError(err)
	}

	id := domain.Identity(claims.Subject)
	if err := id.Validate(); err != nil {
		return Principal{}, fmt.Errorf("%w: token has no subject", util.ErrUnauthorized)
	}
	return Principal{Identity: id, Admin: claims.Admin}, nil
}

// mapJWTError translates jwt library errors to util.ErrUnauthorized.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: token is expired", util.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return fmt.Errorf("%w: token not active yet", util.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return fmt.Errorf("%w: token issuer mismatch", util.ErrUnauthorized)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: token signature is invalid", util.ErrUnauthorized)
	}
	return fmt.Errorf("%w: token is invalid", util.ErrUnauthorized)
}

// Middleware authenticates every request and stores the Principal in its context.
func (v *Verifier) Middleware(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := v.Verify(bearerToken(r))
			if err != nil {
				onError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// RequireAdmin rejects callers whose token lacks the admin claim. It must run after Middleware.
func RequireAdmin(onError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFrom(r.Context())
			if !ok {
				onError(w, r, util.ErrUnauthorized)
				return
			}
			if !principal.Admin {
				onError(w, r, fmt.Errorf("%w: admin capability required", util.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return token
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the Principal stored by Middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// Sign issues an HS256 token for claims. The identity provider owns issuance in
// production; this is used by tests and local tooling.
func Sign(secret string, claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
