package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aalemi-dev/kafka-gateway/apperr"
	"github.com/aalemi-dev/kafka-gateway/observability"
)

const bearerPrefix = "Bearer "

var errKeyMismatch = errors.New("key does not match signing method")

// TokenValidator verifies JWT access tokens against a fixed set of public keys.
type TokenValidator struct {
	cfg    Config
	parser *jwt.Parser
	keys   []interface{}

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger
}

// NewTokenValidator parses the configured public keys. At least one key is
// required.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	if cfg.ResourceName == "" {
		cfg.ResourceName = DefaultResourceName
	}
	if !cfg.PublicKeys.IsConfigured() {
		return nil, ErrNoPublicKeys
	}

	v := &TokenValidator{cfg: cfg}
	for i, pem := range cfg.PublicKeys.RSA {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("%w: rsa key %d: %v", ErrInvalidPublicKey, i, err)
		}
		v.keys = append(v.keys, key)
	}
	for i, pem := range cfg.PublicKeys.ECDSA {
		key, err := jwt.ParseECPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, fmt.Errorf("%w: ecdsa key %d: %v", ErrInvalidPublicKey, i, err)
		}
		v.keys = append(v.keys, key)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "PS256", "PS384", "PS512", "ES256", "ES384", "ES512"}),
		jwt.WithAudience(cfg.ResourceName),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	v.parser = jwt.NewParser(opts...)
	return v, nil
}

// WithObserver sets the observer used for token verification events.
func (v *TokenValidator) WithObserver(observer observability.Observer) *TokenValidator {
	v.observer = observer
	return v
}

// WithLogger sets the logger used for rejected tokens.
func (v *TokenValidator) WithLogger(logger Logger) *TokenValidator {
	v.logger = logger
	return v
}

// Authenticate verifies the bearer token in the Authorization header of r.
func (v *TokenValidator) Authenticate(r *http.Request) (*Auth, error) {
	token, ok := BearerToken(r)
	if !ok {
		return nil, apperr.Unauthorized("token_missing", "No bearer token is provided in the request.")
	}
	return v.Verify(r.Context(), token)
}

// Verify checks the signature, audience, issuer and expiry of token.
func (v *TokenValidator) Verify(ctx context.Context, token string) (a *Auth, err error) {
	start := time.Now()
	defer func() {
		v.observeOperation("verify_token", v.cfg.ResourceName, time.Since(start), err)
	}()

	claims, err := v.parse(token)
	if err != nil {
		if v.logger != nil {
			v.logger.WarnWithContext(ctx, "Rejected access token", err, nil)
		}
		return nil, apperr.Unauthorized("token_unverified",
			"Cannot verify token. It may have been rendered invalid.").WithCause(err)
	}
	return NewAuth(claims, v.cfg.CheckSourceID), nil
}

func (v *TokenValidator) parse(token string) (*Claims, error) {
	var lastErr error
	for _, key := range v.keys {
		claims := &Claims{}
		_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			return keyFor(t.Method, key)
		})
		if err == nil {
			return claims, nil
		}
		if !errors.Is(err, jwt.ErrTokenUnverifiable) && !errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func keyFor(method jwt.SigningMethod, key interface{}) (interface{}, error) {
	switch method.(type) {
	case *jwt.SigningMethodECDSA:
		if k, ok := key.(*ecdsa.PublicKey); ok {
			return k, nil
		}
	case *jwt.SigningMethodRSA, *jwt.SigningMethodRSAPSS:
		if k, ok := key.(*rsa.PublicKey); ok {
			return k, nil
		}
	}
	return nil, errKeyMismatch
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}
