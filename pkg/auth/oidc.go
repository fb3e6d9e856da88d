package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/theapemachine/a2a-calculator/pkg/config"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrUnknownKey   = errors.New("no matching signing key")
)

/*
Verifier checks RS256 bearer tokens issued by an OpenID Connect provider.
The provider's JWKS is fetched once on construction and refreshed in the
background to follow key rotation.
*/
type Verifier struct {
	jwksURL  string
	issuer   string
	audience string
	cache    *jwk.Cache
}

func NewVerifier(ctx context.Context, cfg config.OIDC) (*Verifier, error) {
	if cfg.JWKSURL == "" {
		return nil, errors.New("OIDC JWKS URL is not configured")
	}

	cache := jwk.NewCache(ctx)

	if err := cache.Register(cfg.JWKSURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to register JWKS URL: %w", err)
	}

	if _, err := cache.Refresh(ctx, cfg.JWKSURL); err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", cfg.JWKSURL, err)
	}

	return &Verifier{
		jwksURL:  cfg.JWKSURL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		cache:    cache,
	}, nil
}

/*
Verify validates the signature, expiry, issuer and audience of token and
returns its claims.
*/
func (verifier *Verifier) Verify(ctx context.Context, token string) (jwt.MapClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	keyset, err := verifier.cache.Get(ctx, verifier.jwksURL)

	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %w", err)
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}

	if verifier.issuer != "" {
		options = append(options, jwt.WithIssuer(verifier.issuer))
	}

	if verifier.audience != "" {
		options = append(options, jwt.WithAudience(verifier.audience))
	}

	claims := jwt.MapClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return lookupKey(keyset, t)
	}, options...)

	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	log.Debug("verified bearer token", "sub", claims["sub"])

	return claims, nil
}

func lookupKey(keyset jwk.Set, token *jwt.Token) (any, error) {
	kid, _ := token.Header["kid"].(string)

	var key jwk.Key

	if kid != "" {
		found, ok := keyset.LookupKeyID(kid)

		if !ok {
			return nil, fmt.Errorf("%w: kid %q", ErrUnknownKey, kid)
		}

		key = found
	} else if keyset.Len() == 1 {
		key, _ = keyset.Key(0)
	}

	if key == nil {
		return nil, ErrUnknownKey
	}

	var raw any

	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to materialize key: %w", err)
	}

	return raw, nil
}
