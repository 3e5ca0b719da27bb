package token

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"go-auth-api/ids"

	"github.com/golang-jwt/jwt/v5"
)

// KeyConfig is the signing secret and lifetime of one token kind.
type KeyConfig struct {
	Secret []byte
	TTL    time.Duration
}

// Config is the immutable configuration of a Codec.
type Config struct {
	// Algorithm is an HMAC JWT algorithm name (HS256, HS384 or HS512).
	Algorithm string
	Access    KeyConfig
	Refresh   KeyConfig
	Email     KeyConfig
	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// kindSpec is the per-kind entry of the codec table: which key signs the
// kind, how long it lives and which kind-specific claims it must carry.
type kindSpec struct {
	key      []byte
	ttl      time.Duration
	validate func(*Claims) error
}

// Codec issues and verifies tokens. It is safe for concurrent use.
type Codec struct {
	method jwt.SigningMethod
	kinds  map[Kind]kindSpec
	now    func() time.Time
	parser *jwt.Parser
}

func requireClientIP(c *Claims) error {
	if c.ClientIP == "" {
		return &MissingClaimError{Claim: "ip"}
	}
	return nil
}

func noExtraClaims(*Claims) error { return nil }

// NewCodec validates cfg and builds a Codec. Each kind needs its own,
// non-empty secret and a positive TTL.
func NewCodec(cfg Config) (*Codec, error) {
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token: unsupported signing algorithm %q", alg)
	}

	keys := map[Kind]KeyConfig{
		KindAccess:  cfg.Access,
		KindRefresh: cfg.Refresh,
		KindEmail:   cfg.Email,
	}
	for kind, kc := range keys {
		if len(kc.Secret) == 0 {
			return nil, fmt.Errorf("token: empty secret for %s", kind)
		}
		if kc.TTL <= 0 {
			return nil, fmt.Errorf("token: non-positive ttl for %s", kind)
		}
	}
	if bytes.Equal(cfg.Access.Secret, cfg.Refresh.Secret) ||
		bytes.Equal(cfg.Access.Secret, cfg.Email.Secret) ||
		bytes.Equal(cfg.Refresh.Secret, cfg.Email.Secret) {
		return nil, errors.New("token: every kind must use a distinct secret")
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Codec{
		method: method,
		kinds: map[Kind]kindSpec{
			KindAccess:  {key: cloneKey(cfg.Access.Secret), ttl: cfg.Access.TTL, validate: noExtraClaims},
			KindRefresh: {key: cloneKey(cfg.Refresh.Secret), ttl: cfg.Refresh.TTL, validate: requireClientIP},
			KindEmail:   {key: cloneKey(cfg.Email.Secret), ttl: cfg.Email.TTL, validate: noExtraClaims},
		},
		now: now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{method.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

func cloneKey(b []byte) []byte { return append([]byte(nil), b...) }

// TTL returns the configured lifetime of kind.
func (c *Codec) TTL(kind Kind) time.Duration {
	return c.kinds[kind].ttl
}

// Issue mints a signed token of the given kind for subject.
func (c *Codec) Issue(subject string, kind Kind, extra Extra) (string, error) {
	signed, _, err := c.IssueWithClaims(subject, kind, extra)
	return signed, err
}

// IssueWithClaims is Issue that also returns the claims it signed, for
// callers that need the new token's jti or expiry.
func (c *Codec) IssueWithClaims(subject string, kind Kind, extra Extra) (string, *Claims, error) {
	spec, ok := c.kinds[kind]
	if !ok {
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	now := c.now().UTC().Truncate(time.Second)
	jti, err := ids.NewULID(now)
	if err != nil {
		return "", nil, fmt.Errorf("token: generating token id: %w", err)
	}

	claims := &Claims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(spec.ttl)),
		},
	}
	if kind == KindRefresh {
		claims.ClientIP = extra.ClientIP
	}
	if err := spec.validate(claims); err != nil {
		return "", nil, err
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(spec.key)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token string: %w", err)
	}
	return signed, claims, nil
}

type verifyOptions struct {
	expiry  bool
	subject bool
	tokenID bool
}

// VerifyOption relaxes one of the checks Verify performs by default.
type VerifyOption func(*verifyOptions)

// WithoutExpiry accepts tokens whose exp has passed.
func WithoutExpiry() VerifyOption { return func(o *verifyOptions) { o.expiry = false } }

// WithoutSubject accepts tokens with no sub claim.
func WithoutSubject() VerifyOption { return func(o *verifyOptions) { o.subject = false } }

// WithoutTokenID accepts tokens with no jti claim.
func WithoutTokenID() VerifyOption { return func(o *verifyOptions) { o.tokenID = false } }

// Verify checks tokenString and returns its claims. The signature is checked
// with the key of the kind the token declares, then that kind must equal
// kind. Checks run in this order: signature, kind, kind-specific claims,
// iat, requested sub/jti presence, expiry.
func (c *Codec) Verify(tokenString string, kind Kind, opts ...VerifyOption) (*Claims, error) {
	if _, ok := c.kinds[kind]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if tokenString == "" {
		return nil, ErrInvalid
	}

	o := verifyOptions{expiry: true, subject: true, tokenID: true}
	for _, opt := range opts {
		opt(&o)
	}

	claims := &Claims{}
	_, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		spec, ok := c.kinds[claims.Kind]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKind, claims.Kind)
		}
		return spec.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if claims.Kind != kind {
		return nil, &WrongKindError{Got: claims.Kind, Want: kind}
	}
	if err := c.kinds[kind].validate(claims); err != nil {
		return nil, err
	}
	if claims.IssuedAt == nil {
		return nil, &MissingClaimError{Claim: "iat"}
	}
	if o.subject && claims.Subject == "" {
		return nil, &MissingClaimError{Claim: "sub"}
	}
	if o.tokenID && claims.ID == "" {
		return nil, &MissingClaimError{Claim: "jti"}
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(claims.IssuedAt.Time) {
		return nil, fmt.Errorf("%w: exp must be after iat", ErrInvalid)
	}
	if o.expiry {
		if claims.ExpiresAt == nil {
			return nil, &MissingClaimError{Claim: "exp"}
		}
		if !c.now().Before(claims.ExpiresAt.Time) {
			return nil, ErrExpired
		}
	}

	return claims, nil
}
