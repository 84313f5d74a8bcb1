package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/rsa"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenInvalid is returned when a token is malformed, carries a bad
	// signature, or names the wrong issuer, audience or algorithm.
	ErrTokenInvalid = errors.New("invalid token")
	// ErrTokenExpired is returned when a well-formed token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
)

// AccessClaims is the identity claim carried by an access token.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *AccessClaims) UserID() string { return c.Subject }

// TokenCodec issues and verifies stateless access JWTs. It signs with HS256
// given a shared secret, or RS256/ES256 given a key pair. Verification never
// touches storage.
type TokenCodec struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
	audience  string
	ttl       time.Duration
	now       func() time.Time
}

// NewHMACCodec returns a TokenCodec signing with HS256 and secret.
func NewHMACCodec(secret []byte, issuer, audience string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		method:    jwt.SigningMethodHS256,
		signKey:   secret,
		verifyKey: secret,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		now:       time.Now,
	}
}

// NewKeyPairCodec returns a TokenCodec that signs with privateKey (RS256 for
// RSA, ES256 for ECDSA) and verifies with publicKey.
func NewKeyPairCodec(privateKey crypto.Signer, publicKey crypto.PublicKey, issuer, audience string, ttl time.Duration) (*TokenCodec, error) {
	var method jwt.SigningMethod
	switch privateKey.Public().(type) {
	case *rsa.PublicKey:
		method = jwt.SigningMethodRS256
	case *ecdsa.PublicKey:
		method = jwt.SigningMethodES256
	default:
		return nil, ErrInvalidKey
	}
	if KeyAlg(publicKey) != method.Alg() {
		return nil, ErrInvalidKey
	}
	return &TokenCodec{
		method:    method,
		signKey:   privateKey,
		verifyKey: publicKey,
		issuer:    issuer,
		audience:  audience,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// TTL is the fixed lifetime of every issued token.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Alg is the JWS algorithm the codec signs with.
func (c *TokenCodec) Alg() string { return c.method.Alg() }

// Issue signs an access token for subject that expires exactly TTL after
// issuance. It returns the compact token and the claims it carries.
func (c *TokenCodec) Issue(subject string) (string, *AccessClaims, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", nil, err
	}
	now := c.now().UTC().Truncate(time.Second)
	claims := &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   subject,
			Issuer:    c.issuer,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(c.method, claims).SignedString(c.signKey)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Verify checks signature, algorithm, issuer, audience and expiry, and returns
// the claims. Expired tokens yield ErrTokenExpired; every other failure yields
// ErrTokenInvalid. Callers treat both as unauthenticated.
func (c *TokenCodec) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.verifyKey, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
