package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenClaims is returned for a well-signed token that lacks a subject or a role.
	ErrTokenClaims = errors.New("token claims incomplete")
)

type TokenConfig struct {
	Secret    []byte
	Algorithm string
	Lifetime  time.Duration
	Issuer    string
}

// Claims 令牌载荷：sub 为用户 ID，type 为角色
type Claims struct {
	Role string `json:"type"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies access tokens. It holds no mutable state
// and is safe for concurrent use.
type TokenManager struct {
	secret   []byte
	method   jwt.SigningMethod
	lifetime time.Duration
	issuer   string
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is empty")
	}
	method, ok := jwt.GetSigningMethod(cfg.Algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, errors.New("token algorithm must be HS256, HS384 or HS512")
	}
	if cfg.Lifetime <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}
	secret := make([]byte, len(cfg.Secret))
	copy(secret, cfg.Secret)
	return &TokenManager{secret: secret, method: method, lifetime: cfg.Lifetime, issuer: cfg.Issuer}, nil
}

func (m *TokenManager) Lifetime() time.Duration { return m.lifetime }

// Issue signs a token for subject that expires one lifetime after now. now is
// cut to the claim precision first, so iat, exp and the returned expiry agree.
func (m *TokenManager) Issue(subject, role string, now time.Time) (string, time.Time, error) {
	if subject == "" || role == "" {
		return "", time.Time{}, ErrTokenClaims
	}
	now = now.Truncate(jwt.TimePrecision)
	expiresAt := now.Add(m.lifetime)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(m.method, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Verify checks signature, algorithm, issuer and expiry as of now. A token is
// valid only while now is strictly before its expiry.
func (m *TokenManager) Verify(tokenString string, now time.Time) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrTokenClaims
	}
	return claims, nil
}
