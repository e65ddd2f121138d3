package jwttoken

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "ridelink/pkg/domain"
	dErrors "ridelink/pkg/domain-errors"
	"ridelink/pkg/platform/middleware/auth"
)

// HandleClaims are the claims of a ridelink bearer token. The subject is the
// caller's registry handle.
type HandleClaims struct {
	jwt.RegisteredClaims
}

// JWTService issues and validates HS256 tokens bound to a handle.
type JWTService struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
}

func NewJWTService(signingKey, issuer string, tokenTTL time.Duration) *JWTService {
	return &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		tokenTTL:   tokenTTL,
	}
}

// Issue signs a token for handle valid from now for the configured TTL.
func (s *JWTService) Issue(handle id.Handle, now time.Time) (string, error) {
	if handle.IsNil() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "handle cannot be empty")
	}
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, HandleClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   handle.String(),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			ID:        hex.EncodeToString(b),
		},
	})
	return token.SignedString(s.signingKey)
}

// ValidateToken verifies signature, algorithm, expiry and issuer.
func (s *JWTService) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims := new(HandleClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return &auth.Claims{Subject: claims.Subject, JTI: claims.ID}, nil
}
