package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity-provider claims the gateway cares about. The
// subject is the caller identity every quota record is keyed by.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// CallerID returns the stable caller identity from the token.
func (c *Claims) CallerID() string {
	return c.Subject
}

// Verifier validates bearer tokens minted by the external identity provider.
// The gateway never issues tokens of its own.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Verify(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing identity token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid identity token claims")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("identity token has no subject")
	}

	return claims, nil
}

// Sign mints a token with this verifier's secret. Local tooling and tests
// stand in for the identity provider with it.
func (v *Verifier) Sign(callerID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "gyansathi",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}
