package auth

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/timex"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier resolves the subject of tokens signed by an Issuer with the same
// secret. Only signature, algorithm, lifetime and issuer are checked.
type Verifier struct {
	secret []byte
	issuer string
	clock  timex.Clock
}

func NewVerifier(secretKey, issuer string, clock timex.Clock) (*Verifier, error) {
	if strings.TrimSpace(secretKey) == "" {
		return nil, ErrSigningKeyMissing
	}
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &Verifier{secret: []byte(secretKey), issuer: issuer, clock: clock}, nil
}

// Subject returns the "sub" claim of tokenString. Expired tokens yield
// common.ErrTokenExpired, anything else unacceptable common.ErrInvalidToken.
func (v *Verifier) Subject(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(v.clock.Now),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}
	if !token.Valid {
		return "", common.ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", common.ErrInvalidToken
	}
	return sub, nil
}
