// Package auth issues signed access tokens and resolves the subject of a
// presented token.
package auth

import "github.com/dmitrijs2005/usersvc/internal/server/models"

// Token is a snapshot of an identity at issuance time.
type Token struct {
	AccessToken string        `json:"accessToken"`
	Expires     int64         `json:"expires"`
	ID          string        `json:"id"`
	Role        string        `json:"role"`
	Email       string        `json:"email"`
	Claims      models.Claims `json:"claims"`
}

// Registered claim names written by the issuer. Custom claims using one of
// these names are not emitted.
const (
	ClaimSubject    = "sub"
	ClaimUniqueName = "unique_name"
	ClaimTokenID    = "jti"
	ClaimIssuedAt   = "iat"
	ClaimNotBefore  = "nbf"
	ClaimExpires    = "exp"
	ClaimIssuer     = "iss"
	ClaimAudience   = "aud"
	ClaimRole       = "role"
)

var reservedClaims = map[string]struct{}{
	ClaimSubject:    {},
	ClaimUniqueName: {},
	ClaimTokenID:    {},
	ClaimIssuedAt:   {},
	ClaimNotBefore:  {},
	ClaimExpires:    {},
	ClaimIssuer:     {},
	ClaimAudience:   {},
	ClaimRole:       {},
}

// IsReservedClaim reports whether claimType is written by the issuer itself.
func IsReservedClaim(claimType string) bool {
	_, ok := reservedClaims[claimType]
	return ok
}
