package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSigningKeyMissing = errors.New("issuer signing key is not set")
	ErrInvalidExpiry     = errors.New("token expiry must be positive")
)

// IssuerConfig carries the static signing settings.
type IssuerConfig struct {
	SecretKey string
	Issuer    string
	Expiry    time.Duration
}

// Issuer signs HS512 access tokens. It is immutable after construction and
// safe for concurrent use.
type Issuer struct {
	secret []byte
	issuer string
	expiry time.Duration
	clock  timex.Clock
	random io.Reader
}

// NewIssuer validates cfg once at startup. A blank secret is refused so a
// running issuer never holds an unset key. A nil random uses crypto/rand.
func NewIssuer(cfg IssuerConfig, clock timex.Clock, random io.Reader) (*Issuer, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, ErrSigningKeyMissing
	}
	if cfg.Expiry <= 0 {
		return nil, ErrInvalidExpiry
	}
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if random == nil {
		random = rand.Reader
	}
	return &Issuer{
		secret: []byte(cfg.SecretKey),
		issuer: cfg.Issuer,
		expiry: cfg.Expiry,
		clock:  clock,
		random: random,
	}, nil
}

// Issue builds and signs a token for subjectID. role and audience are
// optional and emitted only when non-empty; every (type, value) of claims is
// forwarded in the caller's per-type order.
func (i *Issuer) Issue(subjectID, email, role, audience string, claims models.Claims) (*Token, error) {
	if strings.TrimSpace(subjectID) == "" || strings.EqualFold(subjectID, common.ZeroID) {
		return nil, common.MissingSubject()
	}

	jti, err := uuid.NewRandomFromReader(i.random)
	if err != nil {
		return nil, fmt.Errorf("generating token id: %w", err)
	}

	now := i.clock.Now()
	expires := now.Add(i.expiry)

	mc := jwt.MapClaims{
		ClaimSubject:    subjectID,
		ClaimUniqueName: subjectID,
		ClaimTokenID:    jti.String(),
		ClaimIssuedAt:   now.UnixMilli(),
		ClaimNotBefore:  jwt.NewNumericDate(now),
		ClaimExpires:    jwt.NewNumericDate(expires),
	}
	if i.issuer != "" {
		mc[ClaimIssuer] = i.issuer
	}
	if strings.TrimSpace(role) != "" {
		mc[ClaimRole] = role
	}
	if strings.TrimSpace(audience) != "" {
		mc[ClaimAudience] = audience
	}
	for _, e := range claims.Entries() {
		if IsReservedClaim(e.Type) || len(e.Values) == 0 {
			continue
		}
		if len(e.Values) == 1 {
			mc[e.Type] = e.Values[0]
		} else {
			mc[e.Type] = e.Values
		}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, mc).SignedString(i.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		Expires:     expires.UnixMilli(),
		ID:          subjectID,
		Role:        role,
		Email:       email,
		Claims:      claims.Clone(),
	}, nil
}
