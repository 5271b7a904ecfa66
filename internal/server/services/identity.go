// Package services contains server-side business logic. IdentityService
// implements sign-up, sign-in and identity lookup over a users.Repository.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/auth"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/server/password"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/dmitrijs2005/usersvc/internal/timex"
	"github.com/google/uuid"
)

// TokenIssuer is satisfied by *auth.Issuer.
type TokenIssuer interface {
	Issue(subjectID, email, role, audience string, claims models.Claims) (*auth.Token, error)
}

// IdentityService holds no per-user state; every call is independent and the
// repository is the only shared resource.
type IdentityService struct {
	users  users.Repository
	hasher *password.Hasher
	policy password.Policy
	issuer TokenIssuer
	clock  timex.Clock
	log    logging.Logger

	// used to verify against when the email is unknown
	dummyHash []byte
	dummySalt []byte
}

func NewIdentityService(repo users.Repository, hasher *password.Hasher, policy password.Policy,
	issuer TokenIssuer, clock timex.Clock, log logging.Logger) *IdentityService {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	if log == nil {
		log = logging.Nop{}
	}
	return &IdentityService{
		users:     repo,
		hasher:    hasher,
		policy:    policy,
		issuer:    issuer,
		clock:     clock,
		log:       log.With("module", "identity"),
		dummyHash: make([]byte, password.HashSize),
		dummySalt: make([]byte, password.SaltSize),
	}
}

// NormalizeEmail returns the uniqueness key for an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Lookup returns the identity with the given id, or nil when there is none.
// Store failures are returned unchanged.
func (s *IdentityService) Lookup(ctx context.Context, id string) (*Identity, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return identityOf(u), nil
}

// SignUp registers a new active user.
func (s *IdentityService) SignUp(ctx context.Context, draft SignUpDraft) error {
	email := NormalizeEmail(draft.Email)

	id, err := assignID(draft.ID)
	if err != nil {
		return err
	}

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return common.EmailInUse(email)
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	if err := s.policy.Verify(draft.Password); err != nil {
		return err
	}

	hash, salt, err := s.hasher.Hash(draft.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		PasswordSalt: salt,
		FirstName:    draft.FirstName,
		LastName:     draft.LastName,
		Role:         draft.Role,
		Claims:       draft.Claims.Clone(),
		IsActive:     true,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.log.Info(ctx, "sign-up lost insert race", "email", email)
			return common.EmailInUse(email)
		}
		return err
	}

	s.log.Info(ctx, "user signed up", "id", id)
	return nil
}

// SignIn authenticates credentials and issues a token for the stored user.
// Unknown email and wrong password fail identically.
func (s *IdentityService) SignIn(ctx context.Context, creds Credentials) (*auth.Token, error) {
	email := NormalizeEmail(creds.Email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Verify(creds.Password, s.dummyHash, s.dummySalt)
			return nil, common.InvalidCredentials()
		}
		return nil, err
	}

	if !s.hasher.Verify(creds.Password, u.PasswordHash, u.PasswordSalt) {
		return nil, common.InvalidCredentials()
	}

	if !u.IsActive {
		return nil, common.UserNotActive(u.ID)
	}

	token, err := s.issuer.Issue(u.ID, u.Email, u.Role, "", u.Claims)
	if err != nil {
		return nil, err
	}

	s.log.Debug(ctx, "user signed in", "id", u.ID)
	return token, nil
}

// UpdateProfile applies the non-nil fields of upd to the stored user.
func (s *IdentityService) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*Identity, error) {
	u, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	if upd.Claims != nil {
		u.Claims = upd.Claims.Clone()
	}
	if upd.IsActive != nil {
		u.IsActive = *upd.IsActive
	}

	if err := s.save(ctx, u); err != nil {
		return nil, err
	}
	return identityOf(u), nil
}

// ChangePassword replaces the password after proving the current one. The
// new password gets a fresh salt.
func (s *IdentityService) ChangePassword(ctx context.Context, id, current, next string) error {
	u, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if !s.hasher.Verify(current, u.PasswordHash, u.PasswordSalt) {
		return common.InvalidCredentials()
	}

	if err := s.policy.Verify(next); err != nil {
		return err
	}

	hash, salt, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	u.PasswordHash, u.PasswordSalt = hash, salt

	if err := s.save(ctx, u); err != nil {
		return err
	}
	s.log.Info(ctx, "password changed", "id", id)
	return nil
}

func (s *IdentityService) load(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.UserNotFound(id)
		}
		return nil, err
	}
	return u, nil
}

func (s *IdentityService) save(ctx context.Context, u *models.User) error {
	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.UserNotFound(u.ID)
		}
		return err
	}
	return nil
}

func assignID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || id == common.ZeroID {
		return uuid.NewString(), nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", common.InvalidRequest(fmt.Sprintf("User ID '%s' is not a valid identifier.", id))
	}
	if parsed == uuid.Nil {
		return uuid.NewString(), nil
	}
	return parsed.String(), nil
}
