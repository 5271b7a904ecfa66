package grpc

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/usersvc/internal/api"
	"github.com/dmitrijs2005/usersvc/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Format check only, no DNS lookup. Password strength is left to the
// workflow so that every broken rule is reported together.
var emailFormat = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// The email is checked as the workflow will see it, trimmed.
func validateSignUp(r *api.SignUpRequest) error {
	return invalid(validation.Errors{
		"email":     validation.Validate(strings.TrimSpace(r.Email), validation.Required, validation.Length(3, 320), validation.Match(emailFormat).Error("must be a valid email address")),
		"id":        validation.Validate(r.ID, is.UUID),
		"firstName": validation.Validate(r.FirstName, validation.Length(0, 200)),
		"lastName":  validation.Validate(r.LastName, validation.Length(0, 200)),
		"role":      validation.Validate(r.Role, validation.Length(0, 100)),
	}.Filter())
}

func validateSignIn(r *api.SignInRequest) error {
	return invalid(validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required),
	))
}

func validateGetUser(r *api.GetUserRequest) error {
	return invalid(validation.ValidateStruct(r,
		validation.Field(&r.ID, validation.Required, is.UUID),
	))
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return common.InvalidRequest(err.Error())
}
