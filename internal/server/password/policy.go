package password

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/usersvc/internal/common"
)

// MinLength is the shortest accepted password, in characters.
const MinLength = 8

// SpecialCharacters is the set of which at least one must be present.
const SpecialCharacters = "!@#$%^&*()_-=+|\\/<>?[]{}'\":;,.`"

// Rule messages, reported in this order.
const (
	MsgTooShort     = "Password must be at least 8 characters long."
	MsgNoUppercase  = "Password must contain at least one uppercase letter."
	MsgNoLowercase  = "Password must contain at least one lowercase letter."
	MsgNoDigit      = "Password must contain at least one digit."
	MsgNoSpecial    = "Password must contain at least one special character."
	MsgRequirements = "All the requirements must be fulfilled."
)

// Policy validates password strength. The zero value is ready to use.
type Policy struct{}

func NewPolicy() Policy { return Policy{} }

// Verify returns a PasswordPolicyViolation listing every broken rule, one
// per line, followed by MsgRequirements. It returns nil for a strong password.
func (Policy) Verify(password string) error {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
		if strings.ContainsRune(SpecialCharacters, r) {
			special = true
		}
	}

	var b strings.Builder
	if utf8.RuneCountInString(password) < MinLength {
		b.WriteString(MsgTooShort + "\n")
	}
	if !upper {
		b.WriteString(MsgNoUppercase + "\n")
	}
	if !lower {
		b.WriteString(MsgNoLowercase + "\n")
	}
	if !digit {
		b.WriteString(MsgNoDigit + "\n")
	}
	if !special {
		b.WriteString(MsgNoSpecial + "\n")
	}

	if b.Len() == 0 {
		return nil
	}
	b.WriteString(MsgRequirements)
	return common.PasswordPolicyViolation(b.String())
}
