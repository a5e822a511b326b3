package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/userdir/internal/common"
	"github.com/dmitrijs2005/userdir/internal/server/models"
	"github.com/dmitrijs2005/userdir/internal/server/repositories/users"
	"github.com/google/uuid"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	maxFullNameLen = 100
	maxEmailLen    = 255
	minPasswordLen = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordLen = 72
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}

// normalizeEmail trims and lowercases so lookups and the unique index agree.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return invalid("email is required")
	}
	if len(email) > maxEmailLen {
		return invalid("email must be at most %d characters", maxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("email %q is not a valid address", email)
	}
	return nil
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLen || n > maxUsernameLen {
		return invalid("username must be %d-%d characters", minUsernameLen, maxUsernameLen)
	}
	if strings.TrimSpace(username) != username {
		return invalid("username must not start or end with whitespace")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return invalid("password must be %d-%d bytes", minPasswordLen, maxPasswordLen)
	}
	return nil
}

func validateFullName(fullName *string) error {
	if fullName != nil && utf8.RuneCountInString(*fullName) > maxFullNameLen {
		return invalid("full name must be at most %d characters", maxFullNameLen)
	}
	return nil
}

// validateID accepts only the canonical lowercase hyphenated form that
// uuid.NewString produces, so every accepted id matches stored rows verbatim.
func validateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return invalid("id %q is not a canonical UUID", id)
	}
	return nil
}

func validateCreateInput(in *models.CreateUserInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if err := validateUsername(in.Username); err != nil {
		return err
	}
	if err := validatePassword(in.Password); err != nil {
		return err
	}
	return validateFullName(in.FullName)
}

func validatePatch(p *users.Patch) error {
	if p.Email != nil {
		email := normalizeEmail(*p.Email)
		if err := validateEmail(email); err != nil {
			return err
		}
		p.Email = &email
	}
	if p.Username != nil {
		if err := validateUsername(*p.Username); err != nil {
			return err
		}
	}
	return validateFullName(p.FullName)
}
