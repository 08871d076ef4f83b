// Package validation checks raw registration input. It performs no I/O.
package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/memberkeeper/internal/common"
	"github.com/dmitrijs2005/memberkeeper/internal/server/models"
)

// Messages returned for each rule, in evaluation order.
const (
	MsgMissingFields      = "Please add all fields"
	MsgInvalidEmail       = "Email not valid"
	MsgWeakPassword       = "Password not strong enough"
	MsgInvalidPhone       = "Phone number must be at least 10 digits"
	MsgInvalidGender      = "Invalid gender value"
	MsgInvalidMembership  = "Invalid membership status"
	MsgInvalidDateOfBirth = "Date of birth is not a valid date"
)

var phonePattern = regexp.MustCompile(`^\d{10,}$`)

// Validator checks registration fields against a fixed rule order and
// reports only the first violation.
type Validator struct {
	passwords *PasswordPolicy
}

// NewValidator returns a Validator using policy for password strength. A nil
// policy selects DefaultPasswordPolicy.
func NewValidator(policy *PasswordPolicy) *Validator {
	if policy == nil {
		policy = DefaultPasswordPolicy()
	}
	return &Validator{passwords: policy}
}

// Validate parses f into a Registration or returns a validation error
// describing the first failed rule.
func (v *Validator) Validate(f models.RegistrationFields) (models.Registration, error) {
	var reg models.Registration

	name := strings.TrimSpace(f.Name)
	email := strings.TrimSpace(f.Email)
	dob := strings.TrimSpace(f.DateOfBirth)

	if name == "" || email == "" || f.Password == "" || f.PhoneNumber == "" ||
		f.Gender == "" || dob == "" || f.MembershipStatus == "" {
		return reg, common.NewValidationError(MsgMissingFields)
	}

	if !IsEmail(email) {
		return reg, common.NewValidationError(MsgInvalidEmail)
	}

	if err := v.passwords.Validate(f.Password); err != nil {
		return reg, common.NewValidationError(MsgWeakPassword)
	}

	if !phonePattern.MatchString(f.PhoneNumber) {
		return reg, common.NewValidationError(MsgInvalidPhone)
	}

	gender, ok := models.ParseGender(f.Gender)
	if !ok {
		return reg, common.NewValidationError(MsgInvalidGender)
	}

	membership, ok := models.ParseMembershipStatus(f.MembershipStatus)
	if !ok {
		return reg, common.NewValidationError(MsgInvalidMembership)
	}

	birth, err := ParseDate(dob)
	if err != nil {
		return reg, common.NewValidationError(MsgInvalidDateOfBirth)
	}

	return models.Registration{
		Name:             name,
		Email:            models.NormalizeEmail(email),
		Password:         f.Password,
		PhoneNumber:      f.PhoneNumber,
		Gender:           gender,
		DateOfBirth:      birth,
		MembershipStatus: membership,
	}, nil
}

// IsEmail reports whether s is a bare address (no display name) with a
// dotted domain.
func IsEmail(s string) bool {
	if strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}

	at := strings.LastIndexByte(s, '@')
	if at <= 0 {
		return false
	}
	labels := strings.Split(s[at+1:], ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return false
		}
	}
	return len(labels[len(labels)-1]) >= 2
}

// ParseDate accepts a calendar date (2006-01-02) or an RFC 3339 timestamp and
// returns the date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(models.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
