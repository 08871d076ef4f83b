package models

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire for DateOfBirth.
const DateLayout = "2006-01-02"

// Gender is one of the enumerated gender values.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// ParseGender returns the Gender named by s. Matching is exact.
func ParseGender(s string) (Gender, bool) {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale, GenderOther:
		return g, true
	}
	return "", false
}

// MembershipStatus is one of the enumerated membership states.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "Active"
	MembershipInactive  MembershipStatus = "Inactive"
	MembershipSuspended MembershipStatus = "Suspended"
)

// ParseMembershipStatus returns the MembershipStatus named by s. Matching is exact.
func ParseMembershipStatus(s string) (MembershipStatus, bool) {
	switch m := MembershipStatus(s); m {
	case MembershipActive, MembershipInactive, MembershipSuspended:
		return m, true
	}
	return "", false
}

// Account is a persisted user account.
//
// PasswordHash is always the output of the password hasher; it must never be
// copied into a response (use View).
type Account struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	PhoneNumber      string
	Gender           Gender
	DateOfBirth      time.Time
	MembershipStatus MembershipStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RegistrationFields holds the raw, unvalidated registration input.
type RegistrationFields struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	PhoneNumber      string `json:"phone_number"`
	Gender           string `json:"gender"`
	DateOfBirth      string `json:"date_of_birth"`
	MembershipStatus string `json:"membership_status"`
}

// Registration is the validated form of RegistrationFields.
type Registration struct {
	Name             string
	Email            string
	Password         string
	PhoneNumber      string
	Gender           Gender
	DateOfBirth      time.Time
	MembershipStatus MembershipStatus
}

// NormalizeEmail trims and lower-cases an address so that uniqueness and
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountView is the public representation of an Account. It has no field
// for the password hash.
type AccountView struct {
	ID               string    `json:"_id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	PhoneNumber      string    `json:"phone_number"`
	Gender           Gender    `json:"gender"`
	DateOfBirth      string    `json:"date_of_birth"`
	MembershipStatus string    `json:"membership_status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// View returns the response-safe projection of a.
func (a *Account) View() AccountView {
	return AccountView{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		PhoneNumber:      a.PhoneNumber,
		Gender:           a.Gender,
		DateOfBirth:      a.DateOfBirth.Format(DateLayout),
		MembershipStatus: string(a.MembershipStatus),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}
