package validation

import (
	"fmt"
	"unicode"
)

const (
	defaultMinPasswordLength   = 8
	defaultMinCharacterClasses = 3
)

// PasswordRule validates a password according to a single policy rule.
type PasswordRule interface {
	Validate(password string) error
}

// PasswordRuleFunc adapts a function to be used as a PasswordRule.
type PasswordRuleFunc func(password string) error

// Validate executes the underlying rule function.
func (f PasswordRuleFunc) Validate(password string) error {
	return f(password)
}

// PasswordPolicy applies a sequence of rules and stops at the first violation.
type PasswordPolicy struct {
	rules []PasswordRule
}

// NewPasswordPolicy constructs a policy from the provided rules.
func NewPasswordPolicy(rules ...PasswordRule) *PasswordPolicy {
	copied := make([]PasswordRule, len(rules))
	copy(copied, rules)
	return &PasswordPolicy{rules: copied}
}

// DefaultPasswordPolicy requires at least 8 characters drawn from at least
// three of the four classes upper, lower, digit and symbol.
func DefaultPasswordPolicy() *PasswordPolicy {
	return NewPasswordPolicy(
		MinLengthRule(defaultMinPasswordLength),
		RequireCharacterClassesRule(defaultMinCharacterClasses),
	)
}

// Validate returns the first rule violation, if any.
func (p *PasswordPolicy) Validate(password string) error {
	for _, rule := range p.rules {
		if err := rule.Validate(password); err != nil {
			return err
		}
	}
	return nil
}

// MinLengthRule ensures the password has at least min characters.
func MinLengthRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		if len([]rune(password)) < min {
			return fmt.Errorf("password must be at least %d characters long", min)
		}
		return nil
	})
}

// RequireCharacterClassesRule ensures the password contains characters from
// at least min distinct classes.
func RequireCharacterClassesRule(min int) PasswordRule {
	return PasswordRuleFunc(func(password string) error {
		var hasUpper, hasLower, hasDigit, hasSymbol bool

		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsDigit(r):
				hasDigit = true
			case unicode.IsSymbol(r) || unicode.IsPunct(r):
				hasSymbol = true
			}
		}

		classes := 0
		for _, ok := range []bool{hasUpper, hasLower, hasDigit, hasSymbol} {
			if ok {
				classes++
			}
		}

		if classes < min {
			return fmt.Errorf("password must include at least %d character types", min)
		}
		return nil
	})
}
