package service

import (
	"errors"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/accountkit/user-api/internal/core/domain"
)

// PasswordSymbols is the punctuation set a password must draw at least one character from.
const PasswordSymbols = "!@#$%^&*()_+{}[]:;<>,.?/~`"

// bcrypt ignores input past 72 bytes; longer passwords are rejected outright.
const maxPasswordBytes = 72

type fieldRule struct {
	tags     string
	messages map[string]string
}

var (
	usernameRule = fieldRule{
		tags: "required,min=4,max=60,notalldigits",
		messages: map[string]string{
			"required":     domain.MsgRequired,
			"min":          domain.MsgUsernameTooShort,
			"max":          domain.MsgUsernameTooLong,
			"notalldigits": domain.MsgUsernameAllDigits,
		},
	}
	emailRule = fieldRule{
		tags: "required,max=60,email",
		messages: map[string]string{
			"required": domain.MsgRequired,
			"max":      domain.MsgEmailTooLong,
			"email":    domain.MsgEmailInvalid,
		},
	}
	passwordRule = fieldRule{
		tags: "required,min=8,max=60,strongpassword",
		messages: map[string]string{
			"required":       domain.MsgRequired,
			"min":            domain.MsgPasswordLength,
			"max":            domain.MsgPasswordLength,
			"strongpassword": domain.MsgPasswordNotSecure,
		},
	}
)

// Rules applies the account field policies and collects every failure.
type Rules struct {
	v *validator.Validate
}

// NewRules returns Rules with the custom username and password validators registered.
func NewRules() *Rules {
	v := validator.New()
	_ = v.RegisterValidation("notalldigits", notAllDigits)
	_ = v.RegisterValidation("strongpassword", strongPassword)
	return &Rules{v: v}
}

// Username records a username format failure under field. It reports whether the value passed.
func (r *Rules) Username(ve *domain.ValidationError, field, value string) bool {
	return r.check(ve, field, value, usernameRule)
}

// Email records an email format failure under field.
func (r *Rules) Email(ve *domain.ValidationError, field, value string) bool {
	return r.check(ve, field, value, emailRule)
}

// Password records a password strength failure under field.
func (r *Rules) Password(ve *domain.ValidationError, field, value string) bool {
	return r.check(ve, field, value, passwordRule)
}

func (r *Rules) check(ve *domain.ValidationError, field, value string, rule fieldRule) bool {
	err := r.v.Var(value, rule.tags)
	if err == nil {
		return true
	}

	msg := domain.MsgInvalidField
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		if m, ok := rule.messages[errs[0].Tag()]; ok {
			msg = m
		}
	}
	ve.Add(field, msg)
	return false
}

func notAllDigits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func strongPassword(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) > maxPasswordBytes {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(PasswordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}
