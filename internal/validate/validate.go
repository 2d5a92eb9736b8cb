// Package validate holds the input rules checked before any request is sent.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mmcdole/huddle/internal/domain"
)

const (
	MinPasswordLength    = 8
	MinSearchQueryLength = 3
	MinAge               = 16
	minBirthYear         = 1900
)

var phonePattern = regexp.MustCompile(`^\+(7|1)\d{10,11}$`)

// Password enforces length plus upper, lower and digit classes
func Password(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &domain.ValidationError{Field: "password", Reason: "must be at least 8 characters"}
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return &domain.ValidationError{Field: "password", Reason: "must contain an uppercase letter"}
	case !lower:
		return &domain.ValidationError{Field: "password", Reason: "must contain a lowercase letter"}
	case !digit:
		return &domain.ValidationError{Field: "password", Reason: "must contain a digit"}
	}
	return nil
}

// NormalizePhone strips spaces, dashes, dots and parentheses
func NormalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}

// Phone validates a +7 or +1 number and returns it normalized
func Phone(phone string) (string, error) {
	normalized := NormalizePhone(phone)
	if !phonePattern.MatchString(normalized) {
		return "", &domain.ValidationError{Field: "phone", Reason: "must start with +7 or +1 followed by 10-11 digits"}
	}
	return normalized, nil
}

// BirthDate requires a plausible date at least MinAge calendar years before now
func BirthDate(birth, now time.Time) error {
	if birth.IsZero() {
		return &domain.ValidationError{Field: "birth date", Reason: "is required"}
	}
	if birth.Year() < minBirthYear || birth.After(now) {
		return &domain.ValidationError{Field: "birth date", Reason: "is out of range"}
	}
	if birth.Year() > now.Year()-MinAge {
		return &domain.ValidationError{Field: "birth date", Reason: "you must be at least 16 years old"}
	}
	return nil
}

// Login requires an identifier and a password
func Login(creds domain.Credentials) error {
	if strings.TrimSpace(creds.Identifier()) == "" {
		return &domain.ValidationError{Field: "username", Reason: "is required"}
	}
	if creds.Password == "" {
		return &domain.ValidationError{Field: "password", Reason: "is required"}
	}
	return nil
}

// Registration checks every local registration rule and returns the
// credentials with the phone normalized. A phone registration additionally
// requires a valid number and birth date.
func Registration(creds domain.Credentials, now time.Time) (domain.Credentials, error) {
	if err := Password(creds.Password); err != nil {
		return creds, err
	}

	if strings.TrimSpace(creds.Phone) != "" {
		phone, err := Phone(creds.Phone)
		if err != nil {
			return creds, err
		}
		creds.Phone = phone
		if err := BirthDate(creds.BirthDate, now); err != nil {
			return creds, err
		}
	} else {
		creds.Username = strings.TrimSpace(creds.Username)
		if creds.Username == "" {
			return creds, &domain.ValidationError{Field: "username", Reason: "is required"}
		}
		if !creds.BirthDate.IsZero() {
			if err := BirthDate(creds.BirthDate, now); err != nil {
				return creds, err
			}
		}
	}

	if !creds.AgeConfirmed {
		return creds, &domain.ValidationError{Field: "age confirmation", Reason: fmt.Sprintf("you must confirm you are %d or older and accept the terms", MinAge)}
	}
	return creds, nil
}

// SearchQuery reports whether q is long enough to send
func SearchQuery(q string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(q)) >= MinSearchQueryLength
}

// NotBlank rejects empty or whitespace-only values
func NotBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &domain.ValidationError{Field: field, Reason: "must not be empty"}
	}
	return nil
}
