package account

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

// ValidateLogin checks login input and returns the normalised email.
func ValidateLogin(email, password string) (string, []FieldError) {
	var errs []FieldError

	normalized, ok := NormalizeEmailAddress(email)
	if !ok {
		errs = append(errs, FieldError{Field: "email", Message: "Valid email is required"})
	}
	if password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return normalized, errs
}

// ValidateUpdate applies the per-field limits of a profile update and
// normalises the email in place.
func ValidateUpdate(in *users.UpdateInput) []FieldError {
	var errs []FieldError

	check := func(field, label string, v *string, max int) {
		if v == nil {
			return
		}
		if n := utf8.RuneCountInString(*v); n < 1 || n > max {
			errs = append(errs, FieldError{
				Field:   field,
				Message: fmt.Sprintf("%s must be between 1 and %d characters", label, max),
			})
		}
	}

	if in.Name != nil {
		check("name.first", "First name", in.Name.First, 50)
		check("name.last", "Last name", in.Name.Last, 50)
	}
	if in.Email != nil {
		email, ok := NormalizeEmailAddress(*in.Email)
		if !ok {
			errs = append(errs, FieldError{Field: "email", Message: "Valid email is required"})
		}
		in.Email = &email
	}
	check("phone", "Phone", in.Phone, 20)
	check("address", "Address", in.Address, 200)
	check("company", "Company", in.Company, 100)

	return errs
}

// NormalizeEmailAddress accepts a bare address with a dotted domain and no
// display name, and returns its canonical form.
func NormalizeEmailAddress(s string) (string, bool) {
	s = strings.TrimSpace(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return s, false
	}
	_, domain, _ := strings.Cut(addr.Address, "@")
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return s, false
	}
	return users.NormalizeEmail(addr.Address), true
}
