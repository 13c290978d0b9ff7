package account

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

func TestNormalizeEmailAddress(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"plain", "a@x.com", "a@x.com", true},
		{"case and spaces", "  A@X.Com ", "a@x.com", true},
		{"plus tag", "john.doe+tag@mail.example.org", "john.doe+tag@mail.example.org", true},
		{"empty", "", "", false},
		{"no at", "plain", "plain", false},
		{"no dot in domain", "a@localhost", "a@localhost", false},
		{"trailing dot", "a@x.", "a@x.", false},
		{"display name", "John <a@x.com>", "John <a@x.com>", false},
		{"double at", "a@@x.com", "a@@x.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeEmailAddress(tt.in)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestValidateLogin(t *testing.T) {
	email, errs := ValidateLogin(" A@X.com", "pw")
	assert.Empty(t, errs)
	assert.Equal(t, "a@x.com", email)

	_, errs = ValidateLogin("nope", "")
	assert.Equal(t, []FieldError{
		{Field: "email", Message: "Valid email is required"},
		{Field: "password", Message: "Password is required"},
	}, errs)
}

func TestValidateUpdate(t *testing.T) {
	t.Run("valid input is normalised", func(t *testing.T) {
		in := users.UpdateInput{
			Name:  &users.NameUpdate{First: ptr("Jane")},
			Email: ptr(" Jane@X.com "),
			Phone: ptr(strings.Repeat("1", 20)),
		}
		assert.Empty(t, ValidateUpdate(&in))
		assert.Equal(t, "jane@x.com", *in.Email)
	})

	t.Run("limits", func(t *testing.T) {
		in := users.UpdateInput{
			Name:    &users.NameUpdate{First: ptr(""), Last: ptr(strings.Repeat("x", 51))},
			Email:   ptr("bad"),
			Phone:   ptr(strings.Repeat("1", 21)),
			Address: ptr(""),
			Company: ptr(strings.Repeat("c", 101)),
		}

		var fields []string
		for _, e := range ValidateUpdate(&in) {
			fields = append(fields, e.Field)
		}
		assert.Equal(t, []string{"name.first", "name.last", "email", "phone", "address", "company"}, fields)
	})

	t.Run("multibyte characters count once", func(t *testing.T) {
		in := users.UpdateInput{Name: &users.NameUpdate{First: ptr(strings.Repeat("é", 50))}}
		assert.Empty(t, ValidateUpdate(&in))
	})

	t.Run("empty update is valid", func(t *testing.T) {
		assert.Empty(t, ValidateUpdate(&users.UpdateInput{}))
	})
}
