package users

import (
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Defaults applied to every new record.
const (
	DefaultBalance = "$0.00"
	DefaultPicture = "http://placehold.it/32x32"
)

// CreateInput carries the fields of a new user. Password is plaintext and
// is hashed before anything is stored.
type CreateInput struct {
	Email    string
	Password string
	Name     models.Name
	Phone    string
	Address  string
	Company  string
	Age      int
	EyeColor string
}

// NameUpdate holds the name sub-fields of a partial update. A nil field
// keeps the stored value.
type NameUpdate struct {
	First *string `json:"first,omitempty"`
	Last  *string `json:"last,omitempty"`
}

// UpdateInput is a partial profile update. Nil fields are left untouched.
// Password, identifiers, balance and the active flag cannot be changed
// through it.
type UpdateInput struct {
	Name    *NameUpdate `json:"name,omitempty"`
	Phone   *string     `json:"phone,omitempty"`
	Address *string     `json:"address,omitempty"`
	Email   *string     `json:"email,omitempty"`
	Company *string     `json:"company,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (in UpdateInput) IsEmpty() bool {
	return (in.Name == nil || (in.Name.First == nil && in.Name.Last == nil)) &&
		in.Phone == nil && in.Address == nil && in.Email == nil && in.Company == nil
}

func (in UpdateInput) apply(u *models.User) {
	if in.Name != nil {
		if in.Name.First != nil {
			u.Name.First = *in.Name.First
		}
		if in.Name.Last != nil {
			u.Name.Last = *in.Name.Last
		}
	}
	if in.Phone != nil {
		u.Phone = *in.Phone
	}
	if in.Address != nil {
		u.Address = *in.Address
	}
	if in.Email != nil {
		u.Email = NormalizeEmail(*in.Email)
	}
	if in.Company != nil {
		u.Company = *in.Company
	}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
