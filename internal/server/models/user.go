// Package models holds the user record shared by the store, the directory
// and the transports. JSON keys match the on-disk record-set layout.
package models

// Name is the structured display name of a user.
type Name struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// User is the persisted user record. PasswordHash is the bcrypt hash of the
// password; the plaintext never reaches this type.
type User struct {
	ID           string `json:"_id"`
	ExternalID   string `json:"guid"`
	Active       bool   `json:"isActive"`
	Balance      string `json:"balance"`
	Picture      string `json:"picture"`
	Age          int    `json:"age"`
	EyeColor     string `json:"eyeColor"`
	Name         Name   `json:"name"`
	Company      string `json:"company"`
	Email        string `json:"email"`
	PasswordHash string `json:"password"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// PublicUser is a User without its credential hash. It is the only shape of
// a user record that leaves the service boundary.
type PublicUser struct {
	ID         string `json:"_id"`
	ExternalID string `json:"guid"`
	Active     bool   `json:"isActive"`
	Balance    string `json:"balance"`
	Picture    string `json:"picture"`
	Age        int    `json:"age"`
	EyeColor   string `json:"eyeColor"`
	Name       Name   `json:"name"`
	Company    string `json:"company"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// Clone returns an independent copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Public strips the credential hash.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:         u.ID,
		ExternalID: u.ExternalID,
		Active:     u.Active,
		Balance:    u.Balance,
		Picture:    u.Picture,
		Age:        u.Age,
		EyeColor:   u.EyeColor,
		Name:       u.Name,
		Company:    u.Company,
		Email:      u.Email,
		Phone:      u.Phone,
		Address:    u.Address,
	}
}
