package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_PublicOmitsHash(t *testing.T) {
	u := &User{ID: "u1", Email: "a@x.com", PasswordHash: "$2a$12$hash", Name: Name{First: "A", Last: "B"}}

	b, err := json.Marshal(u.Public())
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "password")
	assert.Equal(t, "a@x.com", fields["email"])
}

func TestUser_CloneIsIndependent(t *testing.T) {
	u := &User{ID: "u1", Name: Name{First: "John"}}
	c := u.Clone()
	c.Name.First = "Jane"

	assert.Equal(t, "John", u.Name.First)
	assert.Nil(t, (*User)(nil).Clone())
}

func TestUser_DecodesLegacyRecord(t *testing.T) {
	raw := `{"_id":"5f1a","guid":"g-1","isActive":false,"balance":"$3,946.45","picture":"http://placehold.it/32x32",
	"age":23,"eyeColor":"blue","name":{"first":"Henderson","last":"Briggs"},"company":"GEEKNET",
	"email":"henderson.briggs@geeknet.net","password":"hash","phone":"+1 (936) 451-3590","address":"121 National Drive"}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(raw), &u))
	assert.Equal(t, "5f1a", u.ID)
	assert.False(t, u.Active)
	assert.Equal(t, "Briggs", u.Name.Last)
	assert.Equal(t, "hash", u.PasswordHash)
}
