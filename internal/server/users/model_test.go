package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateInput_IsEmpty(t *testing.T) {
	assert.True(t, UpdateInput{}.IsEmpty())
	assert.True(t, UpdateInput{Name: &NameUpdate{}}.IsEmpty())
	assert.False(t, UpdateInput{Name: &NameUpdate{Last: ptr("Doe")}}.IsEmpty())
	assert.False(t, UpdateInput{Company: ptr("ACME")}.IsEmpty())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com\t"))
	assert.Equal(t, "", NormalizeEmail("   "))
}
