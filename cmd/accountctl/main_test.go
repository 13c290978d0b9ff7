package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	name, args, ok := splitCommand([]string{"-f", "db.json", "deactivate", "-email", "a@x.com"})
	assert.True(t, ok)
	assert.Equal(t, "deactivate", name)
	assert.Equal(t, []string{"-email", "a@x.com"}, args)

	_, _, ok = splitCommand([]string{"-f", "db.json"})
	assert.False(t, ok)
}
