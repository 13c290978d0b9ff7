package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

var _ Store = (*MemoryStore)(nil)
var _ Store = (*FileStore)(nil)

func TestMemoryStore_ReplaceAndAll(t *testing.T) {
	s := NewMemoryStore(&models.User{ID: "u1"})
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	require.NoError(t, s.Replace(ctx, []*models.User{{ID: "u1"}, {ID: "u2"}}))

	assert.Len(t, s.All(), 2)
	assert.Equal(t, 1, s.Writes())
}

func TestMemoryStore_InjectedFailure(t *testing.T) {
	s := NewMemoryStore(&models.User{ID: "u1"})
	ctx := context.Background()
	s.SetFailure(errors.New("disk full"))

	err := s.Replace(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrStorage))
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, s.All(), 1)

	s.SetFailure(nil)
	require.NoError(t, s.Persist(ctx))
}
