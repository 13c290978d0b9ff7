// Package store keeps the durable collection of user records. The
// collection is small and always held in memory; every mutation rewrites
// the whole record set.
package store

import (
	"context"

	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Store is a durable, reloadable collection of user records.
//
// Load and persist failures wrap common.ErrStorage. Implementations never
// retry internally.
type Store interface {
	// Load reads the persisted state into memory. When nothing is persisted
	// yet it initialises an empty collection and persists it.
	Load(ctx context.Context) error

	// All returns a copy of the current collection in insertion order.
	All() []*models.User

	// Persist writes the in-memory collection, replacing prior content.
	Persist(ctx context.Context) error

	// Replace durably writes users and only then makes them the in-memory
	// collection. On error the in-memory collection is unchanged.
	Replace(ctx context.Context, users []*models.User) error
}

// document is the on-disk layout.
type document struct {
	Users []*models.User `json:"users"`
}

func cloneAll(users []*models.User) []*models.User {
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Clone())
	}
	return out
}
