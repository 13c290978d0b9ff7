package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
)

// Import adds legacy records whose PasswordHash field still holds the
// plaintext password. Each password is hashed, emails are normalised and
// missing identifiers are generated. The whole batch is rejected with
// common.ErrDuplicateEmail if any email repeats within the batch or is
// already stored. It returns the number of imported records.
func (d *Directory) Import(ctx context.Context, legacy []*models.User) (int, error) {
	batch := make([]*models.User, 0, len(legacy))
	seen := make(map[string]struct{}, len(legacy))

	for _, in := range legacy {
		u := in.Clone()
		u.Email = NormalizeEmail(u.Email)
		if u.Email == "" {
			return 0, fmt.Errorf("%w: record %q has no email", common.ErrValidation, u.ID)
		}
		if _, dup := seen[u.Email]; dup {
			return 0, fmt.Errorf("%w: %s", common.ErrDuplicateEmail, u.Email)
		}
		seen[u.Email] = struct{}{}

		hash, err := d.hasher.Hash(u.PasswordHash)
		if err != nil {
			return 0, fmt.Errorf("error hashing password for %s: %w", u.Email, err)
		}
		u.PasswordHash = hash

		if u.ID == "" {
			if u.ID, err = d.newID(); err != nil {
				return 0, fmt.Errorf("error generating id: %w", err)
			}
		}
		if u.ExternalID == "" {
			u.ExternalID = d.newExternalID()
		}
		if u.Balance == "" {
			u.Balance = DefaultBalance
		}
		if u.Picture == "" {
			u.Picture = DefaultPicture
		}
		batch = append(batch, u)
	}

	err := d.mutate(ctx, func(users []*models.User) ([]*models.User, error) {
		for _, u := range batch {
			if indexByEmail(users, u.Email) >= 0 {
				return nil, fmt.Errorf("%w: %s", common.ErrDuplicateEmail, u.Email)
			}
			if indexByID(users, u.ID) >= 0 {
				return nil, fmt.Errorf("%w: id %s already stored", common.ErrValidation, u.ID)
			}
			users = append(users, u)
		}
		return users, nil
	})
	if err != nil {
		return 0, err
	}

	d.logger.Info(ctx, "users imported", "count", len(batch))
	return len(batch), nil
}
