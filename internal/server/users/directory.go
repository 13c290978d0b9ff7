// Package users implements the user directory: the only component allowed
// to mutate user records. It enforces email uniqueness and the partial
// update rules on top of a store.Store.
package users

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/store"
)

// errNoRecord aborts a mutation whose target id does not exist.
var errNoRecord = errors.New("no such record")

// Directory owns every write to the record store.
//
// Mutations run one at a time as {reload, check invariant, mutate, persist}
// under mu. Reads work on store snapshots and never take mu.
type Directory struct {
	store  store.Store
	hasher PasswordHasher
	logger logging.Logger

	mu sync.Mutex

	newID         func() (string, error)
	newExternalID func() string
}

func NewDirectory(s store.Store, h PasswordHasher, l logging.Logger) *Directory {
	return &Directory{
		store:         s,
		hasher:        h,
		logger:        l.With("module", "users"),
		newID:         common.NewRecordID,
		newExternalID: uuid.NewString,
	}
}

// FindByEmail looks a user up by normalised email.
func (d *Directory) FindByEmail(email string) (*models.User, bool) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, false
	}
	users := d.store.All()
	if i := indexByEmail(users, email); i >= 0 {
		return users[i], true
	}
	return nil, false
}

func (d *Directory) FindByID(id string) (*models.User, bool) {
	users := d.store.All()
	if i := indexByID(users, id); i >= 0 {
		return users[i], true
	}
	return nil, false
}

// Create adds a new active user. It fails with common.ErrDuplicateEmail
// when the email is already taken. The returned record includes the hash.
func (d *Directory) Create(ctx context.Context, in CreateInput) (*models.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrValidation)
	}

	// Cheap rejection before paying for bcrypt; the authoritative check
	// happens again under the writer lock.
	if _, taken := d.FindByEmail(email); taken {
		return nil, common.ErrDuplicateEmail
	}

	hash, err := d.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	id, err := d.newID()
	if err != nil {
		return nil, fmt.Errorf("error generating id: %w", err)
	}

	user := &models.User{
		ID:           id,
		ExternalID:   d.newExternalID(),
		Active:       true,
		Balance:      DefaultBalance,
		Picture:      DefaultPicture,
		Age:          in.Age,
		EyeColor:     in.EyeColor,
		Name:         in.Name,
		Company:      in.Company,
		Email:        email,
		PasswordHash: hash,
		Phone:        in.Phone,
		Address:      in.Address,
	}

	err = d.mutate(ctx, func(users []*models.User) ([]*models.User, error) {
		if indexByEmail(users, email) >= 0 {
			return nil, common.ErrDuplicateEmail
		}
		if indexByID(users, id) >= 0 {
			return nil, fmt.Errorf("%w: id collision", common.ErrInternal)
		}
		return append(users, user), nil
	})
	if err != nil {
		if !errors.Is(err, common.ErrDuplicateEmail) {
			d.logger.Error(ctx, "error creating user", "error", err)
		}
		return nil, err
	}

	d.logger.Info(ctx, "user created", "user_id", user.ID)
	return user.Clone(), nil
}

// Update merges in into the record with the given id. The bool is false
// when no such record exists; that is not an error.
func (d *Directory) Update(ctx context.Context, id string, in UpdateInput) (*models.User, bool, error) {
	var newEmail string
	if in.Email != nil {
		newEmail = NormalizeEmail(*in.Email)
		if newEmail == "" {
			return nil, false, fmt.Errorf("%w: email must not be empty", common.ErrValidation)
		}
	}

	user, found, err := d.modify(ctx, id, func(users []*models.User, i int) error {
		if in.Email != nil && newEmail != NormalizeEmail(users[i].Email) {
			if j := indexByEmail(users, newEmail); j >= 0 && j != i {
				return common.ErrDuplicateEmail
			}
		}
		in.apply(users[i])
		return nil
	})
	if err != nil || !found {
		return nil, found, err
	}

	d.logger.Info(ctx, "user updated", "user_id", user.ID)
	return user, true, nil
}

// SetActive flips the soft-deactivation flag. Deactivated users cannot
// authenticate; records are never deleted.
func (d *Directory) SetActive(ctx context.Context, id string, active bool) (*models.User, bool, error) {
	user, found, err := d.modify(ctx, id, func(users []*models.User, i int) error {
		users[i].Active = active
		return nil
	})
	if err != nil || !found {
		return nil, found, err
	}

	d.logger.Info(ctx, "user active flag changed", "user_id", id, "active", active)
	return user, true, nil
}

// SetPicture stores a new avatar reference for the user.
func (d *Directory) SetPicture(ctx context.Context, id, ref string) (*models.User, bool, error) {
	return d.modify(ctx, id, func(users []*models.User, i int) error {
		users[i].Picture = ref
		return nil
	})
}

// ValidatePassword reports whether plaintext matches hash. It fails closed:
// a malformed hash is logged and reported as false.
func (d *Directory) ValidatePassword(ctx context.Context, plaintext, hash string) bool {
	ok, err := d.hasher.Verify(plaintext, hash)
	if err != nil {
		d.logger.Error(ctx, "error validating password", "error", err)
		return false
	}
	return ok
}

// modify runs fn against a private copy of the record set with i pointing
// at the record for id, persists the result and returns the updated record.
func (d *Directory) modify(ctx context.Context, id string, fn func(users []*models.User, i int) error) (*models.User, bool, error) {
	var updated *models.User

	err := d.mutate(ctx, func(users []*models.User) ([]*models.User, error) {
		i := indexByID(users, id)
		if i < 0 {
			return nil, errNoRecord
		}
		if err := fn(users, i); err != nil {
			return nil, err
		}
		updated = users[i].Clone()
		return users, nil
	})

	switch {
	case errors.Is(err, errNoRecord):
		return nil, false, nil
	case err != nil:
		if !errors.Is(err, common.ErrDuplicateEmail) {
			d.logger.Error(ctx, "error updating user", "user_id", id, "error", err)
		}
		return nil, true, err
	}
	return updated, true, nil
}

// mutate is the single writer path.
func (d *Directory) mutate(ctx context.Context, fn func(users []*models.User) ([]*models.User, error)) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.store.Load(ctx); err != nil {
		return err
	}

	next, err := fn(d.store.All())
	if err != nil {
		return err
	}

	return d.store.Replace(ctx, next)
}

func indexByEmail(users []*models.User, email string) int {
	for i, u := range users {
		if NormalizeEmail(u.Email) == email {
			return i
		}
	}
	return -1
}

func indexByID(users []*models.User, id string) int {
	for i, u := range users {
		if u.ID == id {
			return i
		}
	}
	return -1
}
