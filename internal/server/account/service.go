// Package account is the boundary both transports call into. It composes
// the user directory, the token service and avatar storage, and never
// returns a record with its credential hash.
package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

// Directory is the subset of users.Directory used here.
type Directory interface {
	FindByID(id string) (*models.User, bool)
	Update(ctx context.Context, id string, in users.UpdateInput) (*models.User, bool, error)
	SetPicture(ctx context.Context, id, ref string) (*models.User, bool, error)
}

// Tokens is the subset of auth.Service used here.
type Tokens interface {
	Authenticate(ctx context.Context, email, password string) (*auth.Session, error)
	Verify(ctx context.Context, token string) (*models.User, bool)
}

// AvatarStorage presigns avatar object URLs. *avatars.Presigner
// implements it.
type AvatarStorage interface {
	PresignUpload(ctx context.Context, userID string) (string, string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	ObjectExists(ctx context.Context, key string) (bool, error)
}

// AvatarUpload tells the client where to PUT the image.
type AvatarUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
}

type Service struct {
	dir     Directory
	tokens  Tokens
	avatars AvatarStorage
	logger  logging.Logger
}

func NewService(dir Directory, tokens Tokens, av AvatarStorage, l logging.Logger) *Service {
	return &Service{
		dir:     dir,
		tokens:  tokens,
		avatars: av,
		logger:  l.With("module", "account"),
	}
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*auth.Session, error) {
	return s.tokens.Authenticate(ctx, email, password)
}

// VerifyToken resolves a bearer token to the current user record.
func (s *Service) VerifyToken(ctx context.Context, token string) (*models.User, bool) {
	return s.tokens.Verify(ctx, token)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.PublicUser, error) {
	u, ok := s.dir.FindByID(id)
	if !ok {
		return nil, common.ErrNotFound
	}
	p := u.Public()
	return &p, nil
}

// UpdateProfile applies a partial update and returns the merged record.
func (s *Service) UpdateProfile(ctx context.Context, id string, in users.UpdateInput) (*models.PublicUser, error) {
	u, found, err := s.dir.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, common.ErrNotFound
	}
	p := u.Public()
	return &p, nil
}

// GetBalanceView returns the stored balance unchanged.
func (s *Service) GetBalanceView(user *models.User) string {
	return user.Balance
}

// RequestAvatarUpload presigns an upload URL for a new avatar object. The
// user's picture is left alone until ConfirmAvatarUpload sees the object.
func (s *Service) RequestAvatarUpload(ctx context.Context, id string) (*AvatarUpload, error) {
	if s.avatars == nil {
		return nil, avatars.ErrAvatarsDisabled
	}
	if _, ok := s.dir.FindByID(id); !ok {
		return nil, common.ErrNotFound
	}

	key, url, err := s.avatars.PresignUpload(ctx, id)
	if err != nil {
		if !errors.Is(err, avatars.ErrAvatarsDisabled) {
			s.logger.Error(ctx, "error presigning avatar upload", "user_id", id, "error", err)
		}
		return nil, err
	}

	return &AvatarUpload{Key: key, UploadURL: url}, nil
}

// ConfirmAvatarUpload makes key the user's picture once the object behind
// it exists. Keys issued for other users are rejected with
// common.ErrValidation, missing objects with avatars.ErrNotUploaded.
func (s *Service) ConfirmAvatarUpload(ctx context.Context, id, key string) (*models.PublicUser, error) {
	if s.avatars == nil {
		return nil, avatars.ErrAvatarsDisabled
	}
	if !avatars.OwnsKey(id, key) {
		return nil, fmt.Errorf("%w: avatar key does not belong to user", common.ErrValidation)
	}

	exists, err := s.avatars.ObjectExists(ctx, key)
	if err != nil {
		if !errors.Is(err, avatars.ErrAvatarsDisabled) {
			s.logger.Error(ctx, "error checking avatar object", "user_id", id, "error", err)
		}
		return nil, err
	}
	if !exists {
		return nil, avatars.ErrNotUploaded
	}

	u, found, err := s.dir.SetPicture(ctx, id, key)
	if err != nil {
		return nil, fmt.Errorf("error storing avatar reference: %w", err)
	}
	if !found {
		return nil, common.ErrNotFound
	}
	p := u.Public()
	return &p, nil
}

// AvatarURL resolves the user's picture reference to something a browser
// can load. Object keys are presigned; other references pass through.
func (s *Service) AvatarURL(ctx context.Context, user *models.User) (string, error) {
	if !avatars.IsObjectKey(user.Picture) {
		return user.Picture, nil
	}
	if s.avatars == nil {
		return "", avatars.ErrAvatarsDisabled
	}
	return s.avatars.PresignDownload(ctx, user.Picture)
}
