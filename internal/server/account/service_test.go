package account

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/accountkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/store"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

type fakeAvatars struct {
	putKey, putURL string
	putErr         error
	getErr         error
	gotUserID      string
	uploaded       map[string]bool
	headErr        error
}

func (f *fakeAvatars) ObjectExists(ctx context.Context, key string) (bool, error) {
	if f.headErr != nil {
		return false, f.headErr
	}
	return f.uploaded[key], nil
}

func (f *fakeAvatars) PresignUpload(ctx context.Context, userID string) (string, string, error) {
	f.gotUserID = userID
	if f.putErr != nil {
		return "", "", f.putErr
	}
	return f.putKey, f.putURL, nil
}

func (f *fakeAvatars) PresignDownload(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return "https://signed.example/" + key, nil
}

type fixture struct {
	svc   *Service
	dir   *users.Directory
	store *store.MemoryStore
	av    *fakeAvatars
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h, err := credentials.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)

	ms := store.NewMemoryStore()
	dir := users.NewDirectory(ms, h, logging.Nop())
	tokens, err := auth.NewService(dir, []byte("test-secret"), logging.Nop())
	require.NoError(t, err)

	av := &fakeAvatars{putKey: "avatars/u/k", putURL: "https://put.example/avatars/u/k"}
	return &fixture{
		svc:   NewService(dir, tokens, av, logging.Nop()),
		dir:   dir,
		store: ms,
		av:    av,
	}
}

func (f *fixture) create(t *testing.T, email, password string) *models.User {
	t.Helper()
	u, err := f.dir.Create(context.Background(), users.CreateInput{
		Email:    email,
		Password: password,
		Name:     models.Name{First: "John", Last: "Doe"},
		Phone:    "+1 555 0100",
		Address:  "1 Main St",
		Company:  "ACME",
	})
	require.NoError(t, err)
	return u
}

func ptr(s string) *string { return &s }

func TestLoginScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "a@x.com", "secret123")

	sess, err := f.svc.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "a@x.com", sess.User.Email)

	_, err = f.svc.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestDuplicateEmailScenario(t *testing.T) {
	f := newFixture(t)
	f.create(t, "a@x.com", "secret123")

	_, err := f.dir.Create(context.Background(), users.CreateInput{Email: "a@x.com", Password: "other"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	n := 0
	for _, u := range f.store.All() {
		if u.Email == "a@x.com" {
			n++
		}
	}
	assert.Equal(t, 1, n)
}

func TestPartialUpdateScenario(t *testing.T) {
	f := newFixture(t)
	u := f.create(t, "a@x.com", "secret123")

	got, err := f.svc.UpdateProfile(context.Background(), u.ID, users.UpdateInput{
		Name: &users.NameUpdate{First: ptr("Jane")},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Name{First: "Jane", Last: "Doe"}, got.Name)

	want := u.Public()
	want.Name.First = "Jane"
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Errorf("unexpected profile (-want +got):\n%s", diff)
	}
}

func TestDeactivatedScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t, "a@x.com", "secret123")

	_, found, err := f.dir.SetActive(ctx, u.ID, false)
	require.NoError(t, err)
	require.True(t, found)

	_, err = f.svc.Authenticate(ctx, "a@x.com", "secret123")
	assert.ErrorIs(t, err, common.ErrInactiveAccount)
	assert.NotErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t, "a@x.com", "secret123")

	sess, err := f.svc.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)

	got, ok := f.svc.VerifyToken(ctx, sess.Token)
	require.True(t, ok)
	assert.Equal(t, u.ID, got.ID)

	_, ok = f.svc.VerifyToken(ctx, "garbage")
	assert.False(t, ok)
}

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	u := f.create(t, "a@x.com", "secret123")

	got, err := f.svc.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Public(), *got)

	_, err = f.svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBoundaryNeverLeaksPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t, "a@x.com", "secret123")

	sess, err := f.svc.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	profile, err := f.svc.GetByID(ctx, u.ID)
	require.NoError(t, err)

	for _, v := range []any{sess, profile} {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), `"password"`)
		assert.NotContains(t, string(raw), "secret123")
		assert.NotContains(t, string(raw), u.PasswordHash)
	}
}

func TestUpdateProfile_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.create(t, "a@x.com", "secret123")
	b := f.create(t, "b@x.com", "secret123")

	_, err := f.svc.UpdateProfile(ctx, "missing", users.UpdateInput{Phone: ptr("1")})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = f.svc.UpdateProfile(ctx, b.ID, users.UpdateInput{Email: ptr("A@X.com")})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestGetBalanceView(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "$1,234.56", f.svc.GetBalanceView(&models.User{Balance: "$1,234.56"}))
	assert.Equal(t, "", f.svc.GetBalanceView(&models.User{}))
}

func TestRequestAvatarUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t, "a@x.com", "secret123")

	up, err := f.svc.RequestAvatarUpload(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, &AvatarUpload{Key: "avatars/u/k", UploadURL: "https://put.example/avatars/u/k"}, up)
	assert.Equal(t, u.ID, f.av.gotUserID)

	// nothing uploaded yet, so the picture is unchanged
	stored, ok := f.dir.FindByID(u.ID)
	require.True(t, ok)
	assert.Equal(t, users.DefaultPicture, stored.Picture)
}

func TestRequestAvatarUpload_Errors(t *testing.T) {
	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RequestAvatarUpload(context.Background(), "missing")
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t)
		u := f.create(t, "a@x.com", "secret123")
		f.av.putErr = avatars.ErrAvatarsDisabled

		_, err := f.svc.RequestAvatarUpload(context.Background(), u.ID)
		assert.ErrorIs(t, err, avatars.ErrAvatarsDisabled)

		stored, _ := f.dir.FindByID(u.ID)
		assert.Equal(t, users.DefaultPicture, stored.Picture)
	})

	t.Run("presign failure", func(t *testing.T) {
		f := newFixture(t)
		u := f.create(t, "a@x.com", "secret123")
		f.av.putErr = errors.New("boom")

		_, err := f.svc.RequestAvatarUpload(context.Background(), u.ID)
		assert.EqualError(t, err, "boom")
	})
}

func TestConfirmAvatarUpload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t, "a@x.com", "secret123")
	key := "avatars/" + u.ID + "/k1"
	f.av.uploaded = map[string]bool{key: true}

	p, err := f.svc.ConfirmAvatarUpload(ctx, u.ID, key)
	require.NoError(t, err)
	assert.Equal(t, key, p.Picture)

	stored, _ := f.dir.FindByID(u.ID)
	assert.Equal(t, key, stored.Picture)

	url, err := f.svc.AvatarURL(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/"+key, url)
}

func TestConfirmAvatarUpload_AbandonedUploadKeepsPicture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.create(t, "a@x.com", "secret123")
	f.av.putKey = "avatars/" + u.ID + "/k1"

	up, err := f.svc.RequestAvatarUpload(ctx, u.ID)
	require.NoError(t, err)

	// the client never PUTs the object
	_, err = f.svc.ConfirmAvatarUpload(ctx, u.ID, up.Key)
	assert.ErrorIs(t, err, avatars.ErrNotUploaded)

	stored, _ := f.dir.FindByID(u.ID)
	assert.Equal(t, users.DefaultPicture, stored.Picture)

	url, err := f.svc.AvatarURL(ctx, stored)
	require.NoError(t, err)
	assert.Equal(t, users.DefaultPicture, url)
}

func TestConfirmAvatarUpload_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("foreign key", func(t *testing.T) {
		f := newFixture(t)
		u := f.create(t, "a@x.com", "secret123")
		f.av.uploaded = map[string]bool{"avatars/other/k": true}

		_, err := f.svc.ConfirmAvatarUpload(ctx, u.ID, "avatars/other/k")
		assert.ErrorIs(t, err, common.ErrValidation)
	})

	t.Run("head failure", func(t *testing.T) {
		f := newFixture(t)
		u := f.create(t, "a@x.com", "secret123")
		f.av.headErr = errors.New("boom")

		_, err := f.svc.ConfirmAvatarUpload(ctx, u.ID, "avatars/"+u.ID+"/k")
		assert.EqualError(t, err, "boom")
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t)
		u := f.create(t, "a@x.com", "secret123")
		key := "avatars/" + u.ID + "/k"
		f.av.uploaded = map[string]bool{key: true}
		f.store.SetFailure(common.ErrStorage)

		_, err := f.svc.ConfirmAvatarUpload(ctx, u.ID, key)
		assert.ErrorIs(t, err, common.ErrStorage)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture(t)
		key := "avatars/missing/k"
		f.av.uploaded = map[string]bool{key: true}

		_, err := f.svc.ConfirmAvatarUpload(ctx, "missing", key)
		assert.ErrorIs(t, err, common.ErrNotFound)
	})
}

func TestAvatarURL_PassesThroughExternalReferences(t *testing.T) {
	f := newFixture(t)
	f.av.getErr = errors.New("must not be called")

	url, err := f.svc.AvatarURL(context.Background(), &models.User{Picture: users.DefaultPicture})
	require.NoError(t, err)
	assert.Equal(t, users.DefaultPicture, url)
}
