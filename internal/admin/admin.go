// Package admin implements the accountctl subcommands: importing a legacy
// plaintext user file, creating users interactively, toggling the
// soft-deactivation flag and uploading avatars.
package admin

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/netx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

var ErrUsage = errors.New("usage error")

// Directory is the part of users.Directory the tool drives.
type Directory interface {
	FindByEmail(email string) (*models.User, bool)
	Create(ctx context.Context, in users.CreateInput) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool) (*models.User, bool, error)
	SetPicture(ctx context.Context, id, ref string) (*models.User, bool, error)
	Import(ctx context.Context, legacy []*models.User) (int, error)
}

// AvatarStorage presigns avatar uploads. *avatars.Presigner implements it.
type AvatarStorage interface {
	PresignUpload(ctx context.Context, userID string) (string, string, error)
}

type Tool struct {
	dir        Directory
	avatars    AvatarStorage
	httpClient *http.Client
	reader     *bufio.Reader
	out        io.Writer
	inputFd    int
}

type Option func(*Tool)

// WithAvatarStorage enables the set-avatar command.
func WithAvatarStorage(a AvatarStorage, client *http.Client) Option {
	return func(t *Tool) {
		t.avatars = a
		t.httpClient = client
	}
}

func NewTool(dir Directory, in io.Reader, out io.Writer, inputFd int, opts ...Option) *Tool {
	t := &Tool{dir: dir, reader: bufio.NewReader(in), out: out, inputFd: inputFd}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

type command struct {
	usage string
	run   func(t *Tool, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"migrate":     {usage: "migrate -from users.json", run: (*Tool).migrateCmd},
	"create-user": {usage: "create-user -email a@x.com [-first Jane] [-last Doe] [-phone ...] [-address ...] [-company ...] [-age N]", run: (*Tool).createUserCmd},
	"activate":    {usage: "activate -email a@x.com", run: (*Tool).activateCmd},
	"deactivate":  {usage: "deactivate -email a@x.com", run: (*Tool).deactivateCmd},
	"set-avatar":  {usage: "set-avatar -email a@x.com -file avatar.png", run: (*Tool).setAvatarCmd},
}

// IsCommand reports whether name is a known subcommand.
func IsCommand(name string) bool {
	_, ok := commands[name]
	return ok
}

// Usage writes the list of subcommands to w.
func Usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "usage: accountctl [-c config.json] [-f database.json] <command> [flags]")
	for _, name := range names {
		fmt.Fprintln(w, "  "+commands[name].usage)
	}
}

// Run executes the subcommand name with its own flag arguments.
func (t *Tool) Run(ctx context.Context, name string, args []string) error {
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", ErrUsage, name)
	}
	return cmd.run(t, ctx, args)
}

func (t *Tool) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(t.out)
	return fs
}

func (t *Tool) migrateCmd(ctx context.Context, args []string) error {
	fs := t.flagSet("migrate")
	from := fs.String("from", "", "legacy users file with plaintext passwords")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *from == "" {
		return fmt.Errorf("%w: -from is required", ErrUsage)
	}

	n, err := t.Migrate(ctx, *from)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Migrated %d users\n", n)
	return nil
}

// Migrate imports the legacy {"users":[...]} file at path. Every password
// in it is plaintext and is hashed on the way in.
func (t *Tool) Migrate(ctx context.Context, path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var doc struct {
		Users []*models.User `json:"users"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("decode %s: %w", path, err)
	}

	return t.dir.Import(ctx, doc.Users)
}

func (t *Tool) createUserCmd(ctx context.Context, args []string) error {
	fs := t.flagSet("create-user")
	email := fs.String("email", "", "email address")
	first := fs.String("first", "", "first name")
	last := fs.String("last", "", "last name")
	phone := fs.String("phone", "", "phone number")
	address := fs.String("address", "", "postal address")
	company := fs.String("company", "", "company")
	age := fs.Int("age", 0, "age")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}

	in := users.CreateInput{
		Email:   *email,
		Name:    models.Name{First: *first, Last: *last},
		Phone:   *phone,
		Address: *address,
		Company: *company,
		Age:     *age,
	}

	u, err := t.CreateUser(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Created user %s (%s)\n", u.Email, u.ID)
	return nil
}

// CreateUser fills in missing fields interactively, prompts twice for the
// password and creates the user.
func (t *Tool) CreateUser(ctx context.Context, in users.CreateInput) (*models.User, error) {
	var err error
	if strings.TrimSpace(in.Email) == "" {
		if in.Email, err = GetSimpleText(t.reader, "Email", t.out); err != nil {
			return nil, err
		}
	}
	if in.Name.First == "" {
		if in.Name.First, err = GetSimpleText(t.reader, "First name", t.out); err != nil {
			return nil, err
		}
	}
	if in.Name.Last == "" {
		if in.Name.Last, err = GetSimpleText(t.reader, "Last name", t.out); err != nil {
			return nil, err
		}
	}

	pw, err := GetPassword(t.inputFd, "Enter password: ", t.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword(t.inputFd, "Repeat password: ", t.out)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(confirm)

	if len(pw) == 0 {
		return nil, fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}
	if string(pw) != string(confirm) {
		return nil, fmt.Errorf("%w: passwords do not match", common.ErrValidation)
	}

	in.Password = string(pw)
	return t.dir.Create(ctx, in)
}

func (t *Tool) activateCmd(ctx context.Context, args []string) error {
	return t.setActiveCmd(ctx, "activate", args, true)
}

func (t *Tool) deactivateCmd(ctx context.Context, args []string) error {
	return t.setActiveCmd(ctx, "deactivate", args, false)
}

func (t *Tool) setActiveCmd(ctx context.Context, name string, args []string, active bool) error {
	fs := t.flagSet(name)
	email := fs.String("email", "", "email address")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *email == "" {
		return fmt.Errorf("%w: -email is required", ErrUsage)
	}

	u, err := t.SetActive(ctx, *email, active)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "User %s active=%s\n", u.Email, strconv.FormatBool(u.Active))
	return nil
}

// SetActive flips the active flag of the user with the given email.
func (t *Tool) SetActive(ctx context.Context, email string, active bool) (*models.User, error) {
	u, ok := t.dir.FindByEmail(email)
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}

	updated, found, err := t.dir.SetActive(ctx, u.ID, active)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}
	return updated, nil
}

func (t *Tool) setAvatarCmd(ctx context.Context, args []string) error {
	fs := t.flagSet("set-avatar")
	email := fs.String("email", "", "email address")
	file := fs.String("file", "", "image file")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if *email == "" || *file == "" {
		return fmt.Errorf("%w: -email and -file are required", ErrUsage)
	}

	key, err := t.SetAvatar(ctx, *email, *file)
	if err != nil {
		return err
	}
	fmt.Fprintf(t.out, "Uploaded avatar %s\n", key)
	return nil
}

// SetAvatar uploads the image at path to avatar storage and points the
// user's picture at it. The record is only changed after the upload
// succeeded.
func (t *Tool) SetAvatar(ctx context.Context, email, path string) (string, error) {
	if t.avatars == nil {
		return "", avatars.ErrAvatarsDisabled
	}

	u, ok := t.dir.FindByEmail(email)
	if !ok {
		return "", fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	key, url, err := t.avatars.PresignUpload(ctx, u.ID)
	if err != nil {
		return "", err
	}

	if err := netx.UploadToPresignedURL(ctx, t.httpClient, url, http.DetectContentType(data), data); err != nil {
		return "", err
	}

	if _, found, err := t.dir.SetPicture(ctx, u.ID, key); err != nil {
		return "", err
	} else if !found {
		return "", fmt.Errorf("%w: %s", common.ErrNotFound, email)
	}
	return key, nil
}
