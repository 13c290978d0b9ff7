package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/admin"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/accountkeeper/internal/server/store"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "accountctl:", err)
		if errors.Is(err, admin.ErrUsage) {
			admin.Usage(os.Stderr)
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	name, cmdArgs, ok := splitCommand(args)
	if !ok {
		return fmt.Errorf("%w: no command given", admin.ErrUsage)
	}

	// Global flags such as -c and -f are picked out of os.Args by the
	// config loader; subcommand flags come after the command name.
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	st := store.NewFileStore(cfg.StoragePath)
	if err := st.Load(ctx); err != nil {
		return err
	}

	hasher, err := credentials.NewHasher(cfg.PasswordCost)
	if err != nil {
		return err
	}

	dir := users.NewDirectory(st, hasher, logger)

	var opts []admin.Option
	presigner := avatars.NewPresigner(avatars.Settings{
		AccessKey:    cfg.S3RootUser,
		SecretKey:    cfg.S3RootPassword,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if presigner.Enabled() {
		opts = append(opts, admin.WithAvatarStorage(presigner, &http.Client{Timeout: time.Minute}))
	}

	tool := admin.NewTool(dir, os.Stdin, os.Stdout, int(os.Stdin.Fd()), opts...)

	return tool.Run(ctx, name, cmdArgs)
}

// splitCommand finds the first known subcommand in args and returns it
// with the arguments that follow it.
func splitCommand(args []string) (string, []string, bool) {
	for i, a := range args {
		if admin.IsCommand(a) {
			return a, args[i+1:], true
		}
	}
	return "", nil, false
}
