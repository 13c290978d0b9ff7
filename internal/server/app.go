// Package server wires the record store, the user directory, the token
// service and both transports together and runs them until the process
// is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/accountkeeper/internal/filex"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/account"
	"github.com/dmitrijs2005/accountkeeper/internal/server/auth"
	"github.com/dmitrijs2005/accountkeeper/internal/server/avatars"
	"github.com/dmitrijs2005/accountkeeper/internal/server/config"
	"github.com/dmitrijs2005/accountkeeper/internal/server/credentials"
	"github.com/dmitrijs2005/accountkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/accountkeeper/internal/server/store"
	"github.com/dmitrijs2005/accountkeeper/internal/server/users"

	gs "github.com/dmitrijs2005/accountkeeper/internal/server/grpc"
)

// runner is a transport that serves until its context is cancelled.
type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	account *account.Service
	servers map[string]runner
}

// NewApp validates c, loads the record file and builds every component.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if _, err := filex.EnsureParentDir(c.StoragePath); err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}
	st := store.NewFileStore(c.StoragePath)
	if err := st.Load(ctx); err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	hasher, err := credentials.NewHasher(c.PasswordCost)
	if err != nil {
		return nil, fmt.Errorf("credentials init error: %w", err)
	}

	dir := users.NewDirectory(st, hasher, l)

	tokens, err := auth.NewService(dir, []byte(c.SecretKey), l, auth.WithTokenValidity(c.TokenValidityDuration))
	if err != nil {
		return nil, fmt.Errorf("auth init error: %w", err)
	}

	presigner := avatars.NewPresigner(avatars.Settings{
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if !presigner.Enabled() {
		l.Info(ctx, "avatar storage disabled: no S3 bucket configured")
	}

	acc := account.NewService(dir, tokens, presigner, l)

	return &App{
		config:  c,
		logger:  l,
		account: acc,
		servers: map[string]runner{
			"http": httpapi.NewHTTPServer(c.EndpointAddrHTTP, l, acc, c.CORSAllowedOrigins),
			"grpc": gs.NewGRPCServer(c.EndpointAddrGRPC, l, acc),
		},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// startServer runs one transport; a failure cancels the whole app.
func (app *App) startServer(ctx context.Context, cancelFunc context.CancelFunc, name string, s runner) error {
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

// Run starts every transport and blocks until ctx is cancelled, a signal
// arrives or one of the transports fails. It returns the first transport
// failure, or nil after a clean shutdown.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.StoragePath)

	app.initSignalHandler(cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for name, s := range app.servers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := app.startServer(ctx, cancelFunc, name, s); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	app.logger.Info(ctx, "App stopped")
	return firstErr
}
