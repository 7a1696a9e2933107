// Package app builds the client object graph once per process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/myshop-dev/myshop/internal/cli/auth"
	"github.com/myshop-dev/myshop/internal/cli/client"
	"github.com/myshop-dev/myshop/internal/cli/config"
	"github.com/myshop-dev/myshop/internal/cli/notify"
	"github.com/myshop-dev/myshop/internal/cli/router"
	"github.com/myshop-dev/myshop/internal/cli/session"
	"github.com/myshop-dev/myshop/internal/cli/shell"
	"github.com/myshop-dev/myshop/internal/cli/userconfig"
	"github.com/myshop-dev/myshop/internal/cli/views"
	"github.com/myshop-dev/myshop/internal/logger"
)

// Options configures New. Zero values fall back to the process defaults.
type Options struct {
	Config   *config.Config
	Backend  auth.Backend
	Prompter views.Prompter
	Out      io.Writer
	ErrOut   io.Writer
	// RememberPath saves the last rendered page for `myshop open`.
	RememberPath bool
}

// App is one client context: a single credential store, transport and
// moderation count shared by every view.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     *auth.Store
	Client    *client.Client
	Sync      *notify.Synchronizer
	Lifecycle *session.Lifecycle
	Shell     *shell.Shell
	Views     *views.Views
	Router    *router.Router
	Out       io.Writer

	rememberPath bool
}

// New wires the client. It does not touch the network; call Bootstrap.
func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Prompter == nil {
		opts.Prompter = views.TerminalPrompter{}
	}

	cfg := opts.Config
	log := logger.New(opts.ErrOut, cfg.LogLevel, "console")

	backend := opts.Backend
	if backend == nil {
		var err error
		backend, err = cfg.Backend()
		if err != nil {
			return nil, fmt.Errorf("failed to open credential store: %w", err)
		}
	}

	store := auth.NewStore(backend, log)

	api := client.New(cfg.BaseURL(), store, log)
	api.SetHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout})

	sync := notify.New(store, api, log)
	lifecycle := session.New(store, api, sync, log)
	nav := shell.New(store, sync)
	screens := views.New(lifecycle, api, sync, opts.Prompter, log)

	return &App{
		Config:       cfg,
		Logger:       log,
		Store:        store,
		Client:       api,
		Sync:         sync,
		Lifecycle:    lifecycle,
		Shell:        nav,
		Views:        screens,
		Router:       router.New(screens.Routes(), store, nav, log),
		Out:          opts.Out,
		rememberPath: opts.RememberPath,
	}, nil
}

// Bootstrap checks the stored session once and, for an admin, loads the
// moderation count.
func (a *App) Bootstrap(ctx context.Context) {
	if _, ok := a.Store.Bootstrap(); ok {
		a.Sync.Bootstrap(ctx)
	}
}

// Open navigates to path and renders the resulting view.
func (a *App) Open(ctx context.Context, path string) error {
	final, err := a.Router.Navigate(ctx, path, a.Out)
	if err != nil {
		return err
	}

	a.remember(final)
	return nil
}

// Logout ends the session and returns where the user lands. The landing
// becomes the last page, so a bare `open` starts there.
func (a *App) Logout() (string, error) {
	landing, err := a.Lifecycle.Logout()
	if err != nil {
		return "", err
	}
	a.remember(landing)
	return landing, nil
}

func (a *App) remember(path string) {
	if !a.rememberPath {
		return
	}
	if err := userconfig.SetLastPath(path); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to save last page")
	}
}

// Close releases subscriptions held by the app.
func (a *App) Close() {
	a.Shell.Close()
}
