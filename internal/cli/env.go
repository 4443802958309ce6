package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/sadopc/taskr/internal/api"
	"github.com/sadopc/taskr/internal/config"
	"github.com/sadopc/taskr/internal/core"
	"github.com/sadopc/taskr/internal/logging"
	"github.com/sadopc/taskr/internal/session"
	"github.com/sadopc/taskr/internal/store"
	"github.com/sadopc/taskr/internal/tasks"
)

// env is everything a command needs, built from the loaded config.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	logFile io.Closer
	store   *store.Store
	client  *api.Client
	session *session.Store
}

func openEnv(console bool) (*env, error) {
	cfg, err := config.Load(config.Options{ConfigFile: configFile, EnvFile: envFile})
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	log, logFile, err := logging.New(logging.Options{
		File:    cfg.LogFile,
		Level:   level,
		Console: console && verbose,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}

	if keys, err := st.Keys(); err == nil {
		log.Debug().Str("db_path", cfg.DBPath).Strs("slots", keys).Msg("opened store")
	}

	e := &env{cfg: cfg, log: log, logFile: logFile, store: st}
	// The client reads the token from the session, which needs the
	// client as its authenticator.
	e.client = api.New(cfg.APIURL,
		api.WithTokenSource(tokenFunc(func() string { return e.session.Token() })),
		api.WithTimeout(cfg.Timeout),
		api.WithRetries(cfg.Retries, 0),
		api.WithLogger(log),
	)
	e.session = session.New(e.client, st, log)
	return e, nil
}

func (e *env) Close() error {
	err := e.store.Close()
	if cerr := e.logFile.Close(); err == nil {
		err = cerr
	}
	return err
}

// restore loads the persisted session and fails when nobody is logged in.
func (e *env) restore(ctx context.Context) (core.User, error) {
	if err := e.session.Restore(ctx); err != nil {
		if errors.Is(err, core.ErrSessionInvalid) {
			return core.User{}, fmt.Errorf("session expired, run taskr login: %w", core.ErrNotLoggedIn)
		}
		return core.User{}, err
	}
	u, ok := e.session.User()
	if !ok {
		return core.User{}, fmt.Errorf("run taskr login first: %w", core.ErrNotLoggedIn)
	}
	return u, nil
}

// manager restores the session and returns a manager holding the user's
// tasks.
func (e *env) manager(ctx context.Context) (*tasks.Manager, error) {
	if _, err := e.restore(ctx); err != nil {
		return nil, err
	}
	mgr := tasks.NewManager(e.client, e.log)
	if err := mgr.Load(ctx); err != nil {
		return nil, err
	}
	return mgr, nil
}

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }
