// Package app wires the client together: collections, sync engine, REST and
// push transports, and the session token lifecycle. The App struct is the
// explicit application context; components receive their collaborators by
// reference, never through globals.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/wrenchat/wren/internal/api"
	"github.com/wrenchat/wren/internal/config"
	"github.com/wrenchat/wren/internal/model"
	"github.com/wrenchat/wren/internal/periodic"
	"github.com/wrenchat/wren/internal/realtime"
	"github.com/wrenchat/wren/internal/session"
	"github.com/wrenchat/wren/internal/store"
	"github.com/wrenchat/wren/internal/syncer"
	"github.com/wrenchat/wren/pkg/logger"
)

// connectTimeout bounds the wait for the initial Socket.IO handshake.
const connectTimeout = 10 * time.Second

// App owns every long-lived component of the client.
type App struct {
	cfg *config.Config

	Users    *store.Collection[*model.User]
	Messages *store.Collection[*model.Message]
	Tokens   *session.Manager
	API      *api.Client
	Realtime *realtime.Client

	rec     *syncer.Reconciler
	fetcher *syncer.Fetcher
	pushes  *syncer.Dispatcher

	queue *dispatcher
	polls []*periodic.Task
}

// New constructs the application context. The view receives the incremental
// render notifications produced by the reconciler.
func New(cfg *config.Config, view syncer.Renderer) *App {
	a := &App{
		cfg:      cfg,
		Users:    syncer.NewUserCollection(),
		Messages: syncer.NewMessageCollection(),
		Realtime: realtime.NewClient(cfg.ServerURL, cfg.Debug),
		queue:    newDispatcher(256),
	}

	a.Tokens = session.NewManager(a.Realtime, cfg.PingInterval)
	a.API = api.NewClient(cfg.ServerURL, a.Tokens)
	a.rec = syncer.NewReconciler(a.Users, a.Messages, view)
	a.fetcher = syncer.NewFetcher(a.API, a.rec)
	a.pushes = syncer.NewDispatcher(a.rec)

	// Push events hop onto the queue so only the queue goroutine ever
	// touches the collections.
	a.Realtime.OnUpdatedModel(func(data map[string]any) {
		_ = a.queue.do(func() { a.pushes.HandlePush(data) })
	})

	// Keep the saved token in step with the session state.
	a.Tokens.OnChange(func(token string) {
		if token == "" {
			if err := session.RemoveToken(cfg.AccessKey); err != nil {
				logger.Warnf("%v", err)
			}
			return
		}
		if err := session.SaveToken(cfg.AccessKey, token); err != nil {
			logger.Warnf("%v", err)
		}
	})

	return a
}

// Start connects the push channel, adopts a previously saved token, runs the
// initial sync (users before messages), and starts the poll loops.
func (a *App) Start(ctx context.Context) error {
	if err := a.Realtime.Connect(); err != nil {
		return fmt.Errorf("failed to connect push channel: %w", err)
	}
	if !a.Realtime.WaitForConnect(connectTimeout) {
		logger.Warnf("push channel not connected yet, continuing with polling only")
	}

	if token, err := session.LoadToken(a.cfg.AccessKey); err != nil {
		logger.Warnf("%v", err)
	} else if token != "" {
		if session.TokenExpired(token, time.Now()) {
			logger.Warnf("saved access token is expired, discarding it")
			if err := session.RemoveToken(a.cfg.AccessKey); err != nil {
				logger.Warnf("%v", err)
			}
		} else {
			a.Tokens.SetToken(token)
		}
	}

	if _, err := a.queue.call(func() (any, error) {
		return nil, a.fetcher.InitialSync(ctx)
	}); err != nil {
		// Not fatal: the poll loops will catch up once the server is
		// reachable again.
		logger.Warnf("initial sync failed: %v", err)
	}

	a.polls = append(a.polls,
		periodic.Start(a.cfg.PollInterval, func() {
			_ = a.queue.do(func() {
				if err := a.fetcher.RefreshUsers(ctx); err != nil {
					logger.Tracef("%v", err)
				}
			})
		}),
		periodic.Start(a.cfg.PollInterval, func() {
			_ = a.queue.do(func() {
				if err := a.fetcher.RefreshMessages(ctx); err != nil {
					logger.Tracef("%v", err)
				}
			})
		}),
	)
	return nil
}

// Login authenticates with the register-or-login heuristic: a nickname that
// is not present among the known users is registered first, then a token is
// requested with basic credentials. A failed registration aborts the token
// request.
func (a *App) Login(ctx context.Context, nickname, password string) error {
	_, err := a.queue.call(func() (any, error) {
		return nil, a.login(ctx, nickname, password)
	})
	return err
}

func (a *App) login(ctx context.Context, nickname, password string) error {
	if !a.knownNickname(nickname) {
		if _, err := a.API.CreateUser(ctx, nickname, password); err != nil {
			return err
		}
	}
	token, err := a.API.RequestToken(ctx, nickname, password)
	if err != nil {
		return err
	}
	a.Tokens.SetToken(token)
	return nil
}

func (a *App) knownNickname(nickname string) bool {
	for u := range a.Users.All() {
		if u.Nickname == nickname {
			return true
		}
	}
	return false
}

// PostMessage sends a message over the push channel. The server broadcasts
// the resulting update back to all clients including this one, so nothing is
// applied locally.
func (a *App) PostMessage(source string) error {
	token := a.Tokens.Token()
	if token == "" {
		return fmt.Errorf("not authenticated")
	}
	return a.Realtime.PostMessage(source, token)
}

// Close stops the poll loops and liveness loop and shuts down transports.
func (a *App) Close() {
	for _, p := range a.polls {
		p.Stop()
	}
	a.polls = nil
	a.Tokens.Close()
	if err := a.Realtime.Close(); err != nil {
		logger.Warnf("closing push channel: %v", err)
	}
	if err := a.API.Close(); err != nil {
		logger.Warnf("closing api client: %v", err)
	}
}
