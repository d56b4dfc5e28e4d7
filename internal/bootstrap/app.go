package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
	"github.com/yanqian/iknowall-bot/internal/infra/config"
	tg "github.com/yanqian/iknowall-bot/internal/infra/telegram"
	tgiface "github.com/yanqian/iknowall-bot/internal/interface/telegram"
)

const shutdownTimeout = 10 * time.Second

// WebhookPath is the route prefix the HTTP router serves Telegram updates on.
const WebhookPath = "/telegram/webhook/"

var secretTokenPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

type worker interface {
	Run(ctx context.Context) error
}

type warmer interface {
	EnsureFresh(ctx context.Context) error
}

type webhookRegistrar interface {
	SetWebhook(ctx context.Context, url, secretToken string) error
}

// App encapsulates the HTTP server and the background workers.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	cache     warmer
	refresher worker
	poller    worker
	registrar webhookRegistrar
}

// NewApp is used by Wire to build the runnable app. poller and telegram may be
// nil when the matching Telegram mode is off.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, cache *qa.Cache, poller *tgiface.Poller, telegram *tg.Client) *App {
	app := &App{
		cfg:    cfg,
		logger: logger.With("component", "bootstrap"),
		server: server,
	}
	if cache != nil {
		app.cache = cache
		if cfg.QA.BackgroundRefresh {
			app.refresher = cache
		}
	}
	if poller != nil && cfg.Telegram.Mode == config.TelegramPolling {
		app.poller = poller
	}
	if telegram != nil && cfg.Telegram.Mode == config.TelegramWebhook {
		app.registrar = telegram
	}
	return app
}

// Run starts the HTTP server and the enabled workers, and blocks until ctx is
// canceled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.server.Shutdown(shutdownCtx)
	})

	if a.cache != nil {
		g.Go(func() error {
			if err := a.cache.EnsureFresh(gctx); err != nil {
				a.logger.Warn("initial document load failed", "error", err)
			}
			return nil
		})
	}

	if a.refresher != nil {
		g.Go(func() error { return a.refresher.Run(gctx) })
	}

	if a.poller != nil {
		g.Go(func() error { return a.poller.Run(gctx) })
	}

	if a.registrar != nil {
		g.Go(func() error {
			a.registerWebhook(gctx)
			return nil
		})
	}

	return g.Wait()
}

func (a *App) registerWebhook(ctx context.Context) {
	secret := a.cfg.Telegram.WebhookPathSecret()
	endpoint := webhookEndpoint(a.cfg.Telegram.WebhookURL, secret)
	if err := a.registrar.SetWebhook(ctx, endpoint, secretToken(secret)); err != nil {
		a.logger.Error("telegram webhook registration failed", "error", err)
		return
	}
	a.logger.Info("telegram webhook registered", "path", WebhookPath)
}

func webhookEndpoint(baseURL, secret string) string {
	return strings.TrimRight(baseURL, "/") + WebhookPath + secret
}

// secretToken returns the value for the secret_token header, or "" when the
// path secret uses characters Telegram rejects there (bot tokens contain ':').
func secretToken(secret string) string {
	if secretTokenPattern.MatchString(secret) {
		return secret
	}
	return ""
}
