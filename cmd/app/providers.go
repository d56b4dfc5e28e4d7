package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/iknowall-bot/internal/domain/bot"
	"github.com/yanqian/iknowall-bot/internal/domain/qa"
	"github.com/yanqian/iknowall-bot/internal/infra/config"
	"github.com/yanqian/iknowall-bot/internal/infra/docsource/file"
	"github.com/yanqian/iknowall-bot/internal/infra/docsource/googledocs"
	"github.com/yanqian/iknowall-bot/internal/infra/docsource/objectstore"
	"github.com/yanqian/iknowall-bot/internal/infra/qastore"
	"github.com/yanqian/iknowall-bot/internal/infra/querylog"
	tg "github.com/yanqian/iknowall-bot/internal/infra/telegram"
	httpiface "github.com/yanqian/iknowall-bot/internal/interface/http"
	tgiface "github.com/yanqian/iknowall-bot/internal/interface/telegram"
)

const queryLogCapacity = 10000

func provideQAConfig(cfg *config.Config) qa.Config {
	matchers := make([]qa.MatchMode, 0, len(cfg.QA.Matchers))
	for _, m := range cfg.QA.Matchers {
		matchers = append(matchers, qa.MatchMode(strings.ToLower(strings.TrimSpace(m))))
	}
	return qa.Config{
		RefreshInterval:    cfg.QA.RefreshInterval,
		DefaultReply:       cfg.QA.DefaultReply,
		UnavailableReply:   cfg.QA.UnavailableReply,
		Matchers:           qa.SanitizeMatchers(matchers),
		TopRecommendations: cfg.QA.TopRecommendations,
	}
}

func provideBotConfig(cfg *config.Config) bot.Config {
	return bot.Config{
		Greeting:     cfg.Bot.Greeting,
		Help:         cfg.Bot.Help,
		ErrorReply:   cfg.Bot.ErrorReply,
		CreatorLabel: cfg.Bot.CreatorLabel,
	}
}

func provideDocumentSource(cfg *config.Config, logger *slog.Logger) (qa.DocumentSource, error) {
	src := cfg.Source
	switch src.Kind {
	case config.SourceGoogleDocs:
		creds := []byte(src.GoogleDocs.CredentialsJSON)
		if len(creds) == 0 {
			data, err := os.ReadFile(src.GoogleDocs.CredentialsFile)
			if err != nil {
				return nil, fmt.Errorf("read google credentials: %w", err)
			}
			creds = data
		}
		client, err := googledocs.NewClient(context.Background(), src.GoogleDocs.DocumentID, creds, src.GoogleDocs.BaseURL, src.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("google docs source enabled", "document_id", src.GoogleDocs.DocumentID)
		return client, nil
	case config.SourceObjectStore:
		store := src.ObjectStore
		source, err := objectstore.NewSource(store.Endpoint, store.AccessKey, store.SecretKey, store.Bucket, store.Region, store.Key, src.Timeout)
		if err != nil {
			return nil, err
		}
		logger.Info("object store source enabled", "bucket", store.Bucket, "key", store.Key)
		return source, nil
	case config.SourceFile:
		logger.Info("file source enabled", "path", src.File.Path)
		return file.NewSource(src.File.Path), nil
	default:
		return nil, fmt.Errorf("unsupported source kind %q", src.Kind)
	}
}

func provideQAStore(cfg *config.Config, logger *slog.Logger) qa.Store {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory store", "error", err)
			return qastore.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory store", "error", err)
			return qastore.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory store", "error", err)
			client.Close()
		} else {
			logger.Info("qa valkey store enabled", "addr", cfg.Valkey.Addr)
			return qastore.NewValkeyStore(client, cfg.Valkey.Prefix)
		}
	}
	return qastore.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideQueryLog(cfg *config.Config, logger *slog.Logger) qa.QueryLog {
	fallback := querylog.NewMemoryRepository(queryLogCapacity)
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory query log")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory query log", "error", err)
		return fallback
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory query log", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory query log", "error", err)
		pool.Close()
		return fallback
	}
	repo := querylog.NewPostgresRepository(pool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("query log migration failed, using memory query log", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres query log enabled")
	return repo
}

func provideTelegramClient(cfg *config.Config) (*tg.Client, error) {
	if cfg.Telegram.Mode == config.TelegramDisabled {
		return nil, nil
	}
	// Long polls hold the request open for PollTimeout.
	return tg.NewClient(cfg.Telegram.Token, cfg.Telegram.BaseURL, cfg.Telegram.PollTimeout+10*time.Second)
}

func provideDispatcher(botSvc bot.Service, client *tg.Client, logger *slog.Logger) *tgiface.Dispatcher {
	if client == nil {
		return nil
	}
	return tgiface.NewDispatcher(botSvc, client, logger)
}

func provideWebhookHandler(cfg *config.Config, dispatcher *tgiface.Dispatcher, logger *slog.Logger) *httpiface.WebhookHandler {
	if dispatcher == nil || cfg.Telegram.Mode != config.TelegramWebhook {
		return nil
	}
	return httpiface.NewWebhookHandler(dispatcher, cfg.Telegram.WebhookPathSecret(), logger)
}

func providePoller(cfg *config.Config, client *tg.Client, dispatcher *tgiface.Dispatcher, logger *slog.Logger) *tgiface.Poller {
	if client == nil || dispatcher == nil || cfg.Telegram.Mode != config.TelegramPolling {
		return nil
	}
	return tgiface.NewPoller(client, dispatcher, cfg.Telegram.PollTimeout, logger)
}
