//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/iknowall-bot/internal/bootstrap"
	"github.com/yanqian/iknowall-bot/internal/domain/bot"
	"github.com/yanqian/iknowall-bot/internal/domain/qa"
	"github.com/yanqian/iknowall-bot/internal/infra/config"
	httpiface "github.com/yanqian/iknowall-bot/internal/interface/http"
	"github.com/yanqian/iknowall-bot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideQAConfig,
		provideBotConfig,
		provideDocumentSource,
		provideQAStore,
		provideQueryLog,
		provideTelegramClient,
		provideDispatcher,
		provideWebhookHandler,
		providePoller,
		qa.NewCache,
		qa.NewService,
		bot.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
