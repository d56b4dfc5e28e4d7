package telegram

import (
	"context"
	"log/slog"
	"time"

	tg "github.com/yanqian/iknowall-bot/internal/infra/telegram"
)

const maxPollBackoff = 30 * time.Second

// UpdatesClient is the subset of the Bot API the poller needs.
type UpdatesClient interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]tg.Update, error)
	DeleteWebhook(ctx context.Context) error
}

// Poller long-polls getUpdates and dispatches every update in order.
type Poller struct {
	client      UpdatesClient
	dispatcher  *Dispatcher
	pollTimeout time.Duration
	backoff     time.Duration
	logger      *slog.Logger
}

// NewPoller builds a long-polling worker.
func NewPoller(client UpdatesClient, dispatcher *Dispatcher, pollTimeout time.Duration, logger *slog.Logger) *Poller {
	return &Poller{
		client:      client,
		dispatcher:  dispatcher,
		pollTimeout: pollTimeout,
		backoff:     time.Second,
		logger:      logger.With("component", "telegram.poller"),
	}
}

// Run polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	if err := p.client.DeleteWebhook(ctx); err != nil {
		p.logger.Warn("delete webhook failed", "error", err)
	}
	p.logger.Info("telegram polling started")

	var (
		offset  int64
		backoff = p.backoff
	)
	for {
		updates, err := p.client.GetUpdates(ctx, offset, p.pollTimeout)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			p.logger.Warn("get updates failed", "error", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxPollBackoff)
			continue
		}
		backoff = p.backoff
		for _, update := range updates {
			offset = update.UpdateID + 1
			if err := p.dispatcher.Dispatch(ctx, update); err != nil {
				p.logger.Error("dispatch update failed", "update_id", update.UpdateID, "error", err)
			}
		}
	}
}
