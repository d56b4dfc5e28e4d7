package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/iknowall-bot/internal/domain/bot"
	tg "github.com/yanqian/iknowall-bot/internal/infra/telegram"
	apperrors "github.com/yanqian/iknowall-bot/pkg/errors"
)

func TestDispatchSendsReply(t *testing.T) {
	sender := &stubSender{}
	d := NewDispatcher(echoBot{}, sender, newTestLogger())

	err := d.Dispatch(context.Background(), textUpdate(1, 42, "hello"))
	require.NoError(t, err)
	require.Equal(t, []sent{{chatID: 42, text: "echo: hello"}}, sender.all())
}

func TestDispatchIgnoresNonTextAndBots(t *testing.T) {
	sender := &stubSender{}
	d := NewDispatcher(echoBot{}, sender, newTestLogger())

	require.NoError(t, d.Dispatch(context.Background(), tg.Update{UpdateID: 1}))
	fromBot := textUpdate(2, 42, "hi")
	fromBot.Message.From.IsBot = true
	require.NoError(t, d.Dispatch(context.Background(), fromBot))
	require.NoError(t, d.Dispatch(context.Background(), textUpdate(3, 42, "/unknown")))
	require.Empty(t, sender.all())
}

func TestDispatchWrapsSendError(t *testing.T) {
	d := NewDispatcher(echoBot{}, &stubSender{err: errors.New("429")}, newTestLogger())

	err := d.Dispatch(context.Background(), textUpdate(1, 42, "hello"))
	require.True(t, apperrors.IsCode(err, apperrors.CodeTelegram))
}

func TestPollerAdvancesOffsetAndRetries(t *testing.T) {
	sender := &stubSender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := &stubUpdatesClient{
		batches: []batch{
			{updates: []tg.Update{textUpdate(5, 1, "a"), textUpdate(6, 1, "b")}},
			{err: errors.New("network down")},
			{updates: []tg.Update{textUpdate(7, 1, "c")}},
		},
		onDrained: cancel,
	}
	poller := NewPoller(client, NewDispatcher(echoBot{}, sender, newTestLogger()), time.Second, newTestLogger())
	poller.backoff = time.Millisecond

	require.NoError(t, poller.Run(ctx))
	require.Equal(t, []int64{0, 7, 7, 8}, client.offsets)
	require.True(t, client.webhookDeleted)
	require.Equal(t, []sent{{1, "echo: a"}, {1, "echo: b"}, {1, "echo: c"}}, sender.all())
}

func textUpdate(id, chatID int64, text string) tg.Update {
	return tg.Update{
		UpdateID: id,
		Message: &tg.Message{
			MessageID: id,
			From:      &tg.User{ID: 9},
			Chat:      tg.Chat{ID: chatID, Type: "private"},
			Text:      text,
		},
	}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type echoBot struct{}

func (echoBot) Handle(_ context.Context, msg bot.Message) (bot.Reply, bool) {
	if msg.Text[0] == '/' {
		return bot.Reply{}, false
	}
	return bot.Reply{ChatID: msg.ChatID, Text: "echo: " + msg.Text}, true
}

type sent struct {
	chatID int64
	text   string
}

type stubSender struct {
	mu   sync.Mutex
	msgs []sent
	err  error
}

func (s *stubSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, sent{chatID: chatID, text: text})
	return nil
}

func (s *stubSender) all() []sent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sent(nil), s.msgs...)
}

type batch struct {
	updates []tg.Update
	err     error
}

type stubUpdatesClient struct {
	batches        []batch
	offsets        []int64
	webhookDeleted bool
	onDrained      func()
}

func (c *stubUpdatesClient) GetUpdates(ctx context.Context, offset int64, _ time.Duration) ([]tg.Update, error) {
	c.offsets = append(c.offsets, offset)
	if len(c.batches) == 0 {
		c.onDrained()
		<-ctx.Done()
		return nil, ctx.Err()
	}
	next := c.batches[0]
	c.batches = c.batches[1:]
	return next.updates, next.err
}

func (c *stubUpdatesClient) DeleteWebhook(context.Context) error {
	c.webhookDeleted = true
	return nil
}
