package bot

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// Service turns chat messages into replies.
type Service interface {
	Handle(ctx context.Context, msg Message) (Reply, bool)
}

type service struct {
	cfg    Config
	qa     qa.Service
	logger *slog.Logger
}

// NewService builds the chat front of the Q&A service.
func NewService(cfg Config, qaSvc qa.Service, logger *slog.Logger) Service {
	return &service{cfg: cfg, qa: qaSvc, logger: logger.With("component", "bot.service")}
}

// Handle returns false when the message needs no reply.
func (s *service) Handle(ctx context.Context, msg Message) (Reply, bool) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return Reply{}, false
	}

	if strings.HasPrefix(text, "/") {
		switch command(text) {
		case "start":
			return Reply{ChatID: msg.ChatID, Text: s.greeting()}, true
		case "help":
			return Reply{ChatID: msg.ChatID, Text: s.cfg.Help}, true
		default:
			return Reply{}, false
		}
	}

	s.logger.Info("message received", "chat_id", msg.ChatID, "user_id", msg.UserID)
	resp, err := s.qa.Answer(ctx, qa.Request{Question: text})
	if err != nil {
		s.logger.Error("answer failed", "chat_id", msg.ChatID, "error", err)
		return Reply{ChatID: msg.ChatID, Text: s.cfg.ErrorReply}, true
	}
	return Reply{ChatID: msg.ChatID, Text: resp.Answer}, true
}

func (s *service) greeting() string {
	if s.cfg.CreatorLabel == "" {
		return s.cfg.Greeting
	}
	return s.cfg.Greeting + "\n\n" + s.cfg.CreatorLabel
}

// command extracts "start" from "/start@SomeBot extra args".
func command(text string) string {
	name := strings.Fields(text)[0]
	name = strings.TrimPrefix(name, "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	return strings.ToLower(name)
}
