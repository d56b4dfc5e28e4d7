package qa

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/iknowall-bot/pkg/errors"
)

// Service answers questions from the cached document.
type Service interface {
	Answer(ctx context.Context, req Request) (Response, error)
	Trending(ctx context.Context) ([]TrendingQuery, error)
	Misses(ctx context.Context, limit int) ([]MissedQuery, error)
	Refresh(ctx context.Context) (Status, error)
	Status(ctx context.Context) Status
}

type service struct {
	cfg      Config
	cache    *Cache
	store    Store
	queryLog QueryLog
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewService wires up the Q&A domain.
func NewService(cfg Config, cache *Cache, store Store, queryLog QueryLog, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		cache:    cache,
		store:    store,
		queryLog: queryLog,
		logger:   logger.With("component", "qa.service"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *service) Answer(ctx context.Context, req Request) (Response, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil)
	}

	resp := Response{Question: question, Mode: MatchModeNone}
	outcome := OutcomeNotFound
	match, found := s.cache.Query(ctx, question)
	switch {
	case found:
		resp.Answer = match.Entry.Answer
		resp.Found = true
		resp.Mode = match.Mode
		resp.MatchedQuestion = match.Entry.Question
		outcome = OutcomeMatched
	case !s.cache.Loaded():
		resp.Answer = s.cfg.UnavailableReply
		outcome = OutcomeUnavailable
	default:
		resp.Answer = s.cfg.DefaultReply
	}

	s.record(ctx, question, outcome, resp)

	if s.cfg.TopRecommendations > 0 {
		recs, err := s.store.TopQueries(ctx, s.cfg.TopRecommendations)
		if err != nil {
			s.logger.Warn("qa trending fetch failed", "error", err)
		}
		resp.Recommendations = recs
	}
	return resp, nil
}

func (s *service) record(ctx context.Context, question, outcome string, resp Response) {
	if resp.Found {
		if err := s.store.IncrementQuery(ctx, resp.MatchedQuestion, question); err != nil {
			s.logger.Warn("qa trending increment failed", "error", err)
		}
	}
	err := s.queryLog.Record(ctx, QueryRecord{
		ID:        s.newID(),
		Query:     normalizeText(question),
		Outcome:   outcome,
		Mode:      resp.Mode,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("qa query log write failed", "error", err)
	}
}

func (s *service) Trending(ctx context.Context) ([]TrendingQuery, error) {
	limit := s.cfg.TopRecommendations
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	recs, err := s.store.TopQueries(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQA, "failed to load trending queries", err)
	}
	return recs, nil
}

func (s *service) Misses(ctx context.Context, limit int) ([]MissedQuery, error) {
	if limit <= 0 {
		limit = 20
	}
	misses, err := s.queryLog.TopMisses(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeQA, "failed to load missed queries", err)
	}
	return misses, nil
}

func (s *service) Refresh(ctx context.Context) (Status, error) {
	if err := s.cache.Refresh(ctx); err != nil {
		return s.cache.Status(), err
	}
	return s.cache.Status(), nil
}

func (s *service) Status(_ context.Context) Status {
	return s.cache.Status()
}
