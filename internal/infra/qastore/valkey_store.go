package qastore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/iknowall-bot/internal/domain/qa"
)

// ValkeyStore shares the document snapshot and trending counters between
// bot instances through a Valkey-compatible database.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "iknowall"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

// SaveSnapshot stores the snapshot without expiry; it is replaced on every refresh.
func (s *ValkeyStore) SaveSnapshot(ctx context.Context, snapshot qa.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(s.snapshotKey()).Value(string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) LoadSnapshot(ctx context.Context) (qa.Snapshot, bool, error) {
	payload, err := s.client.Do(ctx, s.client.B().Get().Key(s.snapshotKey()).Build()).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return qa.Snapshot{}, false, nil
		}
		return qa.Snapshot{}, false, err
	}
	var snapshot qa.Snapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return qa.Snapshot{}, false, err
	}
	return snapshot, true, nil
}

func (s *ValkeyStore) IncrementQuery(ctx context.Context, canonical, display string) error {
	if canonical == "" {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Zincrby().Key(s.trendingKey()).Increment(1).Member(canonical).Build()).Error(); err != nil {
		return err
	}
	if display == "" {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Set().Key(s.displayKey(canonical)).Value(display).Nx().Build()).Error(); err != nil && !valkey.IsValkeyNil(err) {
		return fmt.Errorf("set display for %q: %w", canonical, err)
	}
	return nil
}

func (s *ValkeyStore) TopQueries(ctx context.Context, limit int) ([]qa.TrendingQuery, error) {
	if limit <= 0 {
		limit = qa.DefaultTrendingLimit
	}
	resp := s.client.Do(ctx, s.client.B().Zrevrange().Key(s.trendingKey()).Start(0).Stop(int64(limit-1)).Withscores().Build())
	arr, err := resp.ToArray()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}
	scored, err := decodeScored(arr)
	if err != nil {
		return nil, err
	}
	out := make([]qa.TrendingQuery, 0, len(scored))
	for _, item := range scored {
		out = append(out, qa.TrendingQuery{Query: s.fetchDisplay(ctx, item.member), Count: int64(item.score)})
	}
	return out, nil
}

type scoredMember struct {
	member string
	score  float64
}

// decodeScored accepts both reply shapes of ZREVRANGE WITHSCORES.
func decodeScored(arr []valkey.ValkeyMessage) ([]scoredMember, error) {
	out := make([]scoredMember, 0, len(arr))
	for i := 0; i < len(arr); {
		var (
			item scoredMember
			err  error
		)
		if tuple, tupleErr := arr[i].ToArray(); tupleErr == nil && len(tuple) == 2 {
			// RESP3 returns [member, score] per element
			if item.member, err = tuple[0].ToString(); err != nil {
				return nil, err
			}
			if item.score, err = tuple[1].ToFloat64(); err != nil {
				return nil, err
			}
			i++
		} else {
			// RESP2 returns a flat alternating array.
			if i+1 >= len(arr) {
				break
			}
			if item.member, err = arr[i].ToString(); err != nil {
				return nil, err
			}
			if item.score, err = arr[i+1].AsFloat64(); err != nil {
				return nil, err
			}
			i += 2
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *ValkeyStore) fetchDisplay(ctx context.Context, canonical string) string {
	display, err := s.client.Do(ctx, s.client.B().Get().Key(s.displayKey(canonical)).Build()).ToString()
	if err != nil || display == "" {
		return canonical
	}
	return display
}

func (s *ValkeyStore) snapshotKey() string {
	return fmt.Sprintf("%s:snapshot", s.prefix)
}

func (s *ValkeyStore) trendingKey() string {
	return fmt.Sprintf("%s:trending", s.prefix)
}

func (s *ValkeyStore) displayKey(canonical string) string {
	return fmt.Sprintf("%s:display:%s", s.prefix, canonical)
}

var _ qa.Store = (*ValkeyStore)(nil)
