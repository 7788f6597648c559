package presence

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"housie/internal/domain"
)

const (
	onlineKeyPrefix   = "presence:"
	lastSeenKeyPrefix = "presence:last_seen:"
	onlineSetKey      = "presence:online"
	connsKeyPrefix    = "presence:conns:"
)

// detachScript decrements the attachment count and drops the key once it
// reaches zero, so a concurrent Attach is never lost.
var detachScript = redis.NewScript(`
local n = redis.call('DECR', KEYS[1])
if n <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
end
return n
`)

// RedisStore keeps one expiring key per online user plus a sorted set of
// heartbeats the sweeper scans. last_seen survives the online key. The
// conns key counts instances holding sockets for the user.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) MarkOnline(ctx context.Context, userID int64, now time.Time) (bool, error) {
	stamp := now.UTC().Format(time.RFC3339Nano)
	var existed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		existed = p.Exists(ctx, onlineKey(userID))
		p.Set(ctx, onlineKey(userID), stamp, s.ttl)
		p.Set(ctx, lastSeenKey(userID), stamp, 0)
		p.ZAdd(ctx, onlineSetKey, redis.Z{Score: float64(now.Unix()), Member: userID})
		p.Expire(ctx, connsKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to set presence: %w", err)
	}
	return existed.Val() == 0, nil
}

// Attach registers one more instance holding sockets for the user.
func (s *RedisStore) Attach(ctx context.Context, userID int64) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, connsKey(userID))
		p.Expire(ctx, connsKey(userID), s.ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to attach connection: %w", err)
	}
	return incr.Val(), nil
}

// Detach releases one attachment and returns how many remain.
func (s *RedisStore) Detach(ctx context.Context, userID int64) (int64, error) {
	n, err := detachScript.Run(ctx, s.client, []string{connsKey(userID)}).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to detach connection: %w", err)
	}
	return n, nil
}

func (s *RedisStore) MarkOffline(ctx context.Context, userID int64, now time.Time) error {
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, onlineKey(userID), connsKey(userID))
		p.Set(ctx, lastSeenKey(userID), now.UTC().Format(time.RFC3339Nano), 0)
		p.ZRem(ctx, onlineSetKey, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to clear presence: %w", err)
	}
	return nil
}

// Snapshot reads online and last-seen keys for every user in one MGET.
func (s *RedisStore) Snapshot(ctx context.Context, userIDs []int64, _ time.Time) (map[int64]domain.UserPresence, error) {
	out := make(map[int64]domain.UserPresence, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	keys := make([]string, 0, 2*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, onlineKey(id))
	}
	for _, id := range userIDs {
		keys = append(keys, lastSeenKey(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bulk presence: %w", err)
	}

	n := len(userIDs)
	for i, id := range userIDs {
		p := offline(id, parseStamp(values[n+i]))
		if online := parseStamp(values[i]); !online.IsZero() {
			p.IsOnline = true
			p.LastSeen = online
		}
		out[id] = p
	}
	return out, nil
}

func (s *RedisStore) SweepStale(ctx context.Context, now time.Time) ([]int64, error) {
	cutoff := strconv.FormatInt(now.Add(-s.ttl).Unix(), 10)
	members, err := s.client.ZRangeByScore(ctx, onlineSetKey, &redis.ZRangeBy{Min: "-inf", Max: "(" + cutoff}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan presence: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(members))
	remove := make([]any, 0, len(members))
	conns := make([]string, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		remove = append(remove, m)
		conns = append(conns, connsKey(id))
	}
	_, err = s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRem(ctx, onlineSetKey, remove...)
		if len(conns) > 0 {
			p.Del(ctx, conns...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to sweep presence: %w", err)
	}
	return ids, nil
}

func parseStamp(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func onlineKey(userID int64) string {
	return onlineKeyPrefix + strconv.FormatInt(userID, 10)
}

func lastSeenKey(userID int64) string {
	return lastSeenKeyPrefix + strconv.FormatInt(userID, 10)
}

func connsKey(userID int64) string {
	return connsKeyPrefix + strconv.FormatInt(userID, 10)
}
