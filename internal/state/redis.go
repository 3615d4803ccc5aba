package state

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"zns/pkg/platform/sentinel"
)

const (
	defaultRedisPrefix = "zns:state:"
	defaultEventStream = "zns:events"
)

// RedisStore keeps state entries as plain Redis strings. Batches are applied
// in a MULTI/EXEC pipeline together with XADDs of their events to a stream.
type RedisStore struct {
	client       redis.UniversalClient
	prefix       string
	stream       string
	streamMaxLen int64
}

// RedisOption configures the RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix namespaces every key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		s.prefix = prefix
	}
}

// WithEventStream sets the stream committed events are appended to. An
// empty name disables the stream.
func WithEventStream(stream string, maxLen int64) RedisOption {
	return func(s *RedisStore) {
		s.stream = stream
		s.streamMaxLen = maxLen
	}
}

// NewRedisStore creates a Redis backend.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{
		client: client,
		prefix: defaultRedisPrefix,
		stream: defaultEventStream,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(k []byte) string {
	return s.prefix + hex.EncodeToString(k)
}

func (s *RedisStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read state entry: %v", sentinel.ErrUnavailable, err)
	}
	return v, nil
}

func (s *RedisStore) Commit(ctx context.Context, batch *Batch) error {
	payloads := make([]string, 0, len(batch.Events))
	if s.stream != "" {
		for _, evt := range batch.Events {
			raw, err := json.Marshal(evt)
			if err != nil {
				return fmt.Errorf("encode event %s: %w", evt.Type, err)
			}
			payloads = append(payloads, string(raw))
		}
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, m := range batch.Mutations {
			if m.Delete {
				pipe.Del(ctx, s.key(m.Key))
				continue
			}
			pipe.Set(ctx, s.key(m.Key), m.Value, 0)
		}
		for i, evt := range batch.Events {
			if s.stream == "" {
				break
			}
			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: s.stream,
				MaxLen: s.streamMaxLen,
				Approx: s.streamMaxLen > 0,
				Values: map[string]any{
					"id":    evt.ID.String(),
					"type":  string(evt.Type),
					"event": payloads[i],
				},
			})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: commit state pipeline: %v", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Health checks the Redis connection.
func (s *RedisStore) Health(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
