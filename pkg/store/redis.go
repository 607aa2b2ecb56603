package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/soundchunk/pkg/cache"
	"github.com/matzehuels/soundchunk/pkg/chunk"
)

// Redis stores each graph as a JSON string under "<prefix>graph:<id>" and
// tracks ids in the set "<prefix>graphs".
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to url and pings it, retrying transient failures.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	err = cache.RetryWithBackoff(ctx, func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			return cache.Retryable(fmt.Errorf("%w: ping redis: %v", cache.ErrNetwork, err))
		}
		return nil
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return NewRedisFromClient(client, prefix), nil
}

// NewRedisFromClient wraps an existing client and takes ownership of it.
func NewRedisFromClient(client *redis.Client, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (s *Redis) key(id string) string { return s.prefix + "graph:" + id }
func (s *Redis) index() string        { return s.prefix + "graphs" }

func (s *Redis) Get(ctx context.Context, id string) (Record, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: redis get: %v", cache.ErrNetwork, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode graph %s: %w", id, err)
	}
	return rec, nil
}

func (s *Redis) Put(ctx context.Context, rec Record) (Record, error) {
	return s.update(ctx, rec.ID, func(prev Record, _ bool) (Record, error) {
		rec.Revision = prev.Revision + 1
		rec.UpdatedAt = now()
		return rec, nil
	})
}

func (s *Redis) UpdateEdges(ctx context.Context, id string, edges []chunk.Edge) (Record, error) {
	return s.update(ctx, id, func(rec Record, found bool) (Record, error) {
		if !found {
			return Record{}, ErrNotFound
		}
		rec.Graph = rec.Graph.WithEdges(edges)
		rec.Revision++
		rec.UpdatedAt = now()
		return rec, nil
	})
}

// maxTxRetries bounds how often update re-runs after a concurrent write to
// the same key aborted its transaction.
const maxTxRetries = 1000

// update runs a read-modify-write on one graph under WATCH. fn sees the
// stored record and whether it existed; the write only commits if the key
// did not change in between, otherwise the whole step is retried.
func (s *Redis) update(ctx context.Context, id string, fn func(prev Record, found bool) (Record, error)) (Record, error) {
	key := s.key(id)
	var (
		out     Record
		entered bool
	)
	txf := func(tx *redis.Tx) error {
		entered = true
		var prev Record
		found := true
		data, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			found = false
		case err != nil:
			return fmt.Errorf("%w: redis get: %v", cache.ErrNetwork, err)
		default:
			if err := json.Unmarshal(data, &prev); err != nil {
				return fmt.Errorf("decode graph %s: %w", id, err)
			}
		}

		rec, err := fn(prev, found)
		if err != nil {
			return err
		}
		enc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode graph %s: %w", id, err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, enc, 0)
			p.SAdd(ctx, s.index(), id)
			return nil
		})
		if errors.Is(err, redis.TxFailedErr) {
			return err
		}
		if err != nil {
			return fmt.Errorf("%w: redis write: %v", cache.ErrNetwork, err)
		}
		out = rec
		return nil
	}

	for range maxTxRetries {
		entered = false
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			return out, nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case !entered:
			return Record{}, fmt.Errorf("%w: redis watch: %v", cache.ErrNetwork, err)
		default:
			return Record{}, err
		}
	}
	return Record{}, fmt.Errorf("%w: redis write %s: too many concurrent updates", cache.ErrNetwork, id)
}

func (s *Redis) Delete(ctx context.Context, id string) error {
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("%w: redis del: %v", cache.ErrNetwork, err)
	}
	s.client.SRem(ctx, s.index(), id)
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Redis) List(ctx context.Context) ([]Record, error) {
	ids, err := s.client.SMembers(ctx, s.index()).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: redis smembers: %v", cache.ErrNetwork, err)
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	sortRecords(out)
	return out, nil
}

func (s *Redis) Close() error { return s.client.Close() }

var _ Store = (*Redis)(nil)
