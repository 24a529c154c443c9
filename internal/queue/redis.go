package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Job is the unit of work carried by the queue. It has no identity beyond the
// URL; duplicates are legal and the worker tolerates them.
type Job struct {
	URL string `json:"url"`
}

// RedisQueue is a durable FIFO backed by a Redis list. Enqueue appends to the
// tail, Dequeue pops the head. The queue is logically unbounded; once a job is
// popped it is gone whether or not the consumer finishes it.
type RedisQueue struct {
	client *redis.Client
	key    string
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, url string) error {
	payload, err := json.Marshal(Job{URL: url})
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	if err := q.client.RPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("rpush: %w", err)
	}
	return nil
}

// Dequeue blocks for up to timeout waiting for a job. An empty queue is not
// an error: it returns (nil, nil). Payloads that fail to decode are dropped
// with a log so one bad entry cannot wedge the consumer.
func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	res, err := q.client.BLPop(ctx, timeout, q.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("blpop: %w", err)
	}

	// BLPOP returns [key, value]
	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		slog.Error("dropping undecodable job payload", "error", err, "payload", res[1])
		return nil, nil
	}
	return &job, nil
}

// Length reports the current queue depth. Advisory only.
func (q *RedisQueue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// IsAvailable pings the transport.
func (q *RedisQueue) IsAvailable(ctx context.Context) bool {
	return q.client.Ping(ctx).Err() == nil
}
