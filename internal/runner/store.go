package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// jobTTL bounds how long finished run jobs linger in redis.
const jobTTL = 24 * time.Hour

// RedisJobStore keeps run jobs in redis so results survive handler
// lifecycles and can be polled by the client.
type RedisJobStore struct {
	client *redis.Client
	prefix string
}

func NewRedisJobStore(client *redis.Client) *RedisJobStore {
	return &RedisJobStore{client: client, prefix: "runjob:"}
}

func (s *RedisJobStore) Save(ctx context.Context, job Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal run job: %w", err)
	}
	if err := s.client.Set(ctx, s.key(job.ID), data, jobTTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisJobStore) Get(ctx context.Context, id string) (Job, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Job{}, ErrJobNotFound
		}
		return Job{}, fmt.Errorf("redis get: %w", err)
	}

	var job Job
	if err := json.Unmarshal(raw, &job); err != nil {
		return Job{}, fmt.Errorf("unmarshal run job: %w", err)
	}
	return job, nil
}

func (s *RedisJobStore) key(id string) string {
	return s.prefix + id
}
