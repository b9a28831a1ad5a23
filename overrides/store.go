package overrides

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the variant cookie engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store keeps operator-set variant overrides and experiment kill switches
// in Redis. Overrides force a specific subject into a specific arm (QA,
// support reproductions); kill switches force every subject of an
// experiment into the control arm. Both expire after the configured TTL so
// a forgotten override cannot skew an experiment forever.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore creates an override [Store] backed by the given Redis client.
func NewStore(redisClient redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	return &Store{
		redis:  redisClient,
		prefix: prefix,
		ttl:    ttl,
	}
}

// SetOverride forces subjectID into variant for the experiment.
func (s *Store) SetOverride(ctx context.Context, experimentID, subjectID, variant string) error {
	if err := s.redis.Set(ctx, s.overrideKey(experimentID, subjectID), variant, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Override returns the forced variant for (experimentID, subjectID).
// A missing key is not an error; it reports found=false.
func (s *Store) Override(ctx context.Context, experimentID, subjectID string) (string, bool, error) {
	variant, err := s.redis.Get(ctx, s.overrideKey(experimentID, subjectID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return variant, true, nil
}

// ClearOverride removes a forced variant. Clearing a missing override is
// not an error.
func (s *Store) ClearOverride(ctx context.Context, experimentID, subjectID string) error {
	if err := s.redis.Del(ctx, s.overrideKey(experimentID, subjectID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// SetKillSwitch forces every subject of the experiment into the control arm.
func (s *Store) SetKillSwitch(ctx context.Context, experimentID string) error {
	if err := s.redis.Set(ctx, s.killKey(experimentID), "1", s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// KillSwitch reports whether the experiment's kill switch is set.
func (s *Store) KillSwitch(ctx context.Context, experimentID string) (bool, error) {
	_, err := s.redis.Get(ctx, s.killKey(experimentID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return true, nil
}

// ClearKillSwitch re-enables the experiment.
func (s *Store) ClearKillSwitch(ctx context.Context, experimentID string) error {
	if err := s.redis.Del(ctx, s.killKey(experimentID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) overrideKey(experimentID, subjectID string) string {
	return s.prefix + ":ov:" + experimentID + ":" + subjectID
}

func (s *Store) killKey(experimentID string) string {
	return s.prefix + ":ks:" + experimentID
}
