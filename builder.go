package abcookie

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/brendadeeznuts1111/abcookie/bucket"
	"github.com/brendadeeznuts1111/abcookie/internal/lru"
	"github.com/brendadeeznuts1111/abcookie/overrides"
	"github.com/brendadeeznuts1111/abcookie/sign"
	"github.com/brendadeeznuts1111/abcookie/token"
)

// insecureDevSecret is only handed out through InsecureDevSecret. It must
// never become a silent default.
var insecureDevSecret = []byte("abcookie-insecure-dev-secret-0123456789")

// Builder defines a public type used by abcookie APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	auditSink AuditSink
	cache     Cache
	clock     func() time.Time

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithCache describes the withcache operation and its observable behavior.
//
// WithCache may return an error when input validation, dependency calls, or security checks fail.
// WithCache does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCache(cache Cache) *Builder {
	b.cache = cache
	return b
}

// WithClock describes the withclock operation and its observable behavior.
//
// WithClock may return an error when input validation, dependency calls, or security checks fail.
// WithClock does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithClock(clock func() time.Time) *Builder {
	b.clock = clock
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// InsecureDevSecret wires a fixed, publicly known signing secret. It exists
// so examples and local development do not need key management. Any
// production deployment using it is trivially forgeable.
func (b *Builder) InsecureDevSecret() *Builder {
	b.config.Signer.Secret = cloneBytes(insecureDevSecret)
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Overrides.Enabled && b.redis == nil {
		return nil, ErrOverridesRequireRedis
	}

	signer, err := sign.New(cfg.Signer.Secret, cfg.Signer.TruncationLen)
	if err != nil {
		return nil, err
	}

	variants := cfg.Bucketing.Variants
	if variants == nil {
		variants = bucket.DefaultVariants
	}
	buckets, err := bucket.New(variants)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		config:  cloneConfig(cfg),
		signer:  signer,
		buckets: buckets,
		clock:   b.clock,
	}
	if manager.clock == nil {
		manager.clock = time.Now
	}

	if cfg.Overrides.Enabled {
		manager.overrides = overrides.NewStore(b.redis, cfg.Overrides.RedisPrefix, cfg.Overrides.TTL)
	}

	manager.cache = b.cache
	if manager.cache == nil && cfg.Cache.LRUEnabled {
		manager.cache = lru.New(cfg.Cache.Size)
	}

	manager.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	manager.metrics = NewMetrics(cfg.Metrics)

	tm, err := token.NewManager(token.Config{
		Secret: cloneBytes(cfg.Signer.Secret),
		TTL:    cfg.freshnessWindow(),
		Issuer: "abcookie",
	})
	if err != nil {
		return nil, err
	}
	manager.tokens = tm

	b.built = true

	return manager, nil
}
