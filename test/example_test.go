package test

import (
	"context"

	abcookie "github.com/brendadeeznuts1111/abcookie"
	"github.com/redis/go-redis/v9"
)

// ExampleNew demonstrates manager construction with production-style dependencies.
func ExampleNew() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	cfg := abcookie.DefaultConfig()
	cfg.Signer.Secret = []byte("replace-with-a-32-byte-app-secret")
	cfg.Overrides.Enabled = true

	manager, _ := abcookie.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	_ = manager
}

// ExampleManager_AssignVariant shows a typical assignment call and structured error handling.
func ExampleManager_AssignVariant() {
	var manager *abcookie.Manager
	assignment, err := manager.AssignVariant(context.Background(), "user123", "landing")
	if err != nil {
		_ = err
	}
	_ = assignment.Variant
}

// ExampleManager_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleManager_MetricsSnapshot() {
	var manager *abcookie.Manager
	snapshot := manager.MetricsSnapshot()
	_ = snapshot
}
