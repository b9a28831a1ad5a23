//go:build integration
// +build integration

package test

import (
	"testing"

	abcookie "github.com/brendadeeznuts1111/abcookie"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var integrationSecret = []byte("0123456789abcdef0123456789abcdef")

func newIntegrationManager(t *testing.T) (*abcookie.Manager, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := abcookie.DefaultConfig()
	cfg.Signer.Secret = integrationSecret
	cfg.Overrides.Enabled = true
	cfg.Cache.LRUEnabled = true
	cfg.Metrics.Enabled = true

	manager, err := abcookie.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("manager build failed: %v", err)
	}

	return manager, mr, func() {
		manager.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
