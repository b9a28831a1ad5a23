package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	abcookie "github.com/brendadeeznuts1111/abcookie"
)

func main() {
	var (
		subjects     = flag.Int("subjects", 100000, "number of distinct subjects")
		concurrency  = flag.Int("concurrency", 256, "number of concurrent workers")
		ops          = flag.Int("ops", 200000, "operations per phase (assign + validate)")
		redisAddr    = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		useOverrides = flag.Bool("overrides", false, "enable the redis override store during the assign phase")
	)
	flag.Parse()

	if *subjects <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "subjects, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  *redis.Client
	)
	if *useOverrides {
		if addr == "" {
			mr, err := miniredis.Run()
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
				os.Exit(1)
			}
			addr = mr.Addr()
			client = redis.NewClient(&redis.Options{Addr: addr})
			cleanup = func() {
				_ = client.Close()
				mr.Close()
			}
			fmt.Printf("using miniredis at %s\n", addr)
		} else {
			client = redis.NewClient(&redis.Options{Addr: addr})
			cleanup = func() { _ = client.Close() }
			fmt.Printf("using redis at %s\n", addr)
		}
		defer cleanup()
	}

	cfg := abcookie.DefaultConfig()
	cfg.Signer.Secret = []byte("abcookie-loadtest-secret-0123456789abcdef")
	cfg.Overrides.Enabled = *useOverrides
	cfg.Cache.LRUEnabled = *useOverrides
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	builder := abcookie.New().WithConfig(cfg)
	if *useOverrides {
		builder = builder.WithRedis(client)
	}
	manager, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	fmt.Printf("issuing %d cookies...\n", *subjects)
	startSeed := time.Now()
	cookies := make([]string, *subjects)
	for i := 0; i < *subjects; i++ {
		assignment, err := manager.AssignVariant(ctx, subjectID(i), "loadtest")
		if err != nil {
			fmt.Fprintf(os.Stderr, "assign failed: %v\n", err)
			os.Exit(1)
		}
		cookie, err := manager.CreateVariantCookie(ctx, subjectID(i), assignment.Variant, "loadtest")
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue failed: %v\n", err)
			os.Exit(1)
		}
		cookies[i] = cookie.Value
	}
	fmt.Printf("issued in %s\n", time.Since(startSeed).Round(time.Millisecond))

	assignStats := runAssignPhase(ctx, manager, *subjects, *ops, *concurrency)
	validateStats := runValidatePhase(ctx, manager, cookies, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("assign", assignStats)
	printStats("validate", validateStats)

	snap := manager.MetricsSnapshot()
	fmt.Printf("counters: assign=%d issued=%d valid=%d forged=%d\n",
		snap.Counters[abcookie.MetricAssign],
		snap.Counters[abcookie.MetricCookieIssued],
		snap.Counters[abcookie.MetricValidateValid],
		snap.Counters[abcookie.MetricValidateForged],
	)
}

func runAssignPhase(ctx context.Context, manager *abcookie.Manager, subjects, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(subjects)
				t0 := time.Now()
				_, err := manager.AssignVariant(ctx, subjectID(idx), "loadtest")
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runValidatePhase(ctx context.Context, manager *abcookie.Manager, cookies []string, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				idx := r.Intn(len(cookies))
				t0 := time.Now()
				result := manager.ValidateVariant(ctx, cookies[idx], subjectID(idx))
				d := time.Since(t0)
				if !result.Valid {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func subjectID(i int) string {
	return fmt.Sprintf("subject-%d", i)
}
