package abcookie

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func validTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Signer.Secret = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with secret valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "empty prefix invalid",
			mutate: func(c *Config) {
				c.Cookie.NamePrefix = ""
			},
			wantValid: false,
		},
		{
			name: "prefix with separator invalid",
			mutate: func(c *Config) {
				c.Cookie.NamePrefix = "ab_var"
			},
			wantValid: false,
		},
		{
			name: "prefix with semicolon invalid",
			mutate: func(c *Config) {
				c.Cookie.NamePrefix = "ab;var"
			},
			wantValid: false,
		},
		{
			name: "empty path invalid",
			mutate: func(c *Config) {
				c.Cookie.Path = ""
			},
			wantValid: false,
		},
		{
			name: "zero expiry invalid",
			mutate: func(c *Config) {
				c.Cookie.ExpiresDays = 0
			},
			wantValid: false,
		},
		{
			name: "negative freshness window invalid",
			mutate: func(c *Config) {
				c.Cookie.FreshnessWindow = -time.Hour
			},
			wantValid: false,
		},
		{
			name: "samesite none without secure invalid",
			mutate: func(c *Config) {
				c.Cookie.SameSite = http.SameSiteNoneMode
				c.Cookie.Secure = false
			},
			wantValid: false,
		},
		{
			name: "samesite none with secure valid",
			mutate: func(c *Config) {
				c.Cookie.SameSite = http.SameSiteNoneMode
				c.Cookie.Secure = true
			},
			wantValid: true,
		},
		{
			name: "truncation below minimum invalid",
			mutate: func(c *Config) {
				c.Signer.TruncationLen = 4
			},
			wantValid: false,
		},
		{
			name: "truncation above digest invalid",
			mutate: func(c *Config) {
				c.Signer.TruncationLen = 100
			},
			wantValid: false,
		},
		{
			name: "truncation full digest valid",
			mutate: func(c *Config) {
				c.Signer.TruncationLen = 64
			},
			wantValid: true,
		},
		{
			name: "custom variants valid",
			mutate: func(c *Config) {
				c.Bucketing.Variants = []string{"control", "blue", "green"}
			},
			wantValid: true,
		},
		{
			name: "empty variant label invalid",
			mutate: func(c *Config) {
				c.Bucketing.Variants = []string{"A", ""}
			},
			wantValid: false,
		},
		{
			name: "duplicate variant labels invalid",
			mutate: func(c *Config) {
				c.Bucketing.Variants = []string{"A", "B", "A"}
			},
			wantValid: false,
		},
		{
			name: "overrides without prefix invalid",
			mutate: func(c *Config) {
				c.Overrides.Enabled = true
				c.Overrides.RedisPrefix = ""
			},
			wantValid: false,
		},
		{
			name: "overrides without ttl invalid",
			mutate: func(c *Config) {
				c.Overrides.Enabled = true
				c.Overrides.TTL = 0
			},
			wantValid: false,
		},
		{
			name: "cache enabled without size invalid",
			mutate: func(c *Config) {
				c.Cache.LRUEnabled = true
				c.Cache.Size = 0
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer invalid",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validTestConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigValidateSecret(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}

	cfg.Signer.Secret = []byte("too-short")
	if err := cfg.Validate(); !errors.Is(err, ErrSecretTooShort) {
		t.Fatalf("expected ErrSecretTooShort, got %v", err)
	}
}

func TestCloneConfigIsolation(t *testing.T) {
	cfg := validTestConfig()
	cfg.Bucketing.Variants = []string{"A", "B"}

	clone := cloneConfig(cfg)
	clone.Signer.Secret[0] = 'X'
	clone.Bucketing.Variants[0] = "Z"

	if cfg.Signer.Secret[0] == 'X' {
		t.Fatal("secret aliased between clones")
	}
	if cfg.Bucketing.Variants[0] == "Z" {
		t.Fatal("variant slice aliased between clones")
	}
}

func TestFreshnessWindowDefaultsToExpiry(t *testing.T) {
	cfg := validTestConfig()
	cfg.Cookie.ExpiresDays = 7
	if got := cfg.freshnessWindow(); got != 7*24*time.Hour {
		t.Fatalf("window = %v", got)
	}

	cfg.Cookie.FreshnessWindow = time.Hour
	if got := cfg.freshnessWindow(); got != time.Hour {
		t.Fatalf("window = %v", got)
	}
}
