package abcookie

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/brendadeeznuts1111/abcookie/sign"
)

// Config defines a public type used by abcookie APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cookie    CookieConfig
	Signer    SignerConfig
	Bucketing BucketingConfig
	Overrides OverridesConfig
	Cache     CacheConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by abcookie APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	// NamePrefix names the default-experiment cookie; experiment cookies
	// append "_{experimentID}" so multiple experiments coexist.
	NamePrefix  string
	Path        string
	Domain      string
	ExpiresDays int
	Secure      bool
	HTTPOnly    bool
	SameSite    http.SameSite
	// FreshnessWindow bounds how old a payload timestamp may be at
	// validation time. Zero means ExpiresDays converted to a duration.
	FreshnessWindow time.Duration
}

/*
====================================
SIGNER CONFIG
====================================
*/

// SignerConfig defines a public type used by abcookie APIs.
//
// SignerConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SignerConfig struct {
	// Secret is the HMAC key. Owned by the deploying service, loaded once
	// at process start, never logged and never embedded in payloads.
	Secret []byte
	// TruncationLen is the signature length in hex characters. Zero means
	// [sign.DefaultTruncationLen] (64 bits) — see that constant for the
	// documented security/size trade-off.
	TruncationLen int
}

/*
====================================
BUCKETING CONFIG
====================================
*/

// BucketingConfig defines a public type used by abcookie APIs.
//
// BucketingConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BucketingConfig struct {
	// Variants is the closed label set. Nil means {"A", "B"}. The first
	// label is the control arm that kill switches force.
	Variants []string
}

/*
====================================
OVERRIDES CONFIG
====================================
*/

// OverridesConfig defines a public type used by abcookie APIs.
//
// OverridesConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type OverridesConfig struct {
	Enabled     bool
	RedisPrefix string
	// TTL bounds how long a forced variant or kill switch persists.
	TTL time.Duration
}

// CacheConfig defines a public type used by abcookie APIs.
//
// CacheConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CacheConfig struct {
	LRUEnabled bool
	Size       int
}

// AuditConfig defines a public type used by abcookie APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by abcookie APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. The signing secret is
// deliberately absent: Build fails without one unless the insecure dev path
// is taken explicitly.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			NamePrefix:  "abvar",
			Path:        "/",
			ExpiresDays: 30,
			Secure:      true,
			HTTPOnly:    true,
			SameSite:    http.SameSiteLaxMode,
		},
		Signer: SignerConfig{
			TruncationLen: sign.DefaultTruncationLen,
		},
		Bucketing: BucketingConfig{
			Variants: nil, // bucket.DefaultVariants
		},
		Overrides: OverridesConfig{
			Enabled:     false,
			RedisPrefix: "abov",
			TTL:         30 * 24 * time.Hour,
		},
		Cache: CacheConfig{
			LRUEnabled: false,
			Size:       10000,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Signer.Secret = cloneBytes(cfg.Signer.Secret)
	if cfg.Bucketing.Variants != nil {
		out.Bucketing.Variants = make([]string, len(cfg.Bucketing.Variants))
		copy(out.Bucketing.Variants, cfg.Bucketing.Variants)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation fails.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A missing or weak secret is fatal here rather than degraded: operating
// with a forgeable key silently produces forgeable cookies.
func (c *Config) Validate() error {
	// Cookie
	if c.Cookie.NamePrefix == "" {
		return errors.New("Cookie NamePrefix must not be empty")
	}
	if !validCookieName(c.Cookie.NamePrefix) {
		return errors.New("Cookie NamePrefix contains characters not allowed in cookie names")
	}
	if strings.Contains(c.Cookie.NamePrefix, "_") {
		return errors.New("Cookie NamePrefix must not contain '_' (reserved for experiment suffixes)")
	}
	if c.Cookie.Path == "" {
		return errors.New("Cookie Path must not be empty")
	}
	if c.Cookie.ExpiresDays <= 0 {
		return errors.New("Cookie ExpiresDays must be > 0")
	}
	if c.Cookie.FreshnessWindow < 0 {
		return errors.New("Cookie FreshnessWindow must be >= 0")
	}
	switch c.Cookie.SameSite {
	case http.SameSiteDefaultMode, http.SameSiteLaxMode, http.SameSiteStrictMode:
		// valid
	case http.SameSiteNoneMode:
		if !c.Cookie.Secure {
			return errors.New("Cookie SameSite=None requires Secure")
		}
	default:
		return errors.New("Cookie SameSite mode is invalid")
	}

	// Signer
	if len(c.Signer.Secret) == 0 {
		return ErrSecretMissing
	}
	if len(c.Signer.Secret) < sign.MinSecretLen {
		return ErrSecretTooShort
	}
	if c.Signer.TruncationLen != 0 && (c.Signer.TruncationLen < 8 || c.Signer.TruncationLen > 64) {
		return errors.New("Signer TruncationLen must be between 8 and 64 hex characters")
	}

	// Bucketing
	if c.Bucketing.Variants != nil {
		if len(c.Bucketing.Variants) == 0 {
			return errors.New("Bucketing Variants must not be empty when set")
		}
		seen := make(map[string]struct{}, len(c.Bucketing.Variants))
		for _, v := range c.Bucketing.Variants {
			if v == "" {
				return errors.New("Bucketing Variants must not contain empty labels")
			}
			if _, dup := seen[v]; dup {
				return errors.New("Bucketing Variants must not contain duplicate labels")
			}
			seen[v] = struct{}{}
		}
	}

	// Overrides
	if c.Overrides.Enabled {
		if c.Overrides.RedisPrefix == "" {
			return errors.New("Overrides RedisPrefix must not be empty when overrides are enabled")
		}
		if c.Overrides.TTL <= 0 {
			return errors.New("Overrides TTL must be > 0 when overrides are enabled")
		}
	}

	// Cache
	if c.Cache.LRUEnabled && c.Cache.Size <= 0 {
		return errors.New("Cache Size must be > 0 when LRUEnabled is true")
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	return nil
}

func (c *Config) freshnessWindow() time.Duration {
	if c.Cookie.FreshnessWindow > 0 {
		return c.Cookie.FreshnessWindow
	}
	return time.Duration(c.Cookie.ExpiresDays) * 24 * time.Hour
}

// validCookieName reports whether s is a valid RFC 6265 cookie-name token.
func validCookieName(s string) bool {
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '!' || b == '#' || b == '$' || b == '%' || b == '&' ||
			b == '\'' || b == '*' || b == '+' || b == '-' || b == '.' ||
			b == '^' || b == '_' || b == '`' || b == '|' || b == '~':
		default:
			return false
		}
	}
	return len(s) > 0
}
