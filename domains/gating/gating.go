package gating

import (
	"context"
	"time"
)

type Strategy string

const (
	StrategyKeywords Strategy = "keywords"
	StrategyModel    Strategy = "model"
)

type MatchMode string

const (
	MatchModeAllowIfAny MatchMode = "allow_if_any"
	MatchModeDenyIfAny  MatchMode = "deny_if_any"
)

// Verdict is the three-valued answer from the remote relevance classifier.
type Verdict int

const (
	VerdictIndeterminate Verdict = iota
	VerdictAllow
	VerdictDeny
)

// DecideRequest is the REST payload for an ad-hoc gating check.
type DecideRequest struct {
	Text string `json:"text"`
}

// Decision is the outcome of gating a single text.
type Decision struct {
	Allowed bool     `json:"allowed"`
	Matches []string `json:"matches"`
}

// Settings is read-only after startup; the engine never mutates it.
type Settings struct {
	Enabled            bool
	Strategy           Strategy
	MatchMode          MatchMode
	Keywords           []string
	DefaultOnError     bool
	CacheTTL           time.Duration
	ModelGating        bool
	FallbackToKeywords bool
	Model              string
}

// CacheEntry stores a past decision keyed by content fingerprint. The matched
// keywords are kept alongside the boolean so cache hits can return them.
type CacheEntry struct {
	Allowed   bool      `json:"allowed"`
	Matches   []string  `json:"matches,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DecisionCache is the TTL-bounded store shared across concurrent Decide calls.
// Get returns (nil, nil) for a missing or expired entry.
type DecisionCache interface {
	Get(ctx context.Context, fingerprint string) (*CacheEntry, error)
	Save(ctx context.Context, fingerprint string, entry *CacheEntry, ttl time.Duration) error
	Delete(ctx context.Context, fingerprint string) error
}

// Classifier asks a remote model whether a text is relevant. Implementations
// must absorb every transport/parse failure into VerdictIndeterminate.
type Classifier interface {
	Classify(ctx context.Context, text string) Verdict
}

type IGatingUsecase interface {
	Decide(ctx context.Context, text string) Decision
}
