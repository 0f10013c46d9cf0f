package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	domainGating "github.com/AzielCF/az-digest/domains/gating"
	"github.com/AzielCF/az-digest/pkg/textnorm"
)

const (
	// fingerprintChars caps the normalized text used for the cache key.
	fingerprintChars = 4096
	// classifierChars caps the original text sent to the relevance model.
	classifierChars = 8000
)

// keywordMatcher pairs a normalized token with its compiled whole-word
// pattern. A nil pattern means the token degraded to plain substring search.
type keywordMatcher struct {
	token   string
	pattern *regexp.Regexp
}

type gatingService struct {
	settings   domainGating.Settings
	cache      domainGating.DecisionCache
	classifier domainGating.Classifier
	matchers   []keywordMatcher
}

// NewGatingService builds the gating engine. The cache may be nil when
// caching is disabled (TTL <= 0); the classifier may be nil when model-based
// gating is not configured.
func NewGatingService(settings domainGating.Settings, cache domainGating.DecisionCache, classifier domainGating.Classifier) domainGating.IGatingUsecase {
	if !settings.Enabled {
		logrus.Warn("[GATING] Content gating is DISABLED. Set GATING_ENABLED=true to enable filtering.")
	}

	return &gatingService{
		settings:   settings,
		cache:      cache,
		classifier: classifier,
		matchers:   compileMatchers(settings.Keywords),
	}
}

// compileMatchers normalizes, dedupes (keeping first-seen order) and compiles
// the configured keywords.
func compileMatchers(keywords []string) []keywordMatcher {
	seen := make(map[string]bool, len(keywords))
	matchers := make([]keywordMatcher, 0, len(keywords))

	for _, kw := range keywords {
		token := textnorm.Normalize(strings.TrimSpace(kw))
		if token == "" || seen[token] {
			continue
		}
		seen[token] = true

		m := keywordMatcher{token: token}
		pattern, err := regexp.Compile(`\b` + regexp.QuoteMeta(token) + `\b`)
		if err != nil {
			// Degrade this keyword to substring matching instead of
			// aborting the whole scan.
			logrus.WithError(err).Warnf("[GATING] keyword %q fell back to substring matching", token)
		} else {
			m.pattern = pattern
		}
		matchers = append(matchers, m)
	}
	return matchers
}

func (s *gatingService) Decide(ctx context.Context, text string) domainGating.Decision {
	if text == "" {
		// Nothing to gate.
		return allowAll()
	}
	if !s.settings.Enabled {
		return allowAll()
	}

	normalized := textnorm.Normalize(text)
	fp := fingerprint(normalized)
	useCache := s.settings.CacheTTL > 0 && s.cache != nil

	if useCache {
		entry, err := s.cache.Get(ctx, fp)
		if err != nil {
			logrus.WithError(err).Warn("[GATING] cache lookup failed")
		} else if entry != nil {
			return domainGating.Decision{Allowed: entry.Allowed, Matches: copyMatches(entry.Matches)}
		}
	}

	if s.settings.Strategy == domainGating.StrategyModel && s.settings.ModelGating && s.classifier != nil {
		switch s.classifier.Classify(ctx, textnorm.Truncate(text, classifierChars)) {
		case domainGating.VerdictAllow:
			logrus.Info("[GATING] model verdict: allow")
			s.store(ctx, fp, true, nil, useCache)
			return allowAll()
		case domainGating.VerdictDeny:
			logrus.Info("[GATING] model verdict: deny")
			s.store(ctx, fp, false, nil, useCache)
			return domainGating.Decision{Allowed: false, Matches: []string{}}
		default:
			if !s.settings.FallbackToKeywords {
				// Indeterminate and no keyword fallback: configured
				// default, never cached.
				return domainGating.Decision{Allowed: s.settings.DefaultOnError, Matches: []string{}}
			}
		}
	}

	if s.settings.Strategy != domainGating.StrategyKeywords && s.settings.Strategy != domainGating.StrategyModel {
		logrus.Warnf("[GATING] unsupported strategy %q, defaulting to allow", s.settings.Strategy)
		return allowAll()
	}

	decision := s.keywordDecision(normalized)
	s.store(ctx, fp, decision.Allowed, decision.Matches, useCache)

	if decision.Allowed {
		logrus.Infof("[GATING] allow: keywords matched %v", decision.Matches)
	} else {
		logrus.Info("[GATING] deny")
	}
	return decision
}

// keywordDecision runs the keyword scan and match-mode evaluation. Any panic
// inside the scan resolves to the configured default instead of crashing the
// publisher batch.
func (s *gatingService) keywordDecision(normalized string) (decision domainGating.Decision) {
	defer func() {
		if r := recover(); r != nil {
			logrus.Errorf("[GATING] keyword evaluation panicked: %v", r)
			decision = domainGating.Decision{Allowed: s.settings.DefaultOnError, Matches: []string{}}
		}
	}()

	matches := s.findMatches(normalized)
	return domainGating.Decision{Allowed: s.evaluateMatches(matches), Matches: matches}
}

// findMatches collects matched keywords in configured order, one entry per
// keyword regardless of how often it occurs.
func (s *gatingService) findMatches(normalized string) []string {
	matches := []string{}
	for _, m := range s.matchers {
		if m.pattern != nil {
			if m.pattern.MatchString(normalized) {
				matches = append(matches, m.token)
			}
		} else if strings.Contains(normalized, m.token) {
			matches = append(matches, m.token)
		}
	}
	return matches
}

func (s *gatingService) evaluateMatches(matches []string) bool {
	if len(s.matchers) == 0 {
		logrus.Warn("[GATING] keyword list is empty, defaulting to allow")
		return true
	}

	switch s.settings.MatchMode {
	case domainGating.MatchModeAllowIfAny:
		return len(matches) > 0
	case domainGating.MatchModeDenyIfAny:
		return len(matches) == 0
	default:
		logrus.Warnf("[GATING] unknown match mode %q, defaulting to allow", s.settings.MatchMode)
		return true
	}
}

func (s *gatingService) store(ctx context.Context, fp string, allowed bool, matches []string, useCache bool) {
	if !useCache {
		return
	}
	entry := &domainGating.CacheEntry{Allowed: allowed, Matches: matches}
	if err := s.cache.Save(ctx, fp, entry, s.settings.CacheTTL); err != nil {
		logrus.WithError(err).Warn("[GATING] cache save failed")
	}
}

func fingerprint(normalized string) string {
	sum := sha256.Sum256([]byte(textnorm.Truncate(normalized, fingerprintChars)))
	return hex.EncodeToString(sum[:])
}

func allowAll() domainGating.Decision {
	return domainGating.Decision{Allowed: true, Matches: []string{}}
}

func copyMatches(matches []string) []string {
	out := make([]string, len(matches))
	copy(out, matches)
	return out
}
