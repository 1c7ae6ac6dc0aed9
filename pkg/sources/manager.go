package sources

import (
	"context"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/Nyaya-Manch/kanoon-khabar/internal/domain"
	"github.com/Nyaya-Manch/kanoon-khabar/internal/logger"
)

const defaultSourceWeight = 0.5

// Config tunes the manager's fetch behavior.
type Config struct {
	// SourceWeights maps source key to its relative fetch priority.
	// Sources without an entry get defaultSourceWeight.
	SourceWeights map[string]float64
	// FallbackEnabled redistributes a failed source's quota across the
	// remaining sources.
	FallbackEnabled bool
	TimeoutSeconds  int
	RetryAttempts   int
}

// DefaultConfig mirrors the production weights: the proven RSS source leads.
func DefaultConfig() Config {
	return Config{
		SourceWeights: map[string]float64{
			"indian_kanoon_rss": 1.0,
			"livelaw_api":       0.8,
			"bar_bench":         0.7,
		},
		FallbackEnabled: true,
		TimeoutSeconds:  10,
		RetryAttempts:   2,
	}
}

// SourceInfo is the static description of one registered source.
type SourceInfo struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Weight     float64  `json:"weight"`
}

// Manager owns the registered sources, computes the per-source fetch quota
// from configured weights and aggregates results into one ordered list.
// Registration order is significant: integer rounding leaves the last units
// of the quota with earlier-registered sources.
type Manager struct {
	cfg     Config
	keys    []string
	sources map[string]Source
	rng     *rand.Rand
	log     logger.Logger
}

// Option customizes a Manager.
type Option func(*Manager)

// WithRand injects the random source used for the diversity tiebreak so
// callers (and tests) can make the ordering reproducible.
func WithRand(rng *rand.Rand) Option {
	return func(m *Manager) { m.rng = rng }
}

// NewManager builds a manager with no sources registered.
func NewManager(cfg Config, log logger.Logger, opts ...Option) *Manager {
	if cfg.SourceWeights == nil {
		cfg.SourceWeights = make(map[string]float64)
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	m := &Manager{
		cfg:     cfg,
		sources: make(map[string]Source),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AddSource registers a source under key with the given weight. Re-adding an
// existing key replaces the source but keeps its registration position.
func (m *Manager) AddSource(key string, src Source, weight float64) {
	if key == "" || src == nil {
		return
	}
	if _, exists := m.sources[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.sources[key] = src
	if weight > 0 {
		m.cfg.SourceWeights[key] = weight
	}
}

// FetchAllNews fetches up to totalLimit articles across all sources using
// the weighted distribution, newest first with a random tiebreak so
// same-timestamp items from different sources interleave. It never fails:
// source failures shrink the result and, with fallback enabled, hand their
// quota to the remaining sources.
func (m *Manager) FetchAllNews(ctx context.Context, totalLimit int) []domain.Article {
	if totalLimit <= 0 || len(m.keys) == 0 {
		return nil
	}

	distribution := m.calculateDistribution(totalLimit)

	var all []domain.Article
	for _, key := range m.keys {
		quota, ok := distribution[key]
		if !ok {
			continue
		}

		articles, err := m.fetchWithRetry(ctx, m.sources[key], quota)
		switch {
		case err != nil:
			m.log.WarnObj("source fetch failed", "source_error", map[string]any{
				"source": key,
				"quota":  quota,
				"error":  err.Error(),
			})
			m.redistributeQuota(quota, key, distribution)
		case len(articles) == 0:
			// An empty-but-successful fetch wastes its quota the same way a
			// failure does, so it is redistributed too.
			m.log.InfoObj("source returned no articles", "source_empty", map[string]any{
				"source": key,
				"quota":  quota,
			})
			m.redistributeQuota(quota, key, distribution)
		default:
			all = append(all, articles...)
			m.log.DebugObj("source fetch complete", "source_fetch", map[string]any{
				"source": key,
				"count":  len(articles),
			})
		}
	}

	m.sortByRecency(all)
	if len(all) > totalLimit {
		all = all[:totalLimit]
	}
	return all
}

// calculateDistribution allocates totalLimit across the registered sources
// proportionally to their weights. Every source gets at least one slot while
// quota remains, and the aggregate never exceeds totalLimit.
func (m *Manager) calculateDistribution(totalLimit int) map[string]int {
	totalWeight := 0.0
	for _, key := range m.keys {
		totalWeight += m.weightFor(key)
	}
	if totalWeight <= 0 {
		return nil
	}

	distribution := make(map[string]int, len(m.keys))
	remaining := totalLimit

	for _, key := range m.keys {
		proportion := m.weightFor(key) / totalWeight
		allocated := int(math.Max(1, math.Floor(float64(totalLimit)*proportion)))
		if allocated > remaining {
			allocated = remaining
		}
		distribution[key] = allocated
		remaining -= allocated

		if remaining <= 0 {
			break
		}
	}

	m.log.DebugObj("fetch distribution computed", "distribution", map[string]any{
		"total": totalLimit,
		"plan":  distribution,
	})
	return distribution
}

// fetchWithRetry runs one source fetch under the configured per-source
// timeout, retrying transport failures up to RetryAttempts extra times.
func (m *Manager) fetchWithRetry(ctx context.Context, src Source, quota int) ([]domain.Article, error) {
	attempts := m.cfg.RetryAttempts
	if attempts < 0 {
		attempts = 0
	}

	var articles []domain.Article
	var err error
	for attempt := 0; attempt <= attempts; attempt++ {
		articles, err = m.fetchOnce(ctx, src, quota)
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	return articles, err
}

func (m *Manager) fetchOnce(ctx context.Context, src Source, quota int) ([]domain.Article, error) {
	if m.cfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(m.cfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}
	return src.FetchNews(ctx, quota)
}

func (m *Manager) weightFor(key string) float64 {
	if w, ok := m.cfg.SourceWeights[key]; ok && w > 0 {
		return w
	}
	return defaultSourceWeight
}

// redistributeQuota splits a failed source's quota evenly across the other
// sources in the current distribution. Sources fetched after the failure
// pick up their share; the remainder is dropped, and the redistribution is
// never re-triggered recursively.
func (m *Manager) redistributeQuota(failedQuota int, failedKey string, distribution map[string]int) {
	if !m.cfg.FallbackEnabled {
		return
	}

	var healthy []string
	for _, key := range m.keys {
		if key == failedKey {
			continue
		}
		if _, ok := distribution[key]; ok {
			healthy = append(healthy, key)
		}
	}
	if len(healthy) == 0 {
		return
	}

	perSource := failedQuota / len(healthy)
	if perSource == 0 {
		return
	}
	for _, key := range healthy {
		distribution[key] += perSource
	}

	m.log.InfoObj("failed quota redistributed", "quota_redistribution", map[string]any{
		"failed_source": failedKey,
		"per_source":    perSource,
	})
}

// sortByRecency orders articles newest first, breaking timestamp ties with a
// per-call random value so one source's batch does not clump together.
func (m *Manager) sortByRecency(articles []domain.Article) {
	tiebreak := make([]float64, len(articles))
	for i := range tiebreak {
		tiebreak[i] = m.rng.Float64()
	}

	order := make([]int, len(articles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ai, bi := order[a], order[b]
		if !articles[ai].PublishedAt.Equal(articles[bi].PublishedAt) {
			return articles[ai].PublishedAt.After(articles[bi].PublishedAt)
		}
		return tiebreak[ai] > tiebreak[bi]
	})

	sorted := make([]domain.Article, len(articles))
	for i, idx := range order {
		sorted[i] = articles[idx]
	}
	copy(articles, sorted)
}

// FetchFromSource fetches from one source directly. Unknown keys and source
// failures both yield an empty list.
func (m *Manager) FetchFromSource(ctx context.Context, key string, limit int) []domain.Article {
	src, ok := m.sources[key]
	if !ok {
		m.log.WarnObj("unknown source requested", "source_unknown", map[string]any{
			"source": key,
		})
		return nil
	}

	articles, err := m.fetchWithRetry(ctx, src, limit)
	if err != nil {
		m.log.WarnObj("source fetch failed", "source_error", map[string]any{
			"source": key,
			"error":  err.Error(),
		})
		return nil
	}
	return articles
}

// AvailableSources returns the registered source keys in registration order.
func (m *Manager) AvailableSources() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// SourceInfo describes every registered source.
func (m *Manager) SourceInfo() map[string]SourceInfo {
	info := make(map[string]SourceInfo, len(m.keys))
	for _, key := range m.keys {
		src := m.sources[key]
		info[key] = SourceInfo{
			Name:       src.Name(),
			Categories: src.Categories(),
			Weight:     m.weightFor(key),
		}
	}
	return info
}

// HealthCheck probes every source with a single-article fetch. A source is
// healthy iff it returns at least one article without failing.
func (m *Manager) HealthCheck(ctx context.Context) map[string]bool {
	health := make(map[string]bool, len(m.keys))
	for _, key := range m.keys {
		articles, err := m.fetchOnce(ctx, m.sources[key], 1)
		health[key] = err == nil && len(articles) > 0
	}
	return health
}
