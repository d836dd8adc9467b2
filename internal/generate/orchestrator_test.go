package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"contentgate/internal/cache"
	"contentgate/internal/domain"
	"contentgate/internal/fingerprint"
	imageprovider "contentgate/internal/providers/image"
	"contentgate/internal/quota"
)

type memRepo struct {
	mu      sync.Mutex
	entries map[string]*domain.CacheEntry
	putFail bool
}

func newMemRepo() *memRepo {
	return &memRepo{entries: make(map[string]*domain.CacheEntry)}
}

func (m *memRepo) key(category domain.Category, fp string) string {
	return string(category) + "/" + fp
}

func (m *memRepo) GetAndTouch(ctx context.Context, category domain.Category, fp string) (*domain.CacheEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[m.key(category, fp)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry.UsageCount++
	entry.LastUsedAt = time.Now()
	cp := *entry
	return &cp, nil
}

func (m *memRepo) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putFail {
		return errors.New("disk full")
	}
	cp := *entry
	if existing, ok := m.entries[m.key(entry.Category, entry.Fingerprint)]; ok {
		cp.UsageCount = existing.UsageCount
		cp.CreatedAt = existing.CreatedAt
		if !(existing.PayloadType == domain.PayloadTypeGradient && entry.PayloadType != domain.PayloadTypeGradient) {
			cp.Payload = existing.Payload
			cp.PayloadType = existing.PayloadType
			cp.EffectID = existing.EffectID
			cp.GradientID = existing.GradientID
			cp.GenerationMS = existing.GenerationMS
		}
	} else {
		cp.CreatedAt = time.Now()
	}
	m.entries[m.key(entry.Category, entry.Fingerprint)] = &cp
	return nil
}

func (m *memRepo) DeleteOlderThan(ctx context.Context, category domain.Category, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (m *memRepo) Count(ctx context.Context, category domain.Category) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k := range m.entries {
		if strings.HasPrefix(k, string(category)+"/") {
			n++
		}
	}
	return n, nil
}

func (m *memRepo) ListTopicIDs(ctx context.Context, contentType string) ([]string, error) {
	return nil, nil
}

// stubGenerator returns a queued sequence of responses.
type stubGenerator struct {
	mu    sync.Mutex
	calls int
	errs  []error
}

func (s *stubGenerator) Generate(ctx context.Context, req imageprovider.GenerateRequest) (*imageprovider.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &imageprovider.Asset{
		Format:       "image/png",
		Width:        1024,
		Height:       576,
		Data:         []byte("fake-png-bytes"),
		GenerationMS: 42,
	}, nil
}

func newTestOrchestrator(t *testing.T, repo *memRepo, gen *stubGenerator, opts ...quota.Option) (*Orchestrator, *quota.Breaker) {
	t.Helper()
	logger := zerolog.Nop()
	breaker := quota.NewBreaker(logger, opts...)
	return NewOrchestrator(cache.New(repo, logger), breaker, gen, logger), breaker
}

func TestGetOrGenerateRejectsEmptyPrompt(t *testing.T) {
	o, _ := newTestOrchestrator(t, newMemRepo(), &stubGenerator{})
	if _, err := o.GetOrGenerate(context.Background(), Request{Prompt: "   "}); !errors.Is(err, domain.ErrInvalidPrompt) {
		t.Fatalf("err = %v, want ErrInvalidPrompt", err)
	}
}

func TestGetOrGenerateGeneratesAndCaches(t *testing.T) {
	repo := newMemRepo()
	gen := &stubGenerator{}
	o, _ := newTestOrchestrator(t, repo, gen)

	req := Request{Prompt: "volcanic eruption", AspectRatio: "16:9", GradeLevel: 4}
	res, err := o.GetOrGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if res.FromCache || res.UsedFallback {
		t.Fatalf("first call: FromCache=%v UsedFallback=%v, want fresh generation", res.FromCache, res.UsedFallback)
	}
	if res.PayloadType != domain.PayloadTypeImage {
		t.Fatalf("PayloadType = %q, want image", res.PayloadType)
	}
	if !strings.HasPrefix(res.Payload, "data:image/png;base64,") {
		t.Fatalf("payload not a data url: %q", res.Payload[:30])
	}
	wantFP := fingerprint.Key(req.Prompt, req.AspectRatio, req.GradeLevel)
	if res.Fingerprint != wantFP {
		t.Fatalf("Fingerprint = %q, want %q", res.Fingerprint, wantFP)
	}

	// Second call is served from cache, no extra provider call.
	res2, err := o.GetOrGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("second GetOrGenerate: %v", err)
	}
	if !res2.FromCache {
		t.Fatal("second call should come from cache")
	}
	if gen.calls != 1 {
		t.Fatalf("generator called %d times, want 1", gen.calls)
	}
}

func TestGetOrGenerateSkipCacheBypassesHit(t *testing.T) {
	repo := newMemRepo()
	gen := &stubGenerator{}
	o, _ := newTestOrchestrator(t, repo, gen)

	req := Request{Prompt: "ocean currents", AspectRatio: "1:1", GradeLevel: 5}
	if _, err := o.GetOrGenerate(context.Background(), req); err != nil {
		t.Fatalf("seed call: %v", err)
	}
	req.SkipCache = true
	res, err := o.GetOrGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("skip-cache call: %v", err)
	}
	if res.FromCache {
		t.Fatal("SkipCache request must not return a cached entry")
	}
	if gen.calls != 2 {
		t.Fatalf("generator called %d times, want 2", gen.calls)
	}
}

func TestQuotaExhaustionTripsBreakerAndFallsBack(t *testing.T) {
	repo := newMemRepo()
	gen := &stubGenerator{errs: []error{fmt.Errorf("imagen: %w", domain.ErrQuotaExhausted)}}
	o, breaker := newTestOrchestrator(t, repo, gen)

	res, err := o.GetOrGenerate(context.Background(), Request{Prompt: "ocean waves crashing"})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("quota exhaustion should yield a themed fallback")
	}
	if res.PayloadType != domain.PayloadTypeGradient {
		t.Fatalf("PayloadType = %q, want gradient", res.PayloadType)
	}
	if res.EffectID != "waves" {
		t.Fatalf("EffectID = %q, want waves", res.EffectID)
	}
	if !breaker.IsOpen() {
		t.Fatal("breaker should be open after quota exhaustion")
	}

	// While open, the provider is never reached again.
	before := gen.calls
	res2, err := o.GetOrGenerate(context.Background(), Request{Prompt: "desert dunes at sunset"})
	if err != nil {
		t.Fatalf("GetOrGenerate while open: %v", err)
	}
	if !res2.UsedFallback {
		t.Fatal("open breaker should force fallback")
	}
	if gen.calls != before {
		t.Fatalf("generator called while breaker open (%d -> %d)", before, gen.calls)
	}
}

func TestTransientErrorDoesNotTripBreaker(t *testing.T) {
	repo := newMemRepo()
	gen := &stubGenerator{errs: []error{fmt.Errorf("imagen: %w", domain.ErrProviderFailure)}}
	o, breaker := newTestOrchestrator(t, repo, gen)

	res, err := o.GetOrGenerate(context.Background(), Request{Prompt: "forest canopy"})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("transient failure should yield a fallback")
	}
	if breaker.IsOpen() {
		t.Fatal("single transient failure must not open the breaker")
	}

	// The next call goes straight back to the provider and succeeds.
	res2, err := o.GetOrGenerate(context.Background(), Request{Prompt: "forest canopy", SkipCache: true})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res2.UsedFallback {
		t.Fatal("retry after transient failure should succeed")
	}
}

func TestCacheWriteFailureDoesNotBlockResult(t *testing.T) {
	repo := newMemRepo()
	repo.putFail = true
	o, _ := newTestOrchestrator(t, repo, &stubGenerator{})

	res, err := o.GetOrGenerate(context.Background(), Request{Prompt: "magnetic fields"})
	if err != nil {
		t.Fatalf("GetOrGenerate: %v", err)
	}
	if res.PayloadType != domain.PayloadTypeImage {
		t.Fatalf("PayloadType = %q, want image despite cache failure", res.PayloadType)
	}
}

func TestCachedGradientRegeneratedOnceBreakerCloses(t *testing.T) {
	repo := newMemRepo()
	now := time.Now()
	clock := func() time.Time { return now }
	gen := &stubGenerator{errs: []error{fmt.Errorf("imagen: %w", domain.ErrQuotaExhausted)}}
	o, breaker := newTestOrchestrator(t, repo, gen, quota.WithClock(func() time.Time { return clock() }))

	req := Request{Prompt: "cave formations", AspectRatio: "16:9", GradeLevel: 3}
	res, err := o.GetOrGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("fallback call: %v", err)
	}
	if !res.UsedFallback {
		t.Fatal("expected fallback on quota exhaustion")
	}

	// Cooldown elapses; the half-open probe succeeds and the placeholder
	// gets replaced with a real image under the same fingerprint.
	now = now.Add(2 * time.Hour)
	res2, err := o.GetOrGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("regenerate call: %v", err)
	}
	if res2.FromCache {
		t.Fatal("gradient placeholder should not satisfy the request once the breaker allows a probe")
	}
	if res2.PayloadType != domain.PayloadTypeImage {
		t.Fatalf("PayloadType = %q, want image after regeneration", res2.PayloadType)
	}
	if breaker.IsOpen() {
		t.Fatal("breaker should be closed after a successful probe")
	}

	// The cache now holds the real image.
	res3, err := o.GetOrGenerate(context.Background(), req)
	if err != nil {
		t.Fatalf("cached call: %v", err)
	}
	if !res3.FromCache || res3.PayloadType != domain.PayloadTypeImage {
		t.Fatalf("FromCache=%v PayloadType=%q, want cached image", res3.FromCache, res3.PayloadType)
	}
}
