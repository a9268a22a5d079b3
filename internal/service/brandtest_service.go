package service

import (
	"context"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/common"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// brandKeywords raise a variant's score when its content speaks the
// brand language
var brandKeywords = []string{
	"community", "impact", "custodian", "economy",
	"young people", "pathway", "employment", "culture",
}

// BrandTestService manages test variants through their linear
// draft → active → completed lifecycle and compares analysed variants.
type BrandTestService struct {
	store   *storage.Adapter
	metrics *MetricsService
}

// NewBrandTestService creates a new BrandTestService
func NewBrandTestService(store *storage.Adapter, metrics *MetricsService) *BrandTestService {
	return &BrandTestService{store: store, metrics: metrics}
}

// CreateVariant stores a new draft variant
func (s *BrandTestService) CreateVariant(ctx context.Context, owner, name, description, content string, audiences []string, config domain.TestConfig) (*domain.TestVariant, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	var verrs common.ValidationErrors
	if strings.TrimSpace(name) == "" {
		verrs = verrs.Add("name", "name is required")
	}
	if strings.TrimSpace(content) == "" {
		verrs = verrs.Add("content", "content is required")
	}
	if err := verrs.OrNil(); err != nil {
		return nil, err
	}

	variant := domain.TestVariant{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(name),
		Description: description,
		Content:     content,
		Audiences:   audiences,
		Config:      config,
		Status:      domain.VariantDraft,
		CreatedAt:   time.Now(),
	}

	variants, err := s.loadVariants(ctx, owner)
	if err != nil {
		return nil, err
	}
	variants = append(variants, variant)
	if err := s.saveVariants(ctx, owner, variants); err != nil {
		return nil, err
	}
	return &variant, nil
}

// List returns all variants for an owner
func (s *BrandTestService) List(ctx context.Context, owner string) ([]domain.TestVariant, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	variants, err := s.loadVariants(ctx, owner)
	if err != nil {
		return nil, err
	}
	if variants == nil {
		variants = []domain.TestVariant{}
	}
	return variants, nil
}

// Get returns one variant by id
func (s *BrandTestService) Get(ctx context.Context, owner, id string) (*domain.TestVariant, error) {
	variants, err := s.List(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		if variants[i].ID == id {
			return &variants[i], nil
		}
	}
	return nil, common.ErrVariantNotFound
}

// Start moves a draft variant to active and stamps its start date.
// Starting a test bumps the active-tests counter, which writes the
// corresponding activity entry.
func (s *BrandTestService) Start(ctx context.Context, owner, id string) (*domain.TestVariant, error) {
	variant, err := s.transition(ctx, owner, id, domain.VariantDraft, domain.VariantActive, func(v *domain.TestVariant) {
		now := time.Now()
		v.StartedAt = &now
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.metrics.Increment(ctx, owner, domain.MetricBrandTestsActive); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("brand test counter update failed")
	}
	return variant, nil
}

// Complete moves an active variant to completed
func (s *BrandTestService) Complete(ctx context.Context, owner, id string) (*domain.TestVariant, error) {
	variant, err := s.transition(ctx, owner, id, domain.VariantActive, domain.VariantCompleted, func(v *domain.TestVariant) {
		now := time.Now()
		v.CompletedAt = &now
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.metrics.Decrement(ctx, owner, domain.MetricBrandTestsActive); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Msg("brand test counter update failed")
	}
	return variant, nil
}

func (s *BrandTestService) transition(ctx context.Context, owner, id string, from, to domain.VariantStatus, stamp func(*domain.TestVariant)) (*domain.TestVariant, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	variants, err := s.loadVariants(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		if variants[i].ID != id {
			continue
		}
		if variants[i].Status != from {
			return nil, common.ErrInvalidTransition
		}
		variants[i].Status = to
		stamp(&variants[i])
		if err := s.saveVariants(ctx, owner, variants); err != nil {
			return nil, err
		}
		return &variants[i], nil
	}
	return nil, common.ErrVariantNotFound
}

// Analyze computes a metrics snapshot for a variant. Safe to call
// repeatedly: scoring is deterministic over the content and each call
// appends a fresh result rather than mutating history.
func (s *BrandTestService) Analyze(ctx context.Context, owner, id string) (*domain.TestResult, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	variants, err := s.loadVariants(ctx, owner)
	if err != nil {
		return nil, err
	}
	for i := range variants {
		if variants[i].ID != id {
			continue
		}
		result := analyzeVariant(variants[i])
		variants[i].Results = append(variants[i].Results, result)
		if err := s.saveVariants(ctx, owner, variants); err != nil {
			return nil, err
		}
		return &result, nil
	}
	return nil, common.ErrVariantNotFound
}

// Compare selects the winner among at least two variants: the maximum
// primary score wins, ties broken by first-encountered order of ids.
func (s *BrandTestService) Compare(ctx context.Context, owner string, ids []string) (*domain.ComparisonResult, error) {
	if len(ids) < 2 {
		return nil, common.ValidationErrors{}.Add("ids", "at least 2 variant ids are required").OrNil()
	}
	if owner == "" {
		owner = domain.AnonymousOwner
	}

	variants, err := s.loadVariants(ctx, owner)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.TestVariant, len(variants))
	for i := range variants {
		byID[variants[i].ID] = &variants[i]
	}

	result := &domain.ComparisonResult{Scores: make(map[string]float64, len(ids))}
	best := -1.0
	for _, id := range ids {
		variant, ok := byID[id]
		if !ok {
			return nil, common.ErrVariantNotFound
		}
		score := latestScore(*variant)
		result.Scores[id] = score
		// Strict > keeps the first-encountered max on ties
		if score > best {
			best = score
			result.WinnerID = id
		}
	}

	result.StatisticalSignificance = significance(ids, result.Scores, best)
	return result, nil
}

func (s *BrandTestService) loadVariants(ctx context.Context, owner string) ([]domain.TestVariant, error) {
	var variants []domain.TestVariant
	if _, err := s.store.GetJSON(ctx, domain.CollectionBrandTests, owner, &variants); err != nil {
		return nil, err
	}
	return variants, nil
}

func (s *BrandTestService) saveVariants(ctx context.Context, owner string, variants []domain.TestVariant) error {
	return s.store.SaveJSON(ctx, domain.CollectionBrandTests, owner, variants)
}

// latestScore uses the most recent analysis, computing one on the fly
// for variants never analysed (without persisting it)
func latestScore(v domain.TestVariant) float64 {
	if len(v.Results) > 0 {
		return v.Results[len(v.Results)-1].PrimaryScore
	}
	return analyzeVariant(v).PrimaryScore
}

// analyzeVariant derives a deterministic pseudo-score bundle from the
// variant's content: a hash-seeded base plus brand-language and length
// bonuses, capped below 100
func analyzeVariant(v domain.TestVariant) domain.TestResult {
	h := fnv.New32a()
	_, _ = h.Write([]byte(v.Content))
	base := 60 + float64(h.Sum32()%2000)/100 // 60.00 .. 79.99

	lowered := strings.ToLower(v.Content)
	var bonus float64
	for _, kw := range brandKeywords {
		if strings.Contains(lowered, kw) {
			bonus += 2
		}
	}
	if bonus > 10 {
		bonus = 10
	}

	length := float64(len(v.Content)) / 400
	if length > 5 {
		length = 5
	}

	primary := base + bonus + length
	if primary > 98 {
		primary = 98
	}

	engagement := primary*0.8 + float64(len(v.Audiences))*2
	if engagement > 100 {
		engagement = 100
	}
	reach := primary*0.6 + float64(h.Sum32()%500)/25
	if reach > 100 {
		reach = 100
	}
	sentiment := 0.5 + primary/200

	return domain.TestResult{
		ID:           uuid.NewString(),
		VariantID:    v.ID,
		PrimaryScore: primary,
		Engagement:   engagement,
		Reach:        reach,
		Sentiment:    sentiment,
		AnalyzedAt:   time.Now(),
	}
}

// significance estimates confidence from the gap between the best and
// second-best scores. Heuristic only, not a statistical test.
func significance(ids []string, scores map[string]float64, best float64) float64 {
	second := -1.0
	for _, id := range ids {
		score := scores[id]
		if score < best && score > second {
			second = score
		}
	}
	if second < 0 {
		// All scores equal
		return 0.5
	}
	sig := 0.5 + (best-second)/20
	if sig > 0.99 {
		sig = 0.99
	}
	return sig
}
