package service

import (
	"strings"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
)

// Scorer computes query-time relevance for a content record. The
// weights are a strategy so they can be swapped and tested in
// isolation from the engine.
type Scorer interface {
	Score(rec domain.ContentRecord, terms []string) float64
}

// WeightedScorer is the default field-weighted scorer. A record with a
// term match nowhere scores 0; an empty term list admits every record
// with score 1 (empty query means "list everything").
type WeightedScorer struct {
	TitleExact     float64
	TitlePrefix    float64
	TitleSubstring float64
	ContentToken   float64
	TagMatch       float64
	SummaryToken   float64
}

// NewDefaultScorer returns the production weights
func NewDefaultScorer() *WeightedScorer {
	return &WeightedScorer{
		TitleExact:     10,
		TitlePrefix:    5,
		TitleSubstring: 2,
		ContentToken:   1,
		TagMatch:       3,
		SummaryToken:   1.5,
	}
}

// Score sums per-term weights over title, content, tags and summary
func (w *WeightedScorer) Score(rec domain.ContentRecord, terms []string) float64 {
	if len(terms) == 0 {
		return 1
	}

	title := strings.ToLower(rec.Title)
	content := strings.ToLower(rec.Content)
	summary := strings.ToLower(rec.Summary)

	var score float64
	for _, term := range terms {
		switch {
		case title == term:
			score += w.TitleExact
		case strings.HasPrefix(title, term):
			score += w.TitlePrefix
		case strings.Contains(title, term):
			score += w.TitleSubstring
		}

		if strings.Contains(content, term) {
			score += w.ContentToken
		}

		for _, tag := range rec.Metadata.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				score += w.TagMatch
			}
		}

		if strings.Contains(summary, term) {
			score += w.SummaryToken
		}
	}
	return score
}
