package service

import (
	"context"
	"strings"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	pkges "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/elasticsearch"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
)

// ContentIndex is the Elasticsearch index mirroring content records
const ContentIndex = "custodian_content"

// contentDocument is the indexed shape of a content record
type contentDocument struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Content    string                 `json:"content"`
	Author     string                 `json:"author,omitempty"`
	Tags       []string               `json:"tags,omitempty"`
	Status     string                 `json:"status,omitempty"`
	BrandScore float64                `json:"brand_score,omitempty"`
	// For autocomplete
	TitleSuggest map[string]interface{} `json:"title_suggest,omitempty"`
}

// ContentIndexer mirrors content writes into Elasticsearch so the
// public site gets title suggestions. Relevance scoring always runs
// against the persistence adapter; the mirror is a convenience layer
// and its failures never block a write.
type ContentIndexer struct {
	es *pkges.Client
}

// NewContentIndexer creates the indexer and ensures the index exists
func NewContentIndexer(es *pkges.Client) *ContentIndexer {
	idx := &ContentIndexer{es: es}
	if err := idx.ensureIndex(context.Background()); err != nil {
		pkglogger.GetLogger().Error().Err(err).Msg("failed to create content index")
	}
	return idx
}

func (x *ContentIndexer) ensureIndex(ctx context.Context) error {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":          map[string]interface{}{"type": "keyword"},
				"type":        map[string]interface{}{"type": "keyword"},
				"title":       map[string]interface{}{"type": "text"},
				"content":     map[string]interface{}{"type": "text"},
				"author":      map[string]interface{}{"type": "keyword"},
				"tags":        map[string]interface{}{"type": "keyword"},
				"status":      map[string]interface{}{"type": "keyword"},
				"brand_score": map[string]interface{}{"type": "float"},
				"title_suggest": map[string]interface{}{
					"type": "completion",
				},
			},
		},
	}
	return x.es.CreateIndex(ctx, ContentIndex, mapping)
}

// IndexRecord mirrors one content record into the index
func (x *ContentIndexer) IndexRecord(ctx context.Context, rec domain.ContentRecord) error {
	doc := contentDocument{
		ID:         rec.ID,
		Type:       string(rec.Type),
		Title:      rec.Title,
		Content:    rec.Content,
		Author:     rec.Metadata.Author,
		Tags:       rec.Metadata.Tags,
		Status:     rec.Metadata.Status,
		BrandScore: rec.Metadata.BrandScore,
		TitleSuggest: map[string]interface{}{
			"input": strings.Fields(rec.Title),
		},
	}
	return x.es.IndexDocument(ctx, ContentIndex, rec.ID, doc)
}

// DeleteRecord removes a record from the index
func (x *ContentIndexer) DeleteRecord(ctx context.Context, id string) error {
	return x.es.DeleteDocument(ctx, ContentIndex, id)
}

// Suggest returns title completions for a prefix
func (x *ContentIndexer) Suggest(ctx context.Context, prefix string, size int) ([]string, error) {
	if size <= 0 {
		size = 10
	}
	return x.es.Suggest(ctx, ContentIndex, "title_suggest", prefix, size)
}
