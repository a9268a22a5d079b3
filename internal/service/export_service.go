package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/storage"
	pkglogger "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/logger"
	pkgstorage "github.com/Acurioustractor/custodian-economy-platform-sub001/pkg/storage"
)

const (
	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"

	SectionStories    = "stories"
	SectionMedia      = "media"
	SectionBrandTests = "brand_tests"
	SectionMetrics    = "metrics"
	SectionActivities = "activities"

	presignedURLExpiry = 15 * time.Minute
)

// ExportOptions selects what goes into an export and in which shape
type ExportOptions struct {
	Format   string     `json:"format"`
	Sections []string   `json:"sections"`
	DateFrom *time.Time `json:"dateFrom,omitempty"`
	DateTo   *time.Time `json:"dateTo,omitempty"`
	Template string     `json:"template,omitempty"`
}

// ExportResult reports where the generated file ended up
type ExportResult struct {
	Success     bool   `json:"success"`
	Filename    string `json:"filename"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// exportDocument is the JSON shape of a full export
type exportDocument struct {
	GeneratedAt time.Time                `json:"generated_at"`
	Template    string                   `json:"template,omitempty"`
	Stories     []domain.ContentRecord   `json:"stories,omitempty"`
	Media       []domain.ContentRecord   `json:"media,omitempty"`
	BrandTests  []domain.TestVariant     `json:"brand_tests,omitempty"`
	Metrics     *domain.DashboardMetrics `json:"metrics,omitempty"`
	Activities  []domain.ActivityItem    `json:"activities,omitempty"`
}

// ExportService renders content collections to downloadable JSON or
// CSV files, uploading to object storage when it is configured and
// falling back to the local data directory otherwise.
type ExportService struct {
	store   *storage.Adapter
	s3      *pkgstorage.S3Client // may be nil
	dataDir string
}

// NewExportService creates a new ExportService
func NewExportService(store *storage.Adapter, s3 *pkgstorage.S3Client, dataDir string) *ExportService {
	return &ExportService{store: store, s3: s3, dataDir: dataDir}
}

// Export builds the requested document and stores it. Failures are
// reported in the result rather than as errors so callers can show
// them directly.
func (s *ExportService) Export(ctx context.Context, owner string, opts ExportOptions) (*ExportResult, error) {
	if owner == "" {
		owner = domain.AnonymousOwner
	}
	format := strings.ToLower(opts.Format)
	if format == "" {
		format = ExportFormatJSON
	}
	if format != ExportFormatJSON && format != ExportFormatCSV {
		return &ExportResult{Error: fmt.Sprintf("unsupported export format %q", opts.Format)}, nil
	}
	sections := opts.Sections
	if len(sections) == 0 {
		sections = []string{SectionStories, SectionMedia, SectionBrandTests, SectionMetrics}
	}

	doc, err := s.collect(ctx, owner, sections, opts)
	if err != nil {
		return &ExportResult{Error: err.Error()}, nil
	}

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		payload, err = renderCSV(doc)
		contentType = "text/csv"
	default:
		payload, err = json.MarshalIndent(doc, "", "  ")
		contentType = "application/json"
	}
	if err != nil {
		return &ExportResult{Error: "render export: " + err.Error()}, nil
	}

	filename := fmt.Sprintf("custodian-export-%s.%s", time.Now().Format("20060102-150405"), format)

	if s.s3 != nil {
		key := "exports/" + filename
		if _, err := s.s3.Put(ctx, key, payload, contentType); err != nil {
			return &ExportResult{Error: "upload export: " + err.Error()}, nil
		}
		url, err := s.s3.GetPresignedURL(ctx, key, presignedURLExpiry)
		if err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("key", key).Msg("presign export url failed")
		}
		return &ExportResult{Success: true, Filename: filename, DownloadURL: url}, nil
	}

	dir := filepath.Join(s.dataDir, "exports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ExportResult{Error: "prepare export dir: " + err.Error()}, nil
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return &ExportResult{Error: "write export: " + err.Error()}, nil
	}
	return &ExportResult{Success: true, Filename: filename, DownloadURL: path}, nil
}

func (s *ExportService) collect(ctx context.Context, owner string, sections []string, opts ExportOptions) (*exportDocument, error) {
	doc := &exportDocument{GeneratedAt: time.Now(), Template: opts.Template}
	for _, section := range sections {
		switch strings.ToLower(section) {
		case SectionStories:
			records, err := s.loadContent(ctx, domain.CollectionStories, owner, opts)
			if err != nil {
				return nil, err
			}
			doc.Stories = records
		case SectionMedia:
			records, err := s.loadContent(ctx, domain.CollectionMedia, owner, opts)
			if err != nil {
				return nil, err
			}
			doc.Media = records
		case SectionBrandTests:
			var variants []domain.TestVariant
			if _, err := s.store.GetJSON(ctx, domain.CollectionBrandTests, owner, &variants); err != nil {
				return nil, fmt.Errorf("load brand tests: %w", err)
			}
			doc.BrandTests = variants
		case SectionMetrics:
			var metrics domain.DashboardMetrics
			found, err := s.store.GetJSON(ctx, domain.CollectionMetrics, owner, &metrics)
			if err != nil {
				return nil, fmt.Errorf("load metrics: %w", err)
			}
			if found {
				doc.Metrics = &metrics
			}
		case SectionActivities:
			var items []domain.ActivityItem
			if _, err := s.store.GetJSON(ctx, domain.CollectionActivities, owner, &items); err != nil {
				return nil, fmt.Errorf("load activities: %w", err)
			}
			doc.Activities = items
		default:
			return nil, fmt.Errorf("unknown export section %q", section)
		}
	}
	return doc, nil
}

func (s *ExportService) loadContent(ctx context.Context, collection, owner string, opts ExportOptions) ([]domain.ContentRecord, error) {
	var records []domain.ContentRecord
	if _, err := s.store.GetJSON(ctx, collection, owner, &records); err != nil {
		return nil, fmt.Errorf("load %s: %w", collection, err)
	}
	if opts.DateFrom == nil && opts.DateTo == nil {
		return records, nil
	}
	filtered := records[:0]
	for _, rec := range records {
		if opts.DateFrom != nil && rec.Metadata.Date.Before(*opts.DateFrom) {
			continue
		}
		if opts.DateTo != nil && rec.Metadata.Date.After(*opts.DateTo) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}

// renderCSV flattens the content rows into one table. Non-tabular
// sections (metrics, brand tests) get summary rows of their own.
func renderCSV(doc *exportDocument) ([]byte, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write([]string{"section", "id", "type", "title", "author", "date", "status", "brand_score", "tags"}); err != nil {
		return nil, err
	}
	writeContent := func(section string, records []domain.ContentRecord) error {
		for _, rec := range records {
			row := []string{
				section,
				rec.ID,
				string(rec.Type),
				rec.Title,
				rec.Metadata.Author,
				rec.Metadata.Date.Format(time.RFC3339),
				rec.Metadata.Status,
				strconv.FormatFloat(rec.Metadata.BrandScore, 'f', 2, 64),
				strings.Join(rec.Metadata.Tags, "|"),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}
	if err := writeContent(SectionStories, doc.Stories); err != nil {
		return nil, err
	}
	if err := writeContent(SectionMedia, doc.Media); err != nil {
		return nil, err
	}
	for _, variant := range doc.BrandTests {
		score := ""
		if n := len(variant.Results); n > 0 {
			score = strconv.FormatFloat(variant.Results[n-1].PrimaryScore, 'f', 2, 64)
		}
		row := []string{SectionBrandTests, variant.ID, string(variant.Status), variant.Name, "", variant.CreatedAt.Format(time.RFC3339), "", score, ""}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	if doc.Metrics != nil {
		row := []string{SectionMetrics, "", "", fmt.Sprintf("stories=%d tests=%d items=%d", doc.Metrics.StoriesAnalyzed, doc.Metrics.BrandTestsActive, doc.Metrics.ContentItems), "", doc.Metrics.LastUpdated.Format(time.RFC3339), "", strconv.FormatFloat(doc.Metrics.BrandScore, 'f', 2, 64), ""}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	for _, item := range doc.Activities {
		row := []string{SectionActivities, item.ID, string(item.Type), item.Message, item.UserID, item.Timestamp.Format(time.RFC3339), "", "", ""}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return []byte(sb.String()), nil
}
