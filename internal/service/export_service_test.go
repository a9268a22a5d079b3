package service

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Acurioustractor/custodian-economy-platform-sub001/internal/domain"
)

func TestExportJSONToLocalDir(t *testing.T) {
	ctx := context.Background()
	store := newTestAdapter()
	seedSearchFixture(t, store)
	svc := NewExportService(store, nil, t.TempDir())

	result, err := svc.Export(ctx, "alice", ExportOptions{Format: ExportFormatJSON})
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasSuffix(result.Filename, ".json"))

	payload, err := os.ReadFile(result.DownloadURL)
	assert.NoError(t, err)

	var doc struct {
		Stories []domain.ContentRecord `json:"stories"`
		Media   []domain.ContentRecord `json:"media"`
	}
	assert.NoError(t, json.Unmarshal(payload, &doc))
	assert.Len(t, doc.Stories, 2)
	assert.Len(t, doc.Media, 1)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	store := newTestAdapter()
	seedSearchFixture(t, store)
	svc := NewExportService(store, nil, t.TempDir())

	result, err := svc.Export(ctx, "alice", ExportOptions{
		Format:   ExportFormatCSV,
		Sections: []string{SectionStories},
	})
	assert.NoError(t, err)
	assert.True(t, result.Success)

	payload, err := os.ReadFile(result.DownloadURL)
	assert.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	assert.Len(t, lines, 3) // header + two stories
	assert.Contains(t, lines[0], "section,id,type,title")
	assert.Contains(t, lines[1], "Custodian Economy Stories")
}

func TestExportDateRangeFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestAdapter()
	seedSearchFixture(t, store)
	svc := NewExportService(store, nil, t.TempDir())

	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	result, err := svc.Export(ctx, "alice", ExportOptions{
		Format:   ExportFormatJSON,
		Sections: []string{SectionStories},
		DateFrom: &from,
	})
	assert.NoError(t, err)
	assert.True(t, result.Success)

	payload, err := os.ReadFile(result.DownloadURL)
	assert.NoError(t, err)
	var doc struct {
		Stories []domain.ContentRecord `json:"stories"`
	}
	assert.NoError(t, json.Unmarshal(payload, &doc))
	assert.Len(t, doc.Stories, 1)
	assert.Equal(t, "s2", doc.Stories[0].ID)
}

func TestExportRejectsUnknownFormatAndSection(t *testing.T) {
	ctx := context.Background()
	svc := NewExportService(newTestAdapter(), nil, t.TempDir())

	result, err := svc.Export(ctx, "alice", ExportOptions{Format: "xml"})
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unsupported export format")

	result, err = svc.Export(ctx, "alice", ExportOptions{Sections: []string{"bogus"}})
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown export section")
}
