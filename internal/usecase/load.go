package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"jfinder/internal/port"
)

// metadataFile mirrors the journals_metadata.json shape produced by the
// offline discovery run: a map from journal id to its full metadata.
type metadataFile map[string]journalMetadata

type journalMetadata struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"display_name"`
	ISSN         []string `json:"issn"`
	Publisher    string   `json:"publisher"`
	WorksCount   int      `json:"works_count"`
	CitedByCount int      `json:"cited_by_count"`
	HomepageURL  string   `json:"homepage_url"`
	IsOA         bool     `json:"is_oa"`
	IsInDOAJ     bool     `json:"is_in_doaj"`
	SummaryStats struct {
		TwoYearMeanCitedness float64 `json:"2yr_mean_citedness"`
	} `json:"summary_stats"`
	Concepts []struct {
		DisplayName string `json:"display_name"`
	} `json:"concepts"`
}

// LoadFiles globs for saved journal metadata files, re-embeds their
// journals, and upserts them into the index. The pattern supports
// doublestar globs (data/**/*.json). Returns the number of journals
// upserted.
func (ing *Ingestor) LoadFiles(ctx context.Context, pattern string) (int, error) {
	paths, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return 0, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return 0, fmt.Errorf("no files match %q", pattern)
	}

	total := 0
	for _, path := range paths {
		records, err := readMetadataFile(path)
		if err != nil {
			ing.Logf("skipping %s: %v", path, err)
			continue
		}
		n, err := ing.IngestRecords(ctx, records)
		if err != nil {
			return total, fmt.Errorf("ingesting %s: %w", path, err)
		}
		total += n
	}

	return total, nil
}

func readMetadataFile(path string) ([]port.JournalRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file metadataFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing metadata: %w", err)
	}

	ids := make([]string, 0, len(file))
	for id := range file {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	records := make([]port.JournalRecord, 0, len(file))
	for _, id := range ids {
		meta := file[id]
		concepts := make([]string, 0, len(meta.Concepts))
		for _, c := range meta.Concepts {
			if c.DisplayName != "" {
				concepts = append(concepts, c.DisplayName)
			}
		}

		shortID := meta.ID
		if shortID == "" {
			shortID = id
		}
		if i := strings.LastIndex(shortID, "/"); i >= 0 {
			shortID = shortID[i+1:]
		}

		records = append(records, port.JournalRecord{
			ID:            shortID,
			Name:          meta.DisplayName,
			Publisher:     meta.Publisher,
			HomepageURL:   meta.HomepageURL,
			ISSN:          meta.ISSN,
			WorksCount:    meta.WorksCount,
			CitedByCount:  meta.CitedByCount,
			IsOA:          meta.IsOA,
			IsInDOAJ:      meta.IsInDOAJ,
			MeanCitedness: meta.SummaryStats.TwoYearMeanCitedness,
			Concepts:      concepts,
		})
	}

	return records, nil
}
