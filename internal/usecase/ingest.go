package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"jfinder/internal/domain"
	"jfinder/internal/port"
)

const (
	// DefaultBatchSize is how many journals are embedded and upserted per
	// round trip.
	DefaultBatchSize = 50

	// DefaultJournalsPerConcept bounds how many journals are pulled for
	// each field of study.
	DefaultJournalsPerConcept = 25
)

// Ingestor populates the similarity index from a journal catalog. Failures
// on a single field or batch are logged and skipped, never retried.
type Ingestor struct {
	source     port.JournalSource
	encoder    port.Encoder
	index      port.VectorIndex
	batchSize  int
	perConcept int

	// Progress, when set, is called after each field of study completes.
	Progress func(done, total int, field string)

	// Logf reports skipped fields and batches. Defaults to log.Printf.
	Logf func(format string, args ...any)
}

// NewIngestor creates an ingestor. Zero batchSize or perConcept pick the
// defaults.
func NewIngestor(source port.JournalSource, encoder port.Encoder, index port.VectorIndex, batchSize, perConcept int) *Ingestor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if perConcept <= 0 {
		perConcept = DefaultJournalsPerConcept
	}
	return &Ingestor{
		source:     source,
		encoder:    encoder,
		index:      index,
		batchSize:  batchSize,
		perConcept: perConcept,
		Logf:       log.Printf,
	}
}

// Report summarizes one ingestion run.
type Report struct {
	Fields   int
	Upserted int
	Skipped  int
}

// IngestFields resolves each field-of-study name to a concept and indexes
// that concept's journals.
func (ing *Ingestor) IngestFields(ctx context.Context, fields []string) (Report, error) {
	var report Report

	for i, field := range fields {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		concept, err := ing.source.FindConcept(ctx, field)
		if err != nil {
			ing.Logf("skipping field %q: %v", field, err)
			report.Skipped++
			continue
		}
		if concept == nil {
			ing.Logf("skipping field %q: no matching concept", field)
			report.Skipped++
			continue
		}

		n, err := ing.ingestConcept(ctx, *concept)
		if err != nil {
			ing.Logf("skipping field %q: %v", field, err)
			report.Skipped++
			continue
		}

		report.Fields++
		report.Upserted += n
		if ing.Progress != nil {
			ing.Progress(i+1, len(fields), field)
		}
	}

	return report, nil
}

// IngestConcepts indexes journals for up to conceptLimit concepts straight
// from the catalog's concept listing.
func (ing *Ingestor) IngestConcepts(ctx context.Context, conceptLimit int) (Report, error) {
	concepts, err := ing.source.ListConcepts(ctx, conceptLimit)
	if err != nil {
		return Report{}, fmt.Errorf("listing concepts: %w", err)
	}

	var report Report
	for i, concept := range concepts {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		n, err := ing.ingestConcept(ctx, concept)
		if err != nil {
			ing.Logf("skipping concept %q: %v", concept.Name, err)
			report.Skipped++
			continue
		}

		report.Fields++
		report.Upserted += n
		if ing.Progress != nil {
			ing.Progress(i+1, len(concepts), concept.Name)
		}
	}

	return report, nil
}

func (ing *Ingestor) ingestConcept(ctx context.Context, concept port.ConceptRef) (int, error) {
	records, err := ing.source.JournalsForConcept(ctx, concept.ID, ing.perConcept)
	if err != nil {
		return 0, err
	}
	return ing.IngestRecords(ctx, records)
}

// IngestRecords embeds and upserts journal records in batches. Records
// missing an id or name are skipped.
func (ing *Ingestor) IngestRecords(ctx context.Context, records []port.JournalRecord) (int, error) {
	var journals []domain.Journal
	for _, rec := range records {
		if rec.ID == "" || rec.Name == "" {
			continue
		}
		journals = append(journals, BuildJournal(rec))
	}

	total := 0
	for start := 0; start < len(journals); start += ing.batchSize {
		end := start + ing.batchSize
		if end > len(journals) {
			end = len(journals)
		}
		batch := journals[start:end]

		texts := make([]string, len(batch))
		for i, j := range batch {
			texts[i] = j.Text
		}

		vectors, err := ing.encoder.EmbedBatch(ctx, texts)
		if err != nil {
			return total, fmt.Errorf("embedding batch: %w", err)
		}

		items := make([]port.IndexItem, len(batch))
		for i, j := range batch {
			items[i] = port.IndexItem{
				ID:       j.ID,
				Vector:   vectors[i],
				Document: j.Text,
				Metadata: j.Metadata,
			}
		}

		if err := ing.index.Upsert(ctx, items); err != nil {
			return total, fmt.Errorf("upserting batch: %w", err)
		}
		total += len(items)
	}

	return total, nil
}

// BuildJournal turns a catalog record into the stored document: the
// embedded text is the journal name followed by its concepts, and the
// metadata carries the fields surfaced in search results.
func BuildJournal(rec port.JournalRecord) domain.Journal {
	text := rec.Name
	if len(rec.Concepts) > 0 {
		text = fmt.Sprintf("%s. Concepts: %s", rec.Name, strings.Join(rec.Concepts, ", "))
	}

	metadata := map[string]string{
		"name":               rec.Name,
		"publisher":          rec.Publisher,
		"concepts":           strings.Join(rec.Concepts, ", "),
		"is_oa":              strconv.FormatBool(rec.IsOA),
		"2yr_mean_citedness": strconv.FormatFloat(rec.MeanCitedness, 'f', -1, 64),
		"works_count":        strconv.Itoa(rec.WorksCount),
		"cited_by_count":     strconv.Itoa(rec.CitedByCount),
	}
	if rec.HomepageURL != "" {
		metadata["homepage_url"] = rec.HomepageURL
	}
	if len(rec.ISSN) > 0 {
		metadata["issn"] = strings.Join(rec.ISSN, ", ")
	}

	return domain.Journal{
		ID:       rec.ID,
		Text:     text,
		Metadata: metadata,
	}
}
