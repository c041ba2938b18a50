package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"jfinder/internal/port"
)

// hashEncoder gives every distinct text a distinct deterministic vector.
type hashEncoder struct{ dimension int }

func (h *hashEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	v := make([]float32, h.dimension)
	for i, r := range text {
		v[i%h.dimension] += float32(r) / 1000
	}
	return v, nil
}

func (h *hashEncoder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = h.Embed(ctx, t)
	}
	return out, nil
}

func (h *hashEncoder) Dimension() int    { return h.dimension }
func (h *hashEncoder) ModelName() string { return "hash" }

// recordingIndex captures upserted batches.
type recordingIndex struct {
	batches [][]port.IndexItem
	items   map[string]port.IndexItem
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{items: make(map[string]port.IndexItem)}
}

func (r *recordingIndex) Upsert(_ context.Context, items []port.IndexItem) error {
	r.batches = append(r.batches, items)
	for _, item := range items {
		r.items[item.ID] = item
	}
	return nil
}

func (r *recordingIndex) Query(context.Context, []float32, int) ([]port.IndexResult, error) {
	return nil, nil
}

func (r *recordingIndex) Count(context.Context) (int, error) { return len(r.items), nil }

// fakeSource serves a fixed concept->journals catalog.
type fakeSource struct {
	concepts []port.ConceptRef
	journals map[string][]port.JournalRecord
	failFor  string
}

func (f *fakeSource) ListConcepts(context.Context, int) ([]port.ConceptRef, error) {
	return f.concepts, nil
}

func (f *fakeSource) FindConcept(_ context.Context, name string) (*port.ConceptRef, error) {
	for _, c := range f.concepts {
		if c.Name == name {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) JournalsForConcept(_ context.Context, conceptID string, _ int) ([]port.JournalRecord, error) {
	if conceptID == f.failFor {
		return nil, errors.New("catalog timeout")
	}
	return f.journals[conceptID], nil
}

func testSource() *fakeSource {
	return &fakeSource{
		concepts: []port.ConceptRef{
			{ID: "C1", Name: "Structural biology"},
			{ID: "C2", Name: "Agricultural economics"},
		},
		journals: map[string][]port.JournalRecord{
			"C1": {
				{ID: "S1", Name: "Journal of Structural Biology", Publisher: "Elsevier", Concepts: []string{"Structural biology", "Proteins"}, IsOA: false, MeanCitedness: 3.2},
				{ID: "", Name: "Nameless"}, // must be skipped
			},
			"C2": {
				{ID: "S2", Name: "Journal of Agricultural Economics", Concepts: []string{"Economics"}},
			},
		},
	}
}

func TestIngestFields(t *testing.T) {
	src := testSource()
	idx := newRecordingIndex()
	ing := NewIngestor(src, &hashEncoder{dimension: 4}, idx, 50, 25)
	ing.Logf = t.Logf

	report, err := ing.IngestFields(context.Background(), []string{"Structural biology", "Agricultural economics", "Nonexistent field"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Fields != 2 || report.Skipped != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.Upserted != 2 {
		t.Errorf("expected 2 journals upserted, got %d", report.Upserted)
	}

	item, ok := idx.items["S1"]
	if !ok {
		t.Fatal("expected S1 in index")
	}
	if item.Document != "Journal of Structural Biology. Concepts: Structural biology, Proteins" {
		t.Errorf("unexpected document text: %q", item.Document)
	}
	if item.Metadata["name"] != "Journal of Structural Biology" {
		t.Errorf("unexpected metadata name: %q", item.Metadata["name"])
	}
	if item.Metadata["publisher"] != "Elsevier" {
		t.Errorf("unexpected publisher: %q", item.Metadata["publisher"])
	}
	if item.Metadata["2yr_mean_citedness"] != "3.2" {
		t.Errorf("unexpected citedness: %q", item.Metadata["2yr_mean_citedness"])
	}
	if len(item.Vector) != 4 {
		t.Errorf("expected 4-dim vector, got %d", len(item.Vector))
	}
}

func TestIngestConceptsSkipsFailures(t *testing.T) {
	src := testSource()
	src.failFor = "C1"
	idx := newRecordingIndex()
	ing := NewIngestor(src, &hashEncoder{dimension: 4}, idx, 50, 25)
	ing.Logf = t.Logf

	report, err := ing.IngestConcepts(context.Background(), 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Skipped != 1 || report.Fields != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
	if _, ok := idx.items["S2"]; !ok {
		t.Error("expected S2 ingested despite C1 failure")
	}
}

func TestIngestRecordsBatches(t *testing.T) {
	idx := newRecordingIndex()
	ing := NewIngestor(&fakeSource{}, &hashEncoder{dimension: 2}, idx, 2, 25)
	ing.Logf = t.Logf

	records := []port.JournalRecord{
		{ID: "a", Name: "A"},
		{ID: "b", Name: "B"},
		{ID: "c", Name: "C"},
	}
	n, err := ing.IngestRecords(context.Background(), records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 upserted, got %d", n)
	}
	if len(idx.batches) != 2 {
		t.Errorf("expected 2 batches for batch size 2, got %d", len(idx.batches))
	}
	if len(idx.batches[0]) != 2 || len(idx.batches[1]) != 1 {
		t.Errorf("unexpected batch sizes: %d, %d", len(idx.batches[0]), len(idx.batches[1]))
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "runs")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}

	metadata := map[string]any{
		"https://openalex.org/S100": map[string]any{
			"id":             "https://openalex.org/S100",
			"display_name":   "Journal of Structural Biology",
			"publisher":      "Elsevier",
			"works_count":    9000,
			"cited_by_count": 500000,
			"is_oa":          false,
			"summary_stats":  map[string]any{"2yr_mean_citedness": 3.2},
			"concepts":       []map[string]any{{"display_name": "Structural biology"}},
		},
	}
	data, _ := json.Marshal(metadata)
	if err := os.WriteFile(filepath.Join(sub, "journals_metadata.json"), data, 0644); err != nil {
		t.Fatal(err)
	}

	idx := newRecordingIndex()
	ing := NewIngestor(&fakeSource{}, &hashEncoder{dimension: 2}, idx, 50, 25)
	ing.Logf = t.Logf

	n, err := ing.LoadFiles(context.Background(), filepath.Join(dir, "**", "*.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 journal loaded, got %d", n)
	}

	item, ok := idx.items["S100"]
	if !ok {
		t.Fatal("expected S100 in index")
	}
	if item.Metadata["name"] != "Journal of Structural Biology" {
		t.Errorf("unexpected metadata: %v", item.Metadata)
	}
}

func TestLoadFilesNoMatch(t *testing.T) {
	ing := NewIngestor(&fakeSource{}, &hashEncoder{dimension: 2}, newRecordingIndex(), 50, 25)
	ing.Logf = t.Logf

	_, err := ing.LoadFiles(context.Background(), filepath.Join(t.TempDir(), "*.json"))
	if err == nil {
		t.Fatal("expected error when no files match")
	}
}
