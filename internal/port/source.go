package port

import "context"

// ConceptRef identifies a field of study in the journal catalog.
type ConceptRef struct {
	ID   string
	Name string
}

// JournalRecord is the catalog's view of one journal, before embedding.
type JournalRecord struct {
	ID            string
	Name          string
	Publisher     string
	HomepageURL   string
	ISSN          []string
	WorksCount    int
	CitedByCount  int
	IsOA          bool
	IsInDOAJ      bool
	MeanCitedness float64
	Concepts      []string
}

// JournalSource lists journals from a scholarly catalog, grouped by concept.
type JournalSource interface {
	// ListConcepts returns up to limit concepts.
	ListConcepts(ctx context.Context, limit int) ([]ConceptRef, error)

	// FindConcept resolves a field-of-study name to a concept.
	// Returns nil when nothing matches.
	FindConcept(ctx context.Context, name string) (*ConceptRef, error)

	// JournalsForConcept returns up to limit journals tagged with the concept.
	JournalsForConcept(ctx context.Context, conceptID string, limit int) ([]JournalRecord, error)
}
