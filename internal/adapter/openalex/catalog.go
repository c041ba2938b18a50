package openalex

import (
	"context"

	"jfinder/internal/port"
)

// Catalog adapts Client to the port.JournalSource interface.
type Catalog struct {
	client *Client
}

// NewCatalog wraps an OpenAlex client as a journal source.
func NewCatalog(client *Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) ListConcepts(ctx context.Context, limit int) ([]port.ConceptRef, error) {
	concepts, err := c.client.ListConcepts(ctx, limit)
	if err != nil {
		return nil, err
	}
	refs := make([]port.ConceptRef, len(concepts))
	for i, con := range concepts {
		refs[i] = port.ConceptRef{ID: con.ID, Name: con.DisplayName}
	}
	return refs, nil
}

func (c *Catalog) FindConcept(ctx context.Context, name string) (*port.ConceptRef, error) {
	concept, err := c.client.SearchConcept(ctx, name)
	if err != nil {
		return nil, err
	}
	if concept == nil {
		return nil, nil
	}
	return &port.ConceptRef{ID: concept.ID, Name: concept.DisplayName}, nil
}

func (c *Catalog) JournalsForConcept(ctx context.Context, conceptID string, limit int) ([]port.JournalRecord, error) {
	sources, err := c.client.JournalsForConcept(ctx, conceptID, limit)
	if err != nil {
		return nil, err
	}

	records := make([]port.JournalRecord, 0, len(sources))
	for _, s := range sources {
		concepts := make([]string, 0, len(s.Concepts))
		for _, con := range s.Concepts {
			if con.DisplayName != "" {
				concepts = append(concepts, con.DisplayName)
			}
		}
		records = append(records, port.JournalRecord{
			ID:            ShortID(s.ID),
			Name:          s.DisplayName,
			Publisher:     s.Publisher,
			HomepageURL:   s.HomepageURL,
			ISSN:          s.ISSN,
			WorksCount:    s.WorksCount,
			CitedByCount:  s.CitedByCount,
			IsOA:          s.IsOA,
			IsInDOAJ:      s.IsInDOAJ,
			MeanCitedness: s.SummaryStats.TwoYearMeanCitedness,
			Concepts:      concepts,
		})
	}
	return records, nil
}
