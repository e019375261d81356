package domain

// DanglingRef is a soft reference whose target no longer exists.
type DanglingRef struct {
	Collection string `json:"collection"` // collection holding the reference
	ID         string `json:"id"`         // element holding the reference
	Field      string `json:"field"`
	Target     string `json:"target"` // missing ID
}

// Dangling lists every cross-collection reference that points at a missing parent.
// Deleting a parent never cascades, so views use this to render "unknown/deleted".
func (d *AppData) Dangling() []DanglingRef {
	imprints := idSet(d.Imprints)
	pseudonyms := idSet(d.Pseudonyms)
	series := idSet(d.Series)
	books := idSet(d.Books)

	var refs []DanglingRef
	check := func(collection, id, field, target string, known map[string]struct{}) {
		if target == "" {
			return
		}
		if _, ok := known[target]; !ok {
			refs = append(refs, DanglingRef{Collection: collection, ID: id, Field: field, Target: target})
		}
	}

	for _, b := range d.Books {
		check(CollectionBooks, b.ID, "pseudonymId", b.PseudonymID, pseudonyms)
		check(CollectionBooks, b.ID, "imprintId", b.ImprintID, imprints)
		check(CollectionBooks, b.ID, "seriesId", b.SeriesID, series)
	}
	for _, s := range d.Series {
		check(CollectionSeries, s.ID, "pseudonymId", s.PseudonymID, pseudonyms)
	}
	for _, t := range d.Tasks {
		check(CollectionTasks, t.ID, "bookId", t.BookID, books)
	}
	for _, s := range d.Sales {
		check(CollectionSales, s.ID, "bookId", s.BookID, books)
	}
	return refs
}

func idSet[T Entity](items []T) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item.GetID()] = struct{}{}
	}
	return set
}
