package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed(t *testing.T) {
	seed := Seed()

	assert.Len(t, seed.Imprints, 2)
	assert.NotEmpty(t, seed.Pseudonyms)
	assert.NotEmpty(t, seed.Series)
	assert.Empty(t, seed.Books)
	assert.Empty(t, seed.Tasks)
	assert.Empty(t, seed.Sales)
	assert.Empty(t, seed.History)
	assert.NotNil(t, seed.Books, "seed collections must be empty, not nil")

	// Each call returns an independent document.
	seed.Imprints[0].Name = "changed"
	assert.NotEqual(t, "changed", Seed().Imprints[0].Name)
}

func TestAppData_Normalize(t *testing.T) {
	doc := &AppData{}
	doc.Normalize()

	assert.NotNil(t, doc.Imprints)
	assert.NotNil(t, doc.Pseudonyms)
	assert.NotNil(t, doc.Series)
	assert.NotNil(t, doc.Books)
	assert.NotNil(t, doc.Tasks)
	assert.NotNil(t, doc.Sales)
	assert.NotNil(t, doc.History)
}

func TestAppData_Clone(t *testing.T) {
	orig := Seed()
	orig.Books = append(orig.Books, Book{ID: "b1", Title: "Test", Tags: []string{"cozy"}})
	orig.Pseudonyms[0].Genres = []string{"mystery"}

	clone := orig.Clone()
	require.Equal(t, orig, clone)

	clone.Books[0].Tags[0] = "grimdark"
	clone.Pseudonyms[0].Genres[0] = "horror"
	clone.Imprints = append(clone.Imprints, Imprint{ID: "imp-3"})

	assert.Equal(t, "cozy", orig.Books[0].Tags[0])
	assert.Equal(t, "mystery", orig.Pseudonyms[0].Genres[0])
	assert.Len(t, orig.Imprints, 2)
}

func TestAppData_CloneNil(t *testing.T) {
	var doc *AppData
	assert.Nil(t, doc.Clone())
}

func TestAppData_Counts(t *testing.T) {
	counts := Seed().Counts()
	assert.Equal(t, 2, counts[CollectionImprints])
	assert.Equal(t, 0, counts[CollectionBooks])
}

func TestAppData_Dangling(t *testing.T) {
	doc := Seed()
	doc.Books = []Book{
		{ID: "b1", Title: "Kept", PseudonymID: "ps-1", ImprintID: "imp-1"},
		{ID: "b2", Title: "Orphan", PseudonymID: "ps-gone", ImprintID: "imp-1", SeriesID: "ser-gone"},
	}
	doc.Tasks = []Task{{ID: "t1", BookID: "b-gone"}, {ID: "t2", BookID: "b1"}, {ID: "t3"}}
	doc.Sales = []Sale{{ID: "s1", BookID: "b2"}}

	refs := doc.Dangling()

	assert.ElementsMatch(t, []DanglingRef{
		{Collection: CollectionBooks, ID: "b2", Field: "pseudonymId", Target: "ps-gone"},
		{Collection: CollectionBooks, ID: "b2", Field: "seriesId", Target: "ser-gone"},
		{Collection: CollectionTasks, ID: "t1", Field: "bookId", Target: "b-gone"},
	}, refs)
}

func TestAppData_DanglingNone(t *testing.T) {
	assert.Empty(t, Seed().Dangling())
}

func TestAppData_IsEmpty(t *testing.T) {
	var nilDoc *AppData
	assert.True(t, nilDoc.IsEmpty())
	assert.True(t, (&AppData{}).IsEmpty())
	assert.True(t, (&AppData{}).Normalize().IsEmpty())
	assert.False(t, Seed().IsEmpty())
	assert.False(t, (&AppData{Tasks: []Task{{ID: "t1"}}}).IsEmpty())
	assert.False(t, (&AppData{Settings: Settings{Currency: "EUR"}}).IsEmpty())
}
