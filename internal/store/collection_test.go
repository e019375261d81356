package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/store"
)

func TestCollection_AddThenDeleteScenario(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	before := s.GetData(ctx)
	require.Len(t, before.Imprints, 2)
	require.Empty(t, before.Books)

	require.NoError(t, s.Books.Add(ctx, domain.Book{ID: "b1", Title: "Test"}))

	books := s.GetData(ctx).Books
	require.Len(t, books, 1)
	assert.Equal(t, "b1", books[0].ID)

	require.NoError(t, s.Books.Delete(ctx, "b1"))
	assert.Empty(t, s.GetData(ctx).Books)
}

func TestCollection_AddDeleteIsIdempotent(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveData(ctx, sampleDocument()))

	tests := []struct {
		name string
		add  func() error
		del  func() error
	}{
		{"imprints", func() error { return s.Imprints.Add(ctx, domain.Imprint{ID: "imp-9", Name: "New"}) }, func() error { return s.Imprints.Delete(ctx, "imp-9") }},
		{"pseudonyms", func() error { return s.Pseudonyms.Add(ctx, domain.Pseudonym{ID: "ps-9"}) }, func() error { return s.Pseudonyms.Delete(ctx, "ps-9") }},
		{"series", func() error { return s.Series.Add(ctx, domain.Series{ID: "ser-9"}) }, func() error { return s.Series.Delete(ctx, "ser-9") }},
		{"books", func() error { return s.Books.Add(ctx, domain.Book{ID: "b9"}) }, func() error { return s.Books.Delete(ctx, "b9") }},
		{"tasks", func() error { return s.Tasks.Add(ctx, domain.Task{ID: "t9"}) }, func() error { return s.Tasks.Delete(ctx, "t9") }},
		{"sales", func() error { return s.Sales.Add(ctx, domain.Sale{ID: "s9", Units: 3}) }, func() error { return s.Sales.Delete(ctx, "s9") }},
		{"history", func() error { return s.History.Add(ctx, domain.HistoryRecord{ID: "h9"}) }, func() error { return s.History.Delete(ctx, "h9") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.GetData(ctx)

			require.NoError(t, tt.add())
			assert.NotEqual(t, before, s.GetData(ctx))
			require.NoError(t, tt.del())

			assert.Equal(t, before, s.GetData(ctx))
		})
	}
}

func TestCollection_AddRejectsDuplicateAndEmptyIDs(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	err := s.Imprints.Add(ctx, domain.Imprint{ID: "imp-1", Name: "Duplicate"})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	err = s.Books.Add(ctx, domain.Book{Title: "No ID"})
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	assert.Equal(t, domain.Seed(), s.GetData(ctx))
}

func TestCollection_UpdateUnknownIDIsNoop(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveData(ctx, sampleDocument()))
	before := s.GetData(ctx)

	require.NoError(t, s.Books.Update(ctx, domain.Book{ID: "missing", Title: "Ghost"}))

	assert.Equal(t, before, s.GetData(ctx))
}

func TestCollection_UpdateReplacesItem(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	updated := domain.Imprint{ID: "imp-2", Name: "Heartline", Color: "#c2185b"}
	require.NoError(t, s.Imprints.Update(ctx, updated))

	got, err := s.Imprints.Get(ctx, "imp-2")
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	// Order is preserved.
	list := s.Imprints.List(ctx)
	require.Len(t, list, 2)
	assert.Equal(t, "imp-1", list[0].ID)
	assert.Equal(t, "imp-2", list[1].ID)
}

func TestCollection_DeleteRemovesAllMatches(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	// Duplicates can only arrive through a whole-document save (e.g. an old backup).
	doc := domain.Seed()
	doc.Tasks = []domain.Task{{ID: "t1"}, {ID: "t2"}, {ID: "t1"}}
	require.NoError(t, s.SaveData(ctx, doc))

	require.NoError(t, s.Tasks.Delete(ctx, "t1"))

	tasks := s.Tasks.List(ctx)
	require.Len(t, tasks, 1)
	assert.Equal(t, "t2", tasks[0].ID)
}

func TestCollection_DeleteUnknownIDIsNoop(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Series.Delete(ctx, "nope"))
	assert.Equal(t, domain.Seed(), s.GetData(ctx))
}

func TestCollection_GetNotFound(t *testing.T) {
	s, _ := setupTestStore(t)

	_, err := s.Books.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCollection_Names(t *testing.T) {
	s, _ := setupTestStore(t)

	assert.Equal(t, "imprints", s.Imprints.Name())
	assert.Equal(t, "pseudonyms", s.Pseudonyms.Name())
	assert.Equal(t, "series", s.Series.Name())
	assert.Equal(t, "books", s.Books.Name())
	assert.Equal(t, "tasks", s.Tasks.Name())
	assert.Equal(t, "sales", s.Sales.Name())
	assert.Equal(t, "history", s.History.Name())
}

func TestCollection_FailedSaveLeavesDocument(t *testing.T) {
	ctx := context.Background()
	slot := store.NewMemorySlot(0)
	s := store.New(slot, nil)
	require.NoError(t, s.SaveData(ctx, domain.Seed()))

	ctxCancelled, cancel := context.WithCancel(ctx)
	cancel()

	err := s.Books.Add(ctxCancelled, domain.Book{ID: "b1"})
	require.Error(t, err)
	assert.Empty(t, s.GetData(ctx).Books)
}
