package store

import (
	"context"
	"fmt"
	"slices"

	"github.com/inkwellpress/editorial-desk/internal/domain"
)

// Collection provides typed read-modify-write helpers for one collection of the document.
// Every mutation reads the whole document, changes one collection and saves the whole
// document again; there is no collection-only persistence.
type Collection[T domain.Entity] struct {
	store *Store
	name  string
	field func(*domain.AppData) *[]T
}

func newCollection[T domain.Entity](s *Store, name string, field func(*domain.AppData) *[]T) *Collection[T] {
	return &Collection[T]{store: s, name: name, field: field}
}

// Name returns the collection's name in the serialized document.
func (c *Collection[T]) Name() string { return c.name }

// List returns the collection in document order.
func (c *Collection[T]) List(ctx context.Context) []T {
	return *c.field(c.store.GetData(ctx))
}

// Get returns the first element with the given id.
// Returns ErrNotFound if there is none.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	for _, item := range c.List(ctx) {
		if item.GetID() == id {
			return item, nil
		}
	}
	var zero T
	return zero, ErrNotFound.WithCause(fmt.Errorf("%s %q", c.name, id))
}

// Add appends item to the collection.
// Returns ErrInvalidInput for an empty id and ErrAlreadyExists if the id is taken.
func (c *Collection[T]) Add(ctx context.Context, item T) error {
	id := item.GetID()
	if id == "" {
		return ErrInvalidInput.WithCause(fmt.Errorf("%s item has no id", c.name))
	}

	return c.mutate(ctx, OpAdd, id, func(items *[]T) error {
		if slices.ContainsFunc(*items, func(existing T) bool { return existing.GetID() == id }) {
			return ErrAlreadyExists.WithCause(fmt.Errorf("%s %q", c.name, id))
		}
		*items = append(*items, item)
		return nil
	})
}

// Update replaces every element whose id matches item's. An unknown id leaves the
// collection unchanged and is not an error.
func (c *Collection[T]) Update(ctx context.Context, item T) error {
	id := item.GetID()
	return c.mutate(ctx, OpUpdate, id, func(items *[]T) error {
		for i := range *items {
			if (*items)[i].GetID() == id {
				(*items)[i] = item
			}
		}
		return nil
	})
}

// Delete removes every element with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, OpDelete, id, func(items *[]T) error {
		*items = slices.DeleteFunc(*items, func(existing T) bool { return existing.GetID() == id })
		return nil
	})
}

func (c *Collection[T]) mutate(ctx context.Context, op Op, id string, fn func(*[]T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := c.store
	s.mu.Lock()
	doc := s.GetData(ctx)
	if err := fn(c.field(doc)); err != nil {
		s.mu.Unlock()
		return err
	}
	err := s.write(ctx, doc)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%s %s %q: %w", op, c.name, id, err)
	}

	s.publish(Change{Op: op, Collection: c.name, ID: id}, doc)
	return nil
}
