package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Slot is a single named location holding the serialized document.
// Write replaces the stored bytes as a unit; a failed Write leaves the previous bytes intact.
type Slot interface {
	// Read returns the stored bytes, or ErrSlotEmpty if nothing was ever written.
	Read(ctx context.Context) ([]byte, error)
	// Write stores data, or returns ErrQuotaExceeded if data is larger than the slot allows.
	Write(ctx context.Context, data []byte) error
	Close() error
}

// MemorySlot is an in-process Slot with the same quota semantics as BoltSlot.
type MemorySlot struct {
	mu    sync.Mutex
	data  []byte
	quota int64
}

// NewMemorySlot creates an empty slot. A quota of zero or less means unlimited.
func NewMemorySlot(quota int64) *MemorySlot {
	return &MemorySlot{quota: quota}
}

// Read implements Slot.
func (m *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrSlotEmpty
	}
	return slices.Clone(m.data), nil
}

// Write implements Slot.
func (m *MemorySlot) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := checkQuota(data, m.quota); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = slices.Clone(data)
	return nil
}

// Set stores raw bytes without quota checks. Tests use it to plant corrupt documents.
func (m *MemorySlot) Set(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = slices.Clone(data)
}

// Close implements Slot.
func (m *MemorySlot) Close() error { return nil }

func checkQuota(data []byte, quota int64) error {
	if quota > 0 && int64(len(data)) > quota {
		return ErrQuotaExceeded.WithCause(fmt.Errorf("document is %d bytes, quota is %d", len(data), quota))
	}
	return nil
}
