// Package id generates the prefixed identifiers the desk assigns to records it creates itself.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for generated IDs.
const (
	PrefixHistory   = "hist"
	PrefixClient    = "sse"
	PrefixImprint   = "imp"
	PrefixPseudonym = "ps"
	PrefixSeries    = "ser"
	PrefixBook      = "book"
	PrefixTask      = "task"
	PrefixSale      = "sale"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "hist-V1StGXR8_Z5jdHi6B-myT").
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// History records are built in pure helpers that have no error path, so they use this.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
