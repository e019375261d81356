// Package resolver decides, on every load, whether the desk works against the server's
// document, its own local copy, or a reachable server that has nothing stored yet.
package resolver

import (
	"github.com/inkwellpress/editorial-desk/internal/domain"
	"github.com/inkwellpress/editorial-desk/internal/remote"
)

// Source names where the active document came from.
type Source string

const (
	// SourceServer: the server answered with a document; it is authoritative.
	SourceServer Source = "server"
	// SourceEmptyServer: the server answered but holds nothing; the local copy is active
	// and may be offered for a one-time upload.
	SourceEmptyServer Source = "empty_server"
	// SourceLocal: the server could not be reached; the local copy is the only truth.
	SourceLocal Source = "local"
)

// Result is the active document together with its source.
type Result struct {
	Data   *domain.AppData `json:"data"`
	Source Source          `json:"source"`
	// Mirrored reports that a server document was also saved as the local copy.
	// It is only ever set for SourceServer.
	Mirrored bool `json:"mirrored"`
}

// Classify maps a server probe and the local snapshot to the active document.
// It performs no I/O. A nil local snapshot is treated as the seed document.
func Classify(probe remote.FetchResult, local *domain.AppData) Result {
	if local == nil {
		local = domain.Seed()
	}

	switch {
	case probe.Reachable && probe.Data != nil:
		return Result{Data: probe.Data, Source: SourceServer}
	case probe.Reachable:
		return Result{Data: local, Source: SourceEmptyServer}
	default:
		return Result{Data: local, Source: SourceLocal}
	}
}

// Banner is the one-line status a view shows for the source.
func (s Source) Banner() string {
	switch s {
	case SourceServer:
		return "Connected to server"
	case SourceEmptyServer:
		return "Server is empty: push local data to start syncing"
	case SourceLocal:
		return "Disconnected: working from local data"
	default:
		return "Unknown source"
	}
}
