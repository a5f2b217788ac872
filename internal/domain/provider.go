package domain

import (
	"context"
	"errors"
)

// ErrNotAvailable is returned by a provider that never serves the requested kind
var ErrNotAvailable = errors.New("not available from provider")

// Provider produces candidate URLs for a standard
type Provider interface {
	// Name returns the provider name used in logs and history
	Name() string

	// URLFor returns the candidate URL, or ErrNotAvailable for kinds the provider does not serve
	URLFor(id StandardID, year int, kind ComponentKind) (string, error)
}

// Fetcher retrieves one URL into a destination path.
// Failures are reported in the outcome, never as a panic.
type Fetcher interface {
	Fetch(ctx context.Context, url, destPath string) Outcome
}

// Catalog looks up standard metadata
type Catalog interface {
	Lookup(ctx context.Context, id StandardID) (*Standard, error)
}
