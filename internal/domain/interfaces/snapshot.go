package interfaces

import "context"

// SnapshotStore holds a previously fetched symbol list used when the exchange is unreachable
type SnapshotStore interface {
	// Load returns the stored symbols in stored order
	Load(ctx context.Context) ([]string, error)

	// Save records a freshly fetched list. Read-only stores ignore it.
	Save(ctx context.Context, symbols []string) error

	// Backend names the implementation for logs and metrics
	Backend() string

	Close() error
}

// SymbolWriter emits a final, already sorted symbol list
type SymbolWriter interface {
	Write(symbols []string) error
}
