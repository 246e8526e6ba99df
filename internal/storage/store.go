package storage

import (
	"context"

	"odatadoc/internal/ir"
)

// OperationStore persists scanned operations between the scan and the
// generate steps.
type OperationStore interface {
	// SaveOperations replaces the stored snapshot with ops.
	SaveOperations(ctx context.Context, ops []*ir.Operation) error

	// ReplaceFiles drops every operation of files and stores ops instead.
	ReplaceFiles(ctx context.Context, files []string, ops []*ir.Operation) error

	// LoadOperations returns every stored operation ordered by file and name.
	LoadOperations(ctx context.Context) ([]*ir.Operation, error)

	// FindByCategory returns the operations of one category slug.
	FindByCategory(ctx context.Context, slug string) ([]*ir.Operation, error)

	// Projects returns the projects referenced by stored operations.
	Projects(ctx context.Context) ([]ir.Project, error)

	Close() error
}
