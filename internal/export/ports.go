// Package export defines the outbound statement export port. The worker
// mirrors records into an external statement sink; the ledger itself never
// reads anything back from it.
package export

import (
	"context"

	"bolsillo/internal/core"
)

// StatementWriter appends one record to the statement sink and returns an
// opaque row reference for troubleshooting.
type StatementWriter interface {
	Append(ctx context.Context, rec core.Record) (rowRef string, err error)
}
