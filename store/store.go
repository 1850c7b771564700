// Package store persists result tables. A table is saved under a run
// identifier, and can be loaded back by the same identifier.
//
// Tables are written as CSV with the columns survey, year, est, lwr, upr,
// and cv, either to an io.Writer, to an S3 bucket, or to a results table in
// SQLite or Postgres.
package store

import (
	"context"

	"github.com/exascience/strataboot"
)

// A Sink receives the result table of every successful run.
type Sink interface {
	Save(ctx context.Context, runID string, table strataboot.ResultTable) error
}

// A Source returns a previously saved result table.
type Source interface {
	Load(ctx context.Context, runID string) (strataboot.ResultTable, error)
}
