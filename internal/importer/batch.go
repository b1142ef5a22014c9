// Package importer implements the marketplace order import pipeline: file
// decoding, locale-aware value parsing, master-data resolution, order
// upsert by natural key, and all-or-nothing batch commit with per-row
// error aggregation.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hfauzan/marketimport/internal/store"
)

// Service drives the pipeline across all rows of one uploaded file.
type Service struct {
	st store.Beginner
}

// NewService creates a Service on the given store.
func NewService(st store.Beginner) *Service {
	return &Service{st: st}
}

// BatchResult is the outcome of a fully committed batch.
type BatchResult struct {
	// OrderIDs are the identifiers of every order touched (created or
	// updated) in source order, deduplicated.
	OrderIDs []int64

	// Rows is the number of data rows processed.
	Rows int
}

// ImportBatch decodes the file and processes every row inside one store
// transaction. If any row fails the whole batch is rolled back and an
// ImportError listing every failed row is returned; otherwise the
// transaction commits and the touched order IDs are returned.
//
// Row failures never abort sibling rows: all rows are attempted and all
// outcomes collected before the commit-or-rollback decision.
func (s *Service) ImportBatch(ctx context.Context, blob []byte, ft FileType, bc BatchContext) (*BatchResult, error) {
	rows, err := Decode(blob, ft)
	if err != nil {
		return nil, err
	}

	tx, err := s.st.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	upserter := NewUpserter(tx)

	var (
		failures []RowFailure
		orderIDs []int64
		seen     = make(map[int64]bool)
	)

	for i, row := range rows {
		rowNum := i + 1

		orderID, err := upserter.Upsert(ctx, row, bc)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				failures = append(failures, RowFailure{
					Row:     rowNum,
					Kind:    FailureValidation,
					Message: verr.Msg,
				})
			} else {
				failures = append(failures, RowFailure{
					Row:     rowNum,
					Kind:    FailureUnexpected,
					Message: err.Error(),
				})
				slog.Error("error importing row",
					"row", rowNum,
					"order_number", row[colOrderNumber],
					"error", err,
				)
			}
			continue
		}

		if !seen[orderID] {
			seen[orderID] = true
			orderIDs = append(orderIDs, orderID)
		}
	}

	if len(failures) > 0 {
		// Any failed row rejects the batch; the deferred rollback discards
		// every record this run created or modified.
		return nil, &ImportError{Failures: failures}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit import transaction: %w", err)
	}

	slog.Info("batch imported",
		"rows", len(rows),
		"orders", len(orderIDs),
	)

	return &BatchResult{OrderIDs: orderIDs, Rows: len(rows)}, nil
}
