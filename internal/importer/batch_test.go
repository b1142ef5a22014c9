package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/hfauzan/marketimport/internal/store"
)

var batchHeaders = []string{
	colOrderNumber,
	colOrderStatus,
	colBuyerUsername,
	colShippingOption,
	colOrderCreated,
	colSKUReference,
	colProductName,
	colOriginalPrice,
	colDiscountedPrice,
	colQuantity,
}

// batchCSV renders rows as a CSV blob using the batchHeaders columns.
func batchCSV(t *testing.T, rows []RawRow) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(batchHeaders); err != nil {
		t.Fatal(err)
	}
	for _, row := range rows {
		record := make([]string, len(batchHeaders))
		for i, h := range batchHeaders {
			record[i] = row[h]
		}
		if err := w.Write(record); err != nil {
			t.Fatal(err)
		}
	}
	w.Flush()
	return buf.Bytes()
}

func TestImportBatchCommit(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mpID := seedReferences(t, st)
	svc := NewService(st)

	blob := batchCSV(t, []RawRow{
		sampleRow("INV-001", "andi"),
		sampleRow("INV-002", "budi"),
	})

	result, err := svc.ImportBatch(ctx, blob, FileTypeCSV, BatchContext{MarketplaceID: mpID})
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if len(result.OrderIDs) != 2 {
		t.Errorf("got %d order IDs, want 2", len(result.OrderIDs))
	}
	if result.Rows != 2 {
		t.Errorf("rows = %d, want 2", result.Rows)
	}

	// Committed: visible in the base store.
	if n := st.Count(store.KindOrder); n != 2 {
		t.Errorf("order count = %d, want 2", n)
	}
	if n := st.Count(store.KindOrderLine); n != 2 {
		t.Errorf("line count = %d, want 2", n)
	}
}

func TestImportBatchRollbackOnMissingBuyer(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mpID := seedReferences(t, st)
	svc := NewService(st)

	rows := []RawRow{
		sampleRow("INV-001", "andi"),
		sampleRow("INV-002", "budi"),
		sampleRow("INV-003", "citra"),
		sampleRow("INV-004", ""), // no buyer identifier
		sampleRow("INV-005", "dewi"),
	}

	_, err := svc.ImportBatch(ctx, batchCSV(t, rows), FileTypeCSV, BatchContext{MarketplaceID: mpID})

	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("err = %v, want ImportError", err)
	}
	if len(impErr.Failures) != 1 {
		t.Fatalf("got %d failures, want exactly 1: %v", len(impErr.Failures), impErr.Failures)
	}
	f := impErr.Failures[0]
	if f.Row != 4 || f.Kind != FailureValidation {
		t.Errorf("failure = %+v, want row 4 validation", f)
	}
	if !strings.HasPrefix(f.String(), "Row 4: Validation error - ") {
		t.Errorf("failure message = %q", f.String())
	}

	// Full rollback: the other four rows' effects are gone too.
	if n := st.Count(store.KindOrder); n != 0 {
		t.Errorf("order count after rollback = %d, want 0", n)
	}
	if n := st.Count(store.KindPartner); n != 0 {
		t.Errorf("partner count after rollback = %d, want 0", n)
	}
	if n := st.Count(store.KindOrderLine); n != 0 {
		t.Errorf("line count after rollback = %d, want 0", n)
	}
}

func TestImportBatchUnparsableDateIsNotFatal(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mpID := seedReferences(t, st)
	svc := NewService(st)

	rows := []RawRow{
		sampleRow("INV-001", "andi"),
		sampleRow("INV-002", "budi"),
		sampleRow("INV-003", "citra"),
	}
	rows[1][colOrderCreated] = "not a date at all"

	result, err := svc.ImportBatch(ctx, batchCSV(t, rows), FileTypeCSV, BatchContext{MarketplaceID: mpID})
	if err != nil {
		t.Fatalf("ImportBatch: %v", err)
	}
	if len(result.OrderIDs) != 3 {
		t.Fatalf("got %d orders, want 3", len(result.OrderIDs))
	}

	// The bad date degraded to absent, not to a row failure.
	order, err := st.FindOne(ctx, store.KindOrder, store.Eq("nomor_pesanan", "INV-002"))
	if err != nil || order == nil {
		t.Fatalf("INV-002 not found: %v", err)
	}
	if got := order.Fields["order_creation_time"]; got != nil {
		t.Errorf("order_creation_time = %v, want nil", got)
	}
}

func TestImportBatchSharedOrderNumber(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mpID := seedReferences(t, st)
	svc := NewService(st)

	row1 := sampleRow("INV-002", "andi")
	row1[colOrderStatus] = "Perlu Dikirim"
	row2 := sampleRow("INV-002", "andi")
	row2[colOrderStatus] = "Selesai"

	result, err := svc.ImportBatch(ctx, batchCSV(t, []RawRow{row1, row2}), FileTypeCSV,
		BatchContext{MarketplaceID: mpID})
	if err != nil {
		t.Fatal(err)
	}

	// One order touched, reported once.
	if len(result.OrderIDs) != 1 {
		t.Errorf("got %d order IDs, want 1", len(result.OrderIDs))
	}
	if n := st.Count(store.KindOrder); n != 1 {
		t.Errorf("order count = %d, want 1", n)
	}

	// Header carries the second row's values; both lines survived.
	order, _ := st.FindOne(ctx, store.KindOrder, store.Eq("nomor_pesanan", "INV-002"))
	if order.Fields["order_status"] != "Selesai" {
		t.Errorf("order_status = %v, want second row's value", order.Fields["order_status"])
	}
	if n := st.Count(store.KindOrderLine); n != 2 {
		t.Errorf("line count = %d, want 2", n)
	}
}

func TestImportBatchTwiceIsIdempotentForMasterData(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mpID := seedReferences(t, st)
	svc := NewService(st)
	bc := BatchContext{MarketplaceID: mpID}

	blob := batchCSV(t, []RawRow{sampleRow("INV-001", "andi")})

	if _, err := svc.ImportBatch(ctx, blob, FileTypeCSV, bc); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ImportBatch(ctx, blob, FileTypeCSV, bc); err != nil {
		t.Fatal(err)
	}

	// No duplicate master data: one partner, one carrier, and the product
	// pair (delivery + SKU-1).
	if n := st.Count(store.KindPartner); n != 1 {
		t.Errorf("partner count = %d, want 1", n)
	}
	if n := st.Count(store.KindCarrier); n != 1 {
		t.Errorf("carrier count = %d, want 1", n)
	}
	if n := st.Count(store.KindProduct); n != 2 {
		t.Errorf("product count = %d, want 2", n)
	}

	// But the order line appended again: header overwrite, line append.
	if n := st.Count(store.KindOrder); n != 1 {
		t.Errorf("order count = %d, want 1", n)
	}
	if n := st.Count(store.KindOrderLine); n != 2 {
		t.Errorf("line count = %d, want 2", n)
	}
}

func TestImportBatchAllRowsFailValidation(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	mpID := seedReferences(t, st)
	svc := NewService(st)

	rows := []RawRow{
		sampleRow("INV-001", ""),
		sampleRow("INV-002", ""),
	}

	_, err := svc.ImportBatch(ctx, batchCSV(t, rows), FileTypeCSV, BatchContext{MarketplaceID: mpID})

	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("err = %v, want ImportError", err)
	}
	if len(impErr.Failures) != 2 {
		t.Errorf("got %d failures, want 2", len(impErr.Failures))
	}
	if n := st.Count(store.KindOrder); n != 0 {
		t.Errorf("order count = %d, want 0", n)
	}
}

func TestImportBatchUnexpectedFailureClassification(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	// Payment mode and workflow exist, but the default delivery product is
	// missing, so carrier creation blows up mid-row.
	if _, err := st.Create(ctx, store.KindPaymentMode, store.Fields{"name": paymentModeName}); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Create(ctx, store.KindWorkflow, store.Fields{"name": workflowName}); err != nil {
		t.Fatal(err)
	}
	svc := NewService(st)

	blob := batchCSV(t, []RawRow{sampleRow("INV-001", "andi")})
	_, err := svc.ImportBatch(ctx, blob, FileTypeCSV, BatchContext{})

	var impErr *ImportError
	if !errors.As(err, &impErr) {
		t.Fatalf("err = %v, want ImportError", err)
	}
	if impErr.Failures[0].Kind != FailureUnexpected {
		t.Errorf("failure kind = %q, want %q", impErr.Failures[0].Kind, FailureUnexpected)
	}
	if !strings.HasPrefix(impErr.Failures[0].String(), "Row 1: Unexpected error - ") {
		t.Errorf("failure message = %q", impErr.Failures[0].String())
	}
}

func TestImportBatchDecodeFailureAbortsBeforeRows(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	seedReferences(t, st)
	svc := NewService(st)

	var decErr *DecodeError
	_, err := svc.ImportBatch(ctx, []byte("not a workbook"), FileTypeXLSX, BatchContext{})
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
}
