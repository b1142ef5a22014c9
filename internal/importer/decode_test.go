package importer

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ----------------------------------------------------------------------------
// CSV decoding
// ----------------------------------------------------------------------------

func TestDecodeCSV(t *testing.T) {
	data := []byte("No. Pesanan,Username (Pembeli),Jumlah\n" +
		"INV-001,andi,2\n" +
		"INV-002,budi,1\n")

	rows, err := Decode(data, FileTypeCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0]["No. Pesanan"] != "INV-001" {
		t.Errorf("row 0 order number = %q", rows[0]["No. Pesanan"])
	}
	if rows[1]["Username (Pembeli)"] != "budi" {
		t.Errorf("row 1 username = %q", rows[1]["Username (Pembeli)"])
	}
}

func TestDecodeCSVLegacyEncoding(t *testing.T) {
	// "resumé" in ISO-8859-1: 0xE9 is not valid UTF-8, so the decoder must
	// fall through to the legacy single-byte encodings.
	data := []byte("Name,Note\nandi,resum\xe9\n")

	rows, err := Decode(data, FileTypeCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rows[0]["Note"]; got != "resumé" {
		t.Errorf("Note = %q, want %q", got, "resumé")
	}
}

func TestDecodeCSVShortRow(t *testing.T) {
	data := []byte("A,B,C\n1,2\n")

	rows, err := Decode(data, FileTypeCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rows[0]["C"]; got != "" {
		t.Errorf("missing trailing cell = %q, want empty", got)
	}
}

func TestDecodeCSVDuplicateHeaderLastWins(t *testing.T) {
	data := []byte("A,A\nfirst,second\n")

	rows, err := Decode(data, FileTypeCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got := rows[0]["A"]; got != "second" {
		t.Errorf("duplicate header value = %q, want %q", got, "second")
	}
}

func TestDecodeCSVEmptyFile(t *testing.T) {
	rows, err := Decode(nil, FileTypeCSV)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

// ----------------------------------------------------------------------------
// Spreadsheet decoding
// ----------------------------------------------------------------------------

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(f.SetSheetRow(sheet, "A1", &[]any{"No. Pesanan", "Jumlah", "Harga Awal"}))
	must(f.SetSheetRow(sheet, "A2", &[]any{"INV-001", 2.0, 15000.0}))
	must(f.SetSheetRow(sheet, "A3", &[]any{"INV-002", 1.0, nil}))

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := Decode(buf.Bytes(), FileTypeXLSX)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// Integral floats render without a fractional part.
	if got := rows[0]["Jumlah"]; got != "2" {
		t.Errorf("Jumlah = %q, want %q", got, "2")
	}
	if got := rows[0]["Harga Awal"]; got != "15000" {
		t.Errorf("Harga Awal = %q, want %q", got, "15000")
	}
	// Absent cells render as empty strings.
	if got := rows[1]["Harga Awal"]; got != "" {
		t.Errorf("absent cell = %q, want empty", got)
	}
}

func TestDecodeXLSXCorrupt(t *testing.T) {
	var decErr *DecodeError
	_, err := Decode([]byte("not a workbook"), FileTypeXLSX)
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
}

func TestDecodeXLSCorrupt(t *testing.T) {
	var decErr *DecodeError
	_, err := Decode([]byte("not a workbook"), FileTypeXLS)
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v, want DecodeError", err)
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode([]byte("x"), FileType("pdf"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
}

// ----------------------------------------------------------------------------
// File type inference
// ----------------------------------------------------------------------------

func TestFileTypeForName(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		want   FileType
		wantOK bool
	}{
		{"csv lower", "orders.csv", FileTypeCSV, true},
		{"csv upper", "ORDERS.CSV", FileTypeCSV, true},
		{"xls", "orders.xls", FileTypeXLS, true},
		{"xlsx", "orders.xlsx", FileTypeXLSX, true},
		{"unknown extension", "orders.pdf", "", false},
		{"no extension", "orders", "", false},
		{"middle dot", "export.2024.xlsx", FileTypeXLSX, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FileTypeForName(tt.file)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("FileTypeForName(%q) = %q, %v; want %q, %v",
					tt.file, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
