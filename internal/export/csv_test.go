package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lcolaco/placetap/internal/model"
)

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening csv: %v", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	return rows
}

func TestWriteCSVRoundTrip(t *testing.T) {
	businesses := []model.Business{
		{
			Name:    "Al Forno",
			Address: "12 Main St, New York, NY",
			Website: "https://alforno.example",
			Phone:   "(212) 555-0100",
			Email:   "info@alforno.example",
		},
		{
			Name:    "Broken Teapot",
			Address: "9 Side St; Suite 2",
			Website: model.NoWebsite,
			Phone:   model.NoPhone,
			Email:   model.NoEmail,
		},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(businesses, path, true); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows := readBack(t, path)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}

	wantHeader := []string{"Name", "Website", "Phone", "Email", "Address"}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}

	if rows[1][0] != "Al Forno" || rows[1][3] != "info@alforno.example" {
		t.Errorf("row 1 = %v", rows[1])
	}
	// Placeholders come through verbatim, never as blank cells.
	if rows[2][1] != model.NoWebsite || rows[2][2] != model.NoPhone || rows[2][3] != model.NoEmail {
		t.Errorf("row 2 = %v, want placeholder cells", rows[2])
	}
	// A semicolon inside a field survives quoting.
	if rows[2][4] != "9 Side St; Suite 2" {
		t.Errorf("address = %q", rows[2][4])
	}
}

func TestWriteCSVWithoutEmailColumn(t *testing.T) {
	businesses := []model.Business{
		{Name: "A", Address: "addr", Website: "https://a.example", Phone: "123", Email: model.NoEmail},
	}

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := WriteCSV(businesses, path, false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows := readBack(t, path)
	wantHeader := []string{"Name", "Website", "Phone", "Address"}
	if len(rows[0]) != len(wantHeader) {
		t.Fatalf("header = %v, want %v", rows[0], wantHeader)
	}
	for i, col := range wantHeader {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
	if len(rows[1]) != 4 {
		t.Errorf("row = %v, want 4 columns", rows[1])
	}
}

func TestWriteCSVNoData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := WriteCSV(nil, path, true)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
	// Nothing was written.
	if _, serr := os.Stat(path); !os.IsNotExist(serr) {
		t.Errorf("file exists after empty write")
	}
}
