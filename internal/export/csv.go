// Package export writes business records to semicolon-delimited CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/lcolaco/placetap/internal/model"
)

// DefaultFilename is used when no output path is given.
const DefaultFilename = "businesses.csv"

// ErrNoData reports an empty record set. Callers surface it as a notice,
// not a failure; no file is written.
var ErrNoData = errors.New("no data to save")

// WriteCSV writes a header row plus one row per business, fields separated
// by semicolon. The Email column is only present when the run harvested
// emails. An empty slice writes nothing and returns ErrNoData.
func WriteCSV(businesses []model.Business, path string, includeEmail bool) error {
	if len(businesses) == 0 {
		return ErrNoData
	}
	if path == "" {
		path = DefaultFilename
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	header := []string{"Name", "Website", "Phone", "Address"}
	if includeEmail {
		header = []string{"Name", "Website", "Phone", "Email", "Address"}
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, b := range businesses {
		row := []string{b.Name, b.Website, b.Phone, b.Address}
		if includeEmail {
			row = []string{b.Name, b.Website, b.Phone, b.Email, b.Address}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}
