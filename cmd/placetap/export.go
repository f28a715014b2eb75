package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lcolaco/placetap/internal/engine/storage"
	"github.com/lcolaco/placetap/internal/export"
	"github.com/lcolaco/placetap/internal/model"
)

func runExport(args []string) error {
	var dbPath, outputPath string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&dbPath, "db", "", "Path to .db file (required)")
	fs.StringVar(&outputPath, "output", "", "Output CSV path (default: same dir as db)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: placetap export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  placetap export -db ./projects/placetap_20260829.db\n")
		fmt.Fprintf(os.Stderr, "  placetap export -db data.db -output results.csv\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if dbPath == "" {
		return fmt.Errorf("-db is required")
	}

	if outputPath == "" {
		dir := filepath.Dir(dbPath)
		base := strings.TrimSuffix(filepath.Base(dbPath), ".db")
		outputPath = filepath.Join(dir, base+".csv")
	}

	businesses, err := storage.Load(dbPath)
	if err != nil {
		return fmt.Errorf("loading db: %w", err)
	}

	// Stored records always carry an email cell; only write the column
	// when at least one run actually harvested something.
	includeEmail := false
	for _, b := range businesses {
		if b.Email != model.NoEmail {
			includeEmail = true
			break
		}
	}

	if err := export.WriteCSV(businesses, outputPath, includeEmail); err != nil {
		if err == export.ErrNoData {
			fmt.Fprintln(os.Stderr, "No data to save.")
			return nil
		}
		return fmt.Errorf("exporting: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Exported %d businesses to %s\n", len(businesses), outputPath)
	return nil
}
