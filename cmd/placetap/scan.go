package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lcolaco/placetap/internal/config"
	"github.com/lcolaco/placetap/internal/engine/pipeline"
	"github.com/lcolaco/placetap/internal/engine/storage"
	"github.com/lcolaco/placetap/internal/export"
	"github.com/lcolaco/placetap/internal/model"
	"github.com/lcolaco/placetap/internal/tui"
)

func runScan(args []string) error {
	var params model.SearchParams
	var outputDir, csvName string

	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	fs.StringVar(&params.Location, "location", "", "Location to search (e.g. \"New York\")")
	fs.StringVar(&params.Category, "category", "", "Business category (e.g. restaurants)")
	fs.IntVar(&params.Radius, "radius", model.DefaultRadius, "Search radius in meters")
	fs.BoolVar(&params.HarvestEmails, "emails", false, "Fetch each website and extract email addresses")
	fs.StringVar(&outputDir, "output", ".", "Output directory for project files")
	fs.StringVar(&csvName, "csv", export.DefaultFilename, "CSV filename within the output directory")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: placetap scan [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  placetap scan -location \"New York\" -category restaurants\n")
		fmt.Fprintf(os.Stderr, "  placetap scan -location Madrid -category cafes -radius 2000 -emails -output ./projects\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	// Prompt for anything the flags left blank
	promptMissing(&params)

	if strings.TrimSpace(params.Location) == "" {
		return fmt.Errorf("-location is required")
	}
	if strings.TrimSpace(params.Category) == "" {
		return fmt.Errorf("-category is required")
	}
	params.Normalize()

	key, err := config.LoadAPIKey()
	if err != nil {
		return err
	}
	params.APIKey = key

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	ts := time.Now().Format("20060102_150405")
	baseName := fmt.Sprintf("placetap_%s", ts)
	params.DBPath = filepath.Join(outputDir, baseName+".db")
	logPath := filepath.Join(outputDir, baseName+".log")
	csvPath := filepath.Join(outputDir, csvName)

	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)
	logger.Printf("=== Session start: location=%q category=%q radius=%d emails=%t ===",
		params.Location, params.Category, params.Radius, params.HarvestEmails)

	fmt.Fprintf(os.Stderr, "Log: %s\n", logPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down gracefully...")
		cancel()
	}()

	store, err := storage.NewStore(params.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	startTime := time.Now()
	stats := &pipeline.Stats{}
	fmt.Fprintf(os.Stderr, "Searching: %q (radius %dm)\n", params.Query(), params.Radius)

	businesses, err := pipeline.Run(ctx, params, store, logger, &pipeline.RunOptions{
		Stats: stats,
		OnBusiness: func(b model.Business) {
			fmt.Fprintf(os.Stderr, "\r%d businesses processed", stats.Processed.Load())
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("scanning: %w", err)
	}
	fmt.Fprintln(os.Stderr)

	csvWritten := true
	if werr := export.WriteCSV(businesses, csvPath, params.HarvestEmails); werr != nil {
		if werr == export.ErrNoData {
			csvWritten = false
			fmt.Fprintln(os.Stderr, "No data to save.")
		} else {
			return fmt.Errorf("writing csv: %w", werr)
		}
	}

	duration := time.Since(startTime).Truncate(time.Second)
	logger.Printf("Done: found=%d processed=%d details_errors=%d emails=%d stored=%d",
		stats.HitsFound.Load(), stats.Processed.Load(),
		stats.DetailsErrors.Load(), stats.EmailsFound.Load(), stats.Stored.Load())

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Placetap Complete\n")
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Query:      %s\n", params.Query())
	fmt.Fprintf(os.Stderr, "  Radius:     %dm\n", params.Radius)
	fmt.Fprintf(os.Stderr, "  Found:      %d\n", stats.Processed.Load())
	if params.HarvestEmails {
		fmt.Fprintf(os.Stderr, "  Emails:     %d sites with matches\n", stats.EmailsFound.Load())
	}
	fmt.Fprintf(os.Stderr, "  Duration:   %s\n", duration)
	if csvWritten {
		fmt.Fprintf(os.Stderr, "  CSV:        %s\n", csvPath)
	}
	fmt.Fprintf(os.Stderr, "  Database:   %s\n", params.DBPath)
	fmt.Fprintf(os.Stderr, "  Log:        %s\n", logPath)
	fmt.Fprintf(os.Stderr, "══════════════════════════════\n")

	tui.SaveRecent(params.DBPath)

	return nil
}

// promptMissing asks on stdin for inputs the flags didn't provide. Radius
// falls back to the default on blank or non-numeric input.
func promptMissing(params *model.SearchParams) {
	if strings.TrimSpace(params.Location) != "" && strings.TrimSpace(params.Category) != "" {
		return
	}
	reader := bufio.NewReader(os.Stdin)

	if strings.TrimSpace(params.Location) == "" {
		params.Location = prompt(reader, "Location: ")
	}
	if strings.TrimSpace(params.Category) == "" {
		params.Category = prompt(reader, "Category: ")
	}

	if raw := prompt(reader, fmt.Sprintf("Radius in meters [%d]: ", params.Radius)); raw != "" {
		if r, err := strconv.Atoi(raw); err == nil && r > 0 {
			params.Radius = r
		} else {
			params.Radius = model.DefaultRadius
		}
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Fprint(os.Stderr, label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
