package main

import (
	"fmt"
	"os"

	"github.com/lcolaco/placetap/internal/tui"
)

var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "scan":
			if err := runScan(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "export":
			if err := runExport(os.Args[2:]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			return
		case "version":
			fmt.Println("placetap " + version)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	// No subcommand → launch TUI
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `placetap - business directory scraper

Usage:
  placetap                Launch interactive TUI
  placetap scan [flags]   Run a headless scan (prompts for missing inputs)
  placetap export [flags] Export .db to CSV
  placetap version        Show version

Run 'placetap scan --help' or 'placetap export --help' for flags.
`)
}
