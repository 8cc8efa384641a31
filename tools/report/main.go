// Command report prints a summary of recorded self-play turns.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/brensch/snekstar/config"
)

func main() {
	data := flag.String("data", config.String("SNEK_REPORT_DATA", "data/generated/**/*.parquet"), "Glob of turn parquet batches")
	flag.Parse()

	db, err := openDB(*data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	s, err := summarize(context.Background(), db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
	if err := s.Write(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		os.Exit(1)
	}
}
