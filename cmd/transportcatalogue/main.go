// Command transportcatalogue is the CLI driver for the two-phase batch
// tool from spec.md §6: `make_base` ingests a JSON description from stdin
// and persists a binary snapshot; `process_requests` loads that snapshot
// and answers a batch of stat_requests to stdout.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/transitline/catalogue/internal/catalogue"
	"github.com/transitline/catalogue/internal/config"
	"github.com/transitline/catalogue/internal/jsonio"
	"github.com/transitline/catalogue/internal/router"
	"github.com/transitline/catalogue/internal/snapshot"
	"github.com/transitline/catalogue/internal/stats"
)

func main() {
	if len(os.Args) != 2 {
		usage()
		os.Exit(1)
	}

	cfg := config.Load()

	var err error
	switch os.Args[1] {
	case "make_base":
		err = runMakeBase(cfg)
	case "process_requests":
		err = runProcessRequests(cfg)
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		log.Fatalf("transportcatalogue: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: transportcatalogue <make_base|process_requests>")
}

// runMakeBase is the ingest phase: stdin JSON -> Catalogue -> Router graph
// -> binary snapshot on disk.
func runMakeBase(cfg *config.Config) error {
	in, err := jsonio.ParseInput(os.Stdin, func(e error) {
		log.Printf("make_base: %v", e)
	})
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	cat := catalogue.New()
	jsonio.Ingest(cat, in.BaseRequests)
	if cfg.Verbose {
		log.Printf("make_base: ingested %d stops, %d routes", cat.StopCount(), len(cat.Routes()))
	}

	rt := router.New(cat)
	rt.SetSettings(in.Routing)
	if err := rt.BuildGraph(); err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	path := cfg.ResolveSnapshotPath(in.Serialization.File)
	if err := snapshot.Save(path, cat, rt, in.Render); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	if cfg.Verbose {
		log.Printf("make_base: wrote snapshot to %s", path)
	}
	return nil
}

// runProcessRequests is the query phase: binary snapshot -> Catalogue +
// Router restored verbatim -> stdin JSON stat_requests -> stdout JSON
// answers, in request order.
func runProcessRequests(cfg *config.Config) error {
	in, err := jsonio.ParseInput(os.Stdin, func(e error) {
		log.Printf("process_requests: %v", e)
	})
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	path := cfg.ResolveSnapshotPath(in.Serialization.File)
	state, err := snapshot.Load(path)
	if err != nil {
		// A malformed snapshot is reported as a fatal error.
		if errors.Is(err, snapshot.ErrMalformed) {
			return fmt.Errorf("loading snapshot: %w", err)
		}
		// Per spec.md §7, an IoError loading the snapshot is a silent
		// skip for process_requests: no crash, no output, clean exit.
		return nil
	}
	if cfg.Verbose {
		log.Printf("process_requests: loaded snapshot build %s", state.BuildID)
	}

	var latency stats.QueryLatency
	answers := make([]interface{}, 0, len(in.StatRequests))
	for _, req := range in.StatRequests {
		start := requestClock()
		answers = append(answers, jsonio.Answer(state.Catalogue, state.Router, state.Render, req))
		latency.Observe(requestClock().Sub(start).Seconds())
	}
	if cfg.Verbose {
		log.Printf("process_requests: answered %d requests, mean=%.6fs stddev=%.6fs",
			latency.Count(), latency.Mean(), latency.StdDev())
	}

	return writeAnswers(answers)
}

// requestClock is isolated so latency measurement never competes with
// query semantics: it is purely diagnostic.
func requestClock() time.Time {
	return time.Now()
}

func writeAnswers(answers []interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(answers)
}
