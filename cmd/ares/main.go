// ares runs the extraction pipeline over a single document and prints the
// result as JSON.
//
// Usage: go run ./cmd/ares --file notes.txt --doc-id doc1 [--patterns lib.yaml] [--herts]
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/mrfishcar/ares"
	"github.com/mrfishcar/ares/internal/config"
)

func main() {
	log.Println("ares - rule-based extraction pipeline")

	config.LoadDotEnv(".env")

	var (
		filePath    = flag.String("file", "", "path to the input document (defaults to stdin)")
		docID       = flag.String("doc-id", "doc1", "document id")
		patternsLib = flag.String("patterns", "", "optional YAML pattern-library file")
		generate    = flag.Bool("herts", false, "generate HERT tags")
		stats       = flag.Bool("stats", false, "report this process's CPU/memory usage on exit")
	)
	flag.Parse()

	text, err := readInput(*filePath)
	if err != nil {
		log.Fatalf("[ares] failed to read input: %v", err)
	}

	cfg := config.Load()

	var opts ares.Options
	opts.GenerateHERTs = *generate
	if *patternsLib != "" {
		patterns, blocked, err := config.LoadPatternLibrary(*patternsLib)
		if err != nil {
			log.Fatalf("[ares] failed to load pattern library %s: %v", *patternsLib, err)
		}
		opts.PatternLibrary = patterns
		opts.BlockedTokens = blocked
	}

	engine := ares.New(cfg)
	result, err := engine.Extract(*docID, text, opts)
	if err != nil {
		log.Fatalf("[ares] extraction failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("[ares] failed to encode result: %v", err)
	}

	if *stats {
		reportProcessStats()
	}
}

// reportProcessStats prints a one-shot CPU/memory snapshot of this
// process to stderr, a simplified, single-sample form of the teacher's
// polling CPUWatcher (internal/budget/cpuwatcher.go).
func reportProcessStats() {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Printf("[ares] stats unavailable: %v", err)
		return
	}
	cpuPct, _ := proc.CPUPercent()
	mem, err := proc.MemoryInfo()
	if err != nil {
		log.Printf("[ares] cpu=%.1f%% mem=unavailable", cpuPct)
		return
	}
	log.Printf("[ares] cpu=%.1f%% rss=%dKB", cpuPct, mem.RSS/1024)
}

func readInput(path string) (string, error) {
	if path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}
