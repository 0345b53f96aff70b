// Command kgx drives the extraction pipeline from the command line:
// load records from a file, run extraction, write results. Flags
// override a JSON config file; KGX_LLM_* environment variables override
// both, matching the teacher's layered config precedence
// (env > flags > file > DefaultConfig()).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dpeckham/kgx"
	"github.com/dpeckham/kgx/convert"
	"github.com/dpeckham/kgx/domain"
	"github.com/dpeckham/kgx/loader"
	"github.com/dpeckham/kgx/store"
	"github.com/dpeckham/kgx/triple"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("kgx: fatal", "err", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("kgx", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a JSON config file")
	input := fs.String("input", "", "path to the input file")
	format := fs.String("format", "jsonl", "input format: jsonl, csv, xlsx, pdf")
	idCol := fs.String("id-col", "id", "id column name (csv/xlsx)")
	textCol := fs.String("text-col", "text", "text column name (csv/xlsx)")
	sheet := fs.String("sheet", "Sheet1", "sheet name (xlsx)")
	domainDir := fs.String("domain", "", "path to the domain resource directory")
	domainID := fs.String("domain-id", "", "domain id for metadata (defaults to domain dir basename)")
	mode := fs.String("mode", "open", "extraction mode: open, constrained")
	maxDisconnected := fs.Int("max-disconnected", 1, "target component count for refinement")
	maxIterations := fs.Int("max-iterations", 5, "max refinement iterations (0 disables refinement)")
	temperature := fs.Float64("temperature", 0, "LM sampling temperature")
	concurrency := fs.Int("concurrency", 16, "max records processed concurrently")
	provider := fs.String("provider", "ollama", "LLM provider: ollama, lmstudio, openrouter, openai, groq, xai, gemini, custom")
	model := fs.String("model", "", "LLM model identifier")
	baseURL := fs.String("base-url", "", "LLM base URL override")
	cachePath := fs.String("cache", "", "optional sqlite idempotency cache path")
	out := fs.String("out", "", "output path (defaults to stdout)")
	outFormat := fs.String("out-format", "json", "output format: json, graphml, ntriples")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := kgx.DefaultConfig()
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			return fmt.Errorf("kgx: read config file: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("kgx: parse config file: %w", err)
		}
	}

	applyFlagOverrides(&cfg, fs, *domainDir, *domainID, *mode, *maxDisconnected, *maxIterations, *temperature, *concurrency, *provider, *model, *baseURL)
	applyEnvOverrides(&cfg)

	if *input == "" {
		return fmt.Errorf("kgx: -input is required")
	}
	records, err := loadRecords(*input, *format, *idCol, *textCol, *sheet)
	if err != nil {
		return err
	}

	engine, err := kgx.NewEngine(cfg)
	if err != nil {
		return fmt.Errorf("kgx: build engine: %w", err)
	}

	var cache *store.Store
	if *cachePath != "" {
		cache, err = store.Open(*cachePath)
		if err != nil {
			return fmt.Errorf("kgx: open cache: %w", err)
		}
		defer cache.Close()
	}

	results := processWithCache(context.Background(), engine, cache, cfg.DomainID, records)

	w := os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			return fmt.Errorf("kgx: create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	return writeResults(w, *outFormat, results)
}

func applyFlagOverrides(cfg *kgx.Config, fs *flag.FlagSet, domainDir, domainID, mode string, maxDisconnected, maxIterations int, temperature float64, concurrency int, provider, model, baseURL string) {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { visited[f.Name] = true })

	if domainDir != "" {
		cfg.DomainDir = domainDir
	}
	if domainID != "" {
		cfg.DomainID = domainID
	}
	if visited["mode"] {
		cfg.Mode = parseMode(mode)
	}
	if visited["max-disconnected"] {
		cfg.MaxDisconnected = maxDisconnected
	}
	if visited["max-iterations"] {
		cfg.MaxIterations = maxIterations
	}
	if visited["temperature"] {
		cfg.Temperature = temperature
	}
	if visited["concurrency"] {
		cfg.Concurrency = concurrency
	}
	if visited["provider"] {
		cfg.LLM.Provider = provider
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	if baseURL != "" {
		cfg.LLM.BaseURL = baseURL
	}
}

func applyEnvOverrides(cfg *kgx.Config) {
	if v := os.Getenv("KGX_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("KGX_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("KGX_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("KGX_LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
}

func parseMode(s string) domain.Mode {
	if strings.ToLower(s) == "constrained" {
		return domain.ModeConstrained
	}
	return domain.ModeOpen
}

func loadRecords(path, format, idCol, textCol, sheet string) ([]loader.Record, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("kgx: open input: %w", err)
		}
		defer f.Close()
		return loader.FromJSONL(f)
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("kgx: open input: %w", err)
		}
		defer f.Close()
		return loader.FromCSV(f, idCol, textCol)
	case "xlsx":
		return loader.FromXLSX(path, sheet, idCol, textCol)
	case "pdf":
		return loader.FromPDF(path)
	default:
		return nil, kgx.ErrUnsupportedFormat
	}
}

func processWithCache(ctx context.Context, engine *kgx.Engine, cache *store.Store, domainID string, records []loader.Record) []kgx.ExtractionResult {
	if cache == nil {
		return engine.ExtractBatch(ctx, records)
	}

	results := make([]kgx.ExtractionResult, len(records))
	var toRun []loader.Record
	var toRunIdx []int
	hashes := make(map[string]string, len(records))

	for i, rec := range records {
		hash := store.ContentHash(rec.Text)
		hashes[rec.ID] = hash
		if cached, found, err := cache.Lookup(ctx, domainID, rec.ID, hash); err == nil && found {
			results[i] = cached
			continue
		}
		toRun = append(toRun, rec)
		toRunIdx = append(toRunIdx, i)
	}

	if len(toRun) > 0 {
		fresh := engine.ExtractBatch(ctx, toRun)
		for j, res := range fresh {
			i := toRunIdx[j]
			results[i] = res
			if err := cache.Put(ctx, domainID, res.RecordID, hashes[res.RecordID], res); err != nil {
				slog.Warn("kgx: cache write failed", "record_id", res.RecordID, "err", err)
			}
		}
	}
	return results
}

func writeResults(w io.Writer, format string, results []kgx.ExtractionResult) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		for _, res := range results {
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("kgx: write result: %w", err)
			}
		}
		return nil
	case "graphml":
		return convert.ToGraphML(w, allTriples(results))
	case "ntriples":
		return convert.ToNTriples(w, allTriples(results))
	default:
		return kgx.ErrUnsupportedFormat
	}
}

func allTriples(results []kgx.ExtractionResult) []triple.Triple {
	var all []triple.Triple
	for _, r := range results {
		all = append(all, r.Triples...)
	}
	return all
}
