package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/tuannm99/lhindex"
	"github.com/tuannm99/lhindex/internal"
	"github.com/tuannm99/lhindex/internal/storage"
)

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  lhindex build  -csv <file> [-config <yaml>] [-index <file>]
  lhindex lookup -id <id>    [-config <yaml>] [-index <file>]
  lhindex stats              [-config <yaml>] [-index <file>]
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "lookup":
		runLookup(os.Args[2:])
	case "stats":
		runStats(os.Args[2:])
	default:
		usage()
	}
}

// loadConfig resolves the config file, falling back to defaults when
// the default path does not exist.
func loadConfig(path string, explicit bool) *internal.LhConfig {
	cfg, err := internal.LoadConfig(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return internal.DefaultConfig()
		}
		log.Fatalf("load config: %v", err)
	}
	return cfg
}

func setupFlags(fs *flag.FlagSet) (cfgPath, indexPath *string) {
	cfgPath = fs.String("config", "lhindex.yaml", "Path to lhindex yaml config")
	indexPath = fs.String("index", "", "Index file path (overrides config)")
	return cfgPath, indexPath
}

func resolve(fs *flag.FlagSet, cfgPath, indexPath *string) (*internal.LhConfig, string) {
	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg := loadConfig(*cfgPath, explicit)
	if cfg.Log.Debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	path := cfg.IndexPath()
	if *indexPath != "" {
		path = *indexPath
	}
	return cfg, path
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	csvPath := fs.String("csv", "", "CSV file with id,name,bio,manager_id rows")
	cfgPath, indexPath := setupFlags(fs)
	fs.Parse(args)

	if *csvPath == "" {
		log.Fatal("build: -csv is required")
	}

	cfg, path := resolve(fs, cfgPath, indexPath)
	if err := os.MkdirAll(cfg.Storage.Dir, storage.FileMode0755); err != nil {
		log.Fatalf("create data dir: %v", err)
	}

	idx, err := lhindex.Create(path, lhindex.Options{SplitThreshold: cfg.Index.SplitThreshold})
	if err != nil {
		log.Fatalf("create index: %v", err)
	}
	defer idx.Close()

	n, err := idx.BuildFromCSV(*csvPath)
	if err != nil {
		log.Fatalf("build index: %v", err)
	}
	st := idx.Stats()
	if err := idx.Close(); err != nil {
		log.Fatalf("close index: %v", err)
	}
	fmt.Printf("indexed %d records into %s (level=%d buckets=%d pages=%d)\n",
		n, path, st.Level, st.Buckets, st.Pages)
}

func runLookup(args []string) {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	id := fs.Int64("id", 0, "Employee id to look up")
	cfgPath, indexPath := setupFlags(fs)
	fs.Parse(args)

	cfg, path := resolve(fs, cfgPath, indexPath)

	idx, err := lhindex.Open(path, lhindex.Options{SplitThreshold: cfg.Index.SplitThreshold})
	if err != nil {
		log.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	rec, ok, err := idx.Lookup(*id)
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}
	if !ok {
		fmt.Printf("id %d not found\n", *id)
		os.Exit(1)
	}
	fmt.Println(rec)
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	cfgPath, indexPath := setupFlags(fs)
	fs.Parse(args)

	cfg, path := resolve(fs, cfgPath, indexPath)

	idx, err := lhindex.Open(path, lhindex.Options{SplitThreshold: cfg.Index.SplitThreshold})
	if err != nil {
		log.Fatalf("open index: %v", err)
	}
	defer idx.Close()

	fmt.Print(idx.DebugString())
}
