// Command littlesearch builds the keyword index for a document manifest and
// answers two-keyword queries from the command line or standard input.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "littlesearch: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("littlesearch", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to config file")
	docs := fs.String("docs", "", "document manifest (overrides config)")
	noise := fs.String("noise", "", "noise-word file (overrides config)")
	dir := fs.String("dir", "", "directory documents are resolved against (overrides config)")
	kw1 := fs.String("kw1", "", "first keyword")
	kw2 := fs.String("kw2", "", "second keyword")
	verbose := fs.Bool("v", false, "print each keyword's occurrence list before the result")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *docs != "" {
		cfg.Indexer.Manifest = *docs
	}
	if *noise != "" {
		cfg.Indexer.NoiseWords = *noise
	}
	if *dir != "" {
		cfg.Indexer.DocumentDir = *dir
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	engine := indexer.NewEngine(cfg.Indexer, source.NewFileSource(cfg.Indexer.DocumentDir))
	_, stats, err := engine.Build(ctx)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}
	slog.Debug("index ready", "documents", stats.Documents, "keywords", stats.Keywords)

	opts := executor.Options{Limit: cfg.Search.MaxResults, Dedupe: cfg.Search.Dedupe}
	if *kw1 != "" || *kw2 != "" {
		printResult(stdout, engine, *kw1, *kw2, opts, *verbose)
		return nil
	}

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "keywords (kw1 kw2, blank to quit)> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			break
		}
		if len(fields) != 2 {
			fmt.Fprintln(stdout, "enter exactly two keywords")
			continue
		}
		printResult(stdout, engine, fields[0], fields[1], opts, *verbose)
	}
	return scanner.Err()
}

func printResult(w io.Writer, engine *indexer.Engine, kw1, kw2 string, opts executor.Options, verbose bool) {
	idx := engine.Index()
	if verbose {
		for _, kw := range []string{kw1, kw2} {
			list, _ := idx.Lookup(tokenizer.FoldQuery(kw))
			occs := make([]string, len(list))
			for i, o := range list {
				occs[i] = o.String()
			}
			fmt.Fprintf(w, "%s: %s\n", kw, strings.Join(occs, " "))
		}
	}
	docs, found := executor.Search(idx, kw1, kw2, opts)
	if !found {
		fmt.Fprintln(w, "no match")
		return
	}
	for _, doc := range docs {
		fmt.Fprintln(w, doc)
	}
}
