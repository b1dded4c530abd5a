package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/daye10/textsearch/internal/engine"
	"github.com/daye10/textsearch/internal/source"
	"github.com/daye10/textsearch/internal/tokenizer"
	"github.com/daye10/textsearch/pkg/config"
	"github.com/daye10/textsearch/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	textDir := flag.String("dir", "", "directory of text files to index (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *textDir != "" {
		cfg.Index.TextDir = *textDir
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	svc := engine.New(tokenizer.NewSimple(), cfg.Suggest.K)

	if err := rebuild(ctx, svc, cfg); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	fmt.Println(`textsearch shell. Type "help" for commands.`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, args, _ := strings.Cut(line, " ")
		args = strings.TrimSpace(args)

		switch cmd {
		case "search":
			if args == "" {
				fmt.Println("usage: search <query>")
				continue
			}
			results := svc.SearchBM25(args, cfg.Search.K1, cfg.Search.B)
			if len(results) == 0 {
				fmt.Println("no results")
				continue
			}
			limit := cfg.Search.DefaultLimit
			if limit <= 0 || limit > len(results) {
				limit = len(results)
			}
			for i, doc := range results[:limit] {
				fmt.Printf("%2d. %s (%.4f)\n", i+1, doc.DocID, doc.Score)
			}
		case "and":
			if args == "" {
				fmt.Println("usage: and <term> [term...]")
				continue
			}
			docs := svc.SearchBooleanAnd(strings.Fields(args))
			if len(docs) == 0 {
				fmt.Println("no results")
				continue
			}
			for _, id := range docs {
				fmt.Println(id)
			}
		case "suggest":
			words := svc.Suggest(args)
			if len(words) == 0 {
				fmt.Println("no suggestions")
				continue
			}
			fmt.Println(strings.Join(words, ", "))
		case "rebuild":
			if err := rebuild(ctx, svc, cfg); err != nil {
				fmt.Printf("rebuild failed: %v\n", err)
			}
		case "help":
			printHelp()
		case "quit", "exit":
			return
		default:
			fmt.Printf("unknown command %q, type \"help\"\n", cmd)
		}
	}
}

func rebuild(ctx context.Context, svc *engine.Service, cfg *config.Config) error {
	src, err := source.NewDir(cfg.Index.TextDir, cfg.Index.Extension)
	if err != nil {
		return err
	}
	report, err := svc.Rebuild(ctx, src)
	if err != nil {
		return err
	}
	if report.DocsIndexed == 0 {
		slog.Warn("index is empty", "dir", cfg.Index.TextDir)
	}
	fmt.Printf("indexed %d documents, %d terms in %s\n",
		report.DocsIndexed, report.Terms, report.Duration)
	return nil
}

func printHelp() {
	fmt.Println(`commands:
  search <query>      rank documents with BM25
  and <term> [...]    documents containing every term
  suggest <prefix>    top completions for a prefix
  rebuild             re-scan the text directory
  help                this message
  quit                exit`)
}
