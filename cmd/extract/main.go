// Command extract runs one extraction batch over files on disk and writes the
// combined text next to them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfg "github.com/feichai0017/text-extractor/config"
	"github.com/feichai0017/text-extractor/internal/models"
	"github.com/feichai0017/text-extractor/internal/service/extraction"
	"github.com/feichai0017/text-extractor/internal/store"
	"github.com/feichai0017/text-extractor/pkg/converters"
	"github.com/feichai0017/text-extractor/pkg/logger"
)

func main() {
	out := flag.String("out", "extracted_text.txt", "where to write the combined text")
	asJSON := flag.Bool("json", false, "write records as JSON instead of text")
	export := flag.Bool("export", false, "also push the text to the configured export backend")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] file...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	appCfg := cfg.GetAppConfig()

	// 初始化日志
	log, err := logger.NewLogger(
		logger.WithLevel(appCfg.LogLevel),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
		logger.WithErrorPaths(nil),
	)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := run(appCfg, log, flag.Args(), *out, *asJSON, *export); err != nil {
		log.Error("Extraction failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(appCfg *cfg.AppConfig, log logger.Logger, paths []string, out string, asJSON, export bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	files, err := extraction.FromPaths(paths)
	if err != nil {
		return err
	}

	records, err := store.Open(appCfg.DatabasePath, log)
	if err != nil {
		return err
	}
	defer records.Close()
	if err := records.Reset(ctx); err != nil {
		return err
	}

	svc, closeService, err := extraction.GetService(ctx, appCfg, records, log)
	if err != nil {
		return err
	}
	defer closeService()

	result, err := svc.ProcessBatch(ctx, files)
	printMessages(result)
	if err != nil {
		return err
	}

	var conv converters.DocumentConverter = converters.NewTextConverter()
	if asJSON {
		conv = converters.NewJSONConverter()
	}
	data, err := svc.Artifact(ctx, conv)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	log.Info("Wrote extracted text",
		logger.String("path", out),
		logger.Int("records", result.RecordsCreated),
	)

	if export {
		key, err := svc.Export(ctx)
		if err != nil {
			return err
		}
		log.Info("Exported extracted text", logger.String("key", key))
	}
	return nil
}

func printMessages(result *models.BatchResult) {
	if result == nil {
		return
	}
	for _, m := range result.Messages {
		fmt.Printf("[%s] %s\n", m.Level, m.Text)
	}
}
