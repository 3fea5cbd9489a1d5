package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"winelist/internal/config"
	"winelist/internal/domain"
	"winelist/internal/extractor"
	"winelist/internal/ocr"
	"winelist/internal/ocr/vision"
	"winelist/internal/ruleparser"
	"winelist/internal/service"
	"winelist/internal/storage/gcs"
)

func ocrAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	staging, err := gcs.NewStore(ctx, vision.ClientOptions(&cfg.Vision, cfg.Vision.StorageEndpoint)...)
	if err != nil {
		return fmt.Errorf("failed to initialize OCR staging bucket client: %w", err)
	}
	annotator, err := vision.NewAnnotator(ctx, vision.ClientOptions(&cfg.Vision, cfg.Vision.Endpoint)...)
	if err != nil {
		return fmt.Errorf("failed to initialize vision client: %w", err)
	}
	acquirer := ocr.NewAcquirer(annotator, staging, ocr.OptionsFromConfig(&cfg.Vision))

	mime := service.DetectMIME(data, filepath.Base(path))
	key := "cli-" + uuid.NewString()
	text, err := acquirer.Acquire(ctx, key, data, mime)
	if err != nil {
		return err
	}

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	_, err = io.WriteString(w, text)
	return err
}

func parseAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("file")
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var pipeline *extractor.Pipeline
	if cmd.Bool("llm") {
		llm, err := extractor.NewFromConfig(&cfg.LLM)
		if err != nil {
			return fmt.Errorf("failed to initialize LLM extractor: %w", err)
		}
		if llm == nil {
			return fmt.Errorf("--llm given but no LLM provider is configured")
		}
		pipeline = extractor.NewPipeline(llm, cfg.Import.ChunkChars, cfg.Import.OverlapLines)
	}

	rules := ruleparser.New(ruleparser.RulesFromConfig(&cfg.Rules))
	items := service.Extract(ctx, rules, pipeline, strings.ToValidUTF8(string(raw), ""))
	if items == nil {
		items = []domain.WineItem{}
	}

	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
