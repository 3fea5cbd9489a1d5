package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	_ "winelist/internal/extractor/claude"
	_ "winelist/internal/extractor/gemini"
	_ "winelist/internal/extractor/openai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "ocrimport",
		Usage: "run the wine-list OCR and extraction stages on local files",
		Commands: []*cli.Command{
			{
				Name:  "ocr",
				Usage: "OCR a local image or PDF and print the text",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "path to the image or PDF",
						Required: true,
					},
				},
				Action: ocrAction,
			},
			{
				Name:  "parse",
				Usage: "extract wine items from a local OCR text file and print them as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "path to the OCR text file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "llm",
						Usage: "also run the configured LLM extraction",
					},
				},
				Action: parseAction,
			},
		},
	}
}
