package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"policyscan/constants"
	"policyscan/internal/common"
	"policyscan/internal/export"
	"policyscan/internal/llm/openai"
	"policyscan/internal/parse"
	"policyscan/internal/pdftext"
	"policyscan/internal/pipeline"
	"policyscan/internal/policy"
	"policyscan/internal/schema"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "policyctl",
		Short:         "Extract structured data from car insurance policy PDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(newExtractCmd())
	rootCmd.AddCommand(newBatchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, failMark("error:"), err)
		os.Exit(1)
	}
}

func newExtractCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "extract <policy.pdf>",
		Short: "Extract one policy document and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, logger, err := buildProcessor()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			start := time.Now()
			res, err := proc.ProcessFile(ctx, args[0])
			if err != nil {
				return err
			}
			logger.Info("extract done", "path", args[0],
				"method", res.Method, "duration_ms", time.Since(start).Milliseconds())

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.Validation.IsValid {
				fmt.Fprintln(os.Stderr, warnMark("validation errors present; review the report"))
			} else {
				fmt.Fprintln(os.Stderr, okMark("ok"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", true, "indent JSON output")
	return cmd
}

func newBatchCmd() *cobra.Command {
	var xlsxOut string
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Extract every PDF in a directory, optionally writing an XLSX summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, logger, err := buildProcessor()
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(args[0])
			if err != nil {
				return fmt.Errorf("read directory: %w", err)
			}
			var paths []string
			for _, e := range entries {
				if e.IsDir() || !constants.IsAllowedExt(filepath.Ext(e.Name())) {
					continue
				}
				paths = append(paths, filepath.Join(args[0], e.Name()))
			}
			sort.Strings(paths)
			if len(paths) == 0 {
				return fmt.Errorf("no PDF files in %q", args[0])
			}

			var rows []export.Row
			var failed int
			for _, p := range paths {
				ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
				res, err := proc.ProcessFile(ctx, p)
				cancel()
				if err != nil {
					failed++
					fmt.Fprintln(os.Stderr, failMark("FAIL"), p, "-", err)
					continue
				}
				mark := okMark("OK")
				if !res.Validation.IsValid {
					mark = warnMark("INVALID")
				}
				fmt.Fprintln(os.Stderr, mark, p)
				rows = append(rows, export.Row{
					Source:        filepath.Base(p),
					Doc:           res.Data,
					IsValid:       res.Validation.IsValid,
					MissingFields: len(res.Validation.MissingFields),
				})
			}

			if xlsxOut != "" && len(rows) > 0 {
				b, err := export.NewService(logger).SummaryXLSX(rows)
				if err != nil {
					return fmt.Errorf("build summary: %w", err)
				}
				if err := os.WriteFile(xlsxOut, b, 0o644); err != nil {
					return fmt.Errorf("write summary: %w", err)
				}
				fmt.Fprintln(os.Stderr, okMark("summary written:"), xlsxOut)
			}

			fmt.Fprintf(os.Stderr, "%d extracted, %d failed\n", len(rows), failed)
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(paths))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "write an XLSX summary to this path")
	return cmd
}

func buildProcessor() (*pipeline.Processor, *slog.Logger, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	validator, err := schema.NewValidator(policy.BuildPolicySchema(), logger)
	if err != nil {
		return nil, nil, err
	}

	acquirer := pdftext.NewExtractor(pdftext.Config{
		Pdftotext:    cfg.PDFText.Pdftotext,
		Pdftoppm:     cfg.PDFText.Pdftoppm,
		Pdfinfo:      cfg.PDFText.Pdfinfo,
		Tesseract:    cfg.PDFText.Tesseract,
		Lang:         cfg.PDFText.Lang,
		FallbackLang: cfg.PDFText.FallbackLang,
		DPI:          cfg.PDFText.DPI,
		MaxPages:     cfg.PDFText.MaxPages,
	}, logger)

	generator := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	parser := parse.NewParser(policy.NewFieldPolicy(), logger)
	return pipeline.NewProcessor(acquirer, generator, parser, validator, logger), logger, nil
}
