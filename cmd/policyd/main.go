package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"policyscan/internal/common"
	"policyscan/internal/jobstore"
	"policyscan/internal/llm/openai"
	"policyscan/internal/parse"
	"policyscan/internal/pdftext"
	"policyscan/internal/pipeline"
	"policyscan/internal/policy"
	"policyscan/internal/schema"
	"policyscan/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	validator, err := schema.NewValidator(policy.BuildPolicySchema(), logger)
	if err != nil {
		logger.Error("compile policy schema", "error", err)
		os.Exit(1)
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
	proc := pipeline.NewProcessor(acquirer, generator, parser, validator, logger)

	var jobs *jobstore.Store
	if cfg.Jobs.DBPath != "" {
		jobs, err = jobstore.Open(ctx, cfg.Jobs.DBPath)
		if err != nil {
			logger.Warn("open job store; continuing without history", "error", err)
			jobs = nil
		} else {
			defer func() {
				if cerr := jobs.Close(); cerr != nil {
					logger.Error("close job store", "error", cerr)
				}
			}()
		}
	}

	srv := server.New(proc, jobs, cfg.Server.MaxUploadMB, logger)
	httpSrv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
