// Package pipeline coordinates text acquisition, generation, parsing and
// validation for one extraction request.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"policyscan/internal/common"
	"policyscan/internal/llm"
	"policyscan/internal/parse"
	"policyscan/internal/pdftext"
	"policyscan/internal/policy"
	"policyscan/internal/schema"
)

// MinMeaningfulChars is the stripped character-count floor below which the
// acquired text is rejected as unusable input, even after the OCR fallback.
const MinMeaningfulChars = 50

// Acquirer is stage 1: document path -> plain text.
type Acquirer interface {
	Extract(ctx context.Context, path string, allowFallback bool) (pdftext.Result, error)
}

// ExtractionResult is the boundary output contract consumed by the transport
// layer.
type ExtractionResult struct {
	Success    bool            `json:"success"`
	Data       policy.Document `json:"data"`
	Validation schema.Result   `json:"validation"`
	Warnings   string          `json:"warnings,omitempty"`

	// Acquisition metadata, recorded in the job history but not part of the
	// boundary JSON contract.
	Method    string `json:"-"`
	Pages     int    `json:"-"`
	TextChars int    `json:"-"`
}

// Processor runs the sequential per-request pipeline. All per-request state
// is owned by the call; the processor itself only holds read-only
// collaborators and is safe for concurrent use.
type Processor struct {
	logger    *slog.Logger
	acquirer  Acquirer
	generator llm.Generator
	parser    *parse.Parser
	validator *schema.Validator
}

func NewProcessor(acq Acquirer, gen llm.Generator, prs *parse.Parser, val *schema.Validator, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:    logger,
		acquirer:  acq,
		generator: gen,
		parser:    prs,
		validator: val,
	}
}

// ProcessFile runs acquire -> generate -> parse -> validate for one document.
// Only the two conditions where no document can possibly be produced return
// an error (unreadable/meaningless input wraps common.ErrInvalidInput or
// common.ErrNoText; a generation failure wraps common.ErrGeneration).
// Validation failure is non-fatal: a best-effort document is returned
// alongside the report.
func (p *Processor) ProcessFile(ctx context.Context, path string) (ExtractionResult, error) {
	acq, err := p.acquirer.Extract(ctx, path, true)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}
	for _, w := range acq.Warnings {
		p.logger.Warn("pipeline.acquire.warning", "path", path, "warning", w)
	}

	// Character count, not bytes: CJK text would otherwise clear the floor at
	// a third of the intended length.
	stripped := utf8.RuneCountInString(strings.TrimSpace(acq.Text))
	if stripped < MinMeaningfulChars {
		p.logger.Warn("pipeline.acquire.no_text",
			"path", path, "chars", stripped, "method", acq.Method)
		return ExtractionResult{}, fmt.Errorf("%w: %d chars after %s", common.ErrNoText, stripped, acq.Method)
	}
	p.logger.Info("pipeline.acquire.ok",
		"path", path, "method", acq.Method, "pages", acq.Pages, "chars", stripped)

	raw, err := p.generator.Generate(ctx, llm.BuildPolicyPrompt(acq.Text))
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("%w: %v", common.ErrGeneration, err)
	}
	if strings.TrimSpace(raw) == "" {
		return ExtractionResult{}, fmt.Errorf("%w: empty generation output", common.ErrGeneration)
	}

	doc := p.parser.Parse(raw)
	doc, vres := p.validator.Validate(doc)

	out := ExtractionResult{
		Success:    true,
		Data:       doc,
		Validation: vres,
		Method:     acq.Method,
		Pages:      acq.Pages,
		TextChars:  stripped,
	}
	if !vres.IsValid {
		out.Warnings = "Extracted data has validation errors. Please review."
		p.logger.Warn("pipeline.validate.invalid",
			"path", path, "errors", len(vres.Errors), "missing", len(vres.MissingFields))
	} else {
		p.logger.Info("pipeline.validate.ok", "path", path, "missing", len(vres.MissingFields))
	}
	return out, nil
}
