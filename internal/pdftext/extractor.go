// Package pdftext acquires the best-available plain text from a policy PDF,
// choosing between a direct extraction path (pdftotext) and a per-page OCR
// fallback (pdftoppm + tesseract).
package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MinDirectChars is the stripped character-count threshold below which the
// OCR fallback is attempted.
const MinDirectChars = 100

// FallbackRatio is how much longer (in stripped characters) the OCR result
// must be before it is preferred over a short-but-usable direct extraction.
const FallbackRatio = 1.5

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Pdfinfo   string // binary name or absolute path; if empty -> "pdfinfo"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang         string // multi-script OCR mode, default "chi_sim+eng"
	FallbackLang string // per-page retry when multi-script fails, default "eng"
	DPI          int    // rasterization DPI for scanned PDFs, default 300
	MaxPages     int    // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "pdf-ocr"
	Language string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Pdfinfo == "" {
		cfg.Pdfinfo = "pdfinfo"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "chi_sim+eng"
	}
	if cfg.FallbackLang == "" {
		cfg.FallbackLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract acquires text from the PDF at path. A missing file is a fatal
// precondition error. Per-page failures in either path are warnings; total
// failure of the direct path yields empty text so the fallback decision still
// runs uniformly. The OCR result is returned only when allowFallback is set,
// the direct result is below MinDirectChars, and the OCR text is more than
// FallbackRatio times longer.
func (e *Extractor) Extract(ctx context.Context, path string, allowFallback bool) (Result, error) {
	start := time.Now()

	if _, err := os.Stat(path); err != nil {
		return Result{}, fmt.Errorf("document not found: %q: %w", path, err)
	}

	direct := e.extractDirect(ctx, path)
	directLen := strippedLen(direct.Text)

	if allowFallback && directLen < MinDirectChars {
		e.logger.Info("pdftext.fallback.start",
			"path", path, "direct_chars", directLen, "threshold", MinDirectChars)

		ocr := e.extractOCR(ctx, path)
		ocrLen := strippedLen(ocr.Text)
		if float64(ocrLen) > FallbackRatio*float64(directLen) {
			e.logger.Info("pdftext.fallback.chosen",
				"path", path, "ocr_chars", ocrLen, "direct_chars", directLen)
			ocr.Warnings = append(direct.Warnings, ocr.Warnings...)
			ocr.Duration = time.Since(start)
			return ocr, nil
		}
		direct.Warnings = append(direct.Warnings, ocr.Warnings...)
	}

	direct.Duration = time.Since(start)
	return direct, nil
}

// extractDirect runs pdftotext page by page, concatenating with page-boundary
// markers. A page whose extraction fails is skipped with a logged warning;
// total failure yields empty text, never an error.
func (e *Extractor) extractDirect(ctx context.Context, path string) Result {
	res := Result{Method: "pdf-text"}

	pages, err := e.pageCount(ctx, path)
	if err != nil {
		// No page count: fall back to one whole-document run.
		out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
		if err != nil {
			e.logger.Warn("pdftext.direct.failed", "path", path, "error", err)
			res.Warnings = append(res.Warnings, string(errb))
			return res
		}
		res.Text = joinPages(strings.Split(string(out), "\f"))
		res.Pages = 1 + strings.Count(string(out), "\f")
		return res
	}

	if e.cfg.MaxPages > 0 && pages > e.cfg.MaxPages {
		pages = e.cfg.MaxPages
	}
	res.Pages = pages

	var parts []string
	for i := 1; i <= pages; i++ {
		n := strconv.Itoa(i)
		out, _, err := e.runner.Run(ctx, e.cfg.Pdftotext,
			"-f", n, "-l", n, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
		if err != nil {
			e.logger.Warn("pdftext.direct.page_failed", "path", path, "page", i, "error", err)
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: direct extraction failed", i))
			parts = append(parts, "")
			continue
		}
		parts = append(parts, strings.TrimRight(string(out), "\f"))
	}
	res.Text = joinPages(parts)
	return res
}

// extractOCR rasterizes each page at the configured DPI and runs tesseract
// per page: multi-script mode first, single-script retry when it fails, page
// skipped when both fail.
func (e *Extractor) extractOCR(ctx context.Context, path string) Result {
	res := Result{Method: "pdf-ocr", Language: e.cfg.Lang}

	tmpDir, err := os.MkdirTemp("", "ps-ocr-*")
	if err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		return res
	}
	defer func() {
		if rerr := os.RemoveAll(tmpDir); rerr != nil {
			e.logger.Warn("pdftext.ocr.tmp_cleanup_failed", "dir", tmpDir, "error", rerr)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	if _, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, "-r", strconv.Itoa(e.cfg.DPI), "-png", path, prefix); err != nil {
		e.logger.Warn("pdftext.ocr.rasterize_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, string(errb))
		return res
	}

	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		res.Warnings = append(res.Warnings, "pdftoppm produced no images")
		return res
	}
	res.Pages = len(matches)

	var parts []string
	for i, img := range matches {
		txt, err := e.tesseract(ctx, img, e.cfg.Lang)
		if err != nil {
			// Multi-script recognition failed: retry the page single-script.
			txt, err = e.tesseract(ctx, img, e.cfg.FallbackLang)
			if err != nil {
				e.logger.Warn("pdftext.ocr.page_failed", "path", path, "page", i+1, "error", err)
				res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: ocr failed", i+1))
				parts = append(parts, "")
				continue
			}
		}
		parts = append(parts, txt)
	}
	res.Text = joinPages(parts)
	return res
}

func (e *Extractor) tesseract(ctx context.Context, img, lang string) (string, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.Tesseract, img, "stdout", "-l", lang)
	if err != nil {
		return "", fmt.Errorf("tesseract (%s): %w", lang, err)
	}
	return string(out), nil
}

// strippedLen counts characters, not bytes: CJK text is three UTF-8 bytes per
// character, and a byte count would skew both threshold comparisons for the
// bilingual documents this pipeline handles.
func strippedLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}

var rePages = regexp.MustCompile(`(?m)^Pages:\s+(\d+)$`)

func (e *Extractor) pageCount(ctx context.Context, path string) (int, error) {
	out, _, err := e.runner.Run(ctx, e.cfg.Pdfinfo, path)
	if err != nil {
		return 0, fmt.Errorf("pdfinfo: %w", err)
	}
	m := rePages.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("pdfinfo: no page count in output")
	}
	return strconv.Atoi(string(m[1]))
}

// joinPages concatenates per-page text with literal page-boundary markers,
// skipping pages that produced nothing. Order is preserved: page N before
// page N+1, with numbering following the source page position.
func joinPages(parts []string) string {
	var sections []string
	for i, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("--- Page %d ---\n%s\n", i+1, p))
	}
	return strings.Join(sections, "\n")
}
