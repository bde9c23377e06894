package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/insightdelivered/statement-analyzer/internal/logger"
)

// toolTimeout bounds every external decoder run.
const toolTimeout = 2 * time.Minute

// ocrLanguages are the tesseract language packs used for statements.
const ocrLanguages = "rus+kaz+eng"

// fallbackPages decodes path with pdftotext and then OCR, returning the
// first readable result.
func fallbackPages(path string) ([]string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), toolTimeout)
	defer cancel()

	pages, textErr := pdftotextPages(ctx, path)
	if textErr == nil && isReadableText(pages) {
		return pages, SourcePdftotext, nil
	}
	if textErr == nil {
		textErr = errors.New("pdftotext output is not readable")
	}

	pages, ocrErr := ocrPages(ctx, path)
	if ocrErr == nil && isReadableText(pages) {
		return pages, SourceOCR, nil
	}
	if ocrErr == nil {
		ocrErr = errors.New("OCR output is not readable")
	}
	return nil, "", fmt.Errorf("%v; %v", textErr, ocrErr)
}

// pdftotextPages runs "pdftotext -layout" page by page so page boundaries
// survive; blank pages are kept as empty strings.
func pdftotextPages(ctx context.Context, path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	n := pageCount(ctx, path)
	if n == 0 {
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", path, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed: %w", err)
		}
		return splitFormFeeds(string(out)), nil
	}

	pages := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		num := strconv.Itoa(i)
		out, err := exec.CommandContext(ctx, "pdftotext", "-layout", "-f", num, "-l", num, path, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext failed on page %d: %w", i, err)
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}
	return pages, nil
}

// splitFormFeeds splits whole-document pdftotext output into pages.
func splitFormFeeds(out string) []string {
	parts := strings.Split(strings.TrimRight(out, "\f\n"), "\f")
	pages := make([]string, 0, len(parts))
	for _, p := range parts {
		pages = append(pages, strings.TrimSpace(p))
	}
	return pages
}

// pageCount asks pdfinfo for the page count, 0 when unknown.
func pageCount(ctx context.Context, path string) int {
	out, err := exec.CommandContext(ctx, "pdfinfo", path).Output()
	if err != nil {
		return 0
	}
	for _, line := range strings.Split(string(out), "\n") {
		if v, ok := strings.CutPrefix(line, "Pages:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 0
}

// ocrAvailable reports whether pdftoppm and tesseract are installed.
func ocrAvailable() bool {
	_, err1 := exec.LookPath("pdftoppm")
	_, err2 := exec.LookPath("tesseract")
	return err1 == nil && err2 == nil
}

// ocrPages rasterises every page at 300 DPI and runs tesseract on it. Pages
// tesseract fails on are kept as empty strings.
func ocrPages(ctx context.Context, path string) ([]string, error) {
	if !ocrAvailable() {
		return nil, errors.New("OCR tools not available (install poppler-utils and tesseract-ocr)")
	}

	dir, err := os.MkdirTemp("", "ocr-pages-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cmd := exec.CommandContext(ctx, "pdftoppm", "-r", "300", "-png", path, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed: %w (%s)", err, strings.TrimSpace(string(out)))
	}

	images, err := filepath.Glob(filepath.Join(dir, "page*.png"))
	if err != nil || len(images) == 0 {
		return nil, errors.New("pdftoppm produced no page images")
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(images)

	log := logger.New()
	pages := make([]string, 0, len(images))
	for _, img := range images {
		// PSM 4: a single column of text of variable sizes.
		out, err := exec.CommandContext(ctx, "tesseract", img, "stdout", "-l", ocrLanguages, "--psm", "4").Output()
		if err != nil {
			log.Warn().Err(err).Str("image", filepath.Base(img)).Msg("tesseract failed")
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(string(out)))
	}
	return pages, nil
}
