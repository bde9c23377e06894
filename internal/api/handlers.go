package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/ledger"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/report"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleAnalyze accepts a multipart upload with the statement in "file", an
// optional "credit_statement" PDF and an optional "questionnaire" JSON string,
// and responds with the full report.
func (s *Server) HandleAnalyze(c *fiber.Ctx) error {
	in := report.Input{
		Bank:     s.param(c, "bank", s.Bank),
		Currency: s.param(c, "currency", s.Currency),
	}

	// Declared data is checked before any PDF is decoded.
	if raw := c.FormValue("questionnaire"); strings.TrimSpace(raw) != "" {
		q, err := models.ParseQuestionnaire([]byte(raw))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		in.Questionnaire = q
	}

	doc, err := s.upload(c, "file", true)
	if err != nil {
		return err
	}
	in.Statement = doc

	credit, err := s.upload(c, "credit_statement", false)
	if err != nil {
		return err
	}
	if credit != nil {
		in.CreditStatement = credit
	}

	rep, err := s.Analyzer.Analyze(c.UserContext(), in)
	if err != nil {
		return analysisError(err)
	}
	return c.JSON(rep)
}

// HandleLedger exports the ledger of the uploaded statement as CSV or XLSX.
func (s *Server) HandleLedger(c *fiber.Ctx) error {
	format := strings.ToLower(c.Query("format", "csv"))
	if format != "csv" && format != "xlsx" {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Unknown format %q. Use csv or xlsx.", format))
	}

	doc, err := s.upload(c, "file", true)
	if err != nil {
		return err
	}

	info, built, err := s.Analyzer.Ledger(c.UserContext(), doc, s.param(c, "bank", s.Bank))
	if err != nil {
		return analysisError(err)
	}
	log := logger.FromContext(c.UserContext())
	log.Info().
		Str("format", format).
		Int("transactions", len(built.Ledger)).
		Msg("ledger exported")

	var buf bytes.Buffer
	contentType := "text/csv; charset=utf-8"
	switch format {
	case "xlsx":
		w := &writer.XLSXWriter{Classifier: s.Analyzer.Classifier}
		err = w.Write(&buf, info, built.Ledger)
		contentType = xlsxContentType
	default:
		w := &writer.CSVWriter{IncludeHeader: true, Classifier: s.Analyzer.Classifier}
		err = w.Write(&buf, info, built.Ledger)
	}
	if err != nil {
		return err
	}
	c.Attachment("ledger." + format)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(buf.Bytes())
}

// param reads a query parameter, then a form value, then the default.
func (s *Server) param(c *fiber.Ctx, key, def string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	if v := c.FormValue(key); v != "" {
		return v
	}
	return def
}

// upload reads and decodes the PDF in form field name. A missing optional
// field returns a nil Document.
func (s *Server) upload(c *fiber.Ctx, name string, required bool) (ledger.Document, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		if required {
			return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("No file uploaded. Use form field '%s'.", name))
		}
		return nil, nil
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Only PDF files are supported.")
	}
	if fh.Size > int64(s.MaxUploadBytes) {
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("File %q exceeds the %d byte upload limit.", fh.Filename, s.MaxUploadBytes))
	}

	data, err := readFile(fh)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	doc, err := s.Open(data)
	if err != nil {
		log := logger.FromContext(c.UserContext())
		log.Warn().Err(err).Str("field", name).Msg("PDF decoding failed")
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, fmt.Sprintf("PDF extraction failed: %v", err))
	}
	return doc, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// analysisError maps pipeline errors to HTTP status codes.
func analysisError(err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidQuestionnaire), errors.Is(err, report.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrDocument), errors.Is(err, extractor.ErrUnreadablePDF):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	default:
		return err
	}
}
