package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/time/rate"

	"github.com/insightdelivered/statement-analyzer/internal/categories"
	"github.com/insightdelivered/statement-analyzer/internal/ledger"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/report"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

func statement() ledger.StaticDocument {
	return ledger.StaticDocument{{
		Text: "Kaspi Gold\nВыписка с 01.03.2024 по 31.03.2024",
		Tables: []ledger.Table{{
			{"Дата", "Сумма", "Операция", "Детали"},
			{"01.03.24", "Пополнение", "Зарплата", "400 000,00", "+ 300 000,00 ₸"},
			{"03.03.24", "Покупка", "Coffee Boom", "395 000,00", "- 5 000,00 ₸"},
			{"07.03.24", "Покупка", "Coffee Boom", "390 000,00", "- 5 000,00 ₸"},
			{"25.03.24", "Погашение", "Kaspi Кредит", "340 000,00", "- 50 000,00 ₸"},
		}},
	}}
}

func newTestServer() *Server {
	a := report.NewAnalyzer(ledger.Builder{}, categories.DefaultRuleSet())
	return &Server{
		Analyzer:       a,
		Open:           func([]byte) (ledger.Document, error) { return statement(), nil },
		Bank:           "kaspi",
		Currency:       "KZT",
		MaxUploadBytes: 1 << 20,
		MetricsEnabled: true,
		Log:            logger.NewWithWriter(io.Discard),
	}
}

type part struct {
	field, filename string
	data            []byte
}

func multipartRequest(t *testing.T, target string, files []part, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, f := range files {
		fw, err := w.CreateFormFile(f.field, f.filename)
		require.NoError(t, err)
		_, err = fw.Write(f.data)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pdfPart() part {
	return part{field: "file", filename: "statement.pdf", data: []byte("%PDF-1.4 test")}
}

func errorBody(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	app := newTestServer().App()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, Version, body["version"])
}

func TestRequestLogging(t *testing.T) {
	var logs bytes.Buffer
	s := newTestServer()
	s.Log = logger.NewWithWriter(&logs)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)

	id := resp.Header.Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Contains(t, logs.String(), `"request_id":"`+id+`"`)
	assert.Contains(t, logs.String(), `"path":"/api/health"`)
}

func TestAnalyze(t *testing.T) {
	app := newTestServer().App()
	req := multipartRequest(t, "/api/analyze", []part{pdfPart()}, map[string]string{
		"questionnaire": `{"monthly_income": 300000, "income_stability": "stable", "monthly_living_expenses": 40000,
			"monthly_credit_payments": 50000, "financial_safety_months": "1-3", "primary_goal": "reduce_debt"}`,
	})

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep struct {
		Meta struct {
			Bank             string `json:"bank"`
			Currency         string `json:"currency"`
			Transactions     int    `json:"transactions"`
			HasQuestionnaire bool   `json:"has_questionnaire"`
		} `json:"meta"`
		Transactions []json.RawMessage `json:"transactions"`
		Reality      json.RawMessage   `json:"financial_reality"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.Equal(t, "kaspi", rep.Meta.Bank)
	assert.Equal(t, "KZT", rep.Meta.Currency)
	assert.Equal(t, 4, rep.Meta.Transactions)
	assert.Len(t, rep.Transactions, 4)
	assert.True(t, rep.Meta.HasQuestionnaire)
	assert.NotEmpty(t, rep.Reality)
}

func TestAnalyzeWithCreditStatement(t *testing.T) {
	s := newTestServer()
	s.Open = func(data []byte) (ledger.Document, error) {
		if string(data) == "credit" {
			return ledger.StaticDocument{{Tables: []ledger.Table{{
				{"10.01.2024", "Кредит наличными", "500 000,00", "+ 500 000,00"},
				{"10.02.2024", "Погашение кредита", "460 000,00", "- 40 000,00"},
			}}}}, nil
		}
		return statement(), nil
	}
	req := multipartRequest(t, "/api/analyze", []part{
		pdfPart(),
		{field: "credit_statement", filename: "credit.PDF", data: []byte("credit")},
	}, nil)

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep struct {
		Meta struct {
			HasCreditStatement bool `json:"has_credit_statement"`
		} `json:"meta"`
		CreditStatement json.RawMessage `json:"credit_statement"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.True(t, rep.Meta.HasCreditStatement)
	assert.NotEmpty(t, rep.CreditStatement)
}

func TestAnalyzeRejects(t *testing.T) {
	tests := []struct {
		name     string
		server   func(*Server)
		files    []part
		fields   map[string]string
		target   string
		status   int
		contains string
	}{
		{
			name:     "missing file",
			status:   http.StatusBadRequest,
			contains: "Use form field 'file'",
		},
		{
			name:     "not a pdf",
			files:    []part{{field: "file", filename: "statement.txt", data: []byte("x")}},
			status:   http.StatusBadRequest,
			contains: "Only PDF files",
		},
		{
			name:     "bad questionnaire",
			files:    []part{pdfPart()},
			fields:   map[string]string{"questionnaire": `{"primary_goal": "get_rich"}`},
			status:   http.StatusBadRequest,
			contains: "invalid questionnaire",
		},
		{
			name:     "unknown bank",
			files:    []part{pdfPart()},
			target:   "/api/analyze?bank=monzo",
			status:   http.StatusBadRequest,
			contains: "monzo",
		},
		{
			name:     "file too large",
			server:   func(s *Server) { s.MaxUploadBytes = 100 },
			files:    []part{{field: "file", filename: "big.pdf", data: bytes.Repeat([]byte("x"), 500)}},
			status:   http.StatusRequestEntityTooLarge,
			contains: "upload limit",
		},
		{
			name: "unreadable pdf",
			server: func(s *Server) {
				s.Open = func([]byte) (ledger.Document, error) { return nil, errors.New("not a PDF file") }
			},
			files:    []part{pdfPart()},
			status:   http.StatusUnprocessableEntity,
			contains: "not a PDF file",
		},
		{
			name: "panicking decoder",
			server: func(s *Server) {
				s.Open = func([]byte) (ledger.Document, error) { panic("boom") }
			},
			files:    []part{pdfPart()},
			status:   http.StatusInternalServerError,
			contains: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			if tt.server != nil {
				tt.server(s)
			}
			target := tt.target
			if target == "" {
				target = "/api/analyze"
			}

			resp, err := s.App().Test(multipartRequest(t, target, tt.files, tt.fields), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := errorBody(t, resp)
			assert.False(t, body.Success)
			assert.Contains(t, body.Error, tt.contains)
		})
	}
}

func TestAnalyzeQuestionnaireCheckedBeforeDecoding(t *testing.T) {
	s := newTestServer()
	opened := 0
	s.Open = func([]byte) (ledger.Document, error) {
		opened++
		return nil, errors.New("not a PDF file")
	}
	req := multipartRequest(t, "/api/analyze", []part{pdfPart()}, map[string]string{
		"questionnaire": `{"monthly_income": -1}`,
	})

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, errorBody(t, resp).Error, "invalid questionnaire")
	assert.Zero(t, opened)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer()
	s.Limiter = rate.NewLimiter(rate.Every(time.Hour), 1)
	app := s.App()

	resp, err := app.Test(multipartRequest(t, "/api/analyze", []part{pdfPart()}, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(multipartRequest(t, "/api/analyze", []part{pdfPart()}, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLedgerExport(t *testing.T) {
	app := newTestServer().App()

	t.Run("csv", func(t *testing.T) {
		resp, err := app.Test(multipartRequest(t, "/api/ledger", []part{pdfPart()}, nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="ledger.csv"`)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "# Bank,kaspi")
		assert.Contains(t, string(body), "Покупка Coffee Boom")
	})

	t.Run("xlsx", func(t *testing.T) {
		resp, err := app.Test(multipartRequest(t, "/api/ledger?format=xlsx", []part{pdfPart()}, nil), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))

		f, err := excelize.OpenReader(resp.Body)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows(writer.SheetLedger)
		require.NoError(t, err)
		assert.Len(t, rows, 5)
	})

	t.Run("unknown format", func(t *testing.T) {
		resp, err := app.Test(multipartRequest(t, "/api/ledger?format=pdf", []part{pdfPart()}, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, errorBody(t, resp).Error, "Unknown format")
	})
}

func TestMetricsEndpoint(t *testing.T) {
	resp, err := newTestServer().App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestImportingReportKeepsDecimalJSONDefault(t *testing.T) {
	assert.False(t, decimal.MarshalJSONWithoutQuotes)
}

func TestMetricsDisabled(t *testing.T) {
	s := newTestServer()
	s.MetricsEnabled = false

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
