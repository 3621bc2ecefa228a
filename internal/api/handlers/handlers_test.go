package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/bigquery"
	"github.com/dvloznov/finance-dashboard/internal/dataset"
	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/dvloznov/finance-dashboard/internal/jobs"
	"github.com/dvloznov/finance-dashboard/internal/jobs/inmemory"
	"github.com/dvloznov/finance-dashboard/internal/pipeline"
	"github.com/dvloznov/finance-dashboard/internal/sheet"
)

const sampleCSV = "Date,Description,Category,Amount,Type\n" +
	"2026-01-02,Salary,Income,1000,Income\n" +
	"2026-01-03,Rent,Housing,-400,Expense\n" +
	"not a date,Broken,Misc,10,Expense\n" +
	"2026-02-10,Groceries,Food,50,Expense\n"

func newIngestor() *pipeline.Ingestor {
	return pipeline.NewIngestor(sheet.NewDecoder(), nil, nil)
}

func multipartUpload(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func importSample(t *testing.T, store *dataset.Store) {
	t.Helper()
	h := NewImportHandler(store, newIngestor(), nil, ImportOptions{MaxUploadBytes: 1 << 20})
	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "statement.csv", sampleCSV))
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpload_Multipart(t *testing.T) {
	store := dataset.NewStore()
	h := NewImportHandler(store, newIngestor(), nil, ImportOptions{MaxUploadBytes: 1 << 20})

	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "statement.csv", sampleCSV))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp ImportResponse
	decode(t, rec, &resp)
	if resp.SourceRowCount != 4 || resp.AcceptedRowCount != 3 || resp.RejectedRowCount != 1 {
		t.Errorf("counts = %+v", resp)
	}
	if resp.Source != "upload:statement.csv" || resp.RunID == "" {
		t.Errorf("run = %+v", resp)
	}
	if got := len(store.Records()); got != 3 {
		t.Errorf("store has %d records, want 3", got)
	}
}

func TestUpload_RawBody(t *testing.T) {
	store := dataset.NewStore()
	h := NewImportHandler(store, newIngestor(), nil, ImportOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/import?filename=statement.csv", strings.NewReader(sampleCSV))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		maxBytes int64
		want     int
	}{
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "statement.pdf", "%PDF-1.4")
			},
			want: http.StatusBadRequest,
		},
		{
			name: "header only",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "empty.csv", "Date,Amount\n")
			},
			want: http.StatusBadRequest,
		},
		{
			name: "no valid rows",
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "bad.csv", "Date,Amount\nsoon,5\n2026-01-01,0\n")
			},
			want: http.StatusUnprocessableEntity,
		},
		{
			name: "missing file field",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/import", strings.NewReader("x"))
				req.Header.Set("Content-Type", "text/csv")
				return req
			},
			want: http.StatusBadRequest,
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/import?filename=big.csv", strings.NewReader(sampleCSV))
				req.Header.Set("Content-Type", "text/csv")
				return req
			},
			maxBytes: 16,
			want:     http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := dataset.NewStore()
			h := NewImportHandler(store, newIngestor(), nil, ImportOptions{MaxUploadBytes: tt.maxBytes})

			rec := httptest.NewRecorder()
			h.Upload(rec, tt.req(t))

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if store.Snapshot().Run != nil {
				t.Error("failed import replaced the active set")
			}
		})
	}
}

func TestUpload_FailureKeepsPreviousSet(t *testing.T) {
	store := dataset.NewStore()
	importSample(t, store)

	h := NewImportHandler(store, newIngestor(), nil, ImportOptions{})
	rec := httptest.NewRecorder()
	h.Upload(rec, multipartUpload(t, "empty.csv", "Date,Amount\n"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := len(store.Records()); got != 3 {
		t.Errorf("store has %d records after failed import, want 3", got)
	}
}

type mockPublisher struct {
	published []*jobs.ImportJob
	err       error
}

func (m *mockPublisher) PublishImport(ctx context.Context, job *jobs.ImportJob) error {
	if m.err != nil {
		return m.err
	}
	job.JobID = fmt.Sprintf("job-%d", len(m.published)+1)
	m.published = append(m.published, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func TestEnqueue(t *testing.T) {
	tests := []struct {
		name    string
		opts    ImportOptions
		handler func(h *ImportHandler) http.HandlerFunc
		body    string
		want    int
	}{
		{"gcs", ImportOptions{GCSEnabled: true}, func(h *ImportHandler) http.HandlerFunc { return h.EnqueueGCS }, `{"gcs_uri":"gs://b/exports/jan.xlsx"}`, http.StatusAccepted},
		{"gcs bad uri", ImportOptions{GCSEnabled: true}, func(h *ImportHandler) http.HandlerFunc { return h.EnqueueGCS }, `{"gcs_uri":"b/jan.xlsx"}`, http.StatusBadRequest},
		{"gcs disabled", ImportOptions{}, func(h *ImportHandler) http.HandlerFunc { return h.EnqueueGCS }, `{"gcs_uri":"gs://b/jan.xlsx"}`, http.StatusServiceUnavailable},
		{"sheet", ImportOptions{SheetsEnabled: true}, func(h *ImportHandler) http.HandlerFunc { return h.EnqueueSheet }, `{"spreadsheet_id":"abc","range":"Jan!A1:E"}`, http.StatusAccepted},
		{"sheet missing id", ImportOptions{SheetsEnabled: true}, func(h *ImportHandler) http.HandlerFunc { return h.EnqueueSheet }, `{"range":"A1:E"}`, http.StatusBadRequest},
		{"sheet bad json", ImportOptions{SheetsEnabled: true}, func(h *ImportHandler) http.HandlerFunc { return h.EnqueueSheet }, `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &mockPublisher{}
			h := NewImportHandler(dataset.NewStore(), newIngestor(), pub, tt.opts)

			rec := httptest.NewRecorder()
			tt.handler(h)(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
			if tt.want != http.StatusAccepted {
				if len(pub.published) != 0 {
					t.Error("job published for a rejected request")
				}
				return
			}
			var resp map[string]string
			decode(t, rec, &resp)
			if resp["job_id"] != "job-1" || resp["status"] != "pending" {
				t.Errorf("response = %v", resp)
			}
		})
	}
}

func TestEnqueue_PublishError(t *testing.T) {
	h := NewImportHandler(dataset.NewStore(), newIngestor(), &mockPublisher{err: errors.New("queue is closed")}, ImportOptions{GCSEnabled: true})
	rec := httptest.NewRecorder()
	h.EnqueueGCS(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"gcs_uri":"gs://b/o.csv"}`)))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

type fakeImporter struct {
	result *domain.IngestionResult
	err    error
	gotURI string
	gotID  string
}

func (f *fakeImporter) IngestFile(ctx context.Context, filename string, data []byte) (*domain.IngestionResult, error) {
	return f.result, f.err
}

func (f *fakeImporter) IngestFromGCS(ctx context.Context, gcsURI string) (*domain.IngestionResult, error) {
	f.gotURI = gcsURI
	return f.result, f.err
}

func (f *fakeImporter) IngestFromGoogleSheet(ctx context.Context, spreadsheetID, readRange string) (*domain.IngestionResult, error) {
	f.gotID = spreadsheetID
	return f.result, f.err
}

func TestImportJobHandler(t *testing.T) {
	result := &domain.IngestionResult{
		Records:          []domain.Transaction{{ID: 1, Category: "x", Type: domain.TypeIncome}},
		SourceRowCount:   2,
		AcceptedRowCount: 1,
	}

	t.Run("gcs success", func(t *testing.T) {
		store := dataset.NewStore()
		imp := &fakeImporter{result: result}
		job := &jobs.ImportJob{Type: jobs.JobTypeImportGCS, GCSURI: "gs://b/o.csv"}

		if err := NewImportJobHandler(store, imp)(context.Background(), job); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if imp.gotURI != "gs://b/o.csv" {
			t.Errorf("ingested %q", imp.gotURI)
		}
		if job.RunID == "" || job.RecordCount != 1 || job.SourceRowCount != 2 {
			t.Errorf("job = %+v", job)
		}
		if snap := store.Snapshot(); snap.Run.Source != "gs://b/o.csv" {
			t.Errorf("run source = %q", snap.Run.Source)
		}
	})

	t.Run("sheet source", func(t *testing.T) {
		store := dataset.NewStore()
		imp := &fakeImporter{result: result}
		job := &jobs.ImportJob{Type: jobs.JobTypeImportSheet, SpreadsheetID: "abc"}

		if err := NewImportJobHandler(store, imp)(context.Background(), job); err != nil {
			t.Fatalf("handler error = %v", err)
		}
		if imp.gotID != "abc" || store.Snapshot().Run.Source != "sheets:abc" {
			t.Errorf("spreadsheet = %q, source = %q", imp.gotID, store.Snapshot().Run.Source)
		}
	})

	tests := []struct {
		name          string
		err           error
		wantPermanent bool
	}{
		{"input error", fmt.Errorf("DecodeStep: %w", sheet.ErrUnsupportedFormat), true},
		{"no rows", pipeline.ErrNoValidTransactions, true},
		{"not configured", pipeline.ErrSourceNotConfigured, true},
		{"transient", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &jobs.ImportJob{Type: jobs.JobTypeImportGCS, GCSURI: "gs://b/o.csv"}
			err := NewImportJobHandler(dataset.NewStore(), &fakeImporter{err: tt.err})(context.Background(), job)
			if err == nil {
				t.Fatal("handler error = nil")
			}
			if jobs.IsPermanent(err) != tt.wantPermanent {
				t.Errorf("IsPermanent(%v) = %v, want %v", err, jobs.IsPermanent(err), tt.wantPermanent)
			}
		})
	}

	t.Run("unknown type", func(t *testing.T) {
		err := NewImportJobHandler(dataset.NewStore(), &fakeImporter{})(context.Background(), &jobs.ImportJob{Type: "bogus"})
		if !jobs.IsPermanent(err) {
			t.Errorf("error = %v, want permanent", err)
		}
	})
}

func TestRecordsHandler_Transactions(t *testing.T) {
	store := dataset.NewStore()
	importSample(t, store)
	h := NewRecordsHandler(store)

	tests := []struct {
		name      string
		url       string
		wantCode  int
		wantDescs []string
	}{
		{"default sort by date asc", "/api/transactions", http.StatusOK, []string{"Salary", "Rent", "Groceries"}},
		{"amount desc", "/api/transactions?sort=amount&order=desc", http.StatusOK, []string{"Salary", "Rent", "Groceries"}},
		{"expenses only", "/api/transactions?type=expense", http.StatusOK, []string{"Rent", "Groceries"}},
		{"search category", "/api/transactions?search=FOOD", http.StatusOK, []string{"Groceries"}},
		{"date window", "/api/transactions?date_from=2026-01-03&date_to=2026-01-31", http.StatusOK, []string{"Rent"}},
		{"bad date", "/api/transactions?date_from=yesterday", http.StatusBadRequest, nil},
		{"bad sort", "/api/transactions?sort=balance", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode != http.StatusOK {
				return
			}

			var resp struct {
				Transactions []domain.Transaction `json:"transactions"`
				Count        int                  `json:"count"`
			}
			decode(t, rec, &resp)
			var descs []string
			for _, tx := range resp.Transactions {
				descs = append(descs, tx.Description)
			}
			if strings.Join(descs, ",") != strings.Join(tt.wantDescs, ",") || resp.Count != len(tt.wantDescs) {
				t.Errorf("got %v (count %d), want %v", descs, resp.Count, tt.wantDescs)
			}
		})
	}
}

func TestRecordsHandler_Summary(t *testing.T) {
	store := dataset.NewStore()
	importSample(t, store)
	h := NewRecordsHandler(store)

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	var got domain.SummaryTotals
	decode(t, rec, &got)
	if got.TotalIncome.String() != "1000" || got.TotalExpenses.String() != "450" || got.Balance.String() != "550" {
		t.Errorf("summary = %+v", got)
	}
	if got.SavingsRate != 0.55 || got.TransactionCount != 3 {
		t.Errorf("rate = %v, count = %d", got.SavingsRate, got.TransactionCount)
	}
}

func TestRecordsHandler_EmptyStore(t *testing.T) {
	h := NewRecordsHandler(dataset.NewStore())

	rec := httptest.NewRecorder()
	h.ListTransactions(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"transactions":[]`) {
		t.Errorf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.DateRange(rec, httptest.NewRequest(http.MethodGet, "/api/date-range", nil))
	if !strings.Contains(rec.Body.String(), `"min":null`) {
		t.Errorf("date range body = %s", rec.Body.String())
	}
}

func TestRecordsHandler_Breakdowns(t *testing.T) {
	store := dataset.NewStore()
	importSample(t, store)
	h := NewRecordsHandler(store)

	rec := httptest.NewRecorder()
	h.CategoryBreakdown(rec, httptest.NewRequest(http.MethodGet, "/api/breakdown/categories?type=Expense", nil))
	var cats struct {
		Categories []domain.CategoryTotal `json:"categories"`
	}
	decode(t, rec, &cats)
	if len(cats.Categories) != 2 || cats.Categories[0].Category != "Housing" {
		t.Errorf("categories = %+v", cats.Categories)
	}

	rec = httptest.NewRecorder()
	h.CategoryBreakdown(rec, httptest.NewRequest(http.MethodGet, "/api/breakdown/categories?type=Expense&limit=1", nil))
	decode(t, rec, &cats)
	if len(cats.Categories) != 1 {
		t.Errorf("limited categories = %+v", cats.Categories)
	}

	rec = httptest.NewRecorder()
	h.CategoryBreakdown(rec, httptest.NewRequest(http.MethodGet, "/api/breakdown/categories?limit=x", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.MonthBreakdown(rec, httptest.NewRequest(http.MethodGet, "/api/breakdown/months", nil))
	var months struct {
		Months []domain.MonthTotal `json:"months"`
	}
	decode(t, rec, &months)
	if len(months.Months) != 2 || months.Months[0].MonthKey != "2026-01" {
		t.Errorf("months = %+v", months.Months)
	}

	rec = httptest.NewRecorder()
	h.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if !strings.Contains(rec.Body.String(), `["Food","Housing","Income"]`) {
		t.Errorf("categories body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.Dashboard(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"run_id"`) {
		t.Errorf("dashboard = %d %s", rec.Code, rec.Body.String())
	}
}

func TestRecordsHandler_Files(t *testing.T) {
	store := dataset.NewStore()
	importSample(t, store)
	h := NewRecordsHandler(store)

	rec := httptest.NewRecorder()
	h.ExportCSV(rec, httptest.NewRequest(http.MethodGet, "/api/export.csv?type=Income", nil))
	want := "Date,Description,Category,Amount,Type\n2026-01-02,Salary,Income,1000.00,Income\n"
	if rec.Body.String() != want {
		t.Errorf("CSV export = %q, want %q", rec.Body.String(), want)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Disposition"), "attachment;") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	rec = httptest.NewRecorder()
	h.ExportXLSX(rec, httptest.NewRequest(http.MethodGet, "/api/export.xlsx", nil))
	sheetData, err := sheet.DecodeXLSX(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("DecodeXLSX() error = %v", err)
	}
	if len(sheetData) != 4 {
		t.Errorf("xlsx rows = %d, want 4", len(sheetData))
	}

	rec = httptest.NewRecorder()
	h.Template(rec, httptest.NewRequest(http.MethodGet, "/api/template.csv", nil))
	if !strings.HasPrefix(rec.Body.String(), "Date,Description,Category,Amount,Type\n") {
		t.Errorf("template = %q", rec.Body.String())
	}
}

func TestJobsHandler(t *testing.T) {
	store := inmemory.NewStore()
	ctx := context.Background()
	store.SaveJob(ctx, &jobs.ImportJob{JobID: "j1", Type: jobs.JobTypeImportGCS, Status: jobs.JobStatusCompleted})
	store.SaveJob(ctx, &jobs.ImportJob{JobID: "j2", Type: jobs.JobTypeImportSheet, Status: jobs.JobStatusFailed})
	h := NewJobsHandler(store)

	rec := httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/j1", nil), "j1")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"job_id":"j1"`) {
		t.Errorf("GetJob = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.GetJob(rec, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), "nope")
	if rec.Code != http.StatusNotFound {
		t.Errorf("GetJob(unknown) status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ListJobs(rec, httptest.NewRequest(http.MethodGet, "/api/jobs?type=import_sheet", nil))
	var resp struct {
		Jobs  []jobs.ImportJob `json:"jobs"`
		Count int              `json:"count"`
	}
	decode(t, rec, &resp)
	if resp.Count != 1 || resp.Jobs[0].JobID != "j2" {
		t.Errorf("ListJobs = %+v", resp)
	}
}

type mockRepository struct {
	transactions int
	runs         []*bigquery.ImportRunRow
	err          error
}

func (m *mockRepository) EnsureTables(ctx context.Context) error { return m.err }

func (m *mockRepository) InsertImportRun(ctx context.Context, row *bigquery.ImportRunRow) error {
	m.runs = append(m.runs, row)
	return nil
}

func (m *mockRepository) InsertTransactions(ctx context.Context, rows []*bigquery.TransactionRow) error {
	m.transactions += len(rows)
	return nil
}

func (m *mockRepository) ListImportRuns(ctx context.Context, limit int) ([]*bigquery.ImportRunRow, error) {
	return m.runs, m.err
}

func TestSinksHandler_BigQuery(t *testing.T) {
	store := dataset.NewStore()

	rec := httptest.NewRecorder()
	NewSinksHandler(store, nil, nil, "").ExportBigQuery(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured status = %d", rec.Code)
	}

	repo := &mockRepository{}
	h := NewSinksHandler(store, repo, nil, "")

	rec = httptest.NewRecorder()
	h.ExportBigQuery(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("empty store status = %d, want 409", rec.Code)
	}

	importSample(t, store)
	rec = httptest.NewRecorder()
	h.ExportBigQuery(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusOK || repo.transactions != 3 {
		t.Errorf("status = %d, exported %d", rec.Code, repo.transactions)
	}

	rec = httptest.NewRecorder()
	h.ListExportedRuns(rec, httptest.NewRequest(http.MethodGet, "/?limit=5", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"count":1`) {
		t.Errorf("runs = %d %s", rec.Code, rec.Body.String())
	}

	repo.err = errors.New("permission denied")
	rec = httptest.NewRecorder()
	h.ExportBigQuery(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusBadGateway {
		t.Errorf("failing warehouse status = %d", rec.Code)
	}
}

func TestSinksHandler_NotionUnconfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSinksHandler(dataset.NewStore(), nil, nil, "").ExportNotion(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
}
