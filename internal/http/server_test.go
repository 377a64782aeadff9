package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"rimborsi/internal/core"
	"rimborsi/internal/services"
	"rimborsi/internal/storage"
)

type fakeAssistant struct {
	draft        core.Record
	answer       string
	err          error
	analyzeCalls int
}

func (f *fakeAssistant) ExtractFromImage(context.Context, []byte, string) (core.Record, error) {
	return f.draft, f.err
}

func (f *fakeAssistant) ExtractFromAudio(context.Context, []byte, string) (core.Record, error) {
	return f.draft, f.err
}

func (f *fakeAssistant) Analyze(context.Context, []core.Record, string) (string, error) {
	f.analyzeCalls++
	return f.answer, f.err
}

type fakeSyncer struct {
	configured bool
	err        error
	pushed     int
}

func (f *fakeSyncer) Configured() bool { return f.configured }

func (f *fakeSyncer) Push(_ context.Context, records []core.Record) error {
	if f.err != nil {
		return f.err
	}
	f.pushed = len(records)
	return nil
}

func newTestServer(t *testing.T, assistant Assistant, sync RecordSyncer) (*Server, *services.RecordService) {
	t.Helper()
	svc := services.NewRecordService(context.Background(), storage.NewMemoryStore(), nil)
	s := NewServer(":0", svc, assistant, sync, 10<<20)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = s.Shutdown(ctx)
	})
	return s, svc
}

func postForm(s *Server, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func get(s *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func saveRecord(t *testing.T, svc *services.RecordService, name string, cents int64, date core.Date, cat core.Category, purpose string) core.Record {
	t.Helper()
	m := core.Money{Cents: cents}
	saved, err := svc.Save(context.Background(), core.Record{
		Name: name, Amount: &m, Date: date, Category: cat, Purpose: purpose,
	})
	if err != nil {
		t.Fatalf("seed save: %v", err)
	}
	return saved
}

func TestIndexRenders(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := get(s, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Extract from photo", "Save expense", "Sync to spreadsheet"} {
		if !strings.Contains(body, want) {
			t.Errorf("index missing %q", want)
		}
	}
}

func TestCreateRecord(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)

	today := time.Now().Format("2006-01-02")
	rec := postForm(s, "/records", url.Values{
		"name":     {"Team lunch"},
		"amount":   {"42.50"},
		"date":     {today},
		"category": {"Food & Drink"},
		"purpose":  {"Client visit"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("HX-Trigger") != "records-updated" {
		t.Error("save must announce records-updated")
	}
	if !strings.Contains(rec.Body.String(), "Saved Team lunch") {
		t.Errorf("missing confirmation, body = %s", rec.Body.String())
	}
	if got := svc.List(); len(got) != 1 || got[0].Name != "Team lunch" {
		t.Fatalf("list = %+v", got)
	}
}

func TestCreateRecordIncomplete(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)

	rec := postForm(s, "/records", url.Values{
		"name":   {"No category"},
		"amount": {"10.00"},
		"date":   {time.Now().Format("2006-01-02")},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incomplete data") {
		t.Errorf("missing incomplete-data message, body = %s", rec.Body.String())
	}
	// The rejected values must be echoed back into the form.
	if !strings.Contains(rec.Body.String(), `value="No category"`) {
		t.Error("form values must survive a rejected save")
	}
	if got := svc.List(); len(got) != 0 {
		t.Fatalf("nothing should be saved, got %d", len(got))
	}
}

func TestCreateRecordRejectsOtherYear(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)

	lastYear := time.Now().Year() - 1
	rec := postForm(s, "/records", url.Values{
		"name":     {"Old receipt"},
		"amount":   {"10.00"},
		"date":     {fmt.Sprintf("%d-03-01", lastYear)},
		"category": {"Travel"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), fmt.Sprintf("%d", lastYear)) {
		t.Errorf("rejection must name the year, body = %s", rec.Body.String())
	}
	if got := svc.List(); len(got) != 0 {
		t.Fatal("out-of-year record must be discarded")
	}
}

func TestDeleteRecord(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)
	saved := saveRecord(t, svc, "Taxi", 1800, core.DateOf(time.Now()), core.CategoryTransport, "Airport")

	rec := postForm(s, "/records/delete", url.Values{
		"id":   {fmt.Sprintf("%d", saved.ID)},
		"view": {"all"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := svc.List(); len(got) != 0 {
		t.Fatalf("record should be gone, got %d", len(got))
	}

	rec = postForm(s, "/records/delete", url.Values{"id": {"424242"}, "view": {"all"}})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", rec.Code)
	}
}

func TestRecordsPartialAllView(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)
	saveRecord(t, svc, "Trattoria", 20000, core.DateOf(time.Now()), core.CategoryFoodAndDrink, "")

	rec := get(s, "/ui/records?view=all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Trattoria") {
		t.Error("record row missing")
	}
	if !strings.Contains(body, "Missing Purpose") {
		t.Error("absent purpose must be flagged in the All view")
	}
	if !strings.Contains(body, "All Expenses") {
		t.Error("All view title missing")
	}
}

func TestRecordsPartialAggregates(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)
	today := core.DateOf(time.Now())
	saveRecord(t, svc, "Taxi", 15000, today, core.CategoryTransport, "Airport")
	saveRecord(t, svc, "Dinner", 20000, today, core.CategoryFoodAndDrink, "Team")

	rec := get(s, "/ui/records?view=monthly")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Transportation") || !strings.Contains(body, "Food &amp; Drink") {
		t.Errorf("category totals missing, body = %s", body)
	}
	if strings.Contains(body, "Taxi") {
		t.Error("aggregated views must not list individual records")
	}
}

func multipartBody(t *testing.T, field, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func postUpload(s *Server, path, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestExtractImage(t *testing.T) {
	m := core.Money{Cents: 4250}
	fa := &fakeAssistant{draft: core.Record{
		Name: "Trattoria", Amount: &m, Date: core.DateOf(time.Now()),
		Category: core.CategoryFoodAndDrink, Counterparty: "Da Mario",
	}}
	s, _ := newTestServer(t, fa, nil)

	body, ct := multipartBody(t, "file", "receipt.jpg", "image/jpeg", []byte("jpegdata"))
	rec := postUpload(s, "/extract/image", ct, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := rec.Body.String()
	for _, want := range []string{`value="Trattoria"`, `value="42.50"`, `value="Da Mario"`, "Review the extracted fields"} {
		if !strings.Contains(got, want) {
			t.Errorf("review form missing %q", want)
		}
	}
}

func TestExtractFailureDiscardsDraft(t *testing.T) {
	fa := &fakeAssistant{err: errors.New("model unavailable")}
	s, _ := newTestServer(t, fa, nil)

	body, ct := multipartBody(t, "file", "receipt.jpg", "image/jpeg", []byte("jpegdata"))
	rec := postUpload(s, "/extract/image", ct, body)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "try again") {
		t.Error("failure must invite a manual retry")
	}
}

func TestExtractRejectsOtherYearDate(t *testing.T) {
	lastYear := time.Now().Year() - 1
	m := core.Money{Cents: 1000}
	fa := &fakeAssistant{draft: core.Record{
		Name: "Old receipt", Amount: &m,
		Date:     core.NewDate(lastYear, time.March, 1),
		Category: core.CategoryTravel,
	}}
	s, _ := newTestServer(t, fa, nil)

	body, ct := multipartBody(t, "file", "receipt.jpg", "image/jpeg", []byte("jpegdata"))
	rec := postUpload(s, "/extract/image", ct, body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), fmt.Sprintf("%d", lastYear)) {
		t.Errorf("rejection must name the year, body = %s", rec.Body.String())
	}
}

func TestExtractRejectsWrongMediaType(t *testing.T) {
	s, _ := newTestServer(t, &fakeAssistant{}, nil)

	body, ct := multipartBody(t, "file", "notes.txt", "text/plain", []byte("hello"))
	rec := postUpload(s, "/extract/image", ct, body)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAnalyzeRendersMarkupAndCaches(t *testing.T) {
	fa := &fakeAssistant{answer: "You spent **a lot**.\n\n* mostly on food"}
	s, _ := newTestServer(t, fa, nil)

	form := url.Values{"q": {"where did my money go?"}}
	rec := postForm(s, "/analyze", form)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<strong>a lot</strong>") {
		t.Errorf("bold markup not rendered, body = %s", body)
	}
	if !strings.Contains(body, "<li>mostly on food</li>") {
		t.Errorf("bullet markup not rendered, body = %s", body)
	}

	postForm(s, "/analyze", form)
	if fa.analyzeCalls != 1 {
		t.Fatalf("repeat question over an unchanged list must hit the cache, calls = %d", fa.analyzeCalls)
	}
}

func TestExportCSV(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)
	saveRecord(t, svc, "Taxi", 1800, core.DateOf(time.Now()), core.CategoryTransport, "Airport")

	rec := get(s, "/export/csv?view=all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Date,Name,Amount,Category,Counterparty,Purpose") {
		t.Errorf("unexpected header, body = %s", body)
	}
	if !strings.Contains(body, "Taxi") {
		t.Error("record row missing")
	}

	rec = get(s, "/export/csv?view=monthly")
	if !strings.HasPrefix(rec.Body.String(), "Category,") {
		t.Errorf("summary export must aggregate, body = %s", rec.Body.String())
	}
}

func TestExportPDF(t *testing.T) {
	s, svc := newTestServer(t, nil, nil)
	saveRecord(t, svc, "Taxi", 1800, core.DateOf(time.Now()), core.CategoryTransport, "Airport")

	rec := get(s, "/export/pdf?view=all")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("response is not a PDF document")
	}

	// Same list, same bytes.
	again := get(s, "/export/pdf?view=all")
	if !bytes.Equal(rec.Body.Bytes(), again.Body.Bytes()) {
		t.Error("repeated export of an unchanged list must be byte-identical")
	}
}

func TestExportPDFNonAllGetsNotice(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	rec := get(s, "/export/pdf?view=weekly")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); strings.HasPrefix(ct, "application/pdf") {
		t.Fatal("non-All selector must not produce a file")
	}
	if !strings.Contains(rec.Body.String(), "All view only") {
		t.Errorf("missing explanatory notice, body = %s", rec.Body.String())
	}
}

func TestSync(t *testing.T) {
	fs := &fakeSyncer{configured: true}
	s, svc := newTestServer(t, nil, fs)
	saveRecord(t, svc, "Taxi", 1800, core.DateOf(time.Now()), core.CategoryTransport, "Airport")

	rec := postForm(s, "/sync", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if fs.pushed != 1 {
		t.Fatalf("pushed = %d, want 1", fs.pushed)
	}
}

func TestSyncFailureShowsAlert(t *testing.T) {
	fs := &fakeSyncer{configured: true, err: errors.New("endpoint unreachable")}
	s, _ := newTestServer(t, nil, fs)

	rec := postForm(s, "/sync", url.Values{})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `role="alert"`) {
		t.Errorf("sync failure must render a blocking alert, body = %s", rec.Body.String())
	}
}

func TestSyncUnconfigured(t *testing.T) {
	s, _ := newTestServer(t, nil, &fakeSyncer{})

	rec := postForm(s, "/sync", url.Values{})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(t, nil, nil)

	if rec := get(s, "/healthz"); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec := get(s, "/readyz"); rec.Code != http.StatusOK || rec.Body.String() != "ready" {
		t.Fatalf("readyz = %d %q", rec.Code, rec.Body.String())
	}
}
