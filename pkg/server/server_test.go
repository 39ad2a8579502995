package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/filmlens/filmlens/internal/model"
	"github.com/filmlens/filmlens/pkg/config"
	"github.com/filmlens/filmlens/pkg/memo"
)

const testCSV = "Film_Name,Category,Language,Release_Date,Viewing_Month,Viewer_Rate,Number_of_Views\n" +
	"Good Film,Drama,English,2024-05-01,2024-12-01,8.5,1000\n" +
	"Other Film,Comedy,Spanish,2024-03-01,2024-06-01,6.0,500\n"

func newTestServer() *Server {
	cfg := config.Default().Server
	return NewServer(cfg, memo.New(memo.NewLRUBackend(4)))
}

// uploadCSV posts a dataset and waits for cleaning to finish.
func uploadCSV(t *testing.T, srv *Server, body string) string {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "views.csv")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	fw.Write([]byte(body))
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Upload: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid upload response: %v", err)
	}

	// Cleaning runs in the background; poll until it settles.
	for i := 0; i < 100; i++ {
		sess, err := srv.sessions.Get(resp.SessionID)
		if err != nil {
			t.Fatalf("Session lookup failed: %v", err)
		}
		snap := sess.snapshot()
		if snap.Status == StatusCompleted || snap.Status == StatusFailed {
			return resp.SessionID
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Cleaning did not finish in time")
	return ""
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", path, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(), "/api/health")
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func TestUploadAndSessionStatus(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	rec := get(srv, "/api/session/"+id)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var sess SessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("Invalid session response: %v", err)
	}
	if sess.Status != StatusCompleted {
		t.Errorf("Expected completed session, got %q (%s)", sess.Status, sess.Error)
	}
	if sess.Summary == nil || sess.Summary.FinalRows != 2 {
		t.Errorf("Expected summary with 2 final rows, got %+v", sess.Summary)
	}
}

func TestUpload_NoFile(t *testing.T) {
	srv := newTestServer()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest("POST", "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing file, got %d", rec.Code)
	}
}

func TestUpload_MethodNotAllowed(t *testing.T) {
	rec := get(newTestServer(), "/api/upload")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestUpload_BadDataFailsSession(t *testing.T) {
	srv := newTestServer()
	// No Viewer_Rate column: the pipeline must reject this upload.
	id := uploadCSV(t, srv, "Film_Name,Number_of_Views\nA,100\n")

	rec := get(srv, "/api/session/"+id)
	var sess SessionView
	json.Unmarshal(rec.Body.Bytes(), &sess)
	if sess.Status != StatusFailed {
		t.Errorf("Expected failed session, got %q", sess.Status)
	}
	if sess.Error == "" {
		t.Error("Expected error message on failed session")
	}
}

func TestSession_NotFound(t *testing.T) {
	rec := get(newTestServer(), "/api/session/no-such-id")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	endpoints := []string{
		"table", "overview", "categories", "languages", "monthly-views",
		"rating-by-category", "engagement-by-category",
		"performance-by-category", "performance-by-language",
		"top", "top?by=views&n=1", "quadrants", "correlation", "crosstab",
		"insights", "recommendations", "calendar",
	}
	for _, ep := range endpoints {
		rec := get(srv, "/api/session/"+id+"/"+ep)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", ep, rec.Code, rec.Body.String())
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s: expected JSON, got %s", ep, ct)
		}
	}
}

func TestTop_UnknownMetric(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	rec := get(srv, "/api/session/"+id+"/top?by=bogus")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown metric, got %d", rec.Code)
	}
}

func TestUnknownEndpoint(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	rec := get(srv, "/api/session/"+id+"/bogus")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestDownloadCSV(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	rec := get(srv, "/api/session/"+id+"/download?format=csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd == "" {
		t.Error("Expected Content-Disposition header")
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("Good Film")) {
		t.Error("Expected cleaned rows in download")
	}
}

func TestDownloadAllRowsRemoved(t *testing.T) {
	srv := newTestServer()
	// Cleaning removes the only row, which is still a successful run.
	futureCSV := "Film_Name,Category,Language,Release_Date,Viewing_Month,Viewer_Rate,Number_of_Views\n" +
		"Future Film,Drama,English,2026-01-01,2026-02-01,9.0,100\n"
	id := uploadCSV(t, srv, futureCSV)

	rec := get(srv, "/api/session/"+id+"/download?format=csv")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	lines := bytes.Split(bytes.TrimRight(rec.Body.Bytes(), "\n"), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("Expected header-only download, got %d lines", len(lines))
	}
	if !bytes.HasPrefix(lines[0], []byte("Film_Name,")) {
		t.Errorf("Expected header row, got %q", lines[0])
	}
}

func TestCacheHitOnRepeatUpload(t *testing.T) {
	srv := newTestServer()
	uploadCSV(t, srv, testCSV)
	id2 := uploadCSV(t, srv, testCSV)

	rec := get(srv, "/api/session/"+id2)
	var sess SessionView
	json.Unmarshal(rec.Body.Bytes(), &sess)
	if !sess.CacheHit {
		t.Error("Expected second identical upload to hit the memo")
	}
}

func TestDeleteSession(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	req := httptest.NewRequest("DELETE", "/api/session/"+id, nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	if rec := get(srv, "/api/session/"+id); rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", rec.Code)
	}
}

func contextWithTimeout(req *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(req.Context(), 200*time.Millisecond)
}

func TestSSEInitEvent(t *testing.T) {
	srv := newTestServer()
	id := uploadCSV(t, srv, testCSV)

	req := httptest.NewRequest("GET", "/api/events?session_id="+id, nil)
	ctx, cancel := contextWithTimeout(req)
	defer cancel()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected event-stream, got %s", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("event: init")) {
		t.Error("Expected init event for existing session")
	}
}

func TestSessionSnapshot(t *testing.T) {
	store := NewSessionStore()
	sess := store.Create("views.csv", 42)
	sess.complete(&model.Table{Columns: []string{model.ColFilmName}},
		&model.Summary{OriginalRows: 3, FinalRows: 1, RemovedRows: 2}, true)

	snap := sess.snapshot()
	if snap.Status != StatusCompleted || !snap.CacheHit {
		t.Errorf("Expected completed cache-hit view, got %+v", snap)
	}
	if snap.Summary == nil || snap.Summary.RemovedRows != 2 {
		t.Errorf("Expected summary with 2 removed rows, got %+v", snap.Summary)
	}

	// The view is detached from the live session.
	snap.Status = StatusFailed
	if sess.snapshot().Status != StatusCompleted {
		t.Error("Expected session state unchanged after mutating a view")
	}
}
