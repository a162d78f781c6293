package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/triggerboard/internal/grid"
	"github.com/jpalmerr/triggerboard/internal/popup"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRows returns one row per name with distinct numeric ids.
func testRows(names ...string) []grid.Row {
	rows := make([]grid.Row, len(names))
	for i, name := range names {
		rows[i] = grid.Row{
			ID:          json.RawMessage(strings.Repeat("1", i+1)),
			TriggerName: name,
			Status:      "active",
			TriggeredAt: "2024-01-01 10:00",
			TriggerType: "scheduled",
		}
	}
	return rows
}

func newTestServer(g grid.Grid) *Server {
	return NewServer(Config{Grid: g}, testLogger())
}

// parseSSESnapshots reads every "data:" line of an SSE body as a snapshot.
func parseSSESnapshots(body string) []grid.Snapshot {
	var snaps []grid.Snapshot
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "data: ") {
			var snap grid.Snapshot
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snap); err == nil {
				snaps = append(snaps, snap)
			}
		}
	}
	return snaps
}

// --- SSE ---

func TestHandleSSE_InitialSnapshot(t *testing.T) {
	g := grid.NewMemoryGrid(nil)
	g.SetRows(testRows("nightly-backup", "hourly-sync"))

	srv := newTestServer(g)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	snaps := parseSSESnapshots(rec.Body.String())
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if len(snaps[0].Records) != 2 {
		t.Errorf("initial snapshot has %d records, want 2", len(snaps[0].Records))
	}
	if len(snaps[0].Columns) != len(grid.DefaultColumns()) {
		t.Errorf("initial snapshot has %d columns, want %d", len(snaps[0].Columns), len(grid.DefaultColumns()))
	}
}

func TestHandleSSE_InitialSnapshotEmptyGrid(t *testing.T) {
	srv := newTestServer(grid.NewMemoryGrid(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	snaps := parseSSESnapshots(rec.Body.String())
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(snaps))
	}
	if snaps[0].Version != 0 {
		t.Errorf("Version = %d, want 0", snaps[0].Version)
	}
	if snaps[0].Records == nil {
		t.Error("Records should encode as [] rather than null")
	}
}

func TestHandleSSE_StreamsUpdates(t *testing.T) {
	g := grid.NewMemoryGrid(nil)
	srv := newTestServer(g)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	// give handler time to subscribe
	time.Sleep(50 * time.Millisecond)

	g.SetRows(testRows("first"))
	g.SetRows(testRows("second", "third"))

	// give time for updates to be written
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("handler did not exit after context cancellation")
	}

	snaps := parseSSESnapshots(rec.Body.String())
	if len(snaps) != 3 {
		t.Fatalf("got %d snapshots, want 3 (initial + 2 updates)", len(snaps))
	}
	last := snaps[len(snaps)-1]
	if len(last.Records) != 2 || last.Records[0].TriggerName != "second" {
		t.Errorf("last snapshot = %+v, want rows second, third", last.Records)
	}
	if last.Version != 2 {
		t.Errorf("last Version = %d, want 2", last.Version)
	}
}

func TestHandleSSE_ClientDisconnect(t *testing.T) {
	srv := newTestServer(grid.NewMemoryGrid(nil))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		srv.handleSSE(rec, req)
		close(done)
	}()

	// simulate client disconnect
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("handler did not exit after client disconnect")
	}
}

func TestHandleSSE_NoGoroutineLeaks(t *testing.T) {
	// allow existing goroutines to settle
	runtime.GC()
	time.Sleep(100 * time.Millisecond)
	before := runtime.NumGoroutine()

	srv := newTestServer(grid.NewMemoryGrid(nil))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}

	wg.Wait()

	runtime.GC()
	time.Sleep(200 * time.Millisecond)

	after := runtime.NumGoroutine()
	if after > before+2 { // small tolerance for runtime variance
		t.Errorf("potential goroutine leak: before=%d, after=%d", before, after)
	}
}

func TestHandleSSE_ConcurrentClientsShutdown(t *testing.T) {
	g := grid.NewMemoryGrid(nil)
	g.SetRows(testRows("job"))
	srv := newTestServer(g)

	serverCtx, serverCancel := context.WithCancel(context.Background())

	numClients := 10
	var wg sync.WaitGroup
	started := make(chan struct{})
	var startedCount atomic.Int32

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(serverCtx)

			if startedCount.Add(1) == int32(numClients) {
				close(started)
			}

			srv.handleSSE(httptest.NewRecorder(), req)
		}()
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("clients did not start in time")
	}

	time.Sleep(100 * time.Millisecond)
	serverCancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("not all handlers exited after shutdown")
	}
}

type nonFlushWriter struct {
	header     http.Header
	statusCode int
	body       []byte
}

func (n *nonFlushWriter) Header() http.Header {
	return n.header
}

func (n *nonFlushWriter) Write(b []byte) (int, error) {
	n.body = append(n.body, b...)
	return len(b), nil
}

func (n *nonFlushWriter) WriteHeader(statusCode int) {
	n.statusCode = statusCode
}

func TestHandleSSE_SSENotSupported(t *testing.T) {
	srv := newTestServer(grid.NewMemoryGrid(nil))

	w := &nonFlushWriter{header: make(http.Header)}
	srv.handleSSE(w, httptest.NewRequest(http.MethodGet, "/api/sse", nil))

	if w.statusCode != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, w.statusCode)
	}
}

func TestHandleSSE_Headers(t *testing.T) {
	srv := newTestServer(grid.NewMemoryGrid(nil))

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	srv.handleSSE(rec, req)

	expectedHeaders := map[string]string{
		"Content-Type":                "text/event-stream",
		"Cache-Control":               "no-cache",
		"Connection":                  "keep-alive",
		"Access-Control-Allow-Origin": "*",
	}

	for key, expected := range expectedHeaders {
		if got := rec.Header().Get(key); got != expected {
			t.Errorf("header %s = %q, want %q", key, got, expected)
		}
	}
}

// TestHandleSSE_ServerShutdownIntegration tests that SSE handlers exit cleanly
// when the server is shut down, using a real HTTP connection.
func TestHandleSSE_ServerShutdownIntegration(t *testing.T) {
	srv := newTestServer(grid.NewMemoryGrid(nil))

	serverCtx, serverCancel := context.WithCancel(context.Background())

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// derive request context from server context (simulates BaseContext)
		srv.handleSSE(w, r.WithContext(serverCtx))
	})

	ts := httptest.NewServer(handler)
	defer ts.Close()

	connDone := make(chan error, 1)
	go func() {
		resp, err := ts.Client().Get(ts.URL)
		if err != nil {
			connDone <- err
			return
		}
		defer func() { _ = resp.Body.Close() }()

		_, _ = io.Copy(io.Discard, resp.Body)
		connDone <- nil
	}()

	time.Sleep(100 * time.Millisecond)
	serverCancel()

	select {
	case <-connDone:
	case <-time.After(3 * time.Second):
		t.Fatal("SSE connection did not close after server shutdown")
	}
}

// --- Events ---

func TestHandleEvents(t *testing.T) {
	g := grid.NewMemoryGrid(nil)
	g.SetRows(testRows("nightly-backup"))
	srv := newTestServer(g)

	rec := httptest.NewRecorder()
	srv.handleEvents(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var body struct {
		Columns []grid.Column `json:"columns"`
		Records []struct {
			ID          json.RawMessage `json:"id"`
			TriggerName string          `json:"trigger_name"`
		} `json:"records"`
		Version   uint64    `json:"version"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}

	if len(body.Records) != 1 || body.Records[0].TriggerName != "nightly-backup" {
		t.Errorf("records = %+v", body.Records)
	}
	if string(body.Records[0].ID) != "1" {
		t.Errorf("id = %s, want 1", body.Records[0].ID)
	}
	if body.Version != 1 {
		t.Errorf("version = %d, want 1", body.Version)
	}
	if body.UpdatedAt.IsZero() {
		t.Error("updated_at should be set")
	}
	if len(body.Columns) != 5 || body.Columns[0].Field != grid.FieldID {
		t.Errorf("columns = %+v", body.Columns)
	}
}

func TestHandleEvents_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(grid.NewMemoryGrid(nil))

	rec := httptest.NewRecorder()
	srv.handleEvents(rec, httptest.NewRequest(http.MethodPost, "/api/events", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// --- Popup ---

// popupBrowser replays the popup session cookie the way a browser would.
type popupBrowser struct {
	t       *testing.T
	srv     *Server
	cookies []*http.Cookie
}

func (b *popupBrowser) send(method, body string) *httptest.ResponseRecorder {
	b.t.Helper()
	var payload io.Reader
	if body != "" {
		payload = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/popup", payload)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.srv.handlePopup(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		b.cookies = set
	}
	return rec
}

func postPopup(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	return (&popupBrowser{t: t, srv: srv}).send(http.MethodPost, body)
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) popup.State {
	t.Helper()
	var state popup.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to parse popup state: %v, body: %s", err, rec.Body.String())
	}
	return state
}

func TestHandlePopup_Get(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), NewForm: popup.NewForm}, testLogger())

	rec := httptest.NewRecorder()
	srv.handlePopup(rec, httptest.NewRequest(http.MethodGet, "/api/popup", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	state := decodeState(t, rec)
	if state.Open {
		t.Error("popup should start closed")
	}
	if state.TriggerType != popup.TriggerTypeScheduled {
		t.Errorf("trigger_type = %q, want scheduled", state.TriggerType)
	}
}

func TestHandlePopup_Interactions(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), NewForm: popup.NewForm}, testLogger())
	browser := &popupBrowser{t: t, srv: srv}

	rec := browser.send(http.MethodPost, `{"action":"open"}`)
	if rec.Code != http.StatusOK || !decodeState(t, rec).Open {
		t.Fatalf("open: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = browser.send(http.MethodPost, `{"action":"trigger_type","value":"api"}`)
	state := decodeState(t, rec)
	if state.Display[popup.IDAPIOptions] != popup.DisplayBlock || state.Display[popup.IDScheduledOptions] != popup.DisplayNone {
		t.Errorf("after api: display = %v", state.Display)
	}

	rec = browser.send(http.MethodPost, `{"action":"schedule_type","value":"interval"}`)
	state = decodeState(t, rec)
	if state.Display[popup.IDIntervalOptions] != popup.DisplayBlock || state.Display[popup.IDOnetimeOptions] != popup.DisplayNone {
		t.Errorf("after interval: display = %v", state.Display)
	}

	rec = browser.send(http.MethodPost, `{"action":"close"}`)
	if decodeState(t, rec).Open {
		t.Error("popup still open after close")
	}
}

func TestHandlePopup_SeparateBrowsers(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), NewForm: popup.NewForm}, testLogger())
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	newBrowser := func() *http.Client {
		jar, err := cookiejar.New(nil)
		if err != nil {
			t.Fatalf("cookiejar.New() error: %v", err)
		}
		return &http.Client{Jar: jar}
	}
	call := func(c *http.Client, method, body string) popup.State {
		t.Helper()
		var payload io.Reader
		if body != "" {
			payload = strings.NewReader(body)
		}
		req, err := http.NewRequest(method, ts.URL+"/api/popup", payload)
		if err != nil {
			t.Fatalf("NewRequest() error: %v", err)
		}
		resp, err := c.Do(req)
		if err != nil {
			t.Fatalf("%s /api/popup error: %v", method, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s /api/popup status = %d, want 200", method, resp.StatusCode)
		}
		var state popup.State
		if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
			t.Fatalf("failed to decode popup state: %v", err)
		}
		return state
	}

	a, b := newBrowser(), newBrowser()

	call(a, http.MethodPost, `{"action":"open"}`)
	stateA := call(a, http.MethodPost, `{"action":"trigger_type","value":"api"}`)
	if !stateA.Open || stateA.TriggerType != popup.TriggerTypeAPI {
		t.Fatalf("browser A state = open %v type %q, want open api", stateA.Open, stateA.TriggerType)
	}

	stateB := call(b, http.MethodGet, "")
	if stateB.Open {
		t.Error("browser B sees the popup browser A opened")
	}
	if stateB.TriggerType != popup.TriggerTypeScheduled {
		t.Errorf("browser B trigger_type = %q, want scheduled", stateB.TriggerType)
	}

	// A keeps its own state across requests
	if got := call(a, http.MethodGet, ""); !got.Open || got.TriggerType != popup.TriggerTypeAPI {
		t.Errorf("browser A state after B = open %v type %q, want open api", got.Open, got.TriggerType)
	}
	if got := srv.popups.Len(); got != 2 {
		t.Errorf("popup sessions = %d, want 2", got)
	}
}

func TestHandlePopup_UnknownCookieGetsFreshSession(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), NewForm: popup.NewForm}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/popup", nil)
	req.AddCookie(&http.Cookie{Name: popupCookie, Value: "forged"})
	rec := httptest.NewRecorder()
	srv.handlePopup(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != popupCookie {
		t.Fatalf("cookies = %v, want one %s cookie", cookies, popupCookie)
	}
	if cookies[0].Value == "forged" {
		t.Error("server reused a session id it never issued")
	}
	if !cookies[0].HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
}

func TestHandlePopup_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"action":`},
		{"unknown action", `{"action":"resize"}`},
		{"unknown schedule type", `{"action":"schedule_type","value":"weekly"}`},
		{"empty trigger type", `{"action":"trigger_type","value":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), NewForm: popup.NewForm}, testLogger())

			rec := postPopup(t, srv, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandlePopup_MethodNotAllowed(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), NewForm: popup.NewForm}, testLogger())

	rec := httptest.NewRecorder()
	srv.handlePopup(rec, httptest.NewRequest(http.MethodDelete, "/api/popup", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// --- Refresh ---

func TestHandleRefresh(t *testing.T) {
	tests := []struct {
		name     string
		accepted bool
		wantCode int
	}{
		{"accepted", true, http.StatusAccepted},
		{"in flight", false, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := NewServer(Config{
				Grid: grid.NewMemoryGrid(nil),
				Refresh: func() bool {
					calls.Add(1)
					return tt.accepted
				},
			}, testLogger())

			rec := httptest.NewRecorder()
			srv.handleRefresh(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if calls.Load() != 1 {
				t.Errorf("refresh called %d times, want 1", calls.Load())
			}
		})
	}
}

func TestHandleRefresh_MethodNotAllowed(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), Refresh: func() bool { return true }}, testLogger())

	rec := httptest.NewRecorder()
	srv.handleRefresh(rec, httptest.NewRequest(http.MethodGet, "/api/refresh", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

// --- Create trigger ---

func TestHandleCreateTrigger(t *testing.T) {
	var gotBody string
	upstream := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"failure","message":"trigger time must be in the future"}`))
	})
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), CreateTrigger: upstream}, testLogger())

	t.Run("passes body and response through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.handleCreateTrigger(rec, httptest.NewRequest(http.MethodPost, "/api/triggers", strings.NewReader(`{"trigger_name":"x"}`)))

		if gotBody != `{"trigger_name":"x"}` {
			t.Errorf("upstream body = %q", gotBody)
		}
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "in the future") {
			t.Errorf("response = %d %s, want the upstream envelope", rec.Code, rec.Body.String())
		}
	})

	t.Run("oversized body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		body := strings.NewReader(strings.Repeat("x", maxCreateBody+1))
		srv.handleCreateTrigger(rec, httptest.NewRequest(http.MethodPost, "/api/triggers", body))

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		srv.handleCreateTrigger(rec, httptest.NewRequest(http.MethodGet, "/api/triggers", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

// --- Routing ---

func TestHandler_OptionalRoutes(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("triggerboard_polls_total 1\n"))
	})

	create := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	full := NewServer(Config{
		Grid:          grid.NewMemoryGrid(nil),
		NewForm:       popup.NewForm,
		Refresh:       func() bool { return true },
		CreateTrigger: create,
		Metrics:       metrics,
	}, testLogger())
	bare := newTestServer(grid.NewMemoryGrid(nil))

	tests := []struct {
		method   string
		path     string
		fullCode int
		bareCode int
	}{
		{http.MethodGet, "/api/events", http.StatusOK, http.StatusOK},
		{http.MethodGet, "/api/popup", http.StatusOK, http.StatusNotFound},
		{http.MethodPost, "/api/refresh", http.StatusAccepted, http.StatusNotFound},
		{http.MethodPost, "/api/triggers", http.StatusCreated, http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			full.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewReader(nil)))
			if rec.Code != tt.fullCode {
				t.Errorf("full: status = %d, want %d", rec.Code, tt.fullCode)
			}

			rec = httptest.NewRecorder()
			bare.Handler().ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, bytes.NewReader(nil)))
			if rec.Code != tt.bareCode {
				t.Errorf("bare: status = %d, want %d", rec.Code, tt.bareCode)
			}
		})
	}
}

// --- Start ---

func TestStart_AvailablePort_ReturnsNil(t *testing.T) {
	// port 0 = OS assigns available port. Valid for the internal server,
	// though the public Board API validates port > 0.
	srv := newTestServer(grid.NewMemoryGrid(nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		t.Errorf("Start() on available port returned error: %v", err)
	}
}

func TestStart_PortInUse_ReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer func() { _ = ln.Close() }()

	port := ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), Port: port}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err = srv.Start(ctx)
	if err == nil {
		t.Fatal("Start() on occupied port should return error")
	}
	if !strings.Contains(err.Error(), "failed to bind") {
		t.Errorf("expected bind error, got: %v", err)
	}
}

func TestStart_InvalidPort_ReturnsError(t *testing.T) {
	srv := NewServer(Config{Grid: grid.NewMemoryGrid(nil), Port: -1}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err == nil {
		t.Fatal("Start() with invalid port should return error")
	}
}

// --- Benchmark ---

func BenchmarkHandleSSE_SingleClient(b *testing.B) {
	g := grid.NewMemoryGrid(nil)
	g.SetRows(testRows("a", "b", "c", "d", "e", "f", "g", "h", "i", "j"))

	srv := newTestServer(g)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		req := httptest.NewRequest(http.MethodGet, "/api/sse", nil).WithContext(ctx)
		srv.handleSSE(httptest.NewRecorder(), req)
		cancel()
	}
}

// --- Dashboard ---

// mockFS implements fs.ReadFileFS for testing dashboard rendering.
type mockFS struct {
	content string
}

func (m *mockFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *mockFS) ReadFile(name string) ([]byte, error) {
	if name == "assets/index.html" {
		return []byte(m.content), nil
	}
	return nil, fs.ErrNotExist
}

func dashboardServer(assets fs.FS, title string) *Server {
	return NewServer(Config{Grid: grid.NewMemoryGrid(nil), Assets: assets, Title: title}, testLogger())
}

func TestHandleDashboard_CustomTitle(t *testing.T) {
	srv := dashboardServer(&mockFS{content: "<title>{{.Title}}</title><h1>{{.Title}}</h1>"}, "Scheduler Events")

	rec := httptest.NewRecorder()
	srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "<title>Scheduler Events</title>") {
		t.Errorf("expected title tag with custom title, got: %s", body)
	}
	if !strings.Contains(body, "<h1>Scheduler Events</h1>") {
		t.Errorf("expected h1 with custom title, got: %s", body)
	}
}

func TestHandleDashboard_DefaultTitle(t *testing.T) {
	srv := dashboardServer(&mockFS{content: "<title>{{.Title}}</title>"}, "")

	rec := httptest.NewRecorder()
	srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(rec.Body.String(), "<title>TriggerBoard</title>") {
		t.Errorf("expected default title TriggerBoard, got: %s", rec.Body.String())
	}
}

func TestHandleDashboard_NilAssets(t *testing.T) {
	srv := dashboardServer(nil, "Custom Title")

	rec := httptest.NewRecorder()
	srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
}

func TestHandleDashboard_NonRootPath(t *testing.T) {
	srv := dashboardServer(&mockFS{content: "<title>{{.Title}}</title>"}, "")

	rec := httptest.NewRecorder()
	srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/other", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d for non-root path, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleDashboard_TitleWithHTMLChars(t *testing.T) {
	srv := dashboardServer(&mockFS{content: "<title>{{.Title}}</title>"}, "<script>alert('xss')</script>")

	rec := httptest.NewRecorder()
	srv.handleDashboard(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("title should be HTML-escaped to prevent XSS")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("expected escaped HTML, got: %s", body)
	}
}
