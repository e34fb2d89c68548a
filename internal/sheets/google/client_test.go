package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"aihr-backend/internal/sheets"
	"aihr-backend/internal/shared/upstream"
)

type fakeSheets struct {
	mu       sync.Mutex
	tabs     []string
	added    []string
	appended map[string][][]string
	gets     int

	// addConflict makes addSheet fail as if the tab was created concurrently.
	addConflict bool
}

func (f *fakeSheets) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		path := r.URL.EscapedPath()
		switch {
		case r.Method == http.MethodGet && path == "/v4/spreadsheets/sheet-1":
			f.gets++
			sheetsJSON := make([]map[string]any, 0, len(f.tabs))
			for _, tab := range f.tabs {
				sheetsJSON = append(sheetsJSON, map[string]any{"properties": map[string]any{"title": tab}})
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheetsJSON})
		case r.Method == http.MethodPost && path == "/v4/spreadsheets/sheet-1:batchUpdate":
			body, _ := io.ReadAll(r.Body)
			var req struct {
				Requests []struct {
					AddSheet struct {
						Properties struct {
							Title string `json:"title"`
						} `json:"properties"`
					} `json:"addSheet"`
				} `json:"requests"`
			}
			_ = json.Unmarshal(body, &req)
			title := req.Requests[0].AddSheet.Properties.Title
			if f.addConflict {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = fmt.Fprintf(w, `{"error":{"code":400,"message":"Invalid requests[0].addSheet: A sheet with the name \"%s\" already exists. Please enter another name."}}`, title)
				return
			}
			f.tabs = append(f.tabs, title)
			f.added = append(f.added, title)
			_, _ = w.Write([]byte(`{}`))
		case r.Method == http.MethodPost && strings.HasSuffix(path, ":append"):
			if r.URL.Query().Get("valueInputOption") != "RAW" {
				t.Errorf("expected RAW input option")
			}
			tab := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/v4/spreadsheets/sheet-1/values/"), "!A1:append")
			var req struct {
				Values [][]string `json:"values"`
			}
			_ = json.NewDecoder(r.Body).Decode(&req)
			if f.appended == nil {
				f.appended = make(map[string][][]string)
			}
			f.appended[tab] = append(f.appended[tab], req.Values...)
			_, _ = w.Write([]byte(`{"updates":{"updatedRows":1}}`))
		default:
			t.Errorf("unexpected request %s %s", r.Method, path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestAppendRowCreatesMissingTabOnce(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Sheet1"}}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := New("", "sheet-1", WithHTTPClient(server.Client()), WithBaseURL(server.URL))
	ctx := context.Background()

	if err := client.AppendRow(ctx, sheets.TabCandidates, []string{"id-1", "Ann"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := client.AppendRow(ctx, sheets.TabCandidates, []string{"id-2", "Bob"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.added) != 1 || fake.added[0] != sheets.TabCandidates {
		t.Fatalf("expected candidates tab created once, got %v", fake.added)
	}
	if fake.gets != 1 {
		t.Fatalf("expected tab lookup to be cached, got %d lookups", fake.gets)
	}
	rows := fake.appended[sheets.TabCandidates]
	if len(rows) != 2 || rows[0][1] != "Ann" || rows[1][0] != "id-2" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestAppendRowToleratesTabCreatedConcurrently(t *testing.T) {
	fake := &fakeSheets{tabs: []string{"Sheet1"}, addConflict: true}
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	client := New("", "sheet-1", WithHTTPClient(server.Client()), WithBaseURL(server.URL))
	if err := client.AppendRow(context.Background(), sheets.TabCandidates, []string{"id-1", "Ann"}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if rows := fake.appended[sheets.TabCandidates]; len(rows) != 1 {
		t.Fatalf("expected the row appended, got %v", rows)
	}
}

func TestAppendRowSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer server.Close()

	client := New("", "sheet-1", WithHTTPClient(server.Client()), WithBaseURL(server.URL))
	err := client.AppendRow(context.Background(), sheets.TabReports, []string{"x"})
	var upErr *upstream.Error
	if !errors.As(err, &upErr) || upErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 upstream error, got %v", err)
	}
	if upErr.Message != "The caller does not have permission" {
		t.Fatalf("unexpected message %q", upErr.Message)
	}
}

func TestAppendRowWithoutCredentials(t *testing.T) {
	err := New("", "").AppendRow(context.Background(), sheets.TabVideos, []string{"x"})
	var cfgErr *upstream.ConfigError
	if !errors.As(err, &cfgErr) || len(cfgErr.Missing) != 2 {
		t.Fatalf("expected both keys missing, got %v", err)
	}
}

func TestAppendRowRejectsBadCredentials(t *testing.T) {
	err := New("{not json", "sheet-1").AppendRow(context.Background(), sheets.TabVideos, []string{"x"})
	var upErr *upstream.Error
	if !errors.As(err, &upErr) || upErr.Op != "auth" {
		t.Fatalf("expected auth error, got %v", err)
	}
}
