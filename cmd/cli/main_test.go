package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestReadInputFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, []byte(`{"client":{"name":"ACME"}}`), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	body, err := readInput(path)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}
	if !strings.Contains(string(body), "ACME") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestDoRequestPrintsPrettyJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/documents/FAC/7" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"reference":"FAC-000007"}`))
	}))
	defer srv.Close()

	origURL := baseURL
	baseURL = srv.URL
	defer func() { baseURL = origURL }()

	out := captureOutput(t, func() {
		doRequest(http.MethodGet, "/api/v1/documents/FAC/7", nil)
	})

	if !strings.Contains(out, "\"reference\": \"FAC-000007\"") {
		t.Fatalf("expected pretty-printed reference, got %q", out)
	}
}

func TestDoRequestEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	origURL := baseURL
	baseURL = srv.URL
	defer func() { baseURL = origURL }()

	out := captureOutput(t, func() {
		doRequest(http.MethodDelete, "/api/v1/documents/FAC/7", nil)
	})

	if !strings.Contains(out, "OK (Status: 204)") {
		t.Fatalf("expected status line, got %q", out)
	}
}
