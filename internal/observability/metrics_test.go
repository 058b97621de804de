package observability

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/IshaanNene/newsentiment/internal/config"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics(testLogger)
	m.ArticlesSaved.Add(3)
	m.ActiveWorkers.Store(2)

	rec := httptest.NewRecorder()
	m.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		"newsentiment_articles_saved_total 3",
		"# TYPE newsentiment_active_workers gauge",
		"newsentiment_active_workers 2",
		"newsentiment_fetch_failures_total 0",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in exposition", want)
		}
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
}

func TestSnapshot(t *testing.T) {
	m := NewMetrics(testLogger)
	m.ExtractionMisses.Add(5)
	snap := m.Snapshot()
	if snap["newsentiment_extraction_misses_total"] != 5 {
		t.Errorf("unexpected snapshot %v", snap)
	}
}

func TestNewLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "scraper.log")
	var console bytes.Buffer
	logger, closer, err := NewLogger(config.LoggingConfig{Level: "warn", Format: "json", File: path, MaxSizeMB: 1}, &console, false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("page failed", "url", "https://example.com/a")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("info record written at warn level")
	}
	if !strings.Contains(string(data), `"msg":"page failed"`) {
		t.Errorf("log file = %s", data)
	}
	if console.String() != string(data) {
		t.Error("console and file output differ")
	}
}

func TestNewLoggerVerbose(t *testing.T) {
	var console bytes.Buffer
	logger, _, err := NewLogger(config.LoggingConfig{Level: "info"}, &console, true)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Debug("debug line")
	if !strings.Contains(console.String(), "debug line") {
		t.Errorf("verbose logger dropped debug: %q", console.String())
	}
}

func TestNewLoggerRejectsBadInput(t *testing.T) {
	if _, _, err := NewLogger(config.LoggingConfig{Level: "loud"}, &bytes.Buffer{}, false); err == nil {
		t.Error("expected error for bad level")
	}
	if _, _, err := NewLogger(config.LoggingConfig{Level: "info", Format: "xml"}, &bytes.Buffer{}, false); err == nil {
		t.Error("expected error for bad format")
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestStartServerServesMetrics(t *testing.T) {
	m := NewMetrics(testLogger)
	m.ArticlesSaved.Add(3)
	port := freePort(t)
	if err := m.StartServer(port, "/metrics"); err != nil {
		t.Fatalf("StartServer: %v", err)
	}
	defer m.Close()

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/metrics", port))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "newsentiment_articles_saved_total 3") {
		t.Errorf("unexpected body:\n%s", body)
	}
}

func TestStartServerPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	m := NewMetrics(testLogger)
	if err := m.StartServer(port, "/metrics"); err == nil {
		m.Close()
		t.Fatal("expected an error for a port already in use")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close without server: %v", err)
	}
}
