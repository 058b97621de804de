package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/IshaanNene/newsentiment/internal/types"
)

// --- JSONL Storage ---

// JSONLStore keeps articles in a newline-delimited JSON file, one object
// per line. Saves rewrite the file with the burst merged in by URL, so the
// file holds at most one line per article. Suited to small offline runs.
type JSONLStore struct {
	path   string
	mu     sync.Mutex
	now    func() time.Time
	logger *slog.Logger
}

// NewJSONLStore creates a JSONL file store at path.
func NewJSONLStore(path string, logger *slog.Logger) (*JSONLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonl: empty path")
	}
	return &JSONLStore{
		path:   path,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logger.With("component", "jsonl_storage"),
	}, nil
}

func (s *JSONLStore) Name() string { return DriverJSONL }

// Init creates the file and its directory if they are missing.
func (s *JSONLStore) Init(_ context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &types.StorageError{Backend: DriverJSONL, Op: "init", Err: err}
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &types.StorageError{Backend: DriverJSONL, Op: "init", Err: err}
	}
	return f.Close()
}

func (s *JSONLStore) SaveArticles(_ context.Context, articles []*types.Article) (SaveResult, error) {
	valid, skipped := prepare(articles, s.now(), s.logger)
	res := SaveResult{Skipped: skipped}
	if len(valid) == 0 {
		return res, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load()
	if err != nil {
		return res, err
	}

	index := make(map[string]int, len(existing))
	var nextID uint
	for i, a := range existing {
		index[a.URL] = i
		if a.ID > nextID {
			nextID = a.ID
		}
	}
	for _, a := range valid {
		row := *a
		if i, ok := index[a.URL]; ok {
			row.ID = existing[i].ID
			existing[i] = &row
		} else {
			nextID++
			row.ID = nextID
			index[a.URL] = len(existing)
			existing = append(existing, &row)
		}
		res.Saved++
	}

	if err := s.write(existing); err != nil {
		return SaveResult{Skipped: skipped}, err
	}
	s.logger.Info("articles saved", "saved", res.Saved, "skipped", res.Skipped, "path", s.path)
	return res, nil
}

func (s *JSONLStore) Articles(_ context.Context, q Query) ([]*types.Article, error) {
	s.mu.Lock()
	all, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var out []*types.Article
	for _, a := range all {
		if q.matches(a) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].ScrapedAt.Equal(out[j].ScrapedAt) {
			return out[i].ScrapedAt.After(out[j].ScrapedAt)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *JSONLStore) Close() error { return nil }

func (s *JSONLStore) load() ([]*types.Article, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &types.StorageError{Backend: DriverJSONL, Op: "read", Err: err}
	}
	defer f.Close()

	var out []*types.Article
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var a types.Article
		if err := json.Unmarshal(sc.Bytes(), &a); err != nil {
			s.logger.Warn("skipping unreadable line", "line", line, "error", err)
			continue
		}
		out = append(out, &a)
	}
	if err := sc.Err(); err != nil {
		return nil, &types.StorageError{Backend: DriverJSONL, Op: "read", Err: err}
	}
	return out, nil
}

// write replaces the file atomically through a temp file in the same dir.
func (s *JSONLStore) write(articles []*types.Article) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.StorageError{Backend: DriverJSONL, Op: "write", Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &types.StorageError{Backend: DriverJSONL, Op: "write", Err: err}
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, a := range articles {
		if err := enc.Encode(a); err != nil {
			tmp.Close()
			return &types.StorageError{Backend: DriverJSONL, Op: "encode", Err: err}
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return &types.StorageError{Backend: DriverJSONL, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &types.StorageError{Backend: DriverJSONL, Op: "write", Err: err}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return &types.StorageError{Backend: DriverJSONL, Op: "write", Err: err}
	}
	return nil
}
