// Package store keeps raw upstream JSON on disk, keyed by relative path.
package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type JSONStore struct {
	Root string // e.g. "data/raw"
	now  func() time.Time
}

func NewJSONStore(root string) *JSONStore {
	return &JSONStore{Root: root, now: time.Now}
}

func (s *JSONStore) Path(rel string) string {
	return filepath.Join(s.Root, filepath.FromSlash(rel))
}

func (s *JSONStore) Exists(rel string) bool {
	_, err := os.Stat(s.Path(rel))
	return err == nil
}

// Fresh reports whether rel exists and was written within maxAge.
// A maxAge of zero never expires.
func (s *JSONStore) Fresh(rel string, maxAge time.Duration) bool {
	fi, err := os.Stat(s.Path(rel))
	if err != nil {
		return false
	}
	if maxAge <= 0 {
		return true
	}
	return s.clock().Sub(fi.ModTime()) < maxAge
}

// WriteRaw writes body to rel through a temp file so readers never see a
// partial document.
func (s *JSONStore) WriteRaw(rel string, body []byte, pretty bool) error {
	path := s.Path(rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}

	if pretty {
		var v any
		if err := json.Unmarshal(body, &v); err == nil {
			buf := &bytes.Buffer{}
			enc := json.NewEncoder(buf)
			enc.SetIndent("", "  ")
			_ = enc.Encode(v)
			body = buf.Bytes()
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *JSONStore) ReadRaw(rel string) ([]byte, error) {
	return os.ReadFile(s.Path(rel))
}

// ReadJSON decodes rel into v.
func (s *JSONStore) ReadJSON(rel string, v any) error {
	b, err := s.ReadRaw(rel)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", rel, err)
	}
	return nil
}

func (s *JSONStore) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
