package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsage(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "documents.db")
	gen := filepath.Join(dir, "terms", "gen-3")
	if err := os.MkdirAll(gen, 0755); err != nil {
		t.Fatal(err)
	}
	for path, body := range map[string]string{
		db:                               "hello",
		filepath.Join(gen, "store"):      "ab",
		filepath.Join(gen, "index_meta"): "c",
	} {
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"file", []string{db}, 5},
		{"nested directory", []string{filepath.Join(dir, "terms")}, 3},
		{"file and directory", []string{db, gen}, 8},
		{"missing path skipped", []string{db, filepath.Join(dir, "nope"), gen}, 8},
		{"empty path skipped", []string{"", db}, 5},
		{"nothing", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsage(tt.paths...)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("DiskUsage = %d, want %d", got, tt.want)
			}
		})
	}
}
