// Package fixture materializes txtar archives as on-disk source trees for tests
package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/tools/txtar"
)

// Write extracts archive files into a fresh temporary directory and returns its path
func Write(t testing.TB, archive string) string {
	t.Helper()
	dir := t.TempDir()
	if err := Extract(dir, archive); err != nil {
		t.Fatalf("failed to extract fixture: %v", err)
	}
	return dir
}

// Extract writes archive files under dir
func Extract(dir string, archive string) error {
	ar := txtar.Parse([]byte(archive))
	for _, file := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(file.Name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
