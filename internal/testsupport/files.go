package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile writes content to path, creating parent directories as needed.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteInboxFile drops an invoice file into the config's inbox directory and
// returns its absolute path.
func WriteInboxFile(t testing.TB, inboxDir, name, content string) string {
	t.Helper()

	path := filepath.Join(inboxDir, name)
	WriteFile(t, path, content)
	return path
}
