package source

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadWords(t *testing.T) {
	words, err := ReadWords(strings.NewReader("a.txt\n  b.txt\tc.txt\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(words, []string{"a.txt", "b.txt", "c.txt"}) {
		t.Errorf("ReadWords = %v", words)
	}
}

func TestReadWordsLongEntry(t *testing.T) {
	long := strings.Repeat("n", 200<<10) + ".txt"
	words, err := ReadWords(strings.NewReader("a.txt\n" + long + "\nb.txt\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(words) != 3 || words[1] != long {
		t.Errorf("ReadWords returned %d words, want 3 with the long name intact", len(words))
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "docs.txt", "alice.txt\nwow.txt\n")
	names, err := LoadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"alice.txt", "wow.txt"}) {
		t.Errorf("LoadManifest = %v", names)
	}
}

func TestLoadNoiseWordsVerbatim(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "noise.txt", "the\nIs\na\n")
	noise, err := LoadNoiseWords(path)
	if err != nil {
		t.Fatal(err)
	}
	if !noise.Contains("the") || !noise.Contains("Is") || noise.Contains("is") {
		t.Errorf("unexpected noise set %v", noise)
	}
}

func TestMissingFilesAreResourceNotFound(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.txt")
	if _, err := LoadManifest(missing); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("LoadManifest error = %v", err)
	}
	if _, err := LoadNoiseWords(missing); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("LoadNoiseWords error = %v", err)
	}
	if _, err := NewFileSource("").Open(context.Background(), missing); !errors.Is(err, apperrors.ErrResourceNotFound) {
		t.Errorf("Open error = %v", err)
	}
}

func TestFileSourceResolvesRelativeNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "hello world")
	rc, err := NewFileSource(dir).Open(context.Background(), "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello world" {
		t.Errorf("read %q", data)
	}
}
