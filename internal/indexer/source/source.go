// Package source supplies the inputs of an index build: the manifest of
// document names, the noise-word list and a way to open each document.
package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Adithya-Monish-Kumar-K/little-search-engine/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/little-search-engine/pkg/errors"
)

// Documents opens documents by name.
type Documents interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Lister is implemented by sources that can enumerate their own documents
// when no manifest file is configured.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// ReadWords returns the whitespace-delimited words of r in order.
func ReadWords(r io.Reader) ([]string, error) {
	words := make([]string, 0, 64)
	err := tokenizer.EachWord(r, func(w string) {
		words = append(words, w)
	})
	if err != nil {
		return nil, err
	}
	return words, nil
}

// LoadManifest reads the document names listed in the file at path.
func LoadManifest(path string) ([]string, error) {
	names, err := readWordsFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	return names, nil
}

// LoadNoiseWords reads the noise-word file at path. Words are kept verbatim.
func LoadNoiseWords(path string) (tokenizer.NoiseWords, error) {
	words, err := readWordsFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading noise words: %w", err)
	}
	return tokenizer.NewNoiseWords(words...), nil
}

func readWordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NotFound(path, err)
	}
	defer f.Close()
	words, err := ReadWords(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return words, nil
}

// FileSource opens documents from the local filesystem. Relative names are
// resolved against Dir.
type FileSource struct {
	Dir string
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{Dir: dir}
}

func (s *FileSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	path := name
	if s.Dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(s.Dir, name)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NotFound(path, err)
	}
	return f, nil
}
