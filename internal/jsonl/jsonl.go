// Package jsonl reads and writes line-delimited JSON files.
package jsonl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

const maxLine = 4 * 1024 * 1024

// Decode reads one value per line from r. Blank lines and lines that do
// not decode into T are skipped; the second result counts the skipped
// invalid lines.
func Decode[T any](r io.Reader) ([]T, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		out     []T
		invalid int
	)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			invalid++
			continue
		}
		out = append(out, v)
	}
	if err := scanner.Err(); err != nil {
		return out, invalid, err
	}
	return out, invalid, nil
}

// Read loads a file. A missing file yields no values and no error.
func Read[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out, _, err := Decode[T](f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return out, nil
}

// ReadFiles loads and concatenates several files in order.
func ReadFiles[T any](paths []string) ([]T, error) {
	var out []T
	for _, p := range paths {
		vs, err := Read[T](p)
		if err != nil {
			return nil, err
		}
		out = append(out, vs...)
	}
	return out, nil
}

// Encode writes one JSON value per line. HTML characters are not escaped.
func Encode[T any](w io.Writer, values []T) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range values {
		if err := enc.Encode(values[i]); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes values to path atomically via a temp file and rename,
// creating the parent directory. An empty slice produces an empty file.
func WriteFile[T any](path string, values []T) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := bufio.NewWriter(tmp)
	if err := Encode(w, values); err != nil {
		tmp.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
