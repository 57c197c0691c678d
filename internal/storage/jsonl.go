// Package storage handles data persistence in SQLite and JSONL formats.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/textlab/textlab/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// ReadParsed reads parsed references from a JSONL file. A missing file
// yields an empty result. Every record is normalized.
func ReadParsed(path string) ([]reference.Parsed, error) {
	recs, err := readJSONL[reference.Parsed](path)
	if err != nil {
		return nil, err
	}
	for i := range recs {
		recs[i] = recs[i].Normalize()
	}
	return recs, nil
}

// WriteParsed writes parsed references to a JSONL file, replacing existing content.
func WriteParsed(path string, refs []reference.Parsed) error {
	return writeJSONL(path, refs)
}

// ReadCitations reads citation records from a JSONL file.
func ReadCitations(path string) ([]reference.Citation, error) {
	return readJSONL[reference.Citation](path)
}

// ReadReferences reads reference records from a JSONL file.
func ReadReferences(path string) ([]reference.Reference, error) {
	return readJSONL[reference.Reference](path)
}

// EncodeParsed writes refs to w, one JSON object per line.
func EncodeParsed(w io.Writer, refs []reference.Parsed) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, ref := range refs {
		if err := enc.Encode(ref); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	return nil
}

func readJSONL[T any](path string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var recs []T
	scanner := bufio.NewScanner(f)

	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec T
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		recs = append(recs, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return recs, nil
}

func writeJSONL[T any](path string, recs []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("encoding record %d: %w", i, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
