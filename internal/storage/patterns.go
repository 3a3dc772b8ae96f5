// Package storage persists the named pattern set as a checksummed JSON file.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"
)

// FormatVersion is the version written to new pattern files.
const FormatVersion = 1

var (
	ErrCorrupt            = errors.New("pattern file checksum verification failed")
	ErrUnsupportedVersion = errors.New("unsupported pattern file version")
)

// Checksum is a hex-encoded SHA-256 hash with the "sha256:" prefix.
type Checksum string

// ComputeChecksum computes SHA-256 over a byte slice.
func ComputeChecksum(data []byte) Checksum {
	sum := sha256.Sum256(data)
	return Checksum("sha256:" + hex.EncodeToString(sum[:]))
}

// Record is one persisted named pattern. Only the source is stored; the
// automata are rebuilt on load.
type Record struct {
	Name      string    `json:"name"`
	Pattern   string    `json:"pattern"`
	CreatedAt time.Time `json:"created_at"`
}

type patternFile struct {
	Version  int      `json:"version"`
	Patterns []Record `json:"patterns"`
	Checksum Checksum `json:"checksum"`
}

// Marshal serializes records with a checksum over the whole document.
// Records are written sorted by name.
func Marshal(records []Record) ([]byte, error) {
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	f := &patternFile{Version: FormatVersion, Patterns: sorted}
	checksum, err := computeFileChecksum(f)
	if err != nil {
		return nil, err
	}
	f.Checksum = checksum

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal patterns: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes records and verifies the checksum.
func Unmarshal(data []byte) ([]Record, error) {
	var f patternFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal patterns: %w", err)
	}
	if f.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}

	saved := f.Checksum
	computed, err := computeFileChecksum(&f)
	if err != nil {
		return nil, err
	}
	if computed != saved {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrCorrupt, saved, computed)
	}
	return f.Patterns, nil
}

// computeFileChecksum hashes f serialized with an empty checksum field.
func computeFileChecksum(f *patternFile) (Checksum, error) {
	saved := f.Checksum
	f.Checksum = ""
	defer func() { f.Checksum = saved }()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal for checksum: %w", err)
	}
	return ComputeChecksum(data), nil
}

// Save atomically replaces the pattern file at path with records.
func Save(path string, records []Record) error {
	data, err := Marshal(records)
	if err != nil {
		return err
	}
	return atomicWriteFile(path, data)
}

// Load reads the pattern file at path. A missing file yields no records.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read pattern file %s: %w", path, err)
	}
	records, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return records, nil
}
