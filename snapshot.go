package atelier

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const snapshotName = "database.json"

// snapshot is the complete serialized state of the file-backed store.
type snapshot struct {
	Essays    []Essay    `json:"essays"`
	Works     []Work     `json:"works"`
	Projects  []Project  `json:"projects"`
	BlogPosts []BlogPost `json:"blogPosts"`
	Quotes    []Quote    `json:"quotes"`
	Reactions []Reaction `json:"reactions"`
	Analytics []DayStats `json:"analytics"`
	Homepage  *Homepage  `json:"homepage,omitempty"`
}

// snapshotFile reads and writes the single JSON snapshot. When the medium
// turns out to be unwritable (serverless filesystems, read-only mounts) it
// degrades to memory-only operation: Save reports false and keeps reporting
// false for the rest of the process.
type snapshotFile struct {
	mu       sync.Mutex
	dir      string
	path     string
	readOnly bool
}

func newSnapshotFile(dir string) *snapshotFile {
	return &snapshotFile{
		dir:  dir,
		path: filepath.Join(dir, snapshotName),
	}
}

// ensureDir probes writability by creating the data directory. A failed
// probe flips the sticky read-only flag.
func (f *snapshotFile) ensureDir() {
	if f.readOnly {
		return
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		f.readOnly = true
		log.Printf("snapshot: data dir unavailable, running read-only: %v", err)
	}
}

// Load returns the stored snapshot, or nil when the medium is read-only or
// no snapshot exists yet. A corrupt snapshot is an error so the caller can
// decide whether to reseed.
func (f *snapshotFile) Load() (*snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ensureDir()
	if f.readOnly {
		return nil, nil
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &s, nil
}

// Save writes the whole snapshot as one JSON document. It never panics or
// returns an error: a failed write is logged, marks the medium read-only,
// and reports false.
func (f *snapshotFile) Save(s *snapshot) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readOnly {
		return false
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		log.Printf("snapshot: marshal failed: %v", err)
		return false
	}
	f.ensureDir()
	if f.readOnly {
		return false
	}
	if err := writeFileAtomic(f.path, data, 0o644); err != nil {
		f.readOnly = true
		log.Printf("snapshot: write failed, switching to read-only: %v", err)
		return false
	}
	return true
}

// ReadOnly reports whether the medium has been marked unwritable.
func (f *snapshotFile) ReadOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readOnly
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it over the destination, so a crash mid-write leaves the previous
// snapshot intact.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
