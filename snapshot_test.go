package atelier

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSnapshotRoundTrip(t *testing.T) {
	f := newSnapshotFile(t.TempDir())

	in := seedSnapshot()
	if !f.Save(in) {
		t.Fatal("Save reported failure on a writable dir")
	}

	out, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if out == nil {
		t.Fatal("Load returned nil after Save")
	}
	if len(out.Essays) != len(in.Essays) || len(out.Quotes) != len(in.Quotes) {
		t.Fatalf("round trip lost records: %d/%d essays, %d/%d quotes",
			len(out.Essays), len(in.Essays), len(out.Quotes), len(in.Quotes))
	}
	if out.Essays[0].ID != in.Essays[0].ID {
		t.Fatalf("essay id mismatch: %s != %s", out.Essays[0].ID, in.Essays[0].ID)
	}
}

func TestSnapshotLoadMissingIsNil(t *testing.T) {
	f := newSnapshotFile(t.TempDir())
	s, err := f.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != nil {
		t.Fatal("expected nil snapshot for empty dir")
	}
}

func TestSnapshotCorruptIsError(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, snapshotName), []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	f := newSnapshotFile(dir)
	if _, err := f.Load(); err == nil {
		t.Fatal("expected error for corrupt snapshot")
	}
}

func TestSnapshotReadOnlyIsSticky(t *testing.T) {
	// a file where the data dir should be makes MkdirAll fail even as root
	parent := t.TempDir()
	blocked := filepath.Join(parent, "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := newSnapshotFile(filepath.Join(blocked, "data"))
	s, err := f.Load()
	if err != nil || s != nil {
		t.Fatalf("read-only Load should be (nil, nil), got %v, %v", s, err)
	}
	if !f.ReadOnly() {
		t.Fatal("expected sticky read-only flag after failed probe")
	}
	if f.Save(seedSnapshot()) {
		t.Fatal("Save must report false on read-only medium")
	}
}

func TestWriteFileAtomicReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := writeFileAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := writeFileAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Fatalf("content = %q, want %q", data, "two")
	}

	// no temp files left behind
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}
