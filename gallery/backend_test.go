package gallery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openSQLite(t *testing.T) Backend {
	t.Helper()
	b, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "data", "gallery.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

func TestBackends_RoundTrip(t *testing.T) {
	backends := []struct {
		name string
		new  func(t *testing.T) Backend
	}{
		{"memory", func(t *testing.T) Backend { return NewMemoryBackend() }},
		{"zero memory", func(t *testing.T) Backend { return &MemoryBackend{} }},
		{"file", func(t *testing.T) Backend { return NewFileBackend(filepath.Join(t.TempDir(), "store"), 0) }},
		{"sqlite", openSQLite},
	}

	for _, bb := range backends {
		t.Run(bb.name, func(t *testing.T) {
			ctx := context.Background()
			b := bb.new(t)

			if _, err := b.Get(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get on empty backend = %v, want ErrNotFound", err)
			}

			if err := b.Put(ctx, DefaultKey, []byte(`[{"src":"a","alt":"b"}]`)); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := b.Put(ctx, DefaultKey, []byte(`[]`)); err != nil {
				t.Fatalf("Put overwrite: %v", err)
			}

			got, err := b.Get(ctx, DefaultKey)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != `[]` {
				t.Errorf("Get = %q, want %q", got, `[]`)
			}

			if err := b.Delete(ctx, DefaultKey); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if err := b.Delete(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
				t.Errorf("second Delete = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestFileBackend_Quota(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(dir, 8)

	if err := b.Put(ctx, "k", []byte("12345678")); err != nil {
		t.Fatalf("value at quota should fit: %v", err)
	}
	err := b.Put(ctx, "k", []byte("123456789"))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}

	got, _ := b.Get(ctx, "k")
	if string(got) != "12345678" {
		t.Errorf("failed write must leave the previous record, got %q", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the record file, found %d entries", len(entries))
	}
}

func TestMemoryBackend_ZeroValueWithQuota(t *testing.T) {
	ctx := context.Background()
	b := &MemoryBackend{Quota: 1 << 20}

	if err := b.Put(ctx, "k", []byte("[]")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := b.Get(ctx, "k")
	if err != nil || string(got) != "[]" {
		t.Errorf("Get = %q, %v", got, err)
	}
	if err := b.Put(ctx, "k", make([]byte, 1<<20+1)); !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
}

func TestFileBackend_KeyIsConfinedToDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	b := NewFileBackend(filepath.Join(dir, "store"), 0)

	if err := b.Put(ctx, "../escape", []byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "store", "escape.json")); err != nil {
		t.Errorf("record written outside the store dir: %v", err)
	}
}

func TestSQLiteBackend_UpdatedAt(t *testing.T) {
	ctx := context.Background()
	b, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "gallery.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	if _, err := b.UpdatedAt(ctx, DefaultKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatedAt on missing record = %v, want ErrNotFound", err)
	}
	if err := b.Put(ctx, DefaultKey, []byte("[]")); err != nil {
		t.Fatal(err)
	}
	ts, err := b.UpdatedAt(ctx, DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	if ts.IsZero() {
		t.Error("UpdatedAt should be set after Put")
	}
}
