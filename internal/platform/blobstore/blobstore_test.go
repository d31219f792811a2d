package blobstore

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"
)

func TestDiskStore_RoundTrip(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	store.now = func() time.Time { return time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC) }

	key, err := store.Save(context.Background(), "scan result.pdf", strings.NewReader("pdf-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(key, "medical_files/2026/08/") {
		t.Errorf("key should be date partitioned, got %s", key)
	}
	if !strings.HasSuffix(key, "_scan_result.pdf") {
		t.Errorf("key should keep a sanitized file name, got %s", key)
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "pdf-bytes" {
		t.Errorf("unexpected content %q", data)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(context.Background(), key); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDiskStore_OpenMissing(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	if _, err := store.Open(context.Background(), "medical_files/2026/01/missing.pdf"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDiskStore_UniqueKeys(t *testing.T) {
	store := NewDiskStore(t.TempDir())
	k1, err := store.Save(context.Background(), "report.pdf", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	k2, err := store.Save(context.Background(), "report.pdf", strings.NewReader("b"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if k1 == k2 {
		t.Error("two uploads of the same file name must get distinct keys")
	}
}

func TestMemStore_RoundTrip(t *testing.T) {
	store := NewMemStore()
	key, err := store.Save(context.Background(), "xray.png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 blob, got %d", store.Len())
	}

	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "png" {
		t.Errorf("unexpected content %q", data)
	}

	if err := store.Delete(context.Background(), key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(context.Background(), key); err != ErrNotFound {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
