package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	key, size, mime, err := store.Save(ctx, "resume-1", "cv.txt", strings.NewReader("hello resume"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len("hello resume")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(mime, "text/plain") {
		t.Fatalf("unexpected mime %s", mime)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "hello resume" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestSaveWithKeyRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.SaveWithKey(ctx, "documents/r1/d1.docx", "application/octet-stream", bytes.NewReader([]byte("PK")))
	if err != nil {
		t.Fatalf("save with key: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 bytes, got %d", n)
	}
	rc, err := store.Open(ctx, "documents/r1/d1.docx")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = rc.Close()
}

func TestRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.SaveWithKey(ctx, "../escape.docx", "", strings.NewReader("x")); err == nil {
		t.Fatalf("expected traversal rejection on save")
	}
	if _, err := store.Open(ctx, "../escape.docx"); err == nil {
		t.Fatalf("expected traversal rejection on open")
	}
}

func TestOpenHonorsCancelledContext(t *testing.T) {
	store := New(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Open(ctx, "any"); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestDeleteRemovesObject(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.SaveWithKey(ctx, "documents/r1/d1.docx", "", strings.NewReader("docx")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "documents/r1/d1.docx"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, "documents/r1/d1.docx"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not exist after delete, got %v", err)
	}
	if err := store.Delete(ctx, "documents/r1/d1.docx"); err != nil {
		t.Fatalf("deleting a missing key should succeed, got %v", err)
	}
	if err := store.Delete(ctx, "../escape"); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}
