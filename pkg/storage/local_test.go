package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir(), BaseURL: "/files/"})
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func write(t *testing.T, s Storage, key, body string) {
	t.Helper()
	if err := s.Write(context.Background(), key, strings.NewReader(body), int64(len(body)), ""); err != nil {
		t.Fatalf("Write(%s): %v", key, err)
	}
}

func TestLocalStorage_WriteReadDelete(t *testing.T) {
	s := newLocal(t)
	ctx := context.Background()

	write(t, s, "claims/1/a.txt", "alpha")

	rc, err := s.Read(ctx, "claims/1/a.txt")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "alpha" {
		t.Errorf("unexpected content %q", data)
	}

	ok, err := s.Exists(ctx, "claims/1/a.txt")
	if err != nil || !ok {
		t.Errorf("expected Exists true, got %v %v", ok, err)
	}

	url, err := s.GetURL(ctx, "claims/1/a.txt", time.Minute)
	if err != nil || url != "/files/claims/1/a.txt" {
		t.Errorf("unexpected url %q %v", url, err)
	}

	if err := s.Delete(ctx, "claims/1/a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "claims/1/a.txt"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
	if _, err := s.Read(ctx, "claims/1/a.txt"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetURL(ctx, "claims/1/a.txt", time.Minute); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from GetURL, got %v", err)
	}
}

func TestLocalStorage_ListPrefix(t *testing.T) {
	s := newLocal(t)
	write(t, s, "claims/12/b.txt", "bb")
	write(t, s, "claims/12/a.pdf", "a")
	write(t, s, "claims/123/c.txt", "c")

	objects, err := s.List(context.Background(), "claims/12/")
	if err != nil {
		t.Fatal(err)
	}
	if len(objects) != 2 {
		t.Fatalf("expected 2 objects under claims/12/, got %+v", objects)
	}
	if objects[0].Key != "claims/12/a.pdf" || objects[1].Key != "claims/12/b.txt" {
		t.Errorf("expected sorted keys, got %s %s", objects[0].Key, objects[1].Key)
	}
	if objects[0].ContentType != "application/pdf" || objects[1].Size != 2 {
		t.Errorf("unexpected object info %+v", objects)
	}

	all, _ := s.List(context.Background(), "")
	if len(all) != 3 {
		t.Errorf("expected 3 objects overall, got %d", len(all))
	}
}

func TestLocalStorage_KeysStayInBase(t *testing.T) {
	s := newLocal(t)
	write(t, s, "../../escape.txt", "x")

	if _, err := os.Stat(filepath.Join(s.basePath, "escape.txt")); err != nil {
		t.Errorf("expected escaping key to be confined to base path: %v", err)
	}
	if err := s.Write(context.Background(), "/", strings.NewReader(""), 0, ""); err == nil {
		t.Error("expected root key to be rejected")
	}
}

func TestLocalStorage_CancelledWrite(t *testing.T) {
	s := newLocal(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Write(ctx, "claims/1/x.txt", strings.NewReader("x"), 1, ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ok, _ := s.Exists(context.Background(), "claims/1/x.txt"); ok {
		t.Error("cancelled write should not leave an object")
	}
	objects, _ := s.List(context.Background(), "claims/1/")
	if len(objects) != 0 {
		t.Errorf("expected no objects, got %+v", objects)
	}
}

func TestNew_Drivers(t *testing.T) {
	if _, err := New(context.Background(), Config{Driver: "local", Local: LocalConfig{BasePath: t.TempDir()}}); err != nil {
		t.Errorf("local: %v", err)
	}
	if _, err := New(context.Background(), Config{Driver: "s3"}); err == nil {
		t.Error("expected s3 without bucket to fail")
	}
	if _, err := New(context.Background(), Config{Driver: "ftp"}); err == nil {
		t.Error("expected unknown driver to fail")
	}
}
