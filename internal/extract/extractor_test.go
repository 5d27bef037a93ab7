package extract

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractBytes_plain(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("Hello world\nLine 2"))
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "Hello world\nLine 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_plainUTF8(t *testing.T) {
	e := NewExtractor()
	got, err := e.ExtractBytes([]byte("caf\xc3\xa9")) // valid UTF-8
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_stripsBOM(t *testing.T) {
	got, err := NewExtractor().ExtractBytes([]byte("\xef\xbb\xbf<html>"))
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "<html>" {
		t.Errorf("got %q", got)
	}
}

func TestExtractBytes_invalidUTF8Strict(t *testing.T) {
	_, err := NewExtractor().ExtractBytes([]byte("hello\x80world"))
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestExtractBytes_invalidUTF8Lenient(t *testing.T) {
	got, err := NewExtractor(WithLenientUTF8()).ExtractBytes([]byte("hello\x80world"))
	if err != nil {
		t.Fatalf("ExtractBytes: %v", err)
	}
	if got != "hello\uFFFDworld" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_file(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page.htm")
	if err := os.WriteFile(path, []byte("<p>File content</p>"), 0600); err != nil {
		t.Fatal(err)
	}
	got, err := NewExtractor().Extract(path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != "<p>File content</p>" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_missingFile(t *testing.T) {
	_, err := NewExtractor().Extract(filepath.Join(t.TempDir(), "nope.htm"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
