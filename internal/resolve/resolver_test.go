package resolve_test

import (
	"path/filepath"
	"testing"

	"scribe/internal/ocr"
	"scribe/internal/resolve"
	"scribe/internal/testsupport"
)

func TestResolveDirectoryOrdersAndFilters(t *testing.T) {
	dir := testsupport.Documents(t, t.TempDir(), "b.pdf", "a.png", "c.txt", "notes.md")

	resolver := resolve.New(resolve.Options{})
	items, err := resolver.Resolve(dir, ocr.Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if filepath.Base(items[0].Source.Path) != "a.png" || filepath.Base(items[1].Source.Path) != "b.pdf" {
		t.Fatalf("expected lexicographic order, got %s then %s",
			items[0].Source.Path, items[1].Source.Path)
	}
	if items[0].ID != "doc-001" || items[1].ID != "doc-002" {
		t.Fatalf("unexpected item ids %s, %s", items[0].ID, items[1].ID)
	}
}

func TestResolveSkipsSubdirectoriesByDefault(t *testing.T) {
	dir := t.TempDir()
	testsupport.Documents(t, dir, "top.pdf")
	testsupport.Documents(t, filepath.Join(dir, "nested"), "inner.pdf")

	items, err := resolve.New(resolve.Options{}).Resolve(dir, ocr.Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(items) != 1 || filepath.Base(items[0].Source.Path) != "top.pdf" {
		t.Fatalf("expected only the top-level document, got %d items", len(items))
	}
}

func TestResolveRecursiveWalksSubdirectories(t *testing.T) {
	dir := t.TempDir()
	testsupport.Documents(t, dir, "top.pdf")
	testsupport.Documents(t, filepath.Join(dir, "nested"), "inner.jpg")

	items, err := resolve.New(resolve.Options{Recursive: true}).Resolve(dir, ocr.Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestResolveSingleFile(t *testing.T) {
	dir := testsupport.Documents(t, t.TempDir(), "scan.tiff")
	path := filepath.Join(dir, "scan.tiff")

	items, err := resolve.New(resolve.Options{}).Resolve(path, ocr.Options{IncludeImages: true})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Source.Type != ocr.DocumentFile || item.Source.Path != path {
		t.Fatalf("unexpected document: %+v", item.Source)
	}
	if !item.Options.IncludeImages {
		t.Fatal("expected processing options to flow through")
	}
	if item.Title != "Scan" {
		t.Fatalf("expected title Scan, got %q", item.Title)
	}
}

func TestResolveUnsupportedFile(t *testing.T) {
	dir := testsupport.Documents(t, t.TempDir(), "doc.docx")

	_, err := resolve.New(resolve.Options{}).Resolve(filepath.Join(dir, "doc.docx"), ocr.Options{})
	classified, ok := ocr.AsError(err)
	if !ok || classified.Kind != ocr.KindUnsupportedFileType {
		t.Fatalf("expected unsupported file type error, got %v", err)
	}
	if classified.Retryable {
		t.Fatal("expected unsupported file type to be non-retryable")
	}
}

func TestResolveMissingInput(t *testing.T) {
	_, err := resolve.New(resolve.Options{}).Resolve(filepath.Join(t.TempDir(), "absent.pdf"), ocr.Options{})
	classified, ok := ocr.AsError(err)
	if !ok || classified.Kind != ocr.KindInvalidInput {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestResolveEmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := resolve.New(resolve.Options{}).Resolve(dir, ocr.Options{})
	classified, ok := ocr.AsError(err)
	if !ok || classified.Kind != ocr.KindInvalidInput {
		t.Fatalf("expected invalid input for empty directory, got %v", err)
	}

	items, err := resolve.New(resolve.Options{AllowEmpty: true}).Resolve(dir, ocr.Options{})
	if err != nil {
		t.Fatalf("expected empty resolution to be tolerated: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected zero items, got %d", len(items))
	}
}

func TestResolveURL(t *testing.T) {
	const raw = "https://example.com/reports/q3.pdf"
	items, err := resolve.New(resolve.Options{}).Resolve(raw, ocr.Options{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Source.Type != ocr.DocumentURL || items[0].Source.URL != raw {
		t.Fatalf("unexpected document: %+v", items[0].Source)
	}
	if items[0].Title != raw {
		t.Fatalf("expected URL passed through as title, got %q", items[0].Title)
	}
}

func TestIsURL(t *testing.T) {
	cases := map[string]bool{
		"https://example.com/a.pdf": true,
		"http://example.com/a.pdf":  true,
		"ftp://example.com/a.pdf":   false,
		"/tmp/a.pdf":                false,
	}
	for input, want := range cases {
		if got := resolve.IsURL(input); got != want {
			t.Fatalf("IsURL(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestDisplayTitle(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{path: "/tmp/annual_report_2024.pdf", want: "Annual Report 2024"},
		{path: "/tmp/scan-001.png", want: "Scan 001"},
		{path: "/tmp/receipt.jpeg", want: "Receipt"},
	}
	for _, tc := range cases {
		got := resolve.DisplayTitle(ocr.FileDocument(tc.path))
		if got != tc.want {
			t.Fatalf("DisplayTitle(%s) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
