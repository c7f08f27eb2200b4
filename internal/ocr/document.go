package ocr

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
)

// DocumentType distinguishes local files from remote URLs.
type DocumentType string

const (
	DocumentFile DocumentType = "file"
	DocumentURL  DocumentType = "url"
)

// Document identifies a single input to submit for OCR processing.
type Document struct {
	Type DocumentType
	Path string
	URL  string
	Name string
}

// FileDocument builds a Document referencing a local file.
func FileDocument(path string) Document {
	return Document{Type: DocumentFile, Path: path, Name: filepath.Base(path)}
}

// URLDocument builds a Document referencing a remote URL.
func URLDocument(raw string) Document {
	return Document{Type: DocumentURL, URL: raw, Name: raw}
}

// Ref returns the path or URL the document points at.
func (d Document) Ref() string {
	if d.Type == DocumentURL {
		return d.URL
	}
	return d.Path
}

// Options carries the backend flags applied to a single OCR call.
type Options struct {
	IncludeImages bool
	Model         string
}

// Result is the extracted content returned by the backend for one document.
type Result struct {
	Model string `json:"model,omitempty"`
	Pages []Page `json:"pages"`
}

// Page holds the extracted content of a single document page.
type Page struct {
	Index    int     `json:"index"`
	Markdown string  `json:"markdown"`
	Images   []Image `json:"images,omitempty"`
}

// Image describes an image extracted from a page, optionally with its
// base64-encoded payload when the caller asked for images.
type Image struct {
	ID           string `json:"id"`
	TopLeftX     int    `json:"top_left_x"`
	TopLeftY     int    `json:"top_left_y"`
	BottomRightX int    `json:"bottom_right_x"`
	BottomRightY int    `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64,omitempty"`
}

// Text joins the markdown of all pages into a single string.
func (r *Result) Text() string {
	if r == nil || len(r.Pages) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Pages))
	for _, page := range r.Pages {
		parts = append(parts, page.Markdown)
	}
	return strings.Join(parts, "\n\n")
}

// Client is the capability each OCR backend provides: one call, one document,
// one classified outcome. Implementations apply their own per-call timeout and
// never retry internally; retry scheduling belongs to the batch scheduler.
type Client interface {
	Process(ctx context.Context, doc Document, opts Options) (*Result, error)
}

// supportedExtensions lists the file types the OCR backend accepts.
var supportedExtensions = map[string]struct{}{
	".pdf":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".tiff": {},
	".tif":  {},
	".bmp":  {},
}

// SupportedFile reports whether the path carries an extension the backend can
// process. The check is case-insensitive.
func SupportedFile(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the accepted extensions in lexicographic order.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
