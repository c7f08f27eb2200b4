package resolve

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"scribe/internal/batch"
	"scribe/internal/ocr"
)

var urlPrefixes = []string{"http://", "https://"}

// IsURL reports whether the descriptor names a remote document.
func IsURL(descriptor string) bool {
	for _, prefix := range urlPrefixes {
		if strings.HasPrefix(descriptor, prefix) {
			return true
		}
	}
	return false
}

// Options configures how descriptors expand into documents.
type Options struct {
	// Recursive walks into subdirectories when resolving a directory.
	Recursive bool
	// AllowEmpty tolerates descriptors that resolve to zero processable items.
	AllowEmpty bool
}

// Resolver builds work lists from input descriptors.
type Resolver struct {
	opts Options
}

// New constructs a resolver.
func New(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// Resolve expands the descriptor into ordered work items carrying the given
// processing options. Item IDs are derived from input order and stay stable
// across identical invocations.
func (r *Resolver) Resolve(descriptor string, procOpts ocr.Options) ([]batch.WorkItem, error) {
	descriptor = strings.TrimSpace(descriptor)
	if descriptor == "" {
		return nil, ocr.NewError(ocr.KindInvalidInput, "input descriptor is empty")
	}

	var docs []ocr.Document
	switch {
	case IsURL(descriptor):
		docs = []ocr.Document{ocr.URLDocument(descriptor)}
	default:
		info, err := os.Stat(descriptor)
		if err != nil {
			return nil, ocr.WrapError(ocr.KindInvalidInput,
				fmt.Sprintf("input %s is not a file, directory, or URL", descriptor), err)
		}
		if info.IsDir() {
			docs, err = r.resolveDirectory(descriptor)
			if err != nil {
				return nil, err
			}
		} else {
			if !ocr.SupportedFile(descriptor) {
				return nil, ocr.NewError(ocr.KindUnsupportedFileType,
					fmt.Sprintf("unsupported file type: %s", descriptor))
			}
			docs = []ocr.Document{ocr.FileDocument(descriptor)}
		}
	}

	if len(docs) == 0 && !r.opts.AllowEmpty {
		return nil, ocr.NewError(ocr.KindInvalidInput,
			fmt.Sprintf("no processable documents found in %s", descriptor))
	}

	items := make([]batch.WorkItem, len(docs))
	for i, doc := range docs {
		items[i] = batch.WorkItem{
			ID:      batch.ItemID(i),
			Source:  doc,
			Title:   DisplayTitle(doc),
			Options: procOpts,
		}
	}
	return items, nil
}

// resolveDirectory lists supported files in lexicographic order. Without the
// recursive option, subdirectories are ignored entirely.
func (r *Resolver) resolveDirectory(dir string) ([]ocr.Document, error) {
	if r.opts.Recursive {
		return r.walkDirectory(dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, ocr.WrapError(ocr.KindInvalidInput, fmt.Sprintf("read directory %s", dir), err)
	}

	var docs []ocr.Document
	for _, entry := range entries {
		if entry.IsDir() || !ocr.SupportedFile(entry.Name()) {
			continue
		}
		docs = append(docs, ocr.FileDocument(filepath.Join(dir, entry.Name())))
	}
	return docs, nil
}

func (r *Resolver) walkDirectory(dir string) ([]ocr.Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !ocr.SupportedFile(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, ocr.WrapError(ocr.KindInvalidInput, fmt.Sprintf("walk directory %s", dir), err)
	}

	sort.Strings(paths)
	docs := make([]ocr.Document, len(paths))
	for i, path := range paths {
		docs[i] = ocr.FileDocument(path)
	}
	return docs, nil
}
