// Package ocr defines the boundary between Scribe and the external OCR
// backend.
//
// It owns the document and result wire shapes, the Client interface every
// backend implementation satisfies, and the classified Error type the rest of
// the system uses to decide whether a failed call is worth retrying. Backend
// implementations (internal/ocr/mistral) translate every transport, status,
// and decode failure into this package's taxonomy; nothing above the client
// ever sees a raw HTTP error.
package ocr
