// Package mistral implements the OCR backend client against the Mistral OCR
// API.
//
// Local files are uploaded through the files endpoint and then processed by
// file ID; URLs are processed directly. Every failure is translated into the
// classified error taxonomy from internal/ocr before it leaves this package,
// and a single call never outlives its configured timeout. The client performs
// no retries of its own.
package mistral
