// Package daemon hosts the long-running OCR service: it enforces
// single-instance execution through a lock file, owns the job registry, and
// serves the HTTP API that accepts synchronous and asynchronous batch
// submissions.
package daemon
