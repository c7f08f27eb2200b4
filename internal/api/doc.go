// Package api defines transport-friendly representations of batch results and
// jobs, plus the service that drives a batch from input descriptor to output
// artifact. The CLI and the daemon both sit on top of this package so they
// render the same payloads.
package api
