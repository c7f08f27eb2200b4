// Package retry decides whether a failed OCR attempt gets another try and how
// long to wait first.
//
// The policy is a pure function of the classified error and the attempt count,
// so retry timing is testable without real delays. Non-retryable kinds give up
// immediately; retryable ones back off exponentially from a base delay up to a
// cap, and rate-limited failures honor a larger backend Retry-After hint.
package retry
