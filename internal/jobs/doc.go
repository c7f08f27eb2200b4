// Package jobs persists asynchronous batch submissions in SQLite.
//
// The Store tracks orchestration state only: which inputs were submitted,
// whether their batch is pending, running, or finished, the success/failure
// tallies, and where the emitted artifact landed. OCR payloads never enter
// the database; they live exclusively in the artifact file.
//
// The database is transient bookkeeping for the API daemon, not an archive.
package jobs
